package entity

import (
	"fmt"
	"strings"
)

// GrowthLabel уровень роста в лунке. Порядок значений совпадает с тяжестью роста:
// NoGrowth < PoorGrowth < GoodGrowth.
type GrowthLabel int

const (
	NoGrowth   GrowthLabel = iota // роста нет
	PoorGrowth                    // слабый рост
	GoodGrowth                    // хороший рост
)

// GrowthLabels все метки в порядке возрастания роста.
var GrowthLabels = []GrowthLabel{NoGrowth, PoorGrowth, GoodGrowth}

func (l GrowthLabel) String() string {
	switch l {
	case NoGrowth:
		return "no_growth"
	case PoorGrowth:
		return "poor_growth"
	case GoodGrowth:
		return "good_growth"
	default:
		return fmt.Sprintf("growth_label(%d)", int(l))
	}
}

// Valid сообщает, входит ли метка в фиксированный набор.
func (l GrowthLabel) Valid() bool {
	return l >= NoGrowth && l <= GoodGrowth
}

// ParseGrowthLabel разбирает метку, допускает пробелы, дефисы и регистр.
func ParseGrowthLabel(s string) (GrowthLabel, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "no_growth", "none":
		return NoGrowth, nil
	case "poor_growth", "poor":
		return PoorGrowth, nil
	case "good_growth", "good", "growth":
		return GoodGrowth, nil
	}
	return NoGrowth, fmt.Errorf("unknown growth label %q", s)
}

func (l GrowthLabel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid growth label %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *GrowthLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseGrowthLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
