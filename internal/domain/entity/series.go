package entity

import (
	"fmt"
	"math"
	"sort"
)

// SeriesEntry одна точка серии разведений. Plate == nil означает, что
// вердикт получить не удалось; причина хранится в Err.
type SeriesEntry struct {
	Concentration float64
	Source        string
	Plate         *Plate
	Err           error
}

// Evaluated сообщает, есть ли у точки вердикт.
func (e SeriesEntry) Evaluated() bool {
	return e.Plate != nil && e.Err == nil
}

// ConcentrationRange диапазон протестированных концентраций.
type ConcentrationRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ConcentrationSeries серия планшетов одного препарата, строго по возрастанию
// концентрации и без повторов.
type ConcentrationSeries struct {
	drug    string
	entries []SeriesEntry
}

// NewConcentrationSeries проверяет и упорядочивает точки серии.
// Если drug пустой, препарат берётся из первого оценённого планшета.
func NewConcentrationSeries(drug string, entries []SeriesEntry) (*ConcentrationSeries, error) {
	if len(entries) == 0 {
		return nil, ErrEmptySeries
	}

	sorted := make([]SeriesEntry, len(entries))
	for i, e := range entries {
		if e.Plate != nil {
			e.Concentration = e.Plate.Concentration()
			if drug == "" {
				drug = e.Plate.Drug()
			}
			if e.Source == "" {
				e.Source = e.Plate.Source()
			}
		}
		if math.IsNaN(e.Concentration) || math.IsInf(e.Concentration, 0) || e.Concentration < 0 {
			return nil, fmt.Errorf("%w: concentration %v", ErrInvalidInput, e.Concentration)
		}
		sorted[i] = e
	}
	if drug == "" {
		return nil, fmt.Errorf("%w: drug name is empty", ErrInvalidInput)
	}

	for _, e := range sorted {
		if e.Plate != nil && e.Plate.Drug() != drug {
			return nil, fmt.Errorf("%w: %q and %q", ErrMixedDrugs, drug, e.Plate.Drug())
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Concentration < sorted[j].Concentration
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Concentration == sorted[i-1].Concentration {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateConcentration, sorted[i].Concentration)
		}
	}

	return &ConcentrationSeries{drug: drug, entries: sorted}, nil
}

// SeriesFromPlates строит серию из уже оценённых планшетов.
func SeriesFromPlates(plates ...*Plate) (*ConcentrationSeries, error) {
	entries := make([]SeriesEntry, 0, len(plates))
	for _, p := range plates {
		if p == nil {
			return nil, fmt.Errorf("%w: nil plate", ErrInvalidInput)
		}
		entries = append(entries, SeriesEntry{Plate: p})
	}
	return NewConcentrationSeries("", entries)
}

func (s *ConcentrationSeries) Drug() string { return s.drug }
func (s *ConcentrationSeries) Len() int     { return len(s.entries) }

// Entries копия точек серии по возрастанию концентрации.
func (s *ConcentrationSeries) Entries() []SeriesEntry {
	return append([]SeriesEntry(nil), s.entries...)
}

// Concentrations концентрации серии по возрастанию.
func (s *ConcentrationSeries) Concentrations() []float64 {
	out := make([]float64, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Concentration
	}
	return out
}

// Range минимальная и максимальная протестированная концентрация.
func (s *ConcentrationSeries) Range() ConcentrationRange {
	return ConcentrationRange{
		Min: s.entries[0].Concentration,
		Max: s.entries[len(s.entries)-1].Concentration,
	}
}

// Missing точки без вердикта.
func (s *ConcentrationSeries) Missing() []SeriesEntry {
	var out []SeriesEntry
	for _, e := range s.entries {
		if !e.Evaluated() {
			out = append(out, e)
		}
	}
	return out
}
