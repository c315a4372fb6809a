package entity

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// RegionVerdict метка одной области планшета; изображение области не хранится.
type RegionVerdict struct {
	Index  int
	Bounds image.Rectangle
	Area   int
	Call   GrowthCall
}

// Plate планшет с одной концентрацией препарата. Вердикт считается один раз
// при создании, дальше объект только читается.
type Plate struct {
	drug          string
	concentration float64
	source        string
	regions       []RegionVerdict
	verdict       GrowthLabel
}

// NewPlate собирает планшет из меток областей и сразу вычисляет вердикт.
// Планшет без областей по соглашению получает NoGrowth (см. EmptyPlate).
func NewPlate(drug string, concentration float64, source string, regions []RegionVerdict) (*Plate, error) {
	if drug == "" {
		return nil, fmt.Errorf("%w: drug name is empty", ErrInvalidInput)
	}
	if math.IsNaN(concentration) || math.IsInf(concentration, 0) || concentration < 0 {
		return nil, fmt.Errorf("%w: concentration %v", ErrInvalidInput, concentration)
	}

	p := &Plate{
		drug:          drug,
		concentration: concentration,
		source:        source,
		regions:       append([]RegionVerdict(nil), regions...),
	}
	p.verdict = MajorityVote(p.Labels())
	return p, nil
}

func (p *Plate) Drug() string           { return p.drug }
func (p *Plate) Concentration() float64 { return p.concentration }
func (p *Plate) Source() string         { return p.source }
func (p *Plate) Verdict() GrowthLabel   { return p.verdict }
func (p *Plate) RegionCount() int       { return len(p.regions) }

// EmptyPlate true, если сегментация не нашла ни одной области и вердикт
// NoGrowth назначен по соглашению, а не голосованием.
func (p *Plate) EmptyPlate() bool {
	return len(p.regions) == 0
}

// Regions возвращает копию меток областей в порядке сегментации.
func (p *Plate) Regions() []RegionVerdict {
	return append([]RegionVerdict(nil), p.regions...)
}

// Labels метки областей в порядке сегментации.
func (p *Plate) Labels() []GrowthLabel {
	labels := make([]GrowthLabel, len(p.regions))
	for i, r := range p.regions {
		labels[i] = r.Call.Label
	}
	return labels
}

// Counts число областей с каждой меткой.
func (p *Plate) Counts() map[GrowthLabel]int {
	counts := make(map[GrowthLabel]int, len(GrowthLabels))
	for _, r := range p.regions {
		counts[r.Call.Label]++
	}
	return counts
}

// MeanConfidence средняя уверенность решающих ступеней по всем областям.
func (p *Plate) MeanConfidence() float64 {
	if len(p.regions) == 0 {
		return 0
	}
	conf := make([]float64, len(p.regions))
	for i, r := range p.regions {
		conf[i] = r.Call.Confidence()
	}
	return stat.Mean(conf, nil)
}

// MajorityVote выбирает самую частую метку. При равенстве голосов побеждает
// метка с большим ростом, поэтому результат не зависит от порядка.
// Пустой список даёт NoGrowth.
func MajorityVote(labels []GrowthLabel) GrowthLabel {
	var counts [3]int
	for _, l := range labels {
		if l.Valid() {
			counts[l]++
		}
	}

	best := NoGrowth
	for _, l := range GrowthLabels {
		if counts[l] > 0 && counts[l] >= counts[best] {
			best = l
		}
	}
	return best
}
