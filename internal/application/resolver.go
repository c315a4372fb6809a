package app

import (
	"errors"
	"fmt"

	"agar-mic/internal/domain/entity"
)

// BreakpointPolicy правило чтения точки перелома.
type BreakpointPolicy struct {
	// Inhibited наибольшая метка, которая считается подавлением роста:
	// NoGrowth (строго) или PoorGrowth.
	Inhibited entity.GrowthLabel
	// MaxReverts сколько планшетов с хорошим ростом выше кандидата допускается
	// как шум классификатора.
	MaxReverts int
}

// DefaultBreakpointPolicy: подавлением считается только NoGrowth, возвраты роста не допускаются.
func DefaultBreakpointPolicy() BreakpointPolicy {
	return BreakpointPolicy{Inhibited: entity.NoGrowth, MaxReverts: 0}
}

// MICResolver сводит вердикты серии к МПК.
type MICResolver struct {
	policy BreakpointPolicy
}

// NewMICResolver проверяет правило и создаёт резолвер.
func NewMICResolver(policy BreakpointPolicy) (*MICResolver, error) {
	if policy.Inhibited != entity.NoGrowth && policy.Inhibited != entity.PoorGrowth {
		return nil, fmt.Errorf("inhibited label must be no_growth or poor_growth, got %s", policy.Inhibited)
	}
	if policy.MaxReverts < 0 {
		return nil, fmt.Errorf("max reverts must be non-negative, got %d", policy.MaxReverts)
	}
	return &MICResolver{policy: policy}, nil
}

// Policy действующее правило.
func (r *MICResolver) Policy() BreakpointPolicy {
	return r.policy
}

// Resolve определяет МПК по вердиктам целых планшетов.
func (r *MICResolver) Resolve(series *entity.ConcentrationSeries) (entity.MICResult, error) {
	entries, err := evaluatedEntries(series)
	if err != nil {
		return entity.MICResult{}, err
	}

	labels := make([]entity.GrowthLabel, len(entries))
	for i, e := range entries {
		labels[i] = e.Plate.Verdict()
	}
	return r.resolveLabels(series, labels, entity.PlatePosition), nil
}

// ResolvePositions определяет МПК отдельно для каждой позиции лунки.
// Все планшеты серии должны быть разбиты на одинаковое число областей.
func (r *MICResolver) ResolvePositions(series *entity.ConcentrationSeries) ([]entity.MICResult, error) {
	entries, err := evaluatedEntries(series)
	if err != nil {
		return nil, err
	}

	count := entries[0].Plate.RegionCount()
	for _, e := range entries[1:] {
		if e.Plate.RegionCount() != count {
			return nil, fmt.Errorf("%w: %d regions at %v, %d at %v", entity.ErrRegionMismatch,
				count, entries[0].Concentration, e.Plate.RegionCount(), e.Concentration)
		}
	}

	perPlate := make([][]entity.GrowthLabel, len(entries))
	for i, e := range entries {
		perPlate[i] = e.Plate.Labels()
	}

	results := make([]entity.MICResult, count)
	labels := make([]entity.GrowthLabel, len(entries))
	for pos := 0; pos < count; pos++ {
		for i := range entries {
			labels[i] = perPlate[i][pos]
		}
		results[pos] = r.resolveLabels(series, labels, pos)
	}
	return results, nil
}

func evaluatedEntries(series *entity.ConcentrationSeries) ([]entity.SeriesEntry, error) {
	if series == nil || series.Len() == 0 {
		return nil, entity.ErrEmptySeries
	}
	entries := series.Entries()
	for _, e := range entries {
		if e.Evaluated() {
			continue
		}
		cause := e.Err
		if cause == nil {
			cause = errors.New("plate was not evaluated")
		}
		return nil, fmt.Errorf("%w: concentration %v (%s): %w",
			entity.ErrIncompleteSeries, e.Concentration, e.Source, cause)
	}
	return entries, nil
}

// resolveLabels ищет наименьшую концентрацию с подавленным ростом, выше которой
// хороший рост встречается не чаще MaxReverts раз. labels упорядочены по концентрации.
func (r *MICResolver) resolveLabels(series *entity.ConcentrationSeries, labels []entity.GrowthLabel, position int) entity.MICResult {
	concs := series.Concentrations()
	rng := series.Range()
	res := entity.MICResult{
		Drug:     series.Drug(),
		Outcome:  entity.MICAboveRange,
		MIC:      rng.Max,
		Range:    rng,
		QC:       r.qualityControl(concs, labels),
		Position: position,
	}

	last := len(labels) - 1
	if !r.inhibited(labels[last]) {
		return res
	}

	for i, l := range labels {
		if !r.inhibited(l) || countReverts(labels[i+1:]) > r.policy.MaxReverts {
			continue
		}
		if i == 0 {
			res.Outcome = entity.MICBelowRange
			res.MIC = rng.Min
		} else {
			res.Outcome = entity.MICDetermined
			res.MIC = concs[i]
		}
		return res
	}
	return res
}

func (r *MICResolver) inhibited(l entity.GrowthLabel) bool {
	return l <= r.policy.Inhibited
}

// qualityControl: нет роста на контроле без препарата — fail;
// хороший рост выше подавленной концентрации — warning.
func (r *MICResolver) qualityControl(concs []float64, labels []entity.GrowthLabel) entity.QCStatus {
	if concs[0] == 0 && labels[0] == entity.NoGrowth {
		return entity.QCFail
	}
	for i, l := range labels {
		if r.inhibited(l) && countReverts(labels[i+1:]) > 0 {
			return entity.QCWarning
		}
	}
	return entity.QCPass
}

func countReverts(labels []entity.GrowthLabel) int {
	n := 0
	for _, l := range labels {
		if l == entity.GoodGrowth {
			n++
		}
	}
	return n
}
