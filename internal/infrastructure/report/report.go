package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"agar-mic/internal/domain/entity"
)

// Report итог пакетного прогона серии.
type Report struct {
	RunID       string                    `yaml:"run_id"`
	GeneratedAt time.Time                 `yaml:"generated_at"`
	Drug        string                    `yaml:"drug"`
	MIC         string                    `yaml:"mic,omitempty"`
	Outcome     string                    `yaml:"outcome,omitempty"`
	QC          string                    `yaml:"qc,omitempty"`
	Range       entity.ConcentrationRange `yaml:"range"`
	Error       string                    `yaml:"error,omitempty"`
	Plates      []PlateRecord             `yaml:"plates"`
	Positions   []PositionRecord          `yaml:"positions,omitempty"`
}

// PlateRecord одна концентрация серии.
type PlateRecord struct {
	Concentration  float64        `yaml:"concentration"`
	Source         string         `yaml:"source,omitempty"`
	Verdict        string         `yaml:"verdict,omitempty"`
	Regions        int            `yaml:"regions"`
	Counts         map[string]int `yaml:"counts,omitempty"`
	MeanConfidence float64        `yaml:"mean_confidence,omitempty"`
	Error          string         `yaml:"error,omitempty"`
}

// PositionRecord МПК одной позиции лунки.
type PositionRecord struct {
	Position int    `yaml:"position"`
	MIC      string `yaml:"mic"`
	Outcome  string `yaml:"outcome"`
	QC       string `yaml:"qc"`
}

// New собирает отчёт. result == nil, если МПК определить не удалось; причина в resolveErr.
func New(series *entity.ConcentrationSeries, result *entity.MICResult, positions []entity.MICResult, resolveErr error) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Drug:        series.Drug(),
		Range:       series.Range(),
	}

	for _, e := range series.Entries() {
		rec := PlateRecord{Concentration: e.Concentration, Source: e.Source}
		if e.Err != nil {
			rec.Error = e.Err.Error()
		}
		if e.Plate != nil {
			rec.Verdict = e.Plate.Verdict().String()
			rec.Regions = e.Plate.RegionCount()
			rec.MeanConfidence = e.Plate.MeanConfidence()
			rec.Counts = make(map[string]int)
			for label, n := range e.Plate.Counts() {
				rec.Counts[label.String()] = n
			}
		}
		r.Plates = append(r.Plates, rec)
	}

	if result != nil {
		r.MIC = result.String()
		r.Outcome = result.Outcome.String()
		r.QC = string(result.QC)
	}
	if resolveErr != nil {
		r.Error = resolveErr.Error()
	}

	for _, p := range positions {
		r.Positions = append(r.Positions, PositionRecord{
			Position: p.Position,
			MIC:      p.String(),
			Outcome:  p.Outcome.String(),
			QC:       string(p.QC),
		})
	}

	return r
}

// Summary однострочная сводка для консоли.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", r.Drug)
	if r.MIC != "" {
		fmt.Fprintf(&b, "MIC %s (%s, qc=%s)", r.MIC, r.Outcome, r.QC)
	} else {
		b.WriteString("MIC undetermined")
	}
	fmt.Fprintf(&b, ", %d plates", len(r.Plates))
	if r.Error != "" {
		fmt.Fprintf(&b, ": %s", r.Error)
	}
	return b.String()
}

// Write сохраняет отчёт в YAML.
func Write(r *Report, path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Read читает отчёт из YAML.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// Show читает отчёт и печатает сводку и планшеты.
func Show(path string, w io.Writer) error {
	r, err := Read(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s (run %s, %s)\n", r.Summary(), r.RunID, r.GeneratedAt.Format(time.RFC3339))
	for _, p := range r.Plates {
		status := p.Verdict
		if p.Error != "" {
			status = "error: " + p.Error
		}
		fmt.Fprintf(w, "  %g\t%s\t%d regions\t%s\n", p.Concentration, status, p.Regions, p.Source)
	}
	for _, p := range r.Positions {
		fmt.Fprintf(w, "  position %d\t%s\t%s\n", p.Position, p.MIC, p.QC)
	}
	return nil
}
