package entity

import (
	"fmt"
	"strconv"
)

// MICOutcome вид результата определения МПК.
type MICOutcome int

const (
	MICDetermined MICOutcome = iota // найдена точка перелома внутри диапазона
	MICBelowRange                   // роста нет уже на минимальной концентрации
	MICAboveRange                   // рост есть на максимальной концентрации
)

func (o MICOutcome) String() string {
	switch o {
	case MICDetermined:
		return "determined"
	case MICBelowRange:
		return "below_range"
	case MICAboveRange:
		return "above_range"
	default:
		return fmt.Sprintf("mic_outcome(%d)", int(o))
	}
}

// QCStatus итог контроля качества серии.
type QCStatus string

const (
	QCPass    QCStatus = "pass"
	QCWarning QCStatus = "warning" // рост вернулся выше точки подавления
	QCFail    QCStatus = "fail"    // нет роста на контроле без препарата
)

// PlatePosition позиция результата, посчитанного по вердиктам целых планшетов.
const PlatePosition = -1

// MICResult итог одной серии (или одной позиции лунки в серии).
//
// MICBelowRange означает, что истинная МПК не выше минимальной концентрации:
// рост подавлен уже на ней, поэтому граница включительная и пишется "<=min".
// MICAboveRange означает рост на максимальной концентрации, граница
// исключительная: ">max".
type MICResult struct {
	Drug     string
	Outcome  MICOutcome
	MIC      float64 // точка перелома; для граничных исходов — граница диапазона
	Range    ConcentrationRange
	QC       QCStatus
	Position int
}

// Determined true только для точки перелома внутри диапазона.
func (r MICResult) Determined() bool {
	return r.Outcome == MICDetermined
}

// String форматирует МПК так, как её пишут в лабораторном отчёте: "2", "<=0.125", ">64".
// Нижняя граница включительная, верхняя исключительная.
func (r MICResult) String() string {
	switch r.Outcome {
	case MICBelowRange:
		return "<=" + formatConcentration(r.Range.Min)
	case MICAboveRange:
		return ">" + formatConcentration(r.Range.Max)
	default:
		return formatConcentration(r.MIC)
	}
}

func formatConcentration(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
