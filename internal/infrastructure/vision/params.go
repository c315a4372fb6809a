package vision

import (
	"errors"
	"fmt"
)

// ErrVisionDisabled сборка без тега gocv.
var ErrVisionDisabled = errors.New("gocv build tag is not enabled")

// Method способ выделения лунок.
type Method string

const (
	MethodContour Method = "contour" // каждая колония — отдельный контур
	MethodGrid    Method = "grid"    // планшет режется на сетку лунок
)

// SegmenterParams параметры сегментации снимка планшета.
type SegmenterParams struct {
	Method     Method
	MaxSide    int  // снимок уменьшается до этой стороны для стабильных порогов
	BlurKernel int  // нечётный размер ядра Гаусса
	Edges      bool // Canny вместо порога Оцу
	Invert     bool // объекты темнее фона
	CannyLow   float32
	CannyHigh  float32

	// Фильтр контуров, доли площади снимка
	MinAreaRatio   float64
	MaxAreaRatio   float64
	MinAspectRatio float64
	MaxAspectRatio float64

	// Сетка для MethodGrid
	Rows, Cols    int
	MinPlateRatio float64 // минимальная доля снимка под контуром планшета

	Quality QualityParams
}

// QualityParams пороги проверки качества снимка.
type QualityParams struct {
	Enabled               bool
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// DefaultSegmenterParams параметры для снимков 96-луночных планшетов.
func DefaultSegmenterParams() SegmenterParams {
	return SegmenterParams{
		Method:         MethodContour,
		MaxSide:        1600,
		BlurKernel:     5,
		CannyLow:       50,
		CannyHigh:      150,
		MinAreaRatio:   0.0002,
		MaxAreaRatio:   0.2,
		MinAspectRatio: 0.25,
		MaxAspectRatio: 4.0,
		Rows:           8,
		Cols:           12,
		MinPlateRatio:  0.2,
		Quality:        DefaultQualityParams(),
	}
}

// DefaultQualityParams пороги проверки качества; проверка выключена.
func DefaultQualityParams() QualityParams {
	return QualityParams{
		MinImageSide:          400,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

// Validate проверяет согласованность параметров.
func (p SegmenterParams) Validate() error {
	switch p.Method {
	case MethodContour, MethodGrid:
	default:
		return fmt.Errorf("unknown segmentation method %q", p.Method)
	}
	if p.MaxSide <= 0 {
		return fmt.Errorf("max side must be positive, got %d", p.MaxSide)
	}
	if p.BlurKernel < 1 || p.BlurKernel%2 == 0 {
		return fmt.Errorf("blur kernel must be a positive odd number, got %d", p.BlurKernel)
	}
	if p.MinAreaRatio < 0 || p.MaxAreaRatio <= p.MinAreaRatio || p.MaxAreaRatio > 1 {
		return fmt.Errorf("invalid area ratios [%v, %v]", p.MinAreaRatio, p.MaxAreaRatio)
	}
	if p.MinAspectRatio <= 0 || p.MaxAspectRatio < p.MinAspectRatio {
		return fmt.Errorf("invalid aspect ratios [%v, %v]", p.MinAspectRatio, p.MaxAspectRatio)
	}
	if p.Method == MethodGrid && (p.Rows <= 0 || p.Cols <= 0) {
		return fmt.Errorf("grid needs positive rows and cols, got %dx%d", p.Rows, p.Cols)
	}
	return nil
}
