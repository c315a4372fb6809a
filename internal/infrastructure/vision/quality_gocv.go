//go:build gocv
// +build gocv

package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"agar-mic/internal/domain/entity"
)

// QualityGate отбраковывает мелкие, смазанные, пере- и недоэкспонированные снимки и снимки с бликами.
type QualityGate struct {
	params QualityParams
}

func NewQualityGate(params QualityParams) *QualityGate {
	return &QualityGate{params: params}
}

// checkMat проверяет снимок; ошибка оборачивает entity.ErrPoorPhoto.
func (g *QualityGate) checkMat(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("%w: empty image", entity.ErrPoorPhoto)
	}

	if mat.Cols() < g.params.MinImageSide || mat.Rows() < g.params.MinImageSide {
		return fmt.Errorf("%w: image is too small (%dx%d)", entity.ErrPoorPhoto, mat.Cols(), mat.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	edgeRatio := ratioOfMask(edges)
	if edgeRatio < g.params.MinSharpnessEdgeRatio {
		return fmt.Errorf("%w: image is blurry (edge_ratio=%.4f)", entity.ErrPoorPhoto, edgeRatio)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	overexposedRatio := ratioOfMask(bright)
	if overexposedRatio > g.params.MaxOverexposedRatio {
		return fmt.Errorf("%w: overexposed image (ratio=%.4f)", entity.ErrPoorPhoto, overexposedRatio)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	underexposedRatio := ratioOfMask(dark)
	if underexposedRatio > g.params.MaxUnderexposedRatio {
		return fmt.Errorf("%w: underexposed image (ratio=%.4f)", entity.ErrPoorPhoto, underexposedRatio)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return fmt.Errorf("%w: invalid hsv channels", entity.ErrPoorPhoto)
	}

	// Блик: низкая насыщенность при почти максимальной яркости.
	lowSat := gocv.NewMat()
	defer lowSat.Close()
	gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

	highVal := gocv.NewMat()
	defer highVal.Close()
	gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

	glare := gocv.NewMat()
	defer glare.Close()
	gocv.BitwiseAnd(lowSat, highVal, &glare)
	glareRatio := ratioOfMask(glare)
	if glareRatio > g.params.MaxGlareRatio {
		return fmt.Errorf("%w: too much glare (ratio=%.4f)", entity.ErrPoorPhoto, glareRatio)
	}

	return nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}
