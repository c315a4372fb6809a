//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"agar-mic/internal/domain/entity"
)

// Segment выделяет колонии: серый → размытие → порог Оцу (или Canny) →
// контуры → фильтр площади и пропорций → растровый порядок.
func (s *ContourSegmenter) Segment(ctx context.Context, photo image.Image) ([]entity.ImageRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work, scale, err := prepareMat(photo, s.params)
	if err != nil {
		return nil, err
	}
	defer work.Close()

	mask := binaryMask(work, s.params)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	total := float64(work.Cols() * work.Rows())
	cands := make([]candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		c := contours.At(i)
		area := gocv.ContourArea(c)
		ratio := area / total
		if ratio < s.params.MinAreaRatio || ratio > s.params.MaxAreaRatio {
			continue
		}

		rect := gocv.BoundingRect(c)
		if rect.Dy() == 0 {
			continue
		}
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < s.params.MinAspectRatio || aspect > s.params.MaxAspectRatio {
			continue
		}
		cands = append(cands, candidate{rect: rect, area: area})
	}

	ordered := rasterOrder(dropNested(cands))
	rects := make([]image.Rectangle, 0, len(ordered))
	areas := make([]int, 0, len(ordered))
	for _, c := range ordered {
		rect := toPhotoRect(c.rect, scale, photo.Bounds())
		if rect.Empty() {
			continue
		}
		rects = append(rects, rect)
		areas = append(areas, int(c.area/(scale*scale)))
	}
	return buildRegions(photo, rects, areas), nil
}

// Segment находит планшет как самый крупный внешний контур и режет его
// на сетку. Если планшет не найден, возвращает пустой срез.
func (s *GridSegmenter) Segment(ctx context.Context, photo image.Image) ([]entity.ImageRegion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work, scale, err := prepareMat(photo, s.params)
	if err != nil {
		return nil, err
	}
	defer work.Close()

	mask := binaryMask(work, s.params)
	defer mask.Close()

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	best, bestArea := -1, 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 || bestArea/float64(work.Cols()*work.Rows()) < s.params.MinPlateRatio {
		return []entity.ImageRegion{}, nil
	}

	plate := toPhotoRect(gocv.BoundingRect(contours.At(best)), scale, photo.Bounds())
	cells := gridCells(plate, s.params.Rows, s.params.Cols)
	areas := make([]int, len(cells))
	for i, c := range cells {
		areas[i] = rectArea(c)
	}
	return buildRegions(photo, cells, areas), nil
}

// prepareMat переводит снимок в BGR Mat, проверяет качество и уменьшает
// до MaxSide. Возвращает масштаб рабочего снимка относительно исходного.
func prepareMat(photo image.Image, params SegmenterParams) (gocv.Mat, float64, error) {
	if photo == nil || photo.Bounds().Empty() {
		return gocv.NewMat(), 0, fmt.Errorf("%w: empty photo", entity.ErrInvalidInput)
	}

	mat, err := gocv.ImageToMatRGB(photo)
	if err != nil {
		return gocv.NewMat(), 0, fmt.Errorf("%w: %v", entity.ErrDecode, err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), 0, errors.New("empty image")
	}

	if params.Quality.Enabled {
		if err := NewQualityGate(params.Quality).checkMat(mat); err != nil {
			mat.Close()
			return gocv.NewMat(), 0, err
		}
	}

	// Приводим изображение к стандартному размеру для стабильных порогов.
	scale := 1.0
	if mat.Cols() > params.MaxSide || mat.Rows() > params.MaxSide {
		scale = float64(params.MaxSide) / float64(maxInt(mat.Cols(), mat.Rows()))
		newW := int(float64(mat.Cols()) * scale)
		newH := int(float64(mat.Rows()) * scale)
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(newW, newH), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}
	return mat, scale, nil
}

// binaryMask строит бинарную маску объектов.
func binaryMask(mat gocv.Mat, params SegmenterParams) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	k := params.BlurKernel
	gocv.GaussianBlur(gray, &blur, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	mask := gocv.NewMat()
	if params.Edges {
		gocv.Canny(blur, &mask, params.CannyLow, params.CannyHigh)
	} else {
		typ := gocv.ThresholdBinary
		if params.Invert {
			typ = gocv.ThresholdBinaryInv
		}
		gocv.Threshold(blur, &mask, 0, 255, typ|gocv.ThresholdOtsu)
	}

	// Замыкаем разрывы контура колонии.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(5, 5))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

	return mask
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
