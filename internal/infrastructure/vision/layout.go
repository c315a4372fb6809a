package vision

import (
	"image"
	"image/draw"
	"math"
	"sort"

	"agar-mic/internal/domain/entity"
)

// candidate контур, прошедший фильтры, в координатах рабочего снимка.
type candidate struct {
	rect image.Rectangle
	area float64
}

// dropNested убирает контуры, целиком лежащие внутри более крупного
// (внутренняя граница кольца, блик на колонии).
func dropNested(cands []candidate) []candidate {
	bySize := append([]candidate(nil), cands...)
	sort.SliceStable(bySize, func(i, j int) bool {
		ai, aj := rectArea(bySize[i].rect), rectArea(bySize[j].rect)
		if ai != aj {
			return ai > aj
		}
		return lessRect(bySize[i].rect, bySize[j].rect)
	})

	kept := make([]candidate, 0, len(bySize))
	for _, c := range bySize {
		nested := false
		for _, k := range kept {
			if c.rect.In(k.rect) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}

// rasterOrder упорядочивает области по строкам сверху вниз и слева направо
// внутри строки. Строка — центры, отстоящие по Y от первого центра строки
// не больше чем на половину медианной высоты. Порядок не зависит от
// порядка обхода контуров.
func rasterOrder(cands []candidate) []candidate {
	out := append([]candidate(nil), cands...)
	if len(out) < 2 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := centerY(out[i].rect), centerY(out[j].rect)
		if ci != cj {
			return ci < cj
		}
		return lessRect(out[i].rect, out[j].rect)
	})

	heights := make([]int, len(out))
	for i, c := range out {
		heights[i] = c.rect.Dy()
	}
	sort.Ints(heights)
	tolerance := heights[len(heights)/2] / 2
	if tolerance < 1 {
		tolerance = 1
	}

	start := 0
	for start < len(out) {
		rowY := centerY(out[start].rect)
		end := start + 1
		for end < len(out) && centerY(out[end].rect)-rowY <= tolerance {
			end++
		}
		row := out[start:end]
		sort.SliceStable(row, func(i, j int) bool {
			ci, cj := centerX(row[i].rect), centerX(row[j].rect)
			if ci != cj {
				return ci < cj
			}
			return lessRect(row[i].rect, row[j].rect)
		})
		start = end
	}
	return out
}

// gridCells делит прямоугольник на rows×cols ячеек в растровом порядке;
// остаток пикселей распределяется по ячейкам, покрытие без зазоров.
func gridCells(bounds image.Rectangle, rows, cols int) []image.Rectangle {
	if rows <= 0 || cols <= 0 || bounds.Dx() < cols || bounds.Dy() < rows {
		return nil
	}
	w, h := bounds.Dx(), bounds.Dy()
	cells := make([]image.Rectangle, 0, rows*cols)
	for r := 0; r < rows; r++ {
		y0 := bounds.Min.Y + r*h/rows
		y1 := bounds.Min.Y + (r+1)*h/rows
		for c := 0; c < cols; c++ {
			x0 := bounds.Min.X + c*w/cols
			x1 := bounds.Min.X + (c+1)*w/cols
			cells = append(cells, image.Rect(x0, y0, x1, y1))
		}
	}
	return cells
}

// toPhotoRect переводит прямоугольник рабочего снимка в координаты исходного.
func toPhotoRect(rect image.Rectangle, scale float64, photo image.Rectangle) image.Rectangle {
	if scale <= 0 {
		scale = 1
	}
	out := image.Rect(
		int(math.Floor(float64(rect.Min.X)/scale)),
		int(math.Floor(float64(rect.Min.Y)/scale)),
		int(math.Ceil(float64(rect.Max.X)/scale)),
		int(math.Ceil(float64(rect.Max.Y)/scale)),
	).Add(photo.Min)
	return out.Intersect(photo)
}

// buildRegions вырезает области из снимка; индексы идут по порядку rects.
func buildRegions(photo image.Image, rects []image.Rectangle, areas []int) []entity.ImageRegion {
	regions := make([]entity.ImageRegion, 0, len(rects))
	for i, rect := range rects {
		regions = append(regions, entity.ImageRegion{
			Index:  i,
			Bounds: rect,
			Area:   areas[i],
			Image:  cropRegion(photo, rect),
		})
	}
	return regions
}

func cropRegion(photo image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(photo.Bounds())
	if sub, ok := photo.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), photo, rect.Min, draw.Src)
	return dst
}

func lessRect(a, b image.Rectangle) bool {
	if a.Min.X != b.Min.X {
		return a.Min.X < b.Min.X
	}
	if a.Min.Y != b.Min.Y {
		return a.Min.Y < b.Min.Y
	}
	if a.Max.X != b.Max.X {
		return a.Max.X < b.Max.X
	}
	return a.Max.Y < b.Max.Y
}

func rectArea(r image.Rectangle) int { return r.Dx() * r.Dy() }
func centerX(r image.Rectangle) int  { return r.Min.X + r.Dx()/2 }
func centerY(r image.Rectangle) int  { return r.Min.Y + r.Dy()/2 }
