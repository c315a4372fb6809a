package entity

import "image"

// ImageRegion вырезанная лунка/колония со снимка планшета.
// После извлечения не меняется; живёт только до классификации.
type ImageRegion struct {
	Index  int             // позиция в детерминированном порядке сегментации
	Bounds image.Rectangle // прямоугольник в координатах исходного снимка
	Area   int             // площадь контура в пикселях
	Image  image.Image     // содержимое области
}

// Center возвращает координаты центра области
func (r ImageRegion) Center() (x, y int) {
	return r.Bounds.Min.X + r.Bounds.Dx()/2, r.Bounds.Min.Y + r.Bounds.Dy()/2
}

// Empty сообщает, что область нулевого размера.
func (r ImageRegion) Empty() bool {
	return r.Image == nil || r.Image.Bounds().Empty()
}
