package port

import "image"

// ImageSource источник снимков планшетов
type ImageSource interface {
	// Load читает и декодирует файл; ошибки оборачивают entity.ErrNotFound или entity.ErrDecode
	Load(path string) (image.Image, error)

	// Decode декодирует снимок из памяти
	Decode(data []byte) (image.Image, error)
}
