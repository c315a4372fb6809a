package port

import (
	"image"

	"agar-mic/internal/domain/entity"
)

// Predictor обученная модель. Для одинаковых весов и входа результат одинаков;
// реализация должна выдерживать конкурентные вызовы.
type Predictor interface {
	// Predict принимает нормализованный тензор и возвращает две оценки классов
	Predict(input []float32) ([]float32, error)
}

// ImageClassifier бинарный классификатор изображения с порогом
type ImageClassifier interface {
	Classify(img image.Image) (entity.ClassificationResult, error)
}

// GrowthClassifier классификатор уровня роста в области
type GrowthClassifier interface {
	Classify(img image.Image) (entity.GrowthCall, error)
}
