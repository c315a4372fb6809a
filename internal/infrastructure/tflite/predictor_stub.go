//go:build !tflite
// +build !tflite

package tflite

// Predictor заглушка без TensorFlow Lite.
type Predictor struct{}

// Load возвращает ошибку, если сборка без тега tflite.
func Load(path string, opts Options) (*Predictor, error) {
	_ = path
	_ = opts
	return nil, ErrTFLiteDisabled
}

// Predict возвращает ошибку, если сборка без тега tflite.
func (p *Predictor) Predict(input []float32) ([]float32, error) {
	_ = input
	return nil, ErrTFLiteDisabled
}

func (p *Predictor) Close() {}
