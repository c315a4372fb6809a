package onnx

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
)

// Predictor одна ONNX-сессия с предвыделенными тензорами.
// Тензоры общие, поэтому Predict сериализован.
type Predictor struct {
	mu           sync.Mutex
	path         string
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// Predict копирует вход в тензор, запускает сессию и возвращает копию выхода.
func (p *Predictor) Predict(input []float32) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, fmt.Errorf("model %s is closed", p.path)
	}

	data := p.inputTensor.GetData()
	if len(input) != len(data) {
		return nil, fmt.Errorf("%w: model %s expects %d inputs, got %d", entity.ErrInvalidInput, p.path, len(data), len(input))
	}
	copy(data, input)

	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := p.outputTensor.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

func (p *Predictor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inputTensor != nil {
		p.inputTensor.Destroy()
		p.inputTensor = nil
	}
	if p.outputTensor != nil {
		p.outputTensor.Destroy()
		p.outputTensor = nil
	}
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
}

var _ port.Predictor = (*Predictor)(nil)
