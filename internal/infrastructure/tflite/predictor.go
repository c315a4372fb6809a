//go:build tflite
// +build tflite

package tflite

import (
	"fmt"
	"log"
	"sync"

	"github.com/mattn/go-tflite"

	"agar-mic/internal/domain/entity"
)

// Predictor интерпретатор TensorFlow Lite с одним входом и одним выходом float32.
type Predictor struct {
	mu          sync.Mutex
	path        string
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
}

// Load читает .tflite-модель и размещает тензоры.
func Load(path string, opts Options) (*Predictor, error) {
	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, fmt.Errorf("%w: cannot load model %s", entity.ErrNotFound, path)
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(opts.threads())
	options.SetErrorReporter(func(msg string, _ interface{}) {
		log.Printf("tflite %s: %s", path, msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("cannot create interpreter for %s", path)
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("allocate tensors for %s: status %v", path, status)
	}

	return &Predictor{path: path, model: model, options: options, interpreter: interpreter}, nil
}

// Predict копирует вход во входной тензор, запускает интерпретатор и возвращает копию выхода.
func (p *Predictor) Predict(input []float32) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interpreter == nil {
		return nil, fmt.Errorf("model %s is closed", p.path)
	}

	in := p.interpreter.GetInputTensor(0).Float32s()
	if len(in) != len(input) {
		return nil, fmt.Errorf("%w: model %s expects %d inputs, got %d", entity.ErrInvalidInput, p.path, len(in), len(input))
	}
	copy(in, input)

	if status := p.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("inference failed: status %v", status)
	}

	out := p.interpreter.GetOutputTensor(0).Float32s()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

func (p *Predictor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interpreter != nil {
		p.interpreter.Delete()
		p.interpreter = nil
	}
	if p.options != nil {
		p.options.Delete()
		p.options = nil
	}
	if p.model != nil {
		p.model.Delete()
		p.model = nil
	}
}
