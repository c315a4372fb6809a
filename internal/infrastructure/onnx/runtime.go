package onnx

import (
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Runtime владеет окружением onnxruntime; окружение одно на процесс.
type Runtime struct {
	mu     sync.Mutex
	closed bool
	models []*Predictor
}

// NewRuntime инициализирует окружение. Пустой libPath оставляет путь библиотеки по умолчанию.
func NewRuntime(libPath string) (*Runtime, error) {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	return &Runtime{}, nil
}

// ModelSpec описывает вход и выход модели.
type ModelSpec struct {
	Path        string
	InputName   string
	OutputName  string
	InputShape  []int64
	OutputShape []int64
}

func (s ModelSpec) validate() error {
	if s.Path == "" {
		return errors.New("model path is empty")
	}
	if len(s.InputShape) == 0 || len(s.OutputShape) == 0 {
		return fmt.Errorf("model %s: input and output shapes are required", s.Path)
	}
	for _, d := range append(append([]int64{}, s.InputShape...), s.OutputShape...) {
		if d <= 0 {
			return fmt.Errorf("model %s: shape dimensions must be positive", s.Path)
		}
	}
	return nil
}

// Load открывает модель и заранее выделяет тензоры под её вход и выход.
func (r *Runtime) Load(spec ModelSpec) (*Predictor, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}
	if spec.InputName == "" {
		spec.InputName = "input"
	}
	if spec.OutputName == "" {
		spec.OutputName = "output"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.New("onnx runtime is closed")
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(spec.Path,
		[]string{spec.InputName}, []string{spec.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session for %s: %w", spec.Path, err)
	}

	p := &Predictor{
		path:         spec.Path,
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}
	r.models = append(r.models, p)
	return p, nil
}

// Close освобождает все загруженные модели и окружение.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, m := range r.models {
		m.Close()
	}
	r.models = nil
	ort.DestroyEnvironment()
}
