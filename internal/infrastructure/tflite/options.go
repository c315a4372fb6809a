package tflite

import (
	"errors"
	"runtime"

	"agar-mic/internal/domain/port"
)

// ErrTFLiteDisabled сборка без тега tflite.
var ErrTFLiteDisabled = errors.New("tflite build tag is not enabled")

// Options параметры интерпретатора.
type Options struct {
	Threads int
}

func (o Options) threads() int {
	if o.Threads > 0 {
		return o.Threads
	}
	return runtime.NumCPU()
}

var _ port.Predictor = (*Predictor)(nil)
