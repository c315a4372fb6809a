package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"agar-mic/internal/domain/entity"
)

const (
	BackendONNX   = "onnx"
	BackendTFLite = "tflite"
)

// ModelConfig одна ступень каскада.
type ModelConfig struct {
	Path          string   `yaml:"path"`
	Backend       string   `yaml:"backend"`
	InputName     string   `yaml:"input_name"`
	OutputName    string   `yaml:"output_name"`
	Width         int      `yaml:"width"`
	Height        int      `yaml:"height"`
	Threshold     float64  `yaml:"threshold"`
	Key           []string `yaml:"key"`
	Accuracy      float64  `yaml:"accuracy"` // точность на тестовой выборке
	Logits        bool     `yaml:"logits"`
	Scale         float32  `yaml:"scale"`
	ChannelsFirst bool     `yaml:"channels_first"`
}

// InputShape форма входного тензора для одного изображения RGB.
func (m ModelConfig) InputShape() []int64 {
	if m.ChannelsFirst {
		return []int64{1, 3, int64(m.Height), int64(m.Width)}
	}
	return []int64{1, int64(m.Height), int64(m.Width), 3}
}

// OutputShape два класса на изображение.
func (m ModelConfig) OutputShape() []int64 {
	return []int64{1, 2}
}

type QualityConfig struct {
	Enabled               bool    `yaml:"enabled"`
	MinImageSide          int     `yaml:"min_image_side"`
	MinSharpnessEdgeRatio float64 `yaml:"min_sharpness_edge_ratio"`
	MaxOverexposedRatio   float64 `yaml:"max_overexposed_ratio"`
	MaxUnderexposedRatio  float64 `yaml:"max_underexposed_ratio"`
	MaxGlareRatio         float64 `yaml:"max_glare_ratio"`
}

type SegmentationConfig struct {
	Method         string        `yaml:"method"`
	MaxSide        int           `yaml:"max_side"`
	BlurKernel     int           `yaml:"blur_kernel"`
	Edges          bool          `yaml:"edges"`
	Invert         bool          `yaml:"invert"`
	CannyLow       float32       `yaml:"canny_low"`
	CannyHigh      float32       `yaml:"canny_high"`
	MinAreaRatio   float64       `yaml:"min_area_ratio"`
	MaxAreaRatio   float64       `yaml:"max_area_ratio"`
	MinAspectRatio float64       `yaml:"min_aspect_ratio"`
	MaxAspectRatio float64       `yaml:"max_aspect_ratio"`
	Rows           int           `yaml:"rows"`
	Cols           int           `yaml:"cols"`
	MinPlateRatio  float64       `yaml:"min_plate_ratio"`
	Quality        QualityConfig `yaml:"quality"`
}

type BreakpointConfig struct {
	Inhibited  string `yaml:"inhibited"`
	MaxReverts int    `yaml:"max_reverts"`
}

// Pipeline описание моделей, сегментации и правила точки перелома.
type Pipeline struct {
	FirstStage            ModelConfig        `yaml:"first_stage"`
	SecondStage           ModelConfig        `yaml:"second_stage"`
	AcceptanceThreshold   float64            `yaml:"acceptance_threshold"`
	SuppressAccuracyCheck bool               `yaml:"suppress_accuracy_check"`
	Segmentation          SegmentationConfig `yaml:"segmentation"`
	Breakpoint            BreakpointConfig   `yaml:"breakpoint"`
}

// DefaultPipeline значения по умолчанию; точность первой ступени не задана,
// её нужно указать явно или отключить проверку.
func DefaultPipeline() Pipeline {
	return Pipeline{
		FirstStage: ModelConfig{
			Path:      "models/growth_no_growth.onnx",
			Backend:   BackendONNX,
			Width:     160,
			Height:    160,
			Threshold: 0.5,
			Key:       []string{"no_growth", "growth"},
			Logits:    true,
			Scale:     1,
		},
		SecondStage: ModelConfig{
			Path:      "models/good_poor_growth.onnx",
			Backend:   BackendONNX,
			Width:     160,
			Height:    160,
			Threshold: 0.5,
			Key:       []string{"poor_growth", "good_growth"},
			Logits:    true,
			Scale:     1,
		},
		AcceptanceThreshold: 0.9,
		Segmentation: SegmentationConfig{
			Method:         "contour",
			MaxSide:        1600,
			BlurKernel:     5,
			CannyLow:       50,
			CannyHigh:      150,
			MinAreaRatio:   0.0002,
			MaxAreaRatio:   0.2,
			MinAspectRatio: 0.25,
			MaxAspectRatio: 4.0,
			Rows:           8,
			Cols:           12,
			MinPlateRatio:  0.2,
			Quality: QualityConfig{
				Enabled:               true,
				MinImageSide:          400,
				MinSharpnessEdgeRatio: 0.008,
				MaxOverexposedRatio:   0.35,
				MaxUnderexposedRatio:  0.45,
				MaxGlareRatio:         0.08,
			},
		},
		Breakpoint: BreakpointConfig{
			Inhibited: entity.NoGrowth.String(),
		},
	}
}

// LoadPipeline читает YAML поверх значений по умолчанию и проверяет результат.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: pipeline config %s", entity.ErrNotFound, path)
		}
		return nil, err
	}

	p := DefaultPipeline()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pipeline config %s: %w", path, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline config %s: %w", path, err)
	}

	return &p, nil
}

func (p Pipeline) Validate() error {
	if err := p.FirstStage.validate("first_stage"); err != nil {
		return err
	}
	if err := p.SecondStage.validate("second_stage"); err != nil {
		return err
	}
	if !(p.AcceptanceThreshold > 0 && p.AcceptanceThreshold <= 1) {
		return fmt.Errorf("acceptance_threshold must be in (0, 1], got %v", p.AcceptanceThreshold)
	}

	switch p.Segmentation.Method {
	case "contour", "grid":
	default:
		return fmt.Errorf("segmentation.method must be contour or grid, got %q", p.Segmentation.Method)
	}

	inhibited, err := entity.ParseGrowthLabel(p.Breakpoint.Inhibited)
	if err != nil {
		return fmt.Errorf("breakpoint.inhibited: %w", err)
	}
	if inhibited == entity.GoodGrowth {
		return errors.New("breakpoint.inhibited cannot be good_growth")
	}
	if p.Breakpoint.MaxReverts < 0 {
		return fmt.Errorf("breakpoint.max_reverts must not be negative, got %d", p.Breakpoint.MaxReverts)
	}

	return nil
}

func (m ModelConfig) validate(name string) error {
	if m.Path == "" {
		return fmt.Errorf("%s.path is required", name)
	}
	switch m.Backend {
	case BackendONNX, BackendTFLite:
	default:
		return fmt.Errorf("%s.backend must be onnx or tflite, got %q", name, m.Backend)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%s: width and height must be positive, got %dx%d", name, m.Width, m.Height)
	}
	if math.IsNaN(m.Threshold) || m.Threshold < 0 || m.Threshold > 1 {
		return fmt.Errorf("%s.threshold must be in [0, 1], got %v", name, m.Threshold)
	}
	if len(m.Key) != 2 || m.Key[0] == "" || m.Key[1] == "" {
		return fmt.Errorf("%s.key must name exactly two classes", name)
	}
	if m.Accuracy < 0 || m.Accuracy > 1 {
		return fmt.Errorf("%s.accuracy must be in [0, 1], got %v", name, m.Accuracy)
	}
	if m.Scale < 0 {
		return fmt.Errorf("%s.scale must not be negative, got %v", name, m.Scale)
	}
	return nil
}
