package container

import (
	"errors"
	"fmt"
	"log"

	"agar-mic/config"
	app "agar-mic/internal/application"
	"agar-mic/internal/domain/entity"
	"agar-mic/internal/domain/port"
	"agar-mic/internal/infrastructure/imagefs"
	"agar-mic/internal/infrastructure/onnx"
	"agar-mic/internal/infrastructure/tflite"
	"agar-mic/internal/infrastructure/vision"
)

// Predictors обученные модели обеих ступеней каскада.
type Predictors struct {
	First  port.Predictor
	Second port.Predictor
}

type Container struct {
	SessionService        *app.SessionService
	PlateService          *app.PlateService
	SeriesService         *app.SeriesService
	SusceptibilityService *app.SusceptibilityService
	Resolver              *app.MICResolver
	Images                *imagefs.Loader

	closers []func()
}

// New загружает модели по конфигурации и собирает сервисы.
func New(cfg *config.Config, pipeline *config.Pipeline, repo port.SessionRepository) (*Container, error) {
	var (
		runtime *onnx.Runtime
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	load := func(m config.ModelConfig) (port.Predictor, error) {
		switch m.Backend {
		case config.BackendTFLite:
			p, err := tflite.Load(m.Path, tflite.Options{Threads: cfg.Workers})
			if err != nil {
				return nil, err
			}
			closers = append(closers, p.Close)
			return p, nil
		case config.BackendONNX:
			if runtime == nil {
				rt, err := onnx.NewRuntime(cfg.ONNXRuntimeLib)
				if err != nil {
					return nil, err
				}
				runtime = rt
				closers = append(closers, rt.Close)
			}
			return runtime.Load(onnx.ModelSpec{
				Path:        m.Path,
				InputName:   m.InputName,
				OutputName:  m.OutputName,
				InputShape:  m.InputShape(),
				OutputShape: m.OutputShape(),
			})
		default:
			return nil, fmt.Errorf("unknown model backend %q", m.Backend)
		}
	}

	first, err := load(pipeline.FirstStage)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("load first stage %s: %w", pipeline.FirstStage.Path, err)
	}
	second, err := load(pipeline.SecondStage)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("load second stage %s: %w", pipeline.SecondStage.Path, err)
	}
	log.Printf("Models loaded: %s (%s), %s (%s)",
		pipeline.FirstStage.Path, pipeline.FirstStage.Backend,
		pipeline.SecondStage.Path, pipeline.SecondStage.Backend)

	c, err := Build(pipeline, cfg.Workers, Predictors{First: first, Second: second}, repo)
	if err != nil {
		closeAll()
		return nil, err
	}
	c.closers = closers
	return c, nil
}

// Build собирает сервисы поверх готовых моделей.
func Build(pipeline *config.Pipeline, workers int, predictors Predictors, repo port.SessionRepository) (*Container, error) {
	if pipeline == nil {
		return nil, errors.New("pipeline config is required")
	}
	if repo == nil {
		return nil, errors.New("session repository is required")
	}

	first, err := app.NewBinaryClassifier(predictors.First, classifierConfig(pipeline.FirstStage))
	if err != nil {
		return nil, fmt.Errorf("first stage: %w", err)
	}
	second, err := app.NewBinaryClassifier(predictors.Second, classifierConfig(pipeline.SecondStage))
	if err != nil {
		return nil, fmt.Errorf("second stage: %w", err)
	}

	cascade, err := app.NewCascadeClassifier(first, second, app.CascadeConfig{
		FirstStageAccuracy:    pipeline.FirstStage.Accuracy,
		AcceptanceThreshold:   pipeline.AcceptanceThreshold,
		SuppressAccuracyCheck: pipeline.SuppressAccuracyCheck,
	})
	if err != nil {
		return nil, err
	}
	if pipeline.SuppressAccuracyCheck {
		log.Printf("First stage accuracy check is suppressed (declared %.3f)", pipeline.FirstStage.Accuracy)
	}

	segmenter, err := vision.NewSegmenter(segmenterParams(pipeline.Segmentation))
	if err != nil {
		return nil, fmt.Errorf("segmentation: %w", err)
	}

	inhibited, err := entity.ParseGrowthLabel(pipeline.Breakpoint.Inhibited)
	if err != nil {
		return nil, fmt.Errorf("breakpoint: %w", err)
	}
	resolver, err := app.NewMICResolver(app.BreakpointPolicy{
		Inhibited:  inhibited,
		MaxReverts: pipeline.Breakpoint.MaxReverts,
	})
	if err != nil {
		return nil, fmt.Errorf("breakpoint: %w", err)
	}

	images := imagefs.NewLoader()
	sessionService := app.NewSessionService(repo)
	plateService := app.NewPlateService(segmenter, cascade, workers)
	seriesService := app.NewSeriesService(plateService, images, workers)
	susceptibilityService := app.NewSusceptibilityService(sessionService, plateService, images, vision.NewHighlighter(), resolver)

	return &Container{
		SessionService:        sessionService,
		PlateService:          plateService,
		SeriesService:         seriesService,
		SusceptibilityService: susceptibilityService,
		Resolver:              resolver,
		Images:                images,
	}, nil
}

// Close освобождает модели и окружение рантайма.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func classifierConfig(m config.ModelConfig) app.BinaryClassifierConfig {
	var key [2]string
	copy(key[:], m.Key)
	return app.BinaryClassifierConfig{
		Width:         m.Width,
		Height:        m.Height,
		Threshold:     m.Threshold,
		Key:           key,
		Logits:        m.Logits,
		Scale:         m.Scale,
		ChannelsFirst: m.ChannelsFirst,
	}
}

func segmenterParams(s config.SegmentationConfig) vision.SegmenterParams {
	return vision.SegmenterParams{
		Method:         vision.Method(s.Method),
		MaxSide:        s.MaxSide,
		BlurKernel:     s.BlurKernel,
		Edges:          s.Edges,
		Invert:         s.Invert,
		CannyLow:       s.CannyLow,
		CannyHigh:      s.CannyHigh,
		MinAreaRatio:   s.MinAreaRatio,
		MaxAreaRatio:   s.MaxAreaRatio,
		MinAspectRatio: s.MinAspectRatio,
		MaxAspectRatio: s.MaxAspectRatio,
		Rows:           s.Rows,
		Cols:           s.Cols,
		MinPlateRatio:  s.MinPlateRatio,
		Quality: vision.QualityParams{
			Enabled:               s.Quality.Enabled,
			MinImageSide:          s.Quality.MinImageSide,
			MinSharpnessEdgeRatio: s.Quality.MinSharpnessEdgeRatio,
			MaxOverexposedRatio:   s.Quality.MaxOverexposedRatio,
			MaxUnderexposedRatio:  s.Quality.MaxUnderexposedRatio,
			MaxGlareRatio:         s.Quality.MaxGlareRatio,
		},
	}
}
