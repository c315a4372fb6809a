package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	PipelinePath   string
	ONNXRuntimeLib string
	Workers        int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		PipelinePath:   os.Getenv("PIPELINE_CONFIG"),
		ONNXRuntimeLib: os.Getenv("ONNXRUNTIME_LIB"),
		Workers:        runtime.NumCPU(),
	}

	if cfg.PipelinePath == "" {
		cfg.PipelinePath = "pipeline.yaml"
	}

	if v := os.Getenv("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("WORKERS must be a positive integer, got %q", v)
		}
		cfg.Workers = n
	}

	return cfg, nil
}
