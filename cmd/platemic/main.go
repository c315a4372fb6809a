package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agar-mic/config"
	app "agar-mic/internal/application"
	"agar-mic/internal/container"
	"agar-mic/internal/domain/entity"
	"agar-mic/internal/infrastructure/imagefs"
	"agar-mic/internal/infrastructure/report"
	"agar-mic/internal/infrastructure/storage"
)

func main() {
	dir := flag.String("dir", "", "directory with plate photos named by concentration (e.g. 0.125.jpg)")
	drug := flag.String("drug", "", "drug name")
	pipelinePath := flag.String("config", "", "pipeline YAML (default: PIPELINE_CONFIG or pipeline.yaml)")
	out := flag.String("out", "", "write YAML report to this path")
	show := flag.String("show", "", "print a previously written report and exit")
	flag.Parse()

	if *show != "" {
		if err := report.Show(*show, os.Stdout); err != nil {
			log.Fatalf("Failed to show report: %v", err)
		}
		return
	}

	if *dir == "" || *drug == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *pipelinePath != "" {
		cfg.PipelinePath = *pipelinePath
	}

	pipeline, err := config.LoadPipeline(cfg.PipelinePath)
	if err != nil {
		log.Fatalf("Failed to load pipeline: %v", err)
	}

	files, err := imagefs.ScanSeries(*dir)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", *dir, err)
	}
	if len(files) == 0 {
		log.Fatalf("No plate photos in %s", *dir)
	}

	appContainer, err := container.New(cfg, pipeline, storage.NewMemorySessionRepository())
	if err != nil {
		log.Fatalf("Failed to build services: %v", err)
	}
	defer appContainer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appContainer, *drug, files, *out); err != nil {
		log.Printf("Error: %v", err)
		appContainer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, c *container.Container, drug string, files []imagefs.PlateFile, out string) error {
	photos := make([]app.PlatePhoto, len(files))
	for i, f := range files {
		photos[i] = app.PlatePhoto{Concentration: f.Concentration, Source: f.Path}
	}

	log.Printf("Evaluating %d plates for %s", len(photos), drug)
	series, err := c.SeriesService.Evaluate(ctx, drug, photos)
	if err != nil {
		return err
	}
	for _, e := range series.Missing() {
		log.Printf("Plate %s (%v): %v", e.Source, e.Concentration, e.Err)
	}

	var resultPtr *entity.MICResult
	result, resolveErr := c.Resolver.Resolve(series)
	if resolveErr == nil {
		resultPtr = &result
	}

	positions, err := c.Resolver.ResolvePositions(series)
	if err != nil && !errors.Is(err, entity.ErrRegionMismatch) && !errors.Is(err, entity.ErrIncompleteSeries) {
		return err
	}

	r := report.New(series, resultPtr, positions, resolveErr)
	fmt.Println(r.Summary())

	if out != "" {
		if err := report.Write(r, out); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Printf("Report written to %s", out)
	}

	return resolveErr
}
