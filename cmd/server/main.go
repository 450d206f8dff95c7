package main

import (
	"fmt"
	"log"

	"billscan/internal/budget"
	"billscan/internal/config"
	"billscan/internal/handler"
	"billscan/internal/llm/claude"
	"billscan/internal/llm/gemini"
	"billscan/internal/pipeline"
	"billscan/internal/port"
	"billscan/internal/router"
	s3storage "billscan/internal/storage/s3"
	"billscan/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// One governor per process: both AI stages draw from the same daily budget.
	governor := budget.NewGovernor(cfg.Budget.DailyLimitUSD)

	extractor := claude.NewExtractor(&cfg.Extractor)
	scorer := gemini.NewScorer(&cfg.Scorer)
	engine := validator.NewEngine()

	pipe := pipeline.New(
		governor,
		extractor,
		scorer,
		engine,
		budget.PricingTable{
			InputPerMillion:  cfg.Extractor.InputPerMillion,
			OutputPerMillion: cfg.Extractor.OutputPerMillion,
		},
		budget.PricingTable{
			InputPerMillion:  cfg.Scorer.InputPerMillion,
			OutputPerMillion: cfg.Scorer.OutputPerMillion,
		},
	)

	// Document archival is optional; without a bucket the pipeline result is
	// the only output.
	var storage port.ObjectStorage
	if cfg.S3.ArchiveEnabled() {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Printf("server: document archival enabled (bucket %s)", cfg.S3.Bucket)
	}

	analyzeH := handler.NewAnalyzeHandler(pipe, storage, &cfg.S3, &cfg.Upload)
	reportH := handler.NewReportHandler()
	healthH := handler.NewHealthHandler(governor)

	r := router.Setup(cfg, analyzeH, reportH, healthH)

	log.Printf("Server starting on %s (daily budget $%.2f)", cfg.Server.Port, cfg.Budget.DailyLimitUSD)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
