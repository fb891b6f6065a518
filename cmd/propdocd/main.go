package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propdoc/internal/async"
	"propdoc/internal/common"
	"propdoc/internal/export"
	"propdoc/internal/llm/grok"
	"propdoc/internal/pipeline"
	"propdoc/internal/repository"
	"propdoc/internal/server"
	"propdoc/internal/textacquire"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, repository.Config{
		Path:        cfg.Database.Path,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	docs := repository.NewDocumentRepository(db, logger)
	records := repository.NewExtractionRecordRepository(db, logger)

	extractor := grok.NewClient(grok.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	proc := pipeline.NewProcessor(
		logger,
		pipeline.Config{
			MaxPromptChars: cfg.Pipeline.MaxPromptChars,
			ExtractTimeout: cfg.LLM.Timeout,
		},
		textacquire.NewAcquirer(logger),
		extractor,
		docs,
		records,
	)

	queue := async.NewQueue(proc, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithRunTimeout(cfg.Pipeline.RunTimeout),
	)

	exporter := export.NewService(docs, records, logger)

	api := server.New(server.Config{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		TempDir:        cfg.Server.TempDir,
	}, docs, records, queue, exporter, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
