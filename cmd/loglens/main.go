package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kondababu77/loglens/internal/config"
	"github.com/kondababu77/loglens/internal/engine"
	"github.com/kondababu77/loglens/internal/engine/decoder"
	"github.com/kondababu77/loglens/internal/engine/extract"
	"github.com/kondababu77/loglens/internal/engine/learning"
	"github.com/kondababu77/loglens/internal/engine/threshold"
	"github.com/kondababu77/loglens/internal/logging"
	"github.com/kondababu77/loglens/internal/output"
	outfile "github.com/kondababu77/loglens/internal/output/file"
	"github.com/kondababu77/loglens/internal/output/stdout"
	"github.com/kondababu77/loglens/internal/output/webhook"
	"github.com/kondababu77/loglens/internal/pipeline"
	"github.com/kondababu77/loglens/internal/source"
	"github.com/kondababu77/loglens/internal/telemetry"

	// Register source implementations.
	_ "github.com/kondababu77/loglens/internal/source/file"
	_ "github.com/kondababu77/loglens/internal/source/httpapi"
	_ "github.com/kondababu77/loglens/internal/source/stdin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logging.Init(cfg.Output.Format == "stdout", logging.ParseLevel(cfg.Logging.Level))

	// Initialize the adaptive core.
	opt, err := threshold.New(cfg.ThresholdConfig())
	if err != nil {
		log.Fatalf("failed to create optimizer: %v", err)
	}
	lrn, err := learning.New(cfg.LearningConfig())
	if err != nil {
		log.Fatalf("failed to create learning engine: %v", err)
	}
	dec := decoder.New(cfg.Decoder.MaxInputBytes)

	// Optional Prometheus exposition.
	var tel *telemetry.Metrics
	if cfg.Telemetry.Addr != "" {
		reg := prometheus.NewRegistry()
		tel = telemetry.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.Telemetry.Addr, mux); err != nil {
				slog.Error("metrics listener failed", "addr", cfg.Telemetry.Addr, "error", err)
			}
		}()
	}

	eng := engine.New(dec, opt, lrn, extract.New(), tel)

	out, err := buildOutput(cfg.Output)
	if err != nil {
		log.Fatalf("failed to create output: %v", err)
	}

	// Resolve source.
	ctor, err := source.Get(cfg.Source.Provider)
	if err != nil {
		log.Fatalf("failed to get source: %v", err)
	}
	src := ctor()

	// Build pipeline.
	p := pipeline.New(src, eng, out)
	defer p.Close()

	// Set up graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		cancel()
	}()

	srcCfg := source.Config{
		Provider: cfg.Source.Provider,
		Paths:    os.Args[1:],
		Extra: map[string]string{
			"url":           cfg.Source.URL,
			"token":         cfg.Source.Token,
			"poll_interval": cfg.Source.PollInterval,
		},
	}

	slog.Info("starting", "source", cfg.Source.Provider, "output", cfg.Output.Format)
	if err := p.Run(ctx, srcCfg); err != nil && err != context.Canceled {
		log.Fatalf("pipeline error: %v", err)
	}
}

func buildOutput(cfg config.OutputConfig) (output.Output, error) {
	switch cfg.Format {
	case "file":
		return outfile.New(cfg.Path)
	case "webhook":
		return webhook.New(cfg.WebhookURL), nil
	default:
		return stdout.New(cfg.Pretty), nil
	}
}
