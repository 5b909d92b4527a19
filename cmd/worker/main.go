// Command worker consumes enrichment events from Kafka and applies them to
// the profile and NLP collaborators.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"migratio/internal/assessment/bootstrap"
	"migratio/internal/assessment/enrichment"
	"migratio/internal/platform/config"
	"migratio/internal/platform/httpserver"
	"migratio/internal/platform/kafka"
	"migratio/internal/platform/logger"
	"migratio/internal/platform/tracing"
)

const topicPartitions = 6

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format).With("component", "enrichment-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("worker requires MIGRATIO_KAFKA_BROKERS")
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown failed", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := kafka.NewConsumer(cfg.Kafka)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, topicPartitions); err != nil {
		return err
	}

	collab := bootstrap.NewCollaborators(cfg.Services, log)
	consumer := enrichment.NewConsumer(client,
		enrichment.NewHandler(collab.Profiles, collab.Nlp, cfg.Enrichment.Timeout),
		enrichment.WithConsumerLogger(log),
		enrichment.WithConsumerMetrics(enrichment.NewMetrics(reg)),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := httpserver.New(cfg.WorkerAddr, mux)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("consuming enrichment events",
		"topic", cfg.Kafka.Topic,
		"group", cfg.Kafka.Group,
		"metrics_addr", cfg.WorkerAddr,
	)
	return consumer.Run(ctx)
}
