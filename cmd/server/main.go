package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/smartobjects/internal/api"
	"github.com/gyaneshwarpardhi/smartobjects/internal/config"
	"github.com/gyaneshwarpardhi/smartobjects/internal/ingest"
	"github.com/gyaneshwarpardhi/smartobjects/internal/mqttsource"
	"github.com/gyaneshwarpardhi/smartobjects/internal/pipeline"
	"github.com/gyaneshwarpardhi/smartobjects/internal/sink"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides server.addr)")
	cfgPath := flag.String("config", "configs/gateway.yaml", "Path to gateway YAML config")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}
	level.Set(parseLevel(cfg.LogLevel))
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// ── Sink ─────────────────────────────────────────────────────────────────
	var out sink.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		out = sink.NewKafka(cfg.Kafka.Brokers)
		slog.Info("kafka sink configured", "brokers", strings.Join(cfg.Kafka.Brokers, ","))
	} else {
		out = sink.NewMemory()
		slog.Warn("no kafka brokers configured; records are kept in memory")
	}
	defer out.Close()

	// ── Pipeline ─────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := pipeline.New(ctx, out, cfg.Pipeline)
	ing := ingest.New(pipe, cfg.Kafka)
	handler := api.New(ing, pipe, cfg.Server.MaxBatchSize)

	// ── Hot-reload watcher ───────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		level.Set(parseLevel(newCfg.LogLevel))
		handler.SetMaxBatchSize(newCfg.Server.MaxBatchSize)
		slog.Info("config hot-reloaded", "log_level", newCfg.LogLevel, "max_batch_size", newCfg.Server.MaxBatchSize)
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── MQTT source ──────────────────────────────────────────────────────────
	if cfg.MQTT.BrokerURL != "" {
		client := mqttsource.NewClient(cfg.MQTT, ing)
		go func() {
			if err := mqttsource.ConnectWithBackoff(ctx, client, time.Second, 30*time.Second); err != nil {
				slog.Warn("mqtt source stopped before connecting", "err", err)
			}
		}()
		defer client.Disconnect(250)
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutMs) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutMs) * time.Millisecond,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	pipe.Shutdown() // publish what is already queued
	cancel()
	slog.Info("goodbye")
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}
