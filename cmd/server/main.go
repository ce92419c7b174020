package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"odin/api/httpserver"
	"odin/config"
	"odin/domain/lob"
	"odin/infra/journal"
	"odin/infra/kafka"
	"odin/infra/sequence"
	"odin/jobs/broadcaster"
	"odin/jobs/feed"
	"odin/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// ---------------- Config ----------------

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Journal ----------------

	jnl, err := journal.Open(cfg.Journal.Dir)
	if err != nil {
		logger.WithError(err).Fatal("journal init failed")
	}
	defer jnl.Close()

	// ---------------- Engine ----------------

	engine, err := lob.NewEngine(lob.Config{
		TickSize:  cfg.Engine.TickSize,
		MaxLevels: cfg.Engine.MaxLevels,
	}, lob.SystemClock{}, sequence.New(0))
	if err != nil {
		logger.WithError(err).Fatal("engine init failed")
	}

	// ---------------- Service ----------------

	svc := service.NewOrderService(engine, jnl, logger)

	// ---------------- Background jobs ----------------

	if cfg.Kafka.Enabled() {
		bc, err := broadcaster.New(jnl, cfg.Kafka.Brokers, cfg.Kafka.TradeTopic, cfg.Kafka.DrainInterval, logger)
		if err != nil {
			logger.WithError(err).Fatal("broadcaster init failed")
		}
		defer bc.Close()
		bc.Start(ctx)

		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.DepthTopic)
		defer producer.Close()
		feed.New(svc, producer, cfg.Kafka.DepthLevels, cfg.Kafka.DepthInterval, logger).Start(ctx)
	}

	// ---------------- HTTP ----------------

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           httpserver.New(svc, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("http shutdown failed")
		}
	}()

	logger.WithField("addr", cfg.HTTP.Addr()).Info("engine listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("http server exited")
	}
}
