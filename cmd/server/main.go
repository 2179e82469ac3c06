package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vogiaan1904/repairhub-display/config"
	httpDelivery "github.com/vogiaan1904/repairhub-display/internal/delivery/http"
	kafkaDelivery "github.com/vogiaan1904/repairhub-display/internal/delivery/kafka"
	"github.com/vogiaan1904/repairhub-display/internal/infra/redis"
	repo "github.com/vogiaan1904/repairhub-display/internal/repository/redis"
	"github.com/vogiaan1904/repairhub-display/internal/service"
	pkgKafka "github.com/vogiaan1904/repairhub-display/pkg/kafka"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	contentRepo := repo.NewRedisContentRepository(redisCli, l)
	contentSvc := service.NewContentService(contentRepo, l)

	// Kafka consumer for campaign and slide admin events. Optional so the
	// service still runs standalone against plain HTTP administration.
	var cons kafkaDelivery.Consumer
	if cfg.Kafka.Enabled {
		kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			GroupID: cfg.Kafka.ConsumerGroupID,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
		}

		handler := kafkaDelivery.NewContentEventHandler(contentSvc, l)
		cons = kafkaDelivery.NewConsumer(kafkaConsGr, handler, l)
		if err := cons.Start(ctx); err != nil {
			l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
		}
	}

	h := httpDelivery.NewHTTPHandler(contentSvc, l)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      h.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-quit:
		case <-gCtx.Done():
			return gCtx.Err()
		}

		l.Info(ctx, "Server shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if cons != nil {
			if err := cons.Close(); err != nil {
				l.Errorf(ctx, "Failed to close Kafka consumer: %v", err)
			}
		}

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		l.Errorf(ctx, "Server error: %v", err)
	}

	l.Info(ctx, "Server exited")
}
