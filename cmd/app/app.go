package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vietanh2810/eventpass-api/internal/api"
	"github.com/vietanh2810/eventpass-api/internal/config"
	"github.com/vietanh2810/eventpass-api/internal/db"
	"github.com/vietanh2810/eventpass-api/internal/feed"
	"github.com/vietanh2810/eventpass-api/internal/logger"
	"github.com/vietanh2810/eventpass-api/internal/mq"
	"github.com/vietanh2810/eventpass-api/internal/obs"
)

const shutdownTimeout = 10 * time.Second

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	shutdownTracer, err := obs.InitTracer(conf.Otel, conf.API.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var database *gorm.DB
	if dbURL != "" {
		database, err = db.OpenPostgresWithURL(dbURL)
	} else {
		database, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	scanFeed, err := openFeed(conf)
	if err != nil {
		return fmt.Errorf("failed to initialize scan feed -> %w", err)
	}

	var publisher interface {
		PublishJSON(ctx context.Context, key string, v any) error
		Close() error
	} = mq.NoopPublisher{}
	if conf.RabbitMQ.URL != "" {
		publisher, err = mq.NewPublisher(conf.RabbitMQ.URL, conf.RabbitMQ.Exchange)
		if err != nil {
			return fmt.Errorf("failed to initialize publisher -> %w", err)
		}
	} else {
		zap.L().Info("rabbitmq not configured, domain events are dropped")
	}
	defer publisher.Close()

	s, err := api.NewServer(conf, database, scanFeed, publisher)
	if err != nil {
		return fmt.Errorf("failed to initialize server -> %w", err)
	}

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		zap.L().Error("tracer shutdown", zap.Error(err))
	}

	return nil
}

func openFeed(conf *config.AppConfig) (api.ScanFeed, error) {
	if conf.Redis.Addr == "" {
		zap.L().Info("redis not configured, live scan feed disabled")
		return feed.Noop{}, nil
	}

	rdb, err := feed.Connect(conf.Redis)
	if err != nil {
		return nil, err
	}

	return feed.NewRedisFeed(rdb, conf.Checkin.FeedCapacity), nil
}
