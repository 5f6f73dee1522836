package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/A-San96/c4-final-project/internal/attachment"
	"github.com/A-San96/c4-final-project/internal/awsclient"
	"github.com/A-San96/c4-final-project/internal/cache"
	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/internal/controller"
	"github.com/A-San96/c4-final-project/internal/database"
	"github.com/A-San96/c4-final-project/internal/queue"
	"github.com/A-San96/c4-final-project/internal/repository"
	"github.com/A-San96/c4-final-project/internal/routes"
	"github.com/A-San96/c4-final-project/internal/service"
	"github.com/A-San96/c4-final-project/internal/worker"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

type store interface {
	service.TodoStore
	controller.Pinger
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", "error", err)
		os.Exit(1)
	}

	var sess *session.Session
	if cfg.StoreDriver == config.DriverDynamoDB || cfg.AttachmentBucket != "" {
		s, err := awsclient.NewSession(cfg)
		if err != nil {
			logger.Error(ctx, "AWS session failed", "error", err)
			os.Exit(1)
		}
		sess = s
	}

	todoStore, closeStore, err := openStore(ctx, cfg, sess)
	if err != nil {
		logger.Error(ctx, "Store not available; exiting", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer closeStore()

	checks := map[string]controller.Pinger{"store": todoStore}
	var opts []service.Option
	var invalidator worker.CacheInvalidator
	var deleter worker.AttachmentDeleter

	if cfg.AttachmentBucket != "" {
		attachments, err := attachment.NewS3Attachments(awsclient.S3(sess), cfg.AttachmentBucket, cfg.SignedURLExpiration)
		if err != nil {
			logger.Error(ctx, "Attachment store failed", "error", err)
			os.Exit(1)
		}
		opts = append(opts, service.WithAttachments(attachments))
		deleter = attachments
	} else {
		logger.Warn(ctx, "ATTACHMENT_S3_BUCKET not set; upload URLs disabled")
	}

	// The cache is optional; the service works without it.
	if cfg.CacheEnabled() {
		todoCache, err := cache.Connect(ctx, cfg)
		if err != nil {
			logger.Warn(ctx, "Redis cache unavailable; continuing without cache", "error", err)
		} else {
			defer todoCache.Close()
			opts = append(opts, service.WithCache(todoCache))
			invalidator = todoCache
			checks["redis"] = todoCache
		}
	}

	if cfg.EventsEnabled() {
		queue.EnsureTopic(ctx, cfg)
		publisher := queue.NewPublisher(ctx, cfg)
		defer publisher.Close()
		opts = append(opts, service.WithEvents(publisher))

		// Consumes todo events: invalidates caches and retries orphaned attachment deletes.
		go worker.Run(ctx, cfg, worker.NewHandler(invalidator, deleter))
	}

	todos := service.NewTodoService(todoStore, opts...)

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(cfg, controller.NewTodoController(todos, checks)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort, "store", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, sess *session.Session) (store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverDynamoDB:
		return repository.NewDynamoDBStore(awsclient.DynamoDB(sess), cfg.TodosTable, cfg.TodosCreatedAtIndex), func() {}, nil
	case config.DriverPostgres:
		db, err := database.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.NewPostgresStore(db), func() { db.Close() }, nil
	case config.DriverMemory:
		return repository.NewMemoryStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
