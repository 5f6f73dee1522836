package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

// CacheInvalidator drops a user's cached list.
type CacheInvalidator interface {
	InvalidateTodos(ctx context.Context, userID string)
}

// AttachmentDeleter deletes the blob of a todo.
type AttachmentDeleter interface {
	Delete(ctx context.Context, todoID string) error
}

// Handler applies todo events: mutations drop the user's cached list and
// orphaned attachments are deleted again. Either dependency may be nil.
type Handler struct {
	cache       CacheInvalidator
	attachments AttachmentDeleter
}

// NewHandler creates an event handler.
func NewHandler(cache CacheInvalidator, attachments AttachmentDeleter) *Handler {
	return &Handler{cache: cache, attachments: attachments}
}

// HandleMessage decodes and applies one event payload.
func (h *Handler) HandleMessage(ctx context.Context, payload []byte) error {
	var event models.TodoEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode todo event: %w", err)
	}
	switch event.Type {
	case models.EventTodoCreated, models.EventTodoUpdated, models.EventTodoDeleted, models.EventAttachmentRequested:
		if h.cache != nil {
			h.cache.InvalidateTodos(ctx, event.UserID)
		}
	case models.EventAttachmentOrphaned:
		if h.attachments == nil {
			logger.Warn(ctx, "Orphaned attachment ignored: attachments not configured", "todo_id", event.TodoID)
			return nil
		}
		if err := h.attachments.Delete(ctx, event.TodoID); err != nil {
			return err
		}
		logger.Info(ctx, "Orphaned attachment deleted", "todo_id", event.TodoID)
	default:
		logger.Debug(ctx, "Unknown todo event ignored", "type", event.Type)
	}
	return nil
}

// Run starts the Kafka consumer and blocks until ctx is done.
// One consumer per process; scale by running more replicas (consumer group shares partitions).
func Run(ctx context.Context, cfg *config.Config, h *Handler) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  "todo-workers",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	logger.Info(ctx, "Kafka consumer started", "topic", cfg.KafkaTopic)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := h.HandleMessage(ctx, msg.Value); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
	}
}
