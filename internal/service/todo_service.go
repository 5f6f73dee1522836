package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

var (
	// ErrInvalidTodo is returned for requests that fail validation.
	ErrInvalidTodo = errors.New("invalid todo")
	// ErrAttachmentsUnavailable is returned when no attachment bucket is configured.
	ErrAttachmentsUnavailable = errors.New("attachments are not configured")
)

// TodoStore is the item store keyed by (userID, todoID).
type TodoStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.TodoItem, error)
	Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error)
	Update(ctx context.Context, userID, todoID string, req models.UpdateTodoRequest) (*models.TodoItem, error)
	Delete(ctx context.Context, userID, todoID string) (*models.TodoItem, error)
	AttachReference(ctx context.Context, userID, todoID, url string) error
}

// Attachments generates references to the blob addressed by a todo id.
type Attachments interface {
	UploadURL(ctx context.Context, todoID string) (string, error)
	ReadURL(todoID string) string
	Delete(ctx context.Context, todoID string) error
}

// ListCache caches a user's list. Implementations never fail the caller.
type ListCache interface {
	GetTodos(ctx context.Context, userID string) ([]models.TodoItem, bool)
	SetTodos(ctx context.Context, userID string, todos []models.TodoItem)
	InvalidateTodos(ctx context.Context, userID string)
}

// EventPublisher publishes todo events.
type EventPublisher interface {
	PublishTodoEvent(ctx context.Context, event *models.TodoEvent) error
}

// Option configures optional collaborators of a TodoService.
type Option func(*TodoService)

// WithCache enables the list cache.
func WithCache(c ListCache) Option {
	return func(s *TodoService) { s.cache = c }
}

// WithEvents enables event publishing.
func WithEvents(p EventPublisher) Option {
	return func(s *TodoService) { s.events = p }
}

// WithAttachments enables the upload-URL flow and blob cleanup on delete.
func WithAttachments(a Attachments) Option {
	return func(s *TodoService) { s.attachments = a }
}

// TodoService holds the todo business logic.
type TodoService struct {
	store       TodoStore
	attachments Attachments
	cache       ListCache
	events      EventPublisher

	listGroup singleflight.Group
	now       func() time.Time
	newID     func() string
}

// NewTodoService creates a TodoService on the given store.
func NewTodoService(store TodoStore, opts ...Option) *TodoService {
	s := &TodoService{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTodos returns the user's todos, newest first.
func (s *TodoService) ListTodos(ctx context.Context, userID string) ([]models.TodoItem, error) {
	if s.cache != nil {
		if todos, ok := s.cache.GetTodos(ctx, userID); ok {
			return todos, nil
		}
	}
	v, err, _ := s.listGroup.Do(userID, func() (any, error) {
		// Detached so one caller going away does not fail the others sharing this call.
		shared := context.WithoutCancel(ctx)
		todos, err := s.store.ListByUser(shared, userID)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetTodos(shared, userID, todos)
		}
		return todos, nil
	})
	if err != nil {
		return nil, err
	}
	// Callers sharing the call each get their own slice.
	return slices.Clone(v.([]models.TodoItem)), nil
}

// CreateTodo assigns an id and creation time and stores a new, not-done todo.
func (s *TodoService) CreateTodo(ctx context.Context, req models.CreateTodoRequest, userID string) (*models.TodoItem, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidTodo
	}
	item := &models.TodoItem{
		UserID:    userID,
		TodoID:    s.newID(),
		CreatedAt: s.now().UTC().Format(models.CreatedAtLayout),
		Name:      req.Name,
		DueDate:   req.DueDate,
		Done:      false,
	}
	created, err := s.store.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.EventTodoCreated, userID, created.TodoID)
	return created, nil
}

// UpdateTodo rewrites name, dueDate and done of an existing todo.
func (s *TodoService) UpdateTodo(ctx context.Context, req models.UpdateTodoRequest, todoID, userID string) (*models.TodoItem, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidTodo
	}
	updated, err := s.store.Update(ctx, userID, todoID, req)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, models.EventTodoUpdated, userID, todoID)
	return updated, nil
}

// DeleteTodo removes the todo, then its attachment if it ever had one.
// A failed attachment delete is logged and reported as an orphan event; the todo stays deleted.
func (s *TodoService) DeleteTodo(ctx context.Context, todoID, userID string) error {
	prior, err := s.store.Delete(ctx, userID, todoID)
	if err != nil {
		return err
	}
	s.afterMutation(ctx, models.EventTodoDeleted, userID, todoID)

	if prior.AttachmentURL == "" {
		return nil
	}
	if s.attachments == nil {
		logger.Warn(ctx, "Attachment left behind: attachments not configured", "todo_id", todoID)
		s.publish(ctx, models.EventAttachmentOrphaned, userID, todoID)
		return nil
	}
	if err := s.attachments.Delete(ctx, todoID); err != nil {
		logger.Warn(ctx, "Attachment delete failed after todo delete", "todo_id", todoID, "error", err)
		s.publish(ctx, models.EventAttachmentOrphaned, userID, todoID)
	}
	return nil
}

// RequestUploadURL returns a presigned upload URL and records the attachment's read URL on the todo.
func (s *TodoService) RequestUploadURL(ctx context.Context, userID, todoID string) (string, error) {
	if s.attachments == nil {
		return "", ErrAttachmentsUnavailable
	}
	uploadURL, err := s.attachments.UploadURL(ctx, todoID)
	if err != nil {
		return "", err
	}
	if err := s.store.AttachReference(ctx, userID, todoID, s.attachments.ReadURL(todoID)); err != nil {
		return "", err
	}
	s.afterMutation(ctx, models.EventAttachmentRequested, userID, todoID)
	return uploadURL, nil
}

func (s *TodoService) afterMutation(ctx context.Context, eventType, userID, todoID string) {
	if s.cache != nil {
		s.cache.InvalidateTodos(ctx, userID)
	}
	s.publish(ctx, eventType, userID, todoID)
}

func (s *TodoService) publish(ctx context.Context, eventType, userID, todoID string) {
	if s.events == nil {
		return
	}
	event := &models.TodoEvent{
		Type:       eventType,
		UserID:     userID,
		TodoID:     todoID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.PublishTodoEvent(ctx, event); err != nil {
		logger.Error(ctx, "Publish todo event failed", "error", err, "type", eventType, "todo_id", todoID)
	}
}
