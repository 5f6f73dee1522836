// Package testutil holds fakes shared by the service, controller and worker tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/A-San96/c4-final-project/internal/models"
)

// FakeAttachments mimics the S3 generator: one object per todo id, a fresh signature per upload URL.
type FakeAttachments struct {
	mu        sync.Mutex
	signCount int
	Deleted   []string
	UploadErr error
	DeleteErr error
}

func (f *FakeAttachments) UploadURL(ctx context.Context, todoID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return "", f.UploadErr
	}
	f.signCount++
	return fmt.Sprintf("%s?X-Amz-Signature=sig%d", f.ReadURL(todoID), f.signCount), nil
}

func (f *FakeAttachments) ReadURL(todoID string) string {
	return "https://attachments.s3.amazonaws.com/" + todoID
}

func (f *FakeAttachments) Delete(ctx context.Context, todoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, todoID)
	return f.DeleteErr
}

// DeleteCalls returns a copy of the deleted todo ids.
func (f *FakeAttachments) DeleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Deleted...)
}

// RecordingPublisher keeps every published event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []models.TodoEvent
	Err    error
}

func (p *RecordingPublisher) PublishTodoEvent(ctx context.Context, event *models.TodoEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, *event)
	return p.Err
}

// Types returns the published event types in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Type)
	}
	return out
}

// MapCache is an in-process list cache.
type MapCache struct {
	mu          sync.Mutex
	Lists       map[string][]models.TodoItem
	Invalidated []string
}

func NewMapCache() *MapCache {
	return &MapCache{Lists: make(map[string][]models.TodoItem)}
}

func (c *MapCache) GetTodos(ctx context.Context, userID string) ([]models.TodoItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	todos, ok := c.Lists[userID]
	return todos, ok
}

func (c *MapCache) SetTodos(ctx context.Context, userID string, todos []models.TodoItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Lists[userID] = todos
}

func (c *MapCache) InvalidateTodos(ctx context.Context, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Lists, userID)
	c.Invalidated = append(c.Invalidated, userID)
}
