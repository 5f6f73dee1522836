package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/A-San96/c4-final-project/internal/models"
)

type memoryKey struct {
	userID string
	todoID string
}

// memoryEntry keeps the insertion sequence so same-millisecond creates still list newest first.
type memoryEntry struct {
	item models.TodoItem
	seq  uint64
}

// MemoryStore keeps todos in process. It backs STORE_DRIVER=memory and the handler tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[memoryKey]memoryEntry
	seq   uint64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[memoryKey]memoryEntry)}
}

// ListByUser returns the user's todos, newest first.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]models.TodoItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]memoryEntry, 0)
	for k, e := range s.items {
		if k.userID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].item.CreatedAt == entries[j].item.CreatedAt {
			return entries[i].seq > entries[j].seq
		}
		return entries[i].item.CreatedAt > entries[j].item.CreatedAt
	})
	todos := make([]models.TodoItem, 0, len(entries))
	for _, e := range entries {
		todos = append(todos, e.item)
	}
	return todos, nil
}

// Create stores the item, replacing any item with the same key.
func (s *MemoryStore) Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.items[memoryKey{item.UserID, item.TodoID}] = memoryEntry{item: *item, seq: s.seq}
	out := *item
	return &out, nil
}

// Update rewrites name, dueDate and done on an existing item.
func (s *MemoryStore) Update(ctx context.Context, userID, todoID string, req models.UpdateTodoRequest) (*models.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memoryKey{userID, todoID}
	e, ok := s.items[k]
	if !ok {
		return nil, ErrItemNotFound
	}
	e.item.Name = req.Name
	e.item.DueDate = req.DueDate
	e.item.Done = req.IsDone()
	s.items[k] = e
	out := e.item
	return &out, nil
}

// Delete removes the item and returns it as it was.
func (s *MemoryStore) Delete(ctx context.Context, userID, todoID string) (*models.TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memoryKey{userID, todoID}
	e, ok := s.items[k]
	if !ok {
		return nil, ErrItemNotFound
	}
	delete(s.items, k)
	return &e.item, nil
}

// AttachReference sets attachmentUrl on an existing item.
func (s *MemoryStore) AttachReference(ctx context.Context, userID, todoID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memoryKey{userID, todoID}
	e, ok := s.items[k]
	if !ok {
		return ErrItemNotFound
	}
	e.item.AttachmentURL = url
	s.items[k] = e
	return nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }
