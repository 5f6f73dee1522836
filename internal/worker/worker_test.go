package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-San96/c4-final-project/internal/config"
	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/internal/testutil"
)

func payload(t *testing.T, eventType, userID, todoID string) []byte {
	t.Helper()
	b, err := json.Marshal(models.TodoEvent{Type: eventType, UserID: userID, TodoID: todoID, OccurredAt: time.Now()})
	require.NoError(t, err)
	return b
}

func TestHandleMessage_MutationsInvalidateCache(t *testing.T) {
	cache := testutil.NewMapCache()
	attachments := &testutil.FakeAttachments{}
	h := NewHandler(cache, attachments)
	ctx := context.Background()

	for _, typ := range []string{models.EventTodoCreated, models.EventTodoUpdated, models.EventTodoDeleted, models.EventAttachmentRequested} {
		require.NoError(t, h.HandleMessage(ctx, payload(t, typ, "alice", "t1")))
	}

	assert.Equal(t, []string{"alice", "alice", "alice", "alice"}, cache.Invalidated)
	assert.Empty(t, attachments.DeleteCalls())
}

func TestHandleMessage_OrphanedAttachmentDeleted(t *testing.T) {
	cache := testutil.NewMapCache()
	attachments := &testutil.FakeAttachments{}
	h := NewHandler(cache, attachments)

	require.NoError(t, h.HandleMessage(context.Background(), payload(t, models.EventAttachmentOrphaned, "alice", "t1")))

	assert.Equal(t, []string{"t1"}, attachments.DeleteCalls())
	assert.Empty(t, cache.Invalidated)
}

func TestHandleMessage_OrphanDeleteFails(t *testing.T) {
	attachments := &testutil.FakeAttachments{DeleteErr: errors.New("s3 down")}
	h := NewHandler(nil, attachments)

	err := h.HandleMessage(context.Background(), payload(t, models.EventAttachmentOrphaned, "alice", "t1"))

	assert.ErrorContains(t, err, "s3 down")
}

func TestHandleMessage_NilDependenciesAndUnknown(t *testing.T) {
	h := NewHandler(nil, nil)
	ctx := context.Background()

	assert.NoError(t, h.HandleMessage(ctx, payload(t, models.EventTodoCreated, "alice", "t1")))
	assert.NoError(t, h.HandleMessage(ctx, payload(t, models.EventAttachmentOrphaned, "alice", "t1")))
	assert.NoError(t, h.HandleMessage(ctx, payload(t, "todo.archived", "alice", "t1")))
	assert.Error(t, h.HandleMessage(ctx, []byte("not json")))
}

func TestRun_DisabledWithoutBrokers(t *testing.T) {
	// Returns immediately instead of blocking.
	Run(context.Background(), &config.Config{}, NewHandler(nil, nil))
}
