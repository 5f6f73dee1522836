package models

import "time"

// CreatedAtLayout is the ISO-8601 form used for createdAt; it sorts lexicographically.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// TodoItem represents a todo item owned by a single user.
type TodoItem struct {
	UserID        string `json:"userId" dynamodbav:"userId"`
	TodoID        string `json:"todoId" dynamodbav:"todoId"`
	CreatedAt     string `json:"createdAt" dynamodbav:"createdAt"`
	Name          string `json:"name" dynamodbav:"name"`
	DueDate       string `json:"dueDate,omitempty" dynamodbav:"dueDate,omitempty"`
	Done          bool   `json:"done" dynamodbav:"done"`
	AttachmentURL string `json:"attachmentUrl,omitempty" dynamodbav:"attachmentUrl,omitempty"`
}

// CreateTodoRequest is the body of a create call.
type CreateTodoRequest struct {
	Name    string `json:"name" binding:"required"`
	DueDate string `json:"dueDate"`
}

// UpdateTodoRequest carries the three mutable fields. All of them are rewritten on update.
type UpdateTodoRequest struct {
	Name    string `json:"name" binding:"required"`
	DueDate string `json:"dueDate"`
	Done    *bool  `json:"done" binding:"required"`
}

// IsDone reports the requested done flag; a missing flag means false.
func (r UpdateTodoRequest) IsDone() bool {
	return r.Done != nil && *r.Done
}

// Event types published after a successful mutation.
const (
	EventTodoCreated         = "todo.created"
	EventTodoUpdated         = "todo.updated"
	EventTodoDeleted         = "todo.deleted"
	EventAttachmentRequested = "attachment.requested"
	EventAttachmentOrphaned  = "attachment.orphaned"
)

// TodoEvent is the message payload for Kafka.
type TodoEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	TodoID     string    `json:"todo_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
