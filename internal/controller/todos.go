package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/A-San96/c4-final-project/internal/attachment"
	"github.com/A-San96/c4-final-project/internal/middleware"
	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/internal/repository"
	"github.com/A-San96/c4-final-project/internal/service"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

// Todos is the business logic the handlers call.
type Todos interface {
	ListTodos(ctx context.Context, userID string) ([]models.TodoItem, error)
	CreateTodo(ctx context.Context, req models.CreateTodoRequest, userID string) (*models.TodoItem, error)
	UpdateTodo(ctx context.Context, req models.UpdateTodoRequest, todoID, userID string) (*models.TodoItem, error)
	DeleteTodo(ctx context.Context, todoID, userID string) error
	RequestUploadURL(ctx context.Context, userID, todoID string) (string, error)
}

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TodoController serves the todo endpoints.
type TodoController struct {
	todos  Todos
	checks map[string]Pinger
}

// NewTodoController creates the controller. checks are probed by Ready, keyed by name.
func NewTodoController(todos Todos, checks map[string]Pinger) *TodoController {
	return &TodoController{todos: todos, checks: checks}
}

// GetTodos returns the caller's todos as a JSON array, newest first.
func (h *TodoController) GetTodos(c *gin.Context) {
	ctx := c.Request.Context()
	todos, err := h.todos.ListTodos(ctx, middleware.UserID(c))
	if err != nil {
		h.fail(c, "GetTodos", err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// CreateTodo creates a todo from {name, dueDate?} and returns it with 201.
func (h *TodoController) CreateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	var body models.CreateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	item, err := h.todos.CreateTodo(ctx, body, middleware.UserID(c))
	if err != nil {
		h.fail(c, "CreateTodo", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateTodo rewrites name, dueDate and done of the todo in the path.
func (h *TodoController) UpdateTodo(c *gin.Context) {
	ctx := c.Request.Context()
	todoID := c.Param("todoId")
	if todoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing todo id"})
		return
	}
	var body models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	item, err := h.todos.UpdateTodo(ctx, body, todoID, middleware.UserID(c))
	if err != nil {
		h.fail(c, "UpdateTodo", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteTodo deletes the todo in the path and answers 204.
func (h *TodoController) DeleteTodo(c *gin.Context) {
	ctx := c.Request.Context()
	todoID := c.Param("todoId")
	if todoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing todo id"})
		return
	}
	if err := h.todos.DeleteTodo(ctx, todoID, middleware.UserID(c)); err != nil {
		h.fail(c, "DeleteTodo", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateUploadURL returns {uploadUrl} for the todo in the path.
func (h *TodoController) GenerateUploadURL(c *gin.Context) {
	ctx := c.Request.Context()
	todoID := c.Param("todoId")
	if todoID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing todo id"})
		return
	}
	uploadURL, err := h.todos.RequestUploadURL(ctx, middleware.UserID(c), todoID)
	if err != nil {
		h.fail(c, "GenerateUploadURL", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL})
}

// Health returns 200 if the process is alive. Used by load balancers.
func (h *TodoController) Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Ready returns 200 if every configured dependency answers a ping.
func (h *TodoController) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.Warn(ctx, "Readiness check failed", "dependency", name, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": name + " unavailable"})
			return
		}
	}
	c.String(http.StatusOK, "OK")
}

func (h *TodoController) fail(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, repository.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
	case errors.Is(err, service.ErrInvalidTodo):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
	case errors.Is(err, service.ErrAttachmentsUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Attachments are not available"})
	case errors.Is(err, context.Canceled):
		logger.Debug(ctx, op+" canceled", "error", err)
		c.Status(499)
	case errors.Is(err, attachment.ErrBlobReference):
		logger.Error(ctx, op+" attachment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Attachment service failed"})
	default:
		logger.Error(ctx, op+" failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
