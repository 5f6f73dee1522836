package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/A-San96/c4-final-project/internal/models"
	"github.com/A-San96/c4-final-project/pkg/logger"
)

const todoColumns = `user_id, todo_id, name, due_date, done, created_at, attachment_url`

// PostgresStore keeps todos in the todos table, keyed by (user_id, todo_id).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open pool. The schema comes from database.MigrateOrCreateSchema.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.TodoItem, error) {
	var t models.TodoItem
	var createdAt time.Time
	if err := row.Scan(&t.UserID, &t.TodoID, &t.Name, &t.DueDate, &t.Done, &createdAt, &t.AttachmentURL); err != nil {
		return nil, err
	}
	t.CreatedAt = createdAt.UTC().Format(models.CreatedAtLayout)
	return &t, nil
}

// ListByUser returns the user's todos, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]models.TodoItem, error) {
	logger.Info(ctx, "Getting todos for user", "user_id", userID)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at DESC, todo_id DESC`, userID)
	if err != nil {
		return nil, readErr("query todos", err)
	}
	defer rows.Close()
	todos := make([]models.TodoItem, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, readErr("scan todo", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("iterate todos", err)
	}
	return todos, nil
}

// Create inserts a new todo.
func (s *PostgresStore) Create(ctx context.Context, item *models.TodoItem) (*models.TodoItem, error) {
	logger.Info(ctx, "Creating todo", "todo_id", item.TodoID)
	createdAt, err := time.Parse(models.CreatedAtLayout, item.CreatedAt)
	if err != nil {
		return nil, writeErr("parse createdAt", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO todos (`+todoColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		item.UserID, item.TodoID, item.Name, item.DueDate, item.Done, createdAt, item.AttachmentURL)
	if err != nil {
		return nil, writeErr("insert todo", err)
	}
	out := *item
	return &out, nil
}

// Update rewrites name, due_date and done on an existing row.
func (s *PostgresStore) Update(ctx context.Context, userID, todoID string, req models.UpdateTodoRequest) (*models.TodoItem, error) {
	logger.Info(ctx, "Updating todo", "todo_id", todoID)
	row := s.db.QueryRowContext(ctx,
		`UPDATE todos SET name = $1, due_date = $2, done = $3 WHERE user_id = $4 AND todo_id = $5 RETURNING `+todoColumns,
		req.Name, req.DueDate, req.IsDone(), userID, todoID)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, writeErr("update todo", err)
	}
	return t, nil
}

// Delete removes a row and returns it as it was.
func (s *PostgresStore) Delete(ctx context.Context, userID, todoID string) (*models.TodoItem, error) {
	logger.Info(ctx, "Deleting todo", "todo_id", todoID)
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM todos WHERE user_id = $1 AND todo_id = $2 RETURNING `+todoColumns,
		userID, todoID)
	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, writeErr("delete todo", err)
	}
	return t, nil
}

// AttachReference sets attachment_url on an existing row.
func (s *PostgresStore) AttachReference(ctx context.Context, userID, todoID, url string) error {
	logger.Info(ctx, "Adding attachment to todo", "todo_id", todoID)
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET attachment_url = $1 WHERE user_id = $2 AND todo_id = $3`,
		url, userID, todoID)
	if err != nil {
		return writeErr("attach reference", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return writeErr("attach reference", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Ping checks the pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return readErr("ping database", err)
	}
	return nil
}
