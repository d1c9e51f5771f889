package postgres

import (
	"context"
	"errors"
	"fmt"

	"todoserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const todoColumns = "id, user_id, title, description, is_completed, created_at, updated_at"

type TodosStore struct {
	pool *pgxpool.Pool
}

func NewTodosStore(pool *pgxpool.Pool) *TodosStore {
	return &TodosStore{pool: pool}
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var (
		td         domain.Todo
		idUUID     pgtype.UUID
		userIDUUID pgtype.UUID
	)
	err := row.Scan(
		&idUUID,
		&userIDUUID,
		&td.Title,
		&td.Description,
		&td.IsCompleted,
		&td.CreatedAt,
		&td.UpdatedAt,
	)
	if err != nil {
		return domain.Todo{}, err
	}
	td.ID = uuidOrEmpty(idUUID)
	td.UserID = uuidOrEmpty(userIDUUID)
	return td, nil
}

func (s *TodosStore) CreateTodo(ctx context.Context, userID, title, description string) (domain.Todo, error) {
	const q = `
		INSERT INTO todos (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING ` + todoColumns

	td, err := scanTodo(s.pool.QueryRow(ctx, q, userID, title, description))
	if err != nil {
		// FK violation: the owning account is gone.
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23503" {
			return domain.Todo{}, domain.ErrNotFound
		}
		return domain.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return td, nil
}

func (s *TodosStore) ListTodosForUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	const q = `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		td, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, td)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (s *TodosStore) GetTodoForUser(ctx context.Context, userID, todoID string) (domain.Todo, error) {
	const q = `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`

	td, err := scanTodo(s.pool.QueryRow(ctx, q, todoID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}
		return domain.Todo{}, fmt.Errorf("get todo: %w", err)
	}
	return td, nil
}

// UpdateTodo applies a partial update; nil fields keep the stored value.
func (s *TodosStore) UpdateTodo(ctx context.Context, userID, todoID string, title, description *string, isCompleted *bool) (domain.Todo, error) {
	const q = `
		UPDATE todos
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    is_completed = COALESCE($5, is_completed),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + todoColumns

	td, err := scanTodo(s.pool.QueryRow(ctx, q, todoID, userID, title, description, isCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}
		return domain.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return td, nil
}

func (s *TodosStore) DeleteTodo(ctx context.Context, userID, todoID string) error {
	const q = `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, q, todoID, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
