package service

import (
	"context"
	"strings"

	"todoserver/internal/domain"
)

type TodosStore interface {
	CreateTodo(ctx context.Context, userID, title, description string) (domain.Todo, error)
	ListTodosForUser(ctx context.Context, userID string) ([]domain.Todo, error)
	GetTodoForUser(ctx context.Context, userID, todoID string) (domain.Todo, error)
	UpdateTodo(ctx context.Context, userID, todoID string, title, description *string, isCompleted *bool) (domain.Todo, error)
	DeleteTodo(ctx context.Context, userID, todoID string) error
}

// TodoService owns task CRUD. Every operation is scoped by the
// session-resolved user id; a todo belonging to someone else is
// indistinguishable from one that does not exist.
type TodoService struct {
	Todos TodosStore
}

type CreateTodoParams struct {
	Title       string
	Description string
}

func (s *TodoService) Create(ctx context.Context, userID string, p CreateTodoParams) (domain.Todo, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return domain.Todo{}, domain.NewValidationError(map[string]string{"title": "required"})
	}
	return s.Todos.CreateTodo(ctx, userID, p.Title, strings.TrimSpace(p.Description))
}

func (s *TodoService) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	return s.Todos.ListTodosForUser(ctx, userID)
}

func (s *TodoService) Get(ctx context.Context, userID, todoID string) (domain.Todo, error) {
	return s.Todos.GetTodoForUser(ctx, userID, todoID)
}

type UpdateTodoParams struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

func (s *TodoService) Update(ctx context.Context, userID, todoID string, p UpdateTodoParams) (domain.Todo, error) {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		if trimmed == "" {
			return domain.Todo{}, domain.NewValidationError(map[string]string{"title": "must not be empty"})
		}
		p.Title = &trimmed
	}
	if p.Title == nil && p.Description == nil && p.IsCompleted == nil {
		return domain.Todo{}, domain.NewValidationError(map[string]string{"body": "no fields to update"})
	}
	return s.Todos.UpdateTodo(ctx, userID, todoID, p.Title, p.Description, p.IsCompleted)
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID string) error {
	return s.Todos.DeleteTodo(ctx, userID, todoID)
}
