package httpapi

import (
	"net/http"
	"strings"
	"time"

	"todoserver/internal/domain"
	"todoserver/internal/service"

	"github.com/google/uuid"
)

type todoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTodoResponse(td domain.Todo) todoResponse {
	return todoResponse{
		ID:          td.ID,
		Title:       td.Title,
		Description: td.Description,
		IsCompleted: td.IsCompleted,
		CreatedAt:   td.CreatedAt,
		UpdatedAt:   td.UpdatedAt,
	}
}

type todoListResponse struct {
	Count int            `json:"count"`
	Todos []todoResponse `json:"todos"`
}

// todoIDFromPath rejects malformed ids before they reach the store; a
// garbage id is the same 404 as an id that matches nothing.
func todoIDFromPath(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", domain.NewValidationError(map[string]string{"id": "required"})
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.ErrNotFound
	}
	return id, nil
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (a *api) handleTodosCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	td, err := a.todoSvc.Create(r.Context(), u.ID, service.CreateTodoParams{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, newTodoResponse(td))
}

func (a *api) handleTodosList(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	todos, err := a.todoSvc.List(r.Context(), u.ID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := todoListResponse{Count: len(todos), Todos: make([]todoResponse, 0, len(todos))}
	for _, td := range todos {
		resp.Todos = append(resp.Todos, newTodoResponse(td))
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (a *api) handleTodosGet(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := todoIDFromPath(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	td, err := a.todoSvc.Get(r.Context(), u.ID, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, newTodoResponse(td))
}

type updateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

func (a *api) handleTodosUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := todoIDFromPath(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req updateTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	td, err := a.todoSvc.Update(r.Context(), u.ID, id, service.UpdateTodoParams{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, newTodoResponse(td))
}

func (a *api) handleTodosDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	id, err := todoIDFromPath(r)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.todoSvc.Delete(r.Context(), u.ID, id); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, ackResponse{Message: "todo deleted"})
}
