package httpapi

import (
	"net/http"
	"strings"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
)

type availabilityResponse struct {
	UsernameExists *bool `json:"usernameExists,omitempty"`
	EmailExists    *bool `json:"emailExists,omitempty"`
}

func (a *api) handleUsersAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	username := strings.TrimSpace(q.Get("username"))
	email := strings.TrimSpace(q.Get("email"))
	if username == "" && email == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{
			"query": "username or email is required",
		}))
		return
	}

	av, err := a.authSvc.CheckAvailability(r.Context(), username, email)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, availabilityResponse{
		UsernameExists: av.UsernameExists,
		EmailExists:    av.EmailExists,
	})
}

type deleteAccountRequest struct {
	Confirm string `json:"confirm"`
}

func (a *api) handleUsersDeleteMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req deleteAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}
	if req.Confirm != "delete" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{
			"confirm": `must be "delete"`,
		}))
		return
	}

	if err := a.authSvc.DeleteAccount(r.Context(), u.ID); err != nil {
		WriteDomainError(w, err)
		return
	}

	auth.ClearSessionCookie(w, a.cookieSecure)
	WriteJSON(w, http.StatusOK, ackResponse{Message: "account deleted"})
}
