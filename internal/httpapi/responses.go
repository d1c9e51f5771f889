package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"todoserver/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ackResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// newUserResponse deliberately omits the session token and password
// hash; the cookie is the only carrier of the bearer value.
func newUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FullName:  u.FullName,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func writeUser(w http.ResponseWriter, status int, u domain.User) {
	WriteJSON(w, status, newUserResponse(u))
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

// WriteDomainError translates the domain error taxonomy to the
// documented status codes. Signup duplicates are 400s (form-level
// feedback), while the single-session rejection and the unverified
// account are 403s: the credentials may be fine, the state forbids it.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, "validation_error", "invalid request")
	case errors.Is(err, domain.ErrUsernameTaken):
		WriteError(w, http.StatusBadRequest, "username_taken", "username already taken")
	case errors.Is(err, domain.ErrEmailTaken):
		WriteError(w, http.StatusBadRequest, "email_taken", "email already registered")
	case errors.Is(err, domain.ErrCodeInvalid):
		WriteError(w, http.StatusBadRequest, "code_invalid", "invalid or expired verification code")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "incorrect credentials, try again")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, domain.ErrSessionActive):
		WriteError(w, http.StatusForbidden, "session_active", "already signed in elsewhere")
	case errors.Is(err, domain.ErrAccountInactive):
		WriteError(w, http.StatusForbidden, "account_inactive", "account is inactive, verify your email first")
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrEmailSendFailed):
		WriteError(w, http.StatusInternalServerError, "email_send_failed", "failed to send verification email")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
