package httpapi

import (
	"net/http"
	"strings"
	"time"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
	"todoserver/internal/service"
)

type signupRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleAuthSignup is the combined register operation: the verification
// code is dispatched before the account exists, so a failed dispatch
// never leaves an account nobody can activate. The returned cookie
// carries the signed binding for the confirm step.
func (a *api) handleAuthSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	fields := map[string]string{}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if strings.TrimSpace(req.FullName) == "" {
		fields["full_name"] = "required"
	}
	if !validUsername(req.Username) {
		fields["username"] = "must be 3-24 chars [A-Za-z0-9_]"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email address"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	u, binding, err := a.authSvc.Register(r.Context(), service.SignupParams{
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	cookieValue, err := a.encodeBinding(binding)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	auth.SetVerificationCookie(w, cookieValue, a.verificationTTL, a.cookieSecure)

	writeUser(w, http.StatusCreated, u)
}

type signinRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (a *api) handleAuthSignin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"identifier": "required", "password": "required"}))
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.signinLimiter.Allow("ip:"+ip, now) || !a.signinLimiter.Allow("id:"+strings.ToLower(req.Identifier), now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	u, token, err := a.authSvc.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	auth.SetSessionCookie(w, a.cookieCodec.Encode(token), a.sessionTTL, a.cookieSecure)

	writeUser(w, http.StatusOK, u)
}

func (a *api) handleAuthSignout(w http.ResponseWriter, r *http.Request) {
	token, ok := CurrentSessionToken(r.Context())
	if !ok || token == "" {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.authSvc.Logout(r.Context(), token); err != nil {
		WriteDomainError(w, err)
		return
	}
	auth.ClearSessionCookie(w, a.cookieSecure)
	WriteJSON(w, http.StatusOK, ackResponse{Message: "signed out"})
}

func (a *api) handleUsersMe(w http.ResponseWriter, r *http.Request) {
	u, ok := CurrentUser(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	writeUser(w, http.StatusOK, u)
}
