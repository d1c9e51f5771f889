package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
	"todoserver/internal/service"
)

// The binding travels through the untrusted client between dispatch and
// confirm, so it is JSON → base64url → HMAC-signed by the cookie codec.
func (a *api) encodeBinding(b service.Binding) (string, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode verification binding: %w", err)
	}
	return a.cookieCodec.Encode(base64.RawURLEncoding.EncodeToString(raw)), nil
}

func (a *api) decodeBinding(cookieValue string) (service.Binding, bool) {
	payload, ok := a.cookieCodec.Decode(cookieValue)
	if !ok {
		return service.Binding{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return service.Binding{}, false
	}
	var b service.Binding
	if err := json.Unmarshal(raw, &b); err != nil {
		return service.Binding{}, false
	}
	return b, b.Code != "" && b.Email != ""
}

type sendVerificationRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// handleVerificationSend re-issues a code for an email, e.g. after the
// first one expired. Each send replaces the binding cookie, so only the
// latest code is confirmable.
func (a *api) handleVerificationSend(w http.ResponseWriter, r *http.Request) {
	var req sendVerificationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	fields := map[string]string{}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if req.Username == "" {
		fields["username"] = "required"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	binding, err := a.verifySvc.Issue(r.Context(), req.Email, req.Username)
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

	WriteJSON(w, http.StatusOK, ackResponse{Message: "verification email sent"})
}

// handleVerificationConfirm validates the presented code against the
// binding cookie and activates the account. The cookie is cleared on
// success and on any failed validation, making the binding single use.
func (a *api) handleVerificationConfirm(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	email := strings.TrimSpace(r.URL.Query().Get("email"))

	fields := map[string]string{}
	if code == "" {
		fields["code"] = "required"
	}
	if email == "" {
		fields["email"] = "required"
	}
	if len(fields) > 0 {
		WriteDomainError(w, domain.NewValidationError(fields))
		return
	}

	c, err := r.Cookie(auth.VerificationCookieName)
	if err != nil || c.Value == "" {
		WriteDomainError(w, domain.ErrCodeInvalid)
		return
	}

	binding, ok := a.decodeBinding(c.Value)
	if !ok {
		auth.ClearVerificationCookie(w, a.cookieSecure)
		WriteDomainError(w, domain.ErrCodeInvalid)
		return
	}

	if err := a.verifySvc.Confirm(binding, code, email); err != nil {
		auth.ClearVerificationCookie(w, a.cookieSecure)
		WriteDomainError(w, err)
		return
	}

	u, err := a.authSvc.Activate(r.Context(), email)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	auth.ClearVerificationCookie(w, a.cookieSecure)
	a.verifySvc.SendWelcome(r.Context(), u.Email, u.Username)

	writeUser(w, http.StatusOK, u)
}
