package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	SessionCookieName = "todo_session"

	// VerificationCookieName carries the signed (code, email, expiry)
	// binding between code dispatch and confirmation. The client round-trips
	// it, so it is always signed in any deployment with a cookie secret.
	VerificationCookieName = "todo_verification"
)

// CookieCodec signs opaque cookie values with HMAC-SHA256. With an empty
// secret it passes values through unsigned; config refuses that outside dev.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret []byte) CookieCodec {
	secretCopy := make([]byte, len(secret))
	copy(secretCopy, secret)
	return CookieCodec{secret: secretCopy}
}

func (c CookieCodec) Encode(value string) string {
	if len(c.secret) == 0 {
		return value
	}

	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(value))
	sig := mac.Sum(nil)

	return value + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (c CookieCodec) Decode(cookieValue string) (string, bool) {
	if len(c.secret) == 0 {
		return cookieValue, cookieValue != ""
	}

	// The value itself may contain dots (base64url payloads do not, but
	// keep the split anchored at the last separator anyway).
	idx := strings.LastIndexByte(cookieValue, '.')
	if idx <= 0 || idx == len(cookieValue)-1 {
		return "", false
	}
	value, sigB64 := cookieValue[:idx], cookieValue[idx+1:]

	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil || len(sig) != sha256.Size {
		return "", false
	}

	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(value))
	expected := mac.Sum(nil)
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return "", false
	}

	return value, true
}

func SetSessionCookie(w http.ResponseWriter, cookieValue string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

func SetVerificationCookie(w http.ResponseWriter, cookieValue string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     VerificationCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

func ClearVerificationCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     VerificationCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
