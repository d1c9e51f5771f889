package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
	"todoserver/internal/email"
)

// Sender delivers outbound mail. Satisfied by *email.Mailer.
type Sender interface {
	Send(ctx context.Context, msg email.Message) error
}

// Binding is the (code, email, expiry) tuple proving a verification code
// was legitimately issued. It is not persisted: the handler signs it into
// a cookie and the client round-trips it between dispatch and confirm.
type Binding struct {
	Code      string `json:"code"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

type VerificationService struct {
	Mailer   Sender
	AppName  string
	LoginURL string
	CodeTTL  time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
	NewCode  func() (string, error)
}

func (s *VerificationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *VerificationService) ttl() time.Duration {
	if s.CodeTTL > 0 {
		return s.CodeTTL
	}
	return 10 * time.Minute
}

func (s *VerificationService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Issue mints a code, dispatches it to the address, and returns the
// binding for the caller to carry. The account is not touched; signup
// only proceeds once this dispatch has succeeded.
func (s *VerificationService) Issue(ctx context.Context, toEmail, username string) (Binding, error) {
	newCode := s.NewCode
	if newCode == nil {
		newCode = auth.NewVerificationCode
	}
	code, err := newCode()
	if err != nil {
		return Binding{}, err
	}

	expiresIn := formatDuration(s.ttl())
	msg, err := email.VerificationMessage(s.AppName, username, toEmail, code, expiresIn)
	if err != nil {
		return Binding{}, err
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.logger().Error("verification email send failed", "email", toEmail, "err", err)
		return Binding{}, domain.ErrEmailSendFailed
	}

	return Binding{
		Code:      code,
		Email:     toEmail,
		ExpiresAt: s.now().Add(s.ttl()).Unix(),
	}, nil
}

// Confirm checks a presented code and email against the binding. Every
// failure mode collapses into ErrCodeInvalid so callers cannot probe
// which check failed.
func (s *VerificationService) Confirm(b Binding, code, presentedEmail string) error {
	if !strings.EqualFold(b.Code, strings.TrimSpace(code)) {
		return domain.ErrCodeInvalid
	}
	if b.Email != strings.TrimSpace(strings.ToLower(presentedEmail)) {
		return domain.ErrCodeInvalid
	}
	if s.now().Unix() > b.ExpiresAt {
		return domain.ErrCodeInvalid
	}
	return nil
}

// SendWelcome fires the post-activation mail. Delivery is best-effort:
// activation has already been persisted, so a send failure is logged and
// swallowed rather than unwinding the confirm.
func (s *VerificationService) SendWelcome(ctx context.Context, toEmail, username string) {
	msg, err := email.WelcomeMessage(s.AppName, username, toEmail, s.LoginURL)
	if err != nil {
		s.logger().Error("welcome email render failed", "email", toEmail, "err", err)
		return
	}
	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.logger().Error("welcome email send failed", "email", toEmail, "err", err)
	}
}

func formatDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return strconv.Itoa(n) + " minutes"
	}
	return d.String()
}
