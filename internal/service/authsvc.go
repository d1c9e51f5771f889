package service

import (
	"context"
	"errors"
	"strings"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
)

type UsersStore interface {
	CreateUser(ctx context.Context, fullName, username, email, passwordHash string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error)
	GetUserBySessionToken(ctx context.Context, token string) (domain.User, error)
	OpenSession(ctx context.Context, userID, token string) (domain.User, error)
	CloseSessionByToken(ctx context.Context, token string) error
	MarkActiveByEmail(ctx context.Context, email string) (domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	DeleteUser(ctx context.Context, userID string) error
}

// CodeIssuer is the slice of VerificationService that Register needs.
type CodeIssuer interface {
	Issue(ctx context.Context, email, username string) (Binding, error)
}

type AuthService struct {
	Users        UsersStore
	Verification CodeIssuer

	// NewToken mints session tokens; defaults to auth.NewSessionToken.
	NewToken func() string
}

type SignupParams struct {
	FullName string
	Username string
	Email    string
	Password string
}

func (p *SignupParams) normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
}

// Signup creates the account inactive and logged out. Verification
// dispatch is a separate step; prefer Register, which orders the two.
func (s *AuthService) Signup(ctx context.Context, p SignupParams) (domain.User, error) {
	p.normalize()

	passwordHash, err := auth.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	return s.Users.CreateUser(ctx, p.FullName, p.Username, p.Email, passwordHash)
}

// Register is the combined signup operation: the verification code is
// dispatched first, and the account is only created once dispatch
// succeeded. A dead SMTP server therefore never strands an account that
// could not be verified.
func (s *AuthService) Register(ctx context.Context, p SignupParams) (domain.User, Binding, error) {
	p.normalize()

	binding, err := s.Verification.Issue(ctx, p.Email, p.Username)
	if err != nil {
		return domain.User{}, Binding{}, err
	}

	u, err := s.Signup(ctx, p)
	if err != nil {
		return domain.User{}, Binding{}, err
	}
	return u, binding, nil
}

// Login authenticates an identifier (username or email) and opens the
// account's single session. The four failure modes are checked in a fixed
// order, each with its own terminal error: unknown account, session
// already open, email not verified, wrong password.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (domain.User, string, error) {
	identifier = strings.TrimSpace(identifier)

	u, err := s.Users.GetUserByLogin(ctx, identifier)
	if err != nil {
		return domain.User{}, "", err
	}
	if u.IsLoggedIn {
		return domain.User{}, "", domain.ErrSessionActive
	}
	if !u.IsActive {
		return domain.User{}, "", domain.ErrAccountInactive
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if !ok {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	newToken := s.NewToken
	if newToken == nil {
		newToken = auth.NewSessionToken
	}
	token := newToken()

	// Conditional write: if another signin won the race since the read
	// above, the update matches nothing and this attempt loses with
	// ErrSessionActive instead of silently opening a second session.
	updated, err := s.Users.OpenSession(ctx, u.ID, token)
	if err != nil {
		return domain.User{}, "", err
	}

	return updated, token, nil
}

// GetUserBySession resolves a presented token to its account. Tokens do
// not expire server side; they live until signout revokes them.
func (s *AuthService) GetUserBySession(ctx context.Context, token string) (domain.User, error) {
	u, err := s.Users.GetUserBySessionToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return u, nil
}

// Logout revokes the session. A second call with the same token fails
// with ErrUnauthorized because the token no longer resolves.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.Users.CloseSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUnauthorized
		}
		return err
	}
	return nil
}

// Activate flips the account to verified after a successful code confirm.
func (s *AuthService) Activate(ctx context.Context, email string) (domain.User, error) {
	return s.Users.MarkActiveByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// CheckAvailability probes username/email existence for live-form
// validation. Empty inputs skip their probe; nothing beyond existence is
// revealed.
func (s *AuthService) CheckAvailability(ctx context.Context, username, email string) (domain.Availability, error) {
	var av domain.Availability

	if username = strings.TrimSpace(username); username != "" {
		exists, err := s.Users.UsernameExists(ctx, username)
		if err != nil {
			return domain.Availability{}, err
		}
		av.UsernameExists = &exists
	}
	if email = strings.TrimSpace(strings.ToLower(email)); email != "" {
		exists, err := s.Users.EmailExists(ctx, email)
		if err != nil {
			return domain.Availability{}, err
		}
		av.EmailExists = &exists
	}
	return av, nil
}

// DeleteAccount removes the account; owned todos go with it via the
// store's cascade.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	return s.Users.DeleteUser(ctx, userID)
}
