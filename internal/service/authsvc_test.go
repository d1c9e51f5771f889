package service

import (
	"context"
	"errors"
	"testing"

	"todoserver/internal/auth"
	"todoserver/internal/domain"
)

type stubUsersStore struct {
	t *testing.T

	createUserFunc            func(context.Context, string, string, string, string) (domain.User, error)
	getUserByIDFunc           func(context.Context, string) (domain.User, error)
	getUserByLoginFunc        func(context.Context, string) (domain.UserWithPassword, error)
	getUserBySessionTokenFunc func(context.Context, string) (domain.User, error)
	openSessionFunc           func(context.Context, string, string) (domain.User, error)
	closeSessionByTokenFunc   func(context.Context, string) error
	markActiveByEmailFunc     func(context.Context, string) (domain.User, error)
	usernameExistsFunc        func(context.Context, string) (bool, error)
	emailExistsFunc           func(context.Context, string) (bool, error)
	deleteUserFunc            func(context.Context, string) error
}

func (s *stubUsersStore) CreateUser(ctx context.Context, fullName, username, email, passwordHash string) (domain.User, error) {
	if s.createUserFunc != nil {
		return s.createUserFunc(ctx, fullName, username, email, passwordHash)
	}
	s.t.Fatalf("CreateUser called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	if s.getUserByIDFunc != nil {
		return s.getUserByIDFunc(ctx, id)
	}
	s.t.Fatalf("GetUserByID called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error) {
	if s.getUserByLoginFunc != nil {
		return s.getUserByLoginFunc(ctx, login)
	}
	s.t.Fatalf("GetUserByLogin called unexpectedly")
	return domain.UserWithPassword{}, errors.New("unexpected call")
}

func (s *stubUsersStore) GetUserBySessionToken(ctx context.Context, token string) (domain.User, error) {
	if s.getUserBySessionTokenFunc != nil {
		return s.getUserBySessionTokenFunc(ctx, token)
	}
	s.t.Fatalf("GetUserBySessionToken called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) OpenSession(ctx context.Context, userID, token string) (domain.User, error) {
	if s.openSessionFunc != nil {
		return s.openSessionFunc(ctx, userID, token)
	}
	s.t.Fatalf("OpenSession called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) CloseSessionByToken(ctx context.Context, token string) error {
	if s.closeSessionByTokenFunc != nil {
		return s.closeSessionByTokenFunc(ctx, token)
	}
	s.t.Fatalf("CloseSessionByToken called unexpectedly")
	return errors.New("unexpected call")
}

func (s *stubUsersStore) MarkActiveByEmail(ctx context.Context, email string) (domain.User, error) {
	if s.markActiveByEmailFunc != nil {
		return s.markActiveByEmailFunc(ctx, email)
	}
	s.t.Fatalf("MarkActiveByEmail called unexpectedly")
	return domain.User{}, errors.New("unexpected call")
}

func (s *stubUsersStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if s.usernameExistsFunc != nil {
		return s.usernameExistsFunc(ctx, username)
	}
	s.t.Fatalf("UsernameExists called unexpectedly")
	return false, errors.New("unexpected call")
}

func (s *stubUsersStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if s.emailExistsFunc != nil {
		return s.emailExistsFunc(ctx, email)
	}
	s.t.Fatalf("EmailExists called unexpectedly")
	return false, errors.New("unexpected call")
}

func (s *stubUsersStore) DeleteUser(ctx context.Context, userID string) error {
	if s.deleteUserFunc != nil {
		return s.deleteUserFunc(ctx, userID)
	}
	s.t.Fatalf("DeleteUser called unexpectedly")
	return errors.New("unexpected call")
}

type stubIssuer struct {
	t *testing.T

	issueFunc func(context.Context, string, string) (Binding, error)
}

func (s *stubIssuer) Issue(ctx context.Context, email, username string) (Binding, error) {
	if s.issueFunc != nil {
		return s.issueFunc(ctx, email, username)
	}
	s.t.Fatalf("Issue called unexpectedly")
	return Binding{}, errors.New("unexpected call")
}

func activeUser(passwordHash string) domain.UserWithPassword {
	return domain.UserWithPassword{
		User: domain.User{
			ID:       "user-1",
			Username: "alice",
			Email:    "a@x.com",
			IsActive: true,
		},
		PasswordHash: passwordHash,
	}
}

func TestAuthServiceLoginUnknownIdentifier(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByLoginFunc: func(_ context.Context, login string) (domain.UserWithPassword, error) {
			if login != "ghost" {
				t.Fatalf("unexpected login lookup: %s", login)
			}
			return domain.UserWithPassword{}, domain.ErrNotFound
		},
	}
	svc := &AuthService{Users: users}

	_, _, err := svc.Login(context.Background(), "ghost", "p1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuthServiceLoginAlreadyLoggedIn(t *testing.T) {
	tok := "existing-token"
	users := &stubUsersStore{
		t: t,
		getUserByLoginFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			u := activeUser("irrelevant")
			u.IsLoggedIn = true
			u.SessionToken = &tok
			return u, nil
		},
	}
	svc := &AuthService{Users: users}

	_, _, err := svc.Login(context.Background(), "alice", "p1")
	if !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("expected session active, got %v", err)
	}
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserByLoginFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			u := activeUser("irrelevant")
			u.IsActive = false
			return u, nil
		},
	}
	svc := &AuthService{Users: users}

	_, _, err := svc.Login(context.Background(), "alice", "p1")
	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected account inactive, got %v", err)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := &stubUsersStore{
		t: t,
		getUserByLoginFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return activeUser(hash), nil
		},
	}
	svc := &AuthService{Users: users}

	_, _, err = svc.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, err := auth.HashPassword("p1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := &stubUsersStore{
		t: t,
		getUserByLoginFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return activeUser(hash), nil
		},
		openSessionFunc: func(_ context.Context, userID, token string) (domain.User, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			if token != "minted-token" {
				t.Fatalf("unexpected token: %s", token)
			}
			u := activeUser(hash).User
			u.IsLoggedIn = true
			u.SessionToken = &token
			return u, nil
		},
	}
	svc := &AuthService{
		Users:    users,
		NewToken: func() string { return "minted-token" },
	}

	u, token, err := svc.Login(context.Background(), " alice ", "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "minted-token" {
		t.Fatalf("unexpected token: %s", token)
	}
	if !u.IsLoggedIn || u.SessionToken == nil || *u.SessionToken != token {
		t.Fatalf("expected session fields set on returned user: %+v", u)
	}
}

func TestAuthServiceLoginRaceLoser(t *testing.T) {
	// The read said no session, but another signin persisted first; the
	// conditional store update reports the conflict.
	hash, err := auth.HashPassword("p1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := &stubUsersStore{
		t: t,
		getUserByLoginFunc: func(context.Context, string) (domain.UserWithPassword, error) {
			return activeUser(hash), nil
		},
		openSessionFunc: func(context.Context, string, string) (domain.User, error) {
			return domain.User{}, domain.ErrSessionActive
		},
	}
	svc := &AuthService{Users: users}

	_, _, err = svc.Login(context.Background(), "alice", "p1")
	if !errors.Is(err, domain.ErrSessionActive) {
		t.Fatalf("expected session active, got %v", err)
	}
}

func TestAuthServiceLogout(t *testing.T) {
	closed := false
	users := &stubUsersStore{
		t: t,
		closeSessionByTokenFunc: func(_ context.Context, token string) error {
			if token != "tok-1" {
				t.Fatalf("unexpected token: %s", token)
			}
			closed = true
			return nil
		},
	}
	svc := &AuthService{Users: users}

	if err := svc.Logout(context.Background(), "tok-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !closed {
		t.Fatalf("expected session to be closed")
	}
}

func TestAuthServiceLogoutDeadToken(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		closeSessionByTokenFunc: func(context.Context, string) error {
			return domain.ErrNotFound
		},
	}
	svc := &AuthService{Users: users}

	err := svc.Logout(context.Background(), "already-revoked")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthServiceGetUserBySessionMiss(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		getUserBySessionTokenFunc: func(context.Context, string) (domain.User, error) {
			return domain.User{}, domain.ErrNotFound
		},
	}
	svc := &AuthService{Users: users}

	_, err := svc.GetUserBySession(context.Background(), "stale")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthServiceSignupNormalizesAndHashes(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		createUserFunc: func(_ context.Context, fullName, username, email, passwordHash string) (domain.User, error) {
			if fullName != "Alice A" || username != "alice" || email != "a@x.com" {
				t.Fatalf("unexpected create args: %q %q %q", fullName, username, email)
			}
			if passwordHash == "p1" || passwordHash == "" {
				t.Fatalf("expected hashed password, got %q", passwordHash)
			}
			ok, err := auth.VerifyPassword(passwordHash, "p1")
			if err != nil || !ok {
				t.Fatalf("expected stored hash to verify against password")
			}
			return domain.User{ID: "user-1", Username: username, Email: email}, nil
		},
	}
	svc := &AuthService{Users: users}

	u, err := svc.Signup(context.Background(), SignupParams{
		FullName: " Alice A ",
		Username: " alice ",
		Email:    " A@X.com ",
		Password: "p1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestAuthServiceRegisterDispatchFailure(t *testing.T) {
	// No account may be created when the code could not be dispatched;
	// the users stub fails the test on any CreateUser call.
	users := &stubUsersStore{t: t}
	issuer := &stubIssuer{
		t: t,
		issueFunc: func(context.Context, string, string) (Binding, error) {
			return Binding{}, domain.ErrEmailSendFailed
		},
	}
	svc := &AuthService{Users: users, Verification: issuer}

	_, _, err := svc.Register(context.Background(), SignupParams{
		Username: "alice", Email: "a@x.com", Password: "p1", FullName: "Alice",
	})
	if !errors.Is(err, domain.ErrEmailSendFailed) {
		t.Fatalf("expected send failure, got %v", err)
	}
}

func TestAuthServiceRegisterDispatchFirst(t *testing.T) {
	issued := false
	issuer := &stubIssuer{
		t: t,
		issueFunc: func(_ context.Context, email, username string) (Binding, error) {
			if email != "a@x.com" || username != "alice" {
				t.Fatalf("unexpected issue args: %q %q", email, username)
			}
			issued = true
			return Binding{Code: "A3F09C", Email: email, ExpiresAt: 123}, nil
		},
	}
	users := &stubUsersStore{
		t: t,
		createUserFunc: func(_ context.Context, _, username, email, _ string) (domain.User, error) {
			if !issued {
				t.Fatalf("expected dispatch before account creation")
			}
			return domain.User{ID: "user-1", Username: username, Email: email}, nil
		},
	}
	svc := &AuthService{Users: users, Verification: issuer}

	u, binding, err := svc.Register(context.Background(), SignupParams{
		Username: "alice", Email: "A@X.com", Password: "p1", FullName: "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" || binding.Code != "A3F09C" {
		t.Fatalf("unexpected result: %+v %+v", u, binding)
	}
}

func TestAuthServiceCheckAvailability(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		usernameExistsFunc: func(_ context.Context, username string) (bool, error) {
			return username == "taken", nil
		},
		emailExistsFunc: func(_ context.Context, email string) (bool, error) {
			return email == "taken@x.com", nil
		},
	}
	svc := &AuthService{Users: users}

	av, err := svc.CheckAvailability(context.Background(), "taken", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if av.UsernameExists == nil || !*av.UsernameExists {
		t.Fatalf("expected username taken")
	}
	if av.EmailExists != nil {
		t.Fatalf("expected email probe to be skipped")
	}

	av, err = svc.CheckAvailability(context.Background(), "free", "Free@X.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if av.UsernameExists == nil || *av.UsernameExists {
		t.Fatalf("expected username free")
	}
	if av.EmailExists == nil || *av.EmailExists {
		t.Fatalf("expected email free")
	}
}

func TestAuthServiceActivateNormalizesEmail(t *testing.T) {
	users := &stubUsersStore{
		t: t,
		markActiveByEmailFunc: func(_ context.Context, email string) (domain.User, error) {
			if email != "a@x.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			return domain.User{ID: "user-1", IsActive: true}, nil
		},
	}
	svc := &AuthService{Users: users}

	u, err := svc.Activate(context.Background(), " A@X.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.IsActive {
		t.Fatalf("expected active user")
	}
}
