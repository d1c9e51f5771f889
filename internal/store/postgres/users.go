package postgres

import (
	"context"
	"errors"
	"fmt"

	"todoserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, full_name, username, email, is_active, is_logged_in, session_token, created_at, updated_at"

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u            domain.User
		idUUID       pgtype.UUID
		sessionToken pgtype.Text
	)
	err := row.Scan(
		&idUUID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.IsActive,
		&u.IsLoggedIn,
		&sessionToken,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.SessionToken = textPtr(sessionToken)
	return u, nil
}

func (s *UsersStore) CreateUser(ctx context.Context, fullName, username, email, passwordHash string) (domain.User, error) {
	const q = `
		INSERT INTO users (full_name, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, fullName, username, email, passwordHash))
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetUserByLogin resolves a signin identifier that may be either the
// username or the email. An exact username match wins over an email match.
func (s *UsersStore) GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error) {
	const q = `
		SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE username = $1 OR email = $1
		ORDER BY (username = $1) DESC
		LIMIT 1
	`

	var (
		u            domain.UserWithPassword
		idUUID       pgtype.UUID
		sessionToken pgtype.Text
	)
	err := s.pool.QueryRow(ctx, q, login).Scan(
		&idUUID,
		&u.FullName,
		&u.Username,
		&u.Email,
		&u.IsActive,
		&u.IsLoggedIn,
		&sessionToken,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by login: %w", err)
	}
	u.ID = uuidOrEmpty(idUUID)
	u.SessionToken = textPtr(sessionToken)
	return u, nil
}

func (s *UsersStore) GetUserBySessionToken(ctx context.Context, token string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE session_token = $1`

	u, err := scanUser(s.pool.QueryRow(ctx, q, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by session token: %w", err)
	}
	return u, nil
}

// OpenSession stores the freshly minted token, conditional on no session
// being open. Two concurrent signins race here; the loser's update matches
// zero rows and surfaces as ErrSessionActive. Callers have already
// established that the user exists.
func (s *UsersStore) OpenSession(ctx context.Context, userID, token string) (domain.User, error) {
	const q = `
		UPDATE users
		SET is_logged_in = true, session_token = $2, updated_at = now()
		WHERE id = $1 AND is_logged_in = false
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, userID, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrSessionActive
		}
		return domain.User{}, fmt.Errorf("open session: %w", err)
	}
	return u, nil
}

// CloseSessionByToken clears the session fields together so the
// is_logged_in/session_token invariant holds after every write.
func (s *UsersStore) CloseSessionByToken(ctx context.Context, token string) error {
	const q = `
		UPDATE users
		SET is_logged_in = false, session_token = NULL, updated_at = now()
		WHERE session_token = $1
	`

	tag, err := s.pool.Exec(ctx, q, token)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UsersStore) MarkActiveByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `
		UPDATE users
		SET is_active = true, updated_at = now()
		WHERE email = $1
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("mark user active: %w", err)
	}
	return u, nil
}

func (s *UsersStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("username exists: %w", err)
	}
	return exists, nil
}

func (s *UsersStore) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return exists, nil
}

// DeleteUser removes the account; the todos FK cascades, so no orphaned
// todos survive the delete.
func (s *UsersStore) DeleteUser(ctx context.Context, userID string) error {
	const q = `DELETE FROM users WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapUserWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		switch pgerr.ConstraintName {
		case "users_username_uq":
			return domain.ErrUsernameTaken
		case "users_email_uq":
			return domain.ErrEmailTaken
		default:
			return fmt.Errorf("unique violation (%s): %w", pgerr.ConstraintName, err)
		}
	}
	return fmt.Errorf("create user: %w", err)
}
