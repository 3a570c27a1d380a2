// internal/auth/service.go
//
// Admin authentication service.
//
// Context
// -------
// The platform has a small set of admin principals stored in the
// `admin_user` table of the control-plane database.  Login verifies the
// bcrypt hash and issues a short-lived HS256 token.  Verify is the remote
// session check consulted by the gate on EVERY protected-route entry: it
// parses the token AND re-reads the admin_user row, so disabling an
// account server-side is observable on the next navigation.  Local token
// presence is never trusted on its own.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned on a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid covers expired, malformed, or revoked session tokens.
	ErrTokenInvalid = errors.New("session token invalid")
)

// User mirrors one row of `admin_user`.
type User struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	DisabledAt   *time.Time `db:"disabled_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Service issues and verifies admin session tokens.
type Service struct {
	db     *sqlx.DB
	secret []byte
	ttl    time.Duration
}

// NewService wires the service to the control-plane DB.  secret is the
// HS256 signing key from configuration (possibly Vault-resolved).
func NewService(db *sqlx.DB, secret string, ttl time.Duration) *Service {
	return &Service{db: db, secret: []byte(secret), ttl: ttl}
}

const userQuery = `
    SELECT id, username, password_hash, disabled_at, created_at
    FROM   admin_user
    WHERE  username = ?
      AND  disabled_at IS NULL
    LIMIT  1`

// Login checks credentials and returns a signed session token.  Failures
// are uniform (ErrInvalidCredentials) so responses cannot distinguish an
// unknown user from a wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	var u User
	if err := s.db.GetContext(ctx, &u, userQuery, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("auth lookup: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.Username,
		ID:        u.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth sign: %w", err)
	}
	return token, nil
}

// Verify validates a session token and returns the username it belongs to.
// The admin_user row is re-checked so revocation (disabled_at) takes effect
// immediately; signature and expiry alone do not authorise.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return "", ErrTokenInvalid
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)

	var u User
	if err := s.db.GetContext(ctx, &u, userQuery, claims.Subject); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTokenInvalid
		}
		// DB trouble is not a rejection; let the caller decide (the gate
		// fails closed either way, but counts it separately).
		return "", fmt.Errorf("auth verify lookup: %w", err)
	}
	return u.Username, nil
}

// SetPassword upserts an admin principal with a freshly bcrypt-ed password.
// Used by seeding and the console's account form.
func (s *Service) SetPassword(ctx context.Context, id, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
        INSERT INTO admin_user (id, username, password_hash, created_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash)`
	_, err = s.db.ExecContext(ctx, q, id, username, string(hash), time.Now().UTC())
	return err
}
