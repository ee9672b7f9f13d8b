// Package auth authenticates back-office staff with argon2id password
// hashes and short-lived HS256 access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/nkg-services/backend-electro/internal/common"
)

const defaultAccessTTL = 12 * time.Hour

const roleClaim = "role"

// ErrInvalidCredentials is returned for a wrong email or password.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// AdminUser is the safe subset of a staff account returned to clients.
type AdminUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// LoginResult bundles the token returned after a successful login.
type LoginResult struct {
	User        AdminUser `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Config configures the auth service.
type Config struct {
	Pool           *pgxpool.Pool
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
}

// Service coordinates staff authentication and account management.
type Service struct {
	pool      *pgxpool.Pool
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
	validator TokenValidator
	issuer    string
	audience  string
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Pool == nil {
		return nil, errors.New("auth: pool is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-electro"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "electro-admin"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Service{
		pool:      cfg.Pool,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:   issuer,
		audience: audience,
	}, nil
}

const adminColumns = `id::text, email, full_name, role, is_active, last_login_at, created_at, updated_at`

func scanAdmin(row pgx.Row) (AdminUser, error) {
	var u AdminUser
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var (
		user AdminUser
		hash string
	)
	row := s.pool.QueryRow(ctx, `
SELECT `+adminColumns+`, password_hash FROM admin_users WHERE lower(email) = lower($1)`, email)
	err := row.Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.IsActive,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !user.IsActive {
		return LoginResult{}, ErrInvalidCredentials
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil || !match {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return LoginResult{}, err
	}
	if _, err := s.pool.Exec(ctx, `UPDATE admin_users SET last_login_at = now() WHERE id = $1`, user.ID); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) issueToken(user AdminUser) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(s.accessTTL)
	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		Subject(user.ID).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim(roleClaim, user.Role).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return string(signed), expiresAt, nil
}

// ParseAccessToken verifies the signature and claims, returning the admin ID
// and role.
func (s *Service) ParseAccessToken(raw string) (id, role string, err error) {
	msg, err := jws.Parse([]byte(raw))
	if err != nil {
		return "", "", common.Unauthorized("malformed token")
	}
	var algorithm jwa.SignatureAlgorithm
	if sigs := msg.Signatures(); len(sigs) > 0 {
		algorithm = sigs[0].ProtectedHeaders().Algorithm()
	}

	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(s.signer, s.secret),
		jwt.WithValidate(false),
	)
	if err != nil {
		return "", "", common.Unauthorized("invalid token")
	}
	if err := s.validator.Validate(tok, algorithm, s.now().UTC()); err != nil {
		return "", "", common.Unauthorized("invalid token")
	}

	roleValue, _ := tok.Get(roleClaim)
	roleStr, _ := roleValue.(string)
	return tok.Subject(), roleStr, nil
}

// GetAdmin loads one staff account.
func (s *Service) GetAdmin(ctx context.Context, id string) (AdminUser, error) {
	u, err := scanAdmin(s.pool.QueryRow(ctx, `SELECT `+adminColumns+` FROM admin_users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return AdminUser{}, common.NotFound("admin user")
	}
	return u, err
}

// ListAdmins returns all staff accounts.
func (s *Service) ListAdmins(ctx context.Context) ([]AdminUser, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+adminColumns+` FROM admin_users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AdminUser
	for rows.Next() {
		u, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// CreateAdmin registers a staff account with a hashed password.
func (s *Service) CreateAdmin(ctx context.Context, email, fullName, password, role string) (AdminUser, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return AdminUser{}, err
	}
	u, err := scanAdmin(s.pool.QueryRow(ctx, `
INSERT INTO admin_users (email, full_name, password_hash, role)
VALUES (lower($1), $2, $3, $4)
RETURNING `+adminColumns, email, fullName, hash, role))
	if common.UniqueViolation(err) {
		return AdminUser{}, common.Conflict("email already registered")
	}
	return u, err
}

// SetAdminActive enables or disables a staff account.
func (s *Service) SetAdminActive(ctx context.Context, id string, active bool) (AdminUser, error) {
	u, err := scanAdmin(s.pool.QueryRow(ctx, `
UPDATE admin_users SET is_active = $2, updated_at = now() WHERE id = $1
RETURNING `+adminColumns, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return AdminUser{}, common.NotFound("admin user")
	}
	return u, err
}

// ChangePassword rotates the caller's own password after verifying the
// current one.
func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT password_hash FROM admin_users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NotFound("admin user")
	}
	if err != nil {
		return err
	}
	match, err := argon2id.ComparePasswordAndHash(current, hash)
	if err != nil || !match {
		return common.Unauthorized("current password does not match")
	}
	newHash, err := argon2id.CreateHash(next, argon2id.DefaultParams)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `UPDATE admin_users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, newHash)
	return err
}
