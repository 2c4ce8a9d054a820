package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/prakhar1989/blag/internal/blog"
	"github.com/prakhar1989/blag/internal/store"
)

// ErrForbidden is returned when a request carries no valid auth signal.
var ErrForbidden = errors.New("forbidden")

// ErrBadCredentials is returned for login attempts that don't verify. It
// deliberately doesn't distinguish unknown users from wrong passwords.
var ErrBadCredentials = errors.New("invalid username or password")

// adminFlag is the constant payload of the admin-variant token.
const adminFlag = "admin"

// Identity is the authenticated caller. User is set under the session
// policy; Admin under the shared-flag policy.
type Identity struct {
	User  *blog.User
	Admin bool
}

// Policy decides whether a request is authenticated. Two variants exist
// and a deployment picks exactly one; they are never merged.
type Policy interface {
	// Login verifies credentials and returns a signed cookie value.
	Login(ctx context.Context, username, password string) (string, error)
	// Authenticate resolves a cookie value to an identity, or ErrForbidden.
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// SessionPolicy is the per-user variant: the token wraps the user's id,
// re-resolved against the user store on every request.
type SessionPolicy struct {
	users  store.UserStore
	codec  *TokenCodec
	logger *zap.SugaredLogger
}

func NewSessionPolicy(users store.UserStore, codec *TokenCodec, logger *zap.SugaredLogger) *SessionPolicy {
	return &SessionPolicy{users: users, codec: codec, logger: logger}
}

func (p *SessionPolicy) Login(ctx context.Context, username, password string) (string, error) {
	user, err := p.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyCredentials(username, password, user.PasswordHash) {
		p.logger.Infow("Login rejected", "username", username)
		return "", ErrBadCredentials
	}

	token, err := p.codec.Sign(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	p.logger.Infow("Login succeeded", "username", username, "user_id", user.ID)
	return token, nil
}

func (p *SessionPolicy) Authenticate(ctx context.Context, token string) (*Identity, error) {
	payload, ok := p.codec.Verify(token)
	if !ok {
		return nil, ErrForbidden
	}

	id, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return nil, ErrForbidden
	}

	user, err := p.users.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %d: %w", id, err)
	}

	return &Identity{User: user}, nil
}

// AdminPolicy is the shared-flag variant: one fixed credential pair, a
// signed constant flag, no per-user identity.
type AdminPolicy struct {
	username string
	hash     string
	codec    *TokenCodec
	logger   *zap.SugaredLogger
}

func NewAdminPolicy(username, password string, codec *TokenCodec, logger *zap.SugaredLogger) (*AdminPolicy, error) {
	// Hash the configured password once so login goes through the same
	// verification path as stored credentials.
	hash, err := HashCredentials(username, password)
	if err != nil {
		return nil, err
	}
	return &AdminPolicy{username: username, hash: hash, codec: codec, logger: logger}, nil
}

func (p *AdminPolicy) Login(ctx context.Context, username, password string) (string, error) {
	if username != p.username || !VerifyCredentials(username, password, p.hash) {
		p.logger.Infow("Admin login rejected", "username", username)
		return "", ErrBadCredentials
	}

	token, err := p.codec.Sign(adminFlag)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}

	p.logger.Infow("Admin login succeeded")
	return token, nil
}

func (p *AdminPolicy) Authenticate(ctx context.Context, token string) (*Identity, error) {
	payload, ok := p.codec.Verify(token)
	if !ok || payload != adminFlag {
		return nil, ErrForbidden
	}
	return &Identity{Admin: true}, nil
}

var (
	_ Policy = (*SessionPolicy)(nil)
	_ Policy = (*AdminPolicy)(nil)
)
