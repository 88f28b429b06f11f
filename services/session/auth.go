package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"medibot/models"
	"medibot/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials carries the message shown on the login form.
var ErrInvalidCredentials = errors.New("Email o contraseña inválidos")

// ErrUnauthorized is returned by Authorize for a missing, invalid or expired token.
var ErrUnauthorized = errors.New("unauthorized")

// DemoCredentials are the accounts accepted by the login form.
var DemoCredentials = map[string]string{
	"usuario@example.com": "password123",
	"demo@test.com":       "demo123",
}

// Authenticator verifies credentials and tracks issued sessions.
type Authenticator struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
	hashes map[string][]byte
	now    func() time.Time
}

// NewAuthenticator hashes the given credentials once so that plaintext passwords are
// never compared directly.
func NewAuthenticator(store Store, credentials map[string]string, ttl time.Duration, logger *zap.Logger) (*Authenticator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	hashes := make(map[string][]byte, len(credentials))
	for email, password := range credentials {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", email, err)
		}
		hashes[strings.ToLower(email)] = h
	}
	return &Authenticator{store: store, ttl: ttl, logger: logger, hashes: hashes, now: time.Now}, nil
}

// Login checks the credentials and starts a session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, ok := a.hashes[email]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		a.logger.Info("login rejected", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	user := UserFor(email)
	token, err := utils.GenerateToken(user.ID, user.Email, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	now := a.now()
	s := models.Session{Token: token, User: user, CreatedAt: now, ExpiresAt: now.Add(a.ttl)}
	if err := a.store.Save(ctx, utils.HashToken(token), s, a.ttl); err != nil {
		return nil, err
	}
	a.logger.Info("user logged in", zap.String("userId", user.ID))
	return &s, nil
}

// Authorize resolves a bearer token to its live session.
func (a *Authenticator) Authorize(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sub, err := utils.ExtractIDFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	s, err := a.store.Get(ctx, utils.HashToken(token))
	if errors.Is(err, ErrNoSession) {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err != nil {
		return nil, err
	}
	if s.User.ID != sub {
		return nil, fmt.Errorf("%w: token subject mismatch", ErrUnauthorized)
	}
	return s, nil
}

// Logout ends the session behind token.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	return a.store.Delete(ctx, utils.HashToken(token))
}

// UserFor derives the user profile of an email: a stable id and the capitalized local
// part as display name.
func UserFor(email string) models.User {
	email = strings.ToLower(strings.TrimSpace(email))
	local, _, _ := strings.Cut(email, "@")
	name := local
	if r, size := utf8.DecodeRuneInString(local); r != utf8.RuneError {
		name = string(unicode.ToUpper(r)) + local[size:]
	}
	return models.User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email: email,
		Name:  name,
	}
}
