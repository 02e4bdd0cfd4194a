// Package auth implements the identity collaborator consumed by the
// persistence layer: a token-backed session that resolves the current
// user and publishes auth-state transitions.
//
// The host application feeds it raw access tokens from the identity
// provider (SetToken on login or refresh, Clear on logout). Subscribers
// registered via OnChange are expected to reset the backend selector and
// the state store so the next initialization re-derives data for the new
// identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/models"
)

// ErrInvalidToken is returned by [Session.SetToken] when the supplied
// token cannot be verified or carries no subject claim.
var ErrInvalidToken = errors.New("invalid access token")

// Claims is the token claim set accepted from the identity provider.
// The subject claim carries the opaque user id.
type Claims struct {
	jwt.RegisteredClaims

	// Email is a provider-specific claim and may be absent.
	Email string `json:"email,omitempty"`
}

// Session is a process-wide auth session. It caches the identity parsed
// from the most recent valid token and notifies subscribers on every
// identity transition (login, logout, account switch).
type Session struct {
	signKey string
	issuer  string
	logger  *logger.Logger

	mu      sync.RWMutex
	user    *models.User
	subs    map[int64]func(*models.User)
	nextSub int64
}

// NewSession constructs a Session that verifies tokens with the given
// sign key and issuer.
func NewSession(cfg config.Auth, log *logger.Logger) *Session {
	return &Session{
		signKey: cfg.TokenSignKey,
		issuer:  cfg.TokenIssuer,
		logger:  log,
		subs:    make(map[int64]func(*models.User)),
	}
}

// SetToken validates and parses the given token string and installs the
// identity it carries as the current user.
//
// Validation includes:
//   - signature verification (HMAC-SHA256) using the configured sign key;
//   - issuer (iss) claim check against the configured issuer;
//   - expiration (exp) claim check;
//   - subject (sub) claim presence.
//
// On success subscribers are notified with the new identity. On failure
// the current identity is left untouched.
func (s *Session) SetToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(s.signKey), nil
	}, jwt.WithIssuer(s.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		s.logger.Err(err).Str("func", "Session.SetToken").Msg("token verification failed")
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	user := &models.User{ID: claims.Subject, Email: claims.Email}

	s.mu.Lock()
	s.user = user
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info().Str("func", "Session.SetToken").Str("user_id", user.ID).Msg("session established")
	notify(listeners, user)
	return nil
}

// Clear drops the current identity (logout). Subscribers are notified
// with a nil user.
func (s *Session) Clear() {
	s.mu.Lock()
	s.user = nil
	listeners := s.listenersLocked()
	s.mu.Unlock()

	s.logger.Info().Str("func", "Session.Clear").Msg("session cleared")
	notify(listeners, nil)
}

// CurrentUser returns the identity parsed from the most recent valid
// token, or nil when no user is authenticated. It never returns an
// error; the signature matches the resolver contract of the persistence
// layer.
func (s *Session) CurrentUser(_ context.Context) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, nil
}

// OnChange registers fn to be called on every identity transition with
// the new user (nil on logout). The returned function unsubscribes.
func (s *Session) OnChange(fn func(*models.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) listenersLocked() []func(*models.User) {
	listeners := make([]func(*models.User), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	return listeners
}

func notify(listeners []func(*models.User), user *models.User) {
	for _, fn := range listeners {
		fn(user)
	}
}
