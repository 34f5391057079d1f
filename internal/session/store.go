package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
)

// Entry keys.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, creds model.LoginCredentials) (*model.AuthResponse, error)
	Register(ctx context.Context, creds model.RegisterCredentials) (*model.AuthResponse, error)
}

// Store is the single source of truth for the current session.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// NewStore creates a store on top of backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		logger:  slog.Default().With("component", "session"),
	}
}

// User returns the stored user, or nil when none is stored. A malformed
// entry is removed.
func (s *Store) User() *model.User {
	raw, ok, err := s.backend.Get(UserKey)
	if err != nil {
		s.logger.Warn("Failed to read stored user", "error", err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var user *model.User
	err = json.Unmarshal([]byte(raw), &user)
	if err == nil && (user == nil || (user.ID == "" && user.Username == "")) {
		err = errEmptyUser
	}
	if err != nil {
		s.logger.Warn("Discarding malformed stored user", "error", err)
		if delErr := s.backend.Delete(UserKey); delErr != nil {
			s.logger.Warn("Failed to remove malformed user", "error", delErr)
		}
		return nil
	}
	return user
}

// errEmptyUser marks a stored user that decodes but identifies nobody.
var errEmptyUser = errors.New("stored user has no id or username")

// Token returns the stored bearer token, or "".
func (s *Store) Token() string {
	token, _, err := s.backend.Get(TokenKey)
	if err != nil {
		s.logger.Warn("Failed to read stored token", "error", err)
		return ""
	}
	return token
}

// Authenticated reports whether a user is stored.
func (s *Store) Authenticated() bool {
	return s.User() != nil
}

// RequireUser returns the stored user or ErrNotAuthenticated.
func (s *Store) RequireUser() (*model.User, error) {
	user := s.User()
	if user == nil {
		return nil, common.ErrNotAuthenticated
	}
	return user, nil
}

// Login authenticates and persists the returned token and user.
func (s *Store) Login(ctx context.Context, auth Authenticator, creds model.LoginCredentials) (*model.AuthResponse, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := common.ValidateStruct(creds); err != nil {
		return nil, err
	}

	resp, err := auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.persist(resp, creds.Username, ""); err != nil {
		return nil, err
	}
	return resp, nil
}

// Register creates an account and persists the returned token and user.
func (s *Store) Register(ctx context.Context, auth Authenticator, creds model.RegisterCredentials) (*model.AuthResponse, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Email = strings.TrimSpace(creds.Email)
	if err := common.ValidateStruct(creds); err != nil {
		return nil, err
	}

	resp, err := auth.Register(ctx, creds)
	if err != nil {
		return nil, err
	}
	if err := s.persist(resp, creds.Username, creds.Email); err != nil {
		return nil, err
	}
	return resp, nil
}

// Logout removes the token and user.
func (s *Store) Logout() error {
	return s.Clear()
}

// Clear removes the token and user.
func (s *Store) Clear() error {
	if err := s.backend.Delete(TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Expiry returns the exp claim of the stored token when it is a JWT.
// The signature is not checked; only the server decides validity.
func (s *Store) Expiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) persist(resp *model.AuthResponse, username, email string) error {
	if resp == nil || resp.Token == "" {
		return common.NewUserError("Authentication failed", errors.New("response did not include a token"))
	}

	user := resp.User
	if user == nil {
		user = &model.User{Username: username, Email: email}
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := s.backend.Set(map[string]string{
		TokenKey: resp.Token,
		UserKey:  string(encoded),
	}); err != nil {
		if clearErr := s.backend.Delete(TokenKey, UserKey); clearErr != nil {
			s.logger.Warn("Failed to roll back partial session", "error", clearErr)
		}
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Session saved", "username", user.Username)
	return nil
}
