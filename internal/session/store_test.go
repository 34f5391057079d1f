package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/contractdesk/internal/common"
	"github.com/Veraticus/contractdesk/internal/model"
)

type fakeAuth struct {
	resp      *model.AuthResponse
	err       error
	lastLogin model.LoginCredentials
	calls     int
}

func (f *fakeAuth) Login(_ context.Context, creds model.LoginCredentials) (*model.AuthResponse, error) {
	f.calls++
	f.lastLogin = creds
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, _ model.RegisterCredentials) (*model.AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

type failingBackend struct {
	*MemoryBackend
}

func (failingBackend) Set(map[string]string) error { return errors.New("disk full") }

func TestStoreUser(t *testing.T) {
	tests := []struct {
		name     string
		stored   map[string]string
		wantUser *model.User
		wantKept bool
	}{
		{
			name:     "absent",
			stored:   map[string]string{},
			wantUser: nil,
		},
		{
			name:     "valid",
			stored:   map[string]string{UserKey: `{"id":7,"username":"ana","email":"ana@x.io"}`},
			wantUser: &model.User{ID: "7", Username: "ana", Email: "ana@x.io"},
			wantKept: true,
		},
		{
			name:     "malformed is removed",
			stored:   map[string]string{UserKey: `{not json`},
			wantUser: nil,
		},
		{
			name:     "null is removed",
			stored:   map[string]string{UserKey: `null`},
			wantUser: nil,
		},
		{
			name:     "empty object is removed",
			stored:   map[string]string{UserKey: `{}`},
			wantUser: nil,
		},
		{
			name:     "username only is kept",
			stored:   map[string]string{UserKey: `{"username":"ana"}`},
			wantUser: &model.User{Username: "ana"},
			wantKept: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			require.NoError(t, backend.Set(tt.stored))
			store := NewStore(backend)

			assert.Equal(t, tt.wantUser, store.User())
			assert.Equal(t, tt.wantUser != nil, store.Authenticated())

			_, kept, err := backend.Get(UserKey)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKept, kept)
		})
	}
}

func TestStoreRequireUser(t *testing.T) {
	store := NewStore(NewMemoryBackend())

	_, err := store.RequireUser()
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestStoreLogin(t *testing.T) {
	t.Run("persists token and user", func(t *testing.T) {
		backend := NewMemoryBackend()
		store := NewStore(backend)
		auth := &fakeAuth{resp: &model.AuthResponse{
			Token: "tok",
			User:  &model.User{ID: "1", Username: "ana"},
		}}

		resp, err := store.Login(context.Background(), auth, model.LoginCredentials{Username: " ana ", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.Token)
		assert.Equal(t, "ana", auth.lastLogin.Username)
		assert.Equal(t, "tok", store.Token())
		require.NotNil(t, store.User())
		assert.Equal(t, "ana", store.User().Username)
	})

	t.Run("fills user from credentials when absent", func(t *testing.T) {
		store := NewStore(NewMemoryBackend())
		auth := &fakeAuth{resp: &model.AuthResponse{Token: "tok"}}

		_, err := store.Login(context.Background(), auth, model.LoginCredentials{Username: "bo", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "bo", store.User().Username)
	})

	t.Run("validation issues no request", func(t *testing.T) {
		store := NewStore(NewMemoryBackend())
		auth := &fakeAuth{}

		_, err := store.Login(context.Background(), auth, model.LoginCredentials{Username: "  "})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Contains(t, err.Error(), "username is required")
		assert.Contains(t, err.Error(), "password is required")
		assert.Zero(t, auth.calls)
	})

	t.Run("backend failure leaves no session", func(t *testing.T) {
		store := NewStore(NewMemoryBackend())
		auth := &fakeAuth{err: errors.New("invalid credentials")}

		_, err := store.Login(context.Background(), auth, model.LoginCredentials{Username: "a", Password: "b"})
		require.Error(t, err)
		assert.False(t, store.Authenticated())
		assert.Empty(t, store.Token())
	})

	t.Run("missing token is an error", func(t *testing.T) {
		store := NewStore(NewMemoryBackend())
		auth := &fakeAuth{resp: &model.AuthResponse{Message: "ok"}}

		_, err := store.Login(context.Background(), auth, model.LoginCredentials{Username: "a", Password: "b"})
		require.Error(t, err)
		assert.False(t, store.Authenticated())
	})

	t.Run("write failure leaves no session", func(t *testing.T) {
		backend := failingBackend{NewMemoryBackend()}
		store := NewStore(backend)
		auth := &fakeAuth{resp: &model.AuthResponse{Token: "tok"}}

		_, err := store.Login(context.Background(), auth, model.LoginCredentials{Username: "a", Password: "b"})
		require.Error(t, err)
		assert.Empty(t, store.Token())
		assert.Nil(t, store.User())
	})
}

func TestStoreRegister(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	auth := &fakeAuth{resp: &model.AuthResponse{Token: "tok"}}

	_, err := store.Register(context.Background(), auth, model.RegisterCredentials{Username: "cy", Email: "not-an-email", Password: "pw"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "email must be a valid email")

	_, err = store.Register(context.Background(), auth, model.RegisterCredentials{Username: "cy", Email: "cy@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "cy@x.io", store.User().Email)
}

func TestStoreLogout(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(map[string]string{TokenKey: "t", UserKey: `{"username":"a"}`}))
	store := NewStore(backend)
	require.True(t, store.Authenticated())

	require.NoError(t, store.Logout())
	assert.False(t, store.Authenticated())
	assert.Empty(t, store.Token())
}

func TestStoreExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		want   time.Time
		wantOK bool
	}{
		{name: "jwt", token: signed, want: exp, wantOK: true},
		{name: "opaque token", token: "9944b09199c62bcf9418ad846dd0e4bbdfc6ee4b"},
		{name: "no token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			if tt.token != "" {
				require.NoError(t, backend.Set(map[string]string{TokenKey: tt.token}))
			}

			got, ok := NewStore(backend).Expiry()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got))
			}
		})
	}
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	backend := NewFileBackend(path)

	_, ok, err := backend.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, backend.Set(map[string]string{TokenKey: "t", UserKey: "u"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened := NewFileBackend(path)
	v, ok, err := reopened.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "t", v)

	require.NoError(t, reopened.Delete(TokenKey))
	_, ok, err = reopened.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, reopened.Delete(UserKey))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp files must not be left behind")
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	backend := NewFileBackend(path)

	_, _, err := backend.Get(TokenKey)
	require.Error(t, err)

	store := NewStore(backend)
	assert.Nil(t, store.User())
	assert.Empty(t, store.Token())

	require.NoError(t, backend.Set(map[string]string{TokenKey: "fresh"}))
	v, ok, err := backend.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}
