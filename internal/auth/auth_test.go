package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req["email"] != "ines@example.com" || req["password"] != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"token":      "tok-123",
			"email":      req["email"],
			"name":       "Ines",
			"role":       "admin",
			"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	sess, err := client.Login(context.Background(), "ines@example.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "tok-123", sess.Token)
	assert.Equal(t, "Ines", sess.Name)
	assert.True(t, sess.IsAdmin())
	assert.False(t, sess.Expired())
}

func TestLoginRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Login(context.Background(), "ines@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/logout", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, client.Logout(context.Background(), "tok-123"))
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(t.TempDir())

	sess := Session{
		Token:     "tok-456",
		Email:     "marco@example.com",
		Name:      "Marco",
		Role:      "diver",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, store.Save(sess))

	back, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, back.Token)
	assert.Equal(t, sess.Email, back.Email)
	assert.False(t, back.IsAdmin())
}

func TestFileStoreMissingSession(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStoreExpiredSessionTreatedAsAbsent(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(Session{
		Token:     "tok-old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestFileStoreClear(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(Session{Token: "tok"}))
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// Clearing again is a no-op.
	assert.NoError(t, store.Clear())
}
