// Package auth handles community-account sessions for Fathom.
//
// Login and logout go through the community REST API; the resulting
// bearer token is persisted as JSON in the config directory so the TUI
// and CLI share one session, mirroring how the web client keeps its
// token in browser storage.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ErrNoSession is returned when no valid session is stored locally.
var ErrNoSession = errors.New("auth: not logged in")

// ErrUnauthorized is returned when the API rejects the credentials
// or the stored token.
var ErrUnauthorized = errors.New("auth: unauthorized")

// Session is an authenticated community session.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"` // diver, admin
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session may review chatbot feedback.
func (s Session) IsAdmin() bool { return s.Role == "admin" }

// Expired reports whether the token is past its expiry.
func (s Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// ============================================================
// REST client
// ============================================================

// Client talks to the community API.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient creates a client for the given API base URL.
func NewClient(base string, timeout time.Duration) *Client {
	return &Client{
		Base: base,
		HTTP: &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/v1/login", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("calling login endpoint: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return Session{}, ErrUnauthorized
	default:
		return Session{}, fmt.Errorf("login endpoint returned %s", resp.Status)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return Session{}, fmt.Errorf("decoding login response: %w", err)
	}
	if lr.Token == "" {
		return Session{}, fmt.Errorf("login response missing token")
	}

	return Session{
		Token:     lr.Token,
		Email:     lr.Email,
		Name:      lr.Name,
		Role:      lr.Role,
		ExpiresAt: lr.ExpiresAt,
	}, nil
}

// Logout invalidates the token server-side. A failed revocation is not
// fatal; the local session is removed either way by the caller.
func (c *Client) Logout(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+"/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("building logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("calling logout endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout endpoint returned %s", resp.Status)
	}
	return nil
}

// ============================================================
// Local session persistence
// ============================================================

// FileStore persists the session as JSON under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) path() string {
	return filepath.Join(f.dir, "session.json")
}

// Save writes the session with owner-only permissions.
func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(f.dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := os.WriteFile(f.path(), data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Load returns the stored session. A missing file or an expired token
// yields ErrNoSession.
func (f *FileStore) Load() (Session, error) {
	data, err := os.ReadFile(f.path())
	if os.IsNotExist(err) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decoding session file: %w", err)
	}
	if s.Token == "" || s.Expired() {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Clear removes the stored session. Clearing an absent session is a no-op.
func (f *FileStore) Clear() error {
	err := os.Remove(f.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
