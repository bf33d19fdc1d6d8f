package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGoTrue answers password and refresh grants with counted tokens.
func fakeGoTrue(t *testing.T, expiresIn int, refreshes *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		n := int64(0)
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			n = refreshes.Add(1)
		}
		resp := map[string]any{
			"access_token":  fmt.Sprintf("access-%d", n),
			"refresh_token": fmt.Sprintf("refresh-%d", n),
			"expires_in":    expiresIn,
			"user":          map[string]string{"id": "u1", "email": "a@b.c"},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestSignInAndCachedToken(t *testing.T) {
	var refreshes atomic.Int64
	srv := fakeGoTrue(t, 3600, &refreshes)
	defer srv.Close()

	m := NewManager(NewProvider(srv.URL, "anon-key"), nil)
	ctx := context.Background()

	s, err := m.SignIn(ctx, 42, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", s.Email)
	assert.Equal(t, "u1", s.UserID)

	tok, err := m.Source(42).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-0", tok)
	assert.Zero(t, refreshes.Load(), "a fresh session must not refresh")
}

func TestEagerRefreshNearExpiry(t *testing.T) {
	var refreshes atomic.Int64
	// 30s validity is under the 60s skew: every Token call should refresh.
	srv := fakeGoTrue(t, 30, &refreshes)
	defer srv.Close()

	m := NewManager(NewProvider(srv.URL, "anon-key"), nil)
	ctx := context.Background()
	_, err := m.SignIn(ctx, 42, "a@b.c", "pw")
	require.NoError(t, err)

	tok, err := m.Source(42).Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", tok)
	assert.Equal(t, int64(1), refreshes.Load())
}

func TestNoSessionYieldsEmptyToken(t *testing.T) {
	m := NewManager(NewProvider("http://127.0.0.1:0", "anon-key"), nil)
	tok, err := m.Source(7).Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestDisabledProvider(t *testing.T) {
	m := NewManager(nil, nil)
	assert.False(t, m.Enabled())

	_, err := m.SignIn(context.Background(), 1, "a@b.c", "pw")
	require.Error(t, err)

	tok, err := m.Source(1).Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestRefreshFailureKeepsSessionAndProceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") == "refresh_token" {
			calls++
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_description": "refresh token revoked"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-0",
			"refresh_token": "refresh-0",
			"expires_in":    10,
			"user":          map[string]string{"id": "u1", "email": "a@b.c"},
		})
	}))
	defer srv.Close()

	m := NewManager(NewProvider(srv.URL, "anon-key"), nil)
	ctx := context.Background()
	_, err := m.SignIn(ctx, 42, "a@b.c", "pw")
	require.NoError(t, err)

	tok, err := m.Source(42).Token(ctx)
	require.NoError(t, err, "a failed refresh degrades to unauthenticated")
	assert.Empty(t, tok)
	assert.Equal(t, 1, calls)

	_, ok := m.Current(ctx, 42)
	assert.True(t, ok, "session survives a failed refresh for re-login decisions")
}

func TestSignInRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_description": "Invalid login credentials"}`))
	}))
	defer srv.Close()

	m := NewManager(NewProvider(srv.URL, "anon-key"), nil)
	_, err := m.SignIn(context.Background(), 1, "a@b.c", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestGrantExpiryFromExpiresIn(t *testing.T) {
	var refreshes atomic.Int64
	srv := fakeGoTrue(t, 3600, &refreshes)
	defer srv.Close()

	g, err := NewProvider(srv.URL, "anon-key").SignIn(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), g.ExpiresAt, 5*time.Second)
}
