package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sync"
	"time"

	"dream-bot/api/internal/dreamapi"
	"dream-bot/api/internal/store"
)

// Sessions are refreshed when under this much validity remains.
const refreshSkew = 60 * time.Second

// Manager tracks one identity-provider session per chat, caching in memory
// and persisting through the session repo so restarts keep users signed in.
// A nil provider disables login entirely; token lookups then report no
// session and calls proceed unauthenticated.
type Manager struct {
	provider *Provider
	repo     *store.SessionRepo // nil means memory-only

	mu    sync.Mutex
	cache map[int64]store.Session
}

func NewManager(p *Provider, repo *store.SessionRepo) *Manager {
	return &Manager{provider: p, repo: repo, cache: make(map[int64]store.Session)}
}

func (m *Manager) Enabled() bool { return m.provider != nil }

func (m *Manager) SignIn(ctx context.Context, chatID int64, email, password string) (store.Session, error) {
	if m.provider == nil {
		return store.Session{}, errors.New("identity provider not configured")
	}
	g, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return store.Session{}, err
	}
	s := store.Session{
		ChatID:       chatID,
		UserID:       g.UserID,
		Email:        g.Email,
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		ExpiresAt:    g.ExpiresAt,
	}
	m.put(ctx, s)
	return s, nil
}

func (m *Manager) SignOut(ctx context.Context, chatID int64) {
	m.mu.Lock()
	delete(m.cache, chatID)
	m.mu.Unlock()
	if m.repo != nil {
		if err := m.repo.Delete(ctx, chatID); err != nil {
			log.Printf("auth: delete session chat=%d: %v", chatID, err)
		}
	}
}

// Current returns the chat's session without refreshing it.
func (m *Manager) Current(ctx context.Context, chatID int64) (store.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx, chatID)
}

// Source binds the manager to one chat as a dreamapi token source.
func (m *Manager) Source(chatID int64) dreamapi.TokenSource {
	return dreamapi.TokenFunc(func(ctx context.Context) (string, error) {
		return m.token(ctx, chatID)
	})
}

// token returns the chat's current access token, refreshing eagerly when the
// session is within refreshSkew of expiry. No session is not an error: the
// empty token tells the API client to proceed unauthenticated.
func (m *Manager) token(ctx context.Context, chatID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.load(ctx, chatID)
	if !ok {
		return "", nil
	}
	if time.Until(s.ExpiresAt) >= refreshSkew {
		return s.AccessToken, nil
	}

	if m.provider == nil {
		return "", nil
	}
	g, err := m.provider.Refresh(ctx, s.RefreshToken)
	if err != nil {
		// Leave the stored session alone: the backend will answer 401 and
		// the UI offers re-login; a transient provider error must not wipe
		// a recoverable session.
		log.Printf("auth: refresh failed chat=%d: %v", chatID, err)
		return "", nil
	}
	s.AccessToken = g.AccessToken
	s.RefreshToken = g.RefreshToken
	s.ExpiresAt = g.ExpiresAt
	m.putLocked(ctx, s)
	return s.AccessToken, nil
}

// load must be called with the mutex held.
func (m *Manager) load(ctx context.Context, chatID int64) (store.Session, bool) {
	if s, ok := m.cache[chatID]; ok {
		return s, true
	}
	if m.repo == nil {
		return store.Session{}, false
	}
	s, err := m.repo.Find(ctx, chatID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("auth: load session chat=%d: %v", chatID, err)
		}
		return store.Session{}, false
	}
	m.cache[chatID] = s
	return s, true
}

func (m *Manager) put(ctx context.Context, s store.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(ctx, s)
}

func (m *Manager) putLocked(ctx context.Context, s store.Session) {
	m.cache[s.ChatID] = s
	if m.repo != nil {
		if err := m.repo.Upsert(ctx, s); err != nil {
			log.Printf("auth: persist session chat=%d: %v", s.ChatID, err)
		}
	}
}
