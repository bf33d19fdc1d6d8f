package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider is a minimal client for a GoTrue-style hosted identity service
// (email/password grant plus refresh-token grant). The provider is an
// external collaborator; only the session exchange lives here.
type Provider struct {
	baseURL string
	anonKey string
	httpc   *http.Client
}

func NewProvider(baseURL, anonKey string) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpc:   &http.Client{Timeout: 20 * time.Second},
	}
}

// Grant is one issued session.
type Grant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (Grant, error) {
	return p.token(ctx, "password", map[string]string{"email": email, "password": password})
}

func (p *Provider) Refresh(ctx context.Context, refreshToken string) (Grant, error) {
	return p.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

func (p *Provider) token(ctx context.Context, grantType string, body map[string]string) (Grant, error) {
	payload, _ := json.Marshal(body)
	url := p.baseURL + "/auth/v1/token?grant_type=" + grantType
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Grant{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.anonKey)

	resp, err := p.httpc.Do(req)
	if err != nil {
		return Grant{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		var e struct {
			ErrorDescription string `json:"error_description"`
			Msg              string `json:"msg"`
			Message          string `json:"message"`
		}
		_ = json.Unmarshal(raw, &e)
		reason := e.ErrorDescription
		if reason == "" {
			reason = e.Msg
		}
		if reason == "" {
			reason = e.Message
		}
		if reason == "" {
			reason = strings.TrimSpace(string(raw))
		}
		return Grant{}, fmt.Errorf("auth %s %d: %s", grantType, resp.StatusCode, reason)
	}

	var out struct {
		AccessToken  string `json:"access_token"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
		User         struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Grant{}, fmt.Errorf("auth %s: bad response: %w", grantType, err)
	}
	if out.AccessToken == "" {
		return Grant{}, fmt.Errorf("auth %s: empty access token", grantType)
	}
	return Grant{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
		UserID:       out.User.ID,
		Email:        out.User.Email,
	}, nil
}
