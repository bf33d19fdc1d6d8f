package dreamapi

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/triangle.schema.json
var triangleSchemaJSON string

//go:embed schema/history.schema.json
var historySchemaJSON string

var (
	triangleSchema = jsonschema.MustCompileString("triangle.schema.json", triangleSchemaJSON)
	historySchema  = jsonschema.MustCompileString("history.schema.json", historySchemaJSON)
)

// TokenSource supplies the current bearer token for a user session. An empty
// token with a nil error means "no session"; the call proceeds without an
// Authorization header and the server decides whether that is acceptable.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Client talks to the dream analysis backend. Configuration is fixed at
// construction; the client never retries — retry/backoff policy belongs to
// callers.
type Client struct {
	baseURL string
	apiKey  string
	tokens  TokenSource
	httpc   *http.Client
}

func New(baseURL, apiKey string, tokens TokenSource) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if apiKey == "" {
		log.Printf("dreamapi: client key is empty, the backend will reject requests")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tokens:  tokens,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

// WithTokenSource returns a copy of the client bound to a different session
// source. The bot uses this to scope one shared client to a chat.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

// AnalyzeTriangle submits a dream narrative for the tiered three-lens
// analysis. Works with or without a session; the backend masks premium
// sections by tier.
func (c *Client) AnalyzeTriangle(ctx context.Context, dreamText string) (*TriangleAnalysis, error) {
	body := map[string]any{"user_dream": dreamText}
	data, err := c.do(ctx, http.MethodPost, "/api/dreams/triangle-tiered", body, true)
	if err != nil {
		return nil, err
	}
	var out TriangleAnalysis
	if err := decodeValidated("triangle", data, triangleSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches the authenticated user's saved dreams, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	path := "/api/dreams/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	data, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	var out []HistoryEntry
	if err := decodeValidated("history", data, historySchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health probes the backend. Requires neither client key nor session.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/health", nil, false)
	if err != nil {
		return nil, err
	}
	var out HealthStatus
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &MalformedResponseError{Endpoint: "health", Err: err}
	}
	return &out, nil
}

// do performs one JSON round-trip and returns the raw 2xx body. Non-2xx
// becomes *APIError; transport errors pass through untouched. authed attaches
// a bearer token when the session source has one.
func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if authed && c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			// A broken session source must not block the call; the server
			// will 401 if the endpoint actually needs a session.
			log.Printf("dreamapi: session token unavailable: %v", err)
		} else if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classify(resp.StatusCode, resp.Status, raw)
		if authed {
			logDiagnostics(apiErr)
		}
		return nil, apiErr
	}
	return raw, nil
}

// classify builds the structured error from a failure response. The body is
// expected to be FastAPI-style {"detail": ...} but anything goes: the
// quota-exceeded 402 nests an object under detail, and a non-JSON body falls
// back to a status-text message.
func classify(code int, status string, body []byte) *APIError {
	e := &APIError{StatusCode: code}

	var parsed struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case len(parsed.Detail) > 0:
			e.Detail = detailText(parsed.Detail)
		case parsed.Message != "":
			e.Detail = parsed.Message
		}
		if parsed.Error != "" {
			e.Message = parsed.Error
		}
	}
	if e.Message == "" {
		if e.Detail != "" {
			e.Message = e.Detail
		} else {
			e.Message = strings.TrimSpace(status)
			if e.Message == "" {
				e.Message = fmt.Sprintf("%d %s", code, http.StatusText(code))
			}
		}
	}
	return e
}

// detailText flattens a detail field that may be a string or an object
// ({"error": ..., "message": ...} on quota errors).
func detailText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		switch {
		case obj.Error != "" && obj.Message != "":
			return obj.Error + ": " + obj.Message
		case obj.Message != "":
			return obj.Message
		case obj.Error != "":
			return obj.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

// logDiagnostics is side-channel only: it never changes the error returned.
func logDiagnostics(e *APIError) {
	switch {
	case e.IsForbidden():
		log.Printf("dreamapi: client key rejected by backend (403): check DREAM_API_KEY")
	case e.IsUnauthorized():
		log.Printf("dreamapi: session missing or expired (401): user must log in again")
	case e.IsRateLimited():
		log.Printf("dreamapi: rate limited by backend (429)")
	}
}

func decodeValidated(endpoint string, data []byte, schema *jsonschema.Schema, out any) error {
	var inst any
	if err := json.Unmarshal(data, &inst); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if err := schema.Validate(inst); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Err: err}
	}
	return nil
}
