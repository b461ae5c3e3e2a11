package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"ai-skincare-client/pkg/store"
)

// HTTPError is the typed transport failure: status plus raw body, with a
// status-aware hint for the UI layer.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, truncate(e.Body, 200))
}

// Hint suggests a user-facing remediation for common failure shapes.
func (e *HTTPError) Hint() string {
	switch e.Status {
	case 0, http.StatusNotFound:
		return "check the backend base URL configuration"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "the session is no longer authorized; restart the conversation"
	case http.StatusTooManyRequests:
		return "the service is busy; wait a moment and retry"
	default:
		return "retry the last step"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Client is the HTTP transport collaborator. It only knows how to send
// JSON and receive JSON or a typed error; it retries nothing and cancels
// nothing. Timeouts belong to the injected http.Client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a transport with a bounded default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Do sends one JSON request carrying the session identity as headers and
// returns the raw response body. Non-2xx responses surface as *HTTPError.
func (c *Client) Do(ctx context.Context, s *store.Session, method, path string, payload interface{}) ([]byte, error) {
	tracer := otel.Tracer("ai-skincare-client/backend")
	ctx, span := tracer.Start(ctx, "backend"+path)
	defer span.End()
	span.SetAttributes(
		attribute.String("backend.path", path),
		attribute.String("session.brief_id", s.BriefID),
	)

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Brief-Id", s.BriefID)
	req.Header.Set("X-Trace-Id", s.TraceID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		return nil, &HTTPError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		span.SetStatus(codes.Error, resp.Status)
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}
