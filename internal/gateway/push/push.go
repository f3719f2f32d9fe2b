package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

// HTTPGateway delivers push notifications through the notifications service.
// Callers treat delivery as best-effort; failures are reported but carry no
// transactional weight.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a push gateway. baseURL must be set; returning a
// nil *HTTPGateway would slip past interface nil checks in callers.
func NewHTTPGateway(baseURL string, timeout time.Duration) (*HTTPGateway, error) {
	if baseURL == "" {
		return nil, errors.New("push gateway: base URL required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type pushRequest struct {
	RecipientID string            `json:"recipient_id"`
	Audience    string            `json:"audience"`
	Title       string            `json:"title"`
	Body        string            `json:"body"`
	Data        map[string]string `json:"data,omitempty"`
}

// Push sends one notification.
func (g *HTTPGateway) Push(ctx context.Context, recipient uuid.UUID, aud domain.Audience, title, body string, data map[string]string) error {
	payload, err := json.Marshal(pushRequest{
		RecipientID: recipient.String(),
		Audience:    string(aud),
		Title:       title,
		Body:        body,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("push gateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/notifications", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway: %w: %s", apperr.ErrUpstream, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push gateway: %w: status %d", apperr.ErrUpstream, resp.StatusCode)
	}
	return nil
}
