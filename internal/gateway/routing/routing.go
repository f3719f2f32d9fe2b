package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

// HTTPGateway is a routing provider backed by a directions HTTP API.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a routing gateway. baseURL must be set; returning a
// nil *HTTPGateway would slip past interface nil checks in callers.
func NewHTTPGateway(baseURL string, timeout time.Duration) (*HTTPGateway, error) {
	if baseURL == "" {
		return nil, errors.New("routing gateway: base URL required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type routeRequest struct {
	Origin      pointDTO   `json:"origin"`
	Waypoints   []pointDTO `json:"waypoints,omitempty"`
	Destination pointDTO   `json:"destination"`
}

type routeResponse struct {
	Polyline   string `json:"polyline"`
	LegSeconds []int  `json:"leg_seconds"`
}

// statusError carries a non-2xx answer for retry classification.
type statusError struct {
	Code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("routing provider returned status %d", e.Code)
}

// Unwrap lets callers match apperr.ErrUpstream.
func (e statusError) Unwrap() error { return apperr.ErrUpstream }

// Route requests a route from origin through waypoints to dest.
func (g *HTTPGateway) Route(ctx context.Context, origin domain.Point, waypoints []domain.Point, dest domain.Point) (*domain.Route, error) {
	reqBody := routeRequest{
		Origin:      pointDTO{Lat: origin.Lat, Lng: origin.Lng},
		Destination: pointDTO{Lat: dest.Lat, Lng: dest.Lng},
	}
	for _, w := range waypoints {
		reqBody.Waypoints = append(reqBody.Waypoints, pointDTO{Lat: w.Lat, Lng: w.Lng})
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("routing gateway: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/route", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("routing gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routing gateway: %w: %s", apperr.ErrUpstream, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing gateway: %w", statusError{Code: resp.StatusCode})
	}

	var body routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("routing gateway: decode response: %w", err)
	}
	return &domain.Route{Polyline: body.Polyline, LegSeconds: body.LegSeconds}, nil
}
