// internal/client/locations/client.go
package locations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fleetmap-service/internal/domain/fleet"

	"go.uber.org/zap"
)

const locationsPath = "/vehicles/locations"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 16 << 20

// APIError is returned for non-2xx responses. Message holds the server's own
// explanation when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *APIError) ServerMessage() string {
	return e.Message
}

type envelope struct {
	Success *bool             `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Data    []json.RawMessage `json:"data"`
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client reads the vehicle-locations collection from the fleet backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// ListLocations fetches and decodes every vehicle record. Records that fail to
// decode are skipped so one bad entry never hides the rest.
func (c *Client) ListLocations(ctx context.Context) ([]fleet.Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+locationsPath, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(body)}
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}
	return c.decodeVehicles(records), nil
}

func (c *Client) decodeVehicles(records []json.RawMessage) []fleet.Vehicle {
	vehicles := make([]fleet.Vehicle, 0, len(records))
	for i, raw := range records {
		var v fleet.Vehicle
		if err := json.Unmarshal(raw, &v); err != nil {
			c.logger.Warn("skipping malformed vehicle record", zap.Int("index", i), zap.Error(err))
			continue
		}
		vehicles = append(vehicles, v)
	}
	return vehicles
}

// decodeRecords accepts either the standard envelope or a bare array.
func decodeRecords(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode vehicle locations: %w", err)
		}
		return records, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle locations: %w", err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return nil, &APIError{StatusCode: http.StatusOK, Message: msg}
	}
	return env.Data, nil
}

func serverMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	return env.Error
}
