// Package botgw talks to the messaging gateway that fronts the chat
// platform. The engine never speaks the chat protocol itself; it posts
// delivery requests to the gateway and treats any gateway failure as a
// transient delivery failure.
package botgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/ntroshin/orderflow/internal/domain/errors"
	"github.com/ntroshin/orderflow/internal/domain/gateway"
)

// HTTPClient implements gateway.Messenger via the gateway HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

type interactiveRequest struct {
	ChatID  int64           `json:"chat_id"`
	Text    string          `json:"text"`
	Actions []actionPayload `json:"actions,omitempty"`
}

type actionPayload struct {
	Text     string `json:"text"`
	Callback string `json:"callback"`
}

type documentRequest struct {
	ChatID  int64  `json:"chat_id"`
	Path    string `json:"path"`
	Caption string `json:"caption,omitempty"`
}

// NewHTTPClient creates a gateway client with a default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse bot gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("bot gateway url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// SendInteractive posts a message with inline actions to the recipient.
func (c *HTTPClient) SendInteractive(ctx context.Context, identity int64, text string, actions []gateway.Action) error {
	payload := interactiveRequest{ChatID: identity, Text: text}
	for _, a := range actions {
		payload.Actions = append(payload.Actions, actionPayload{Text: a.Text, Callback: a.Callback})
	}
	return c.post(ctx, "/notify/send_kb", payload)
}

// SendDocument posts a document delivery request to the recipient.
func (c *HTTPClient) SendDocument(ctx context.Context, identity int64, docPath, caption string) error {
	return c.post(ctx, "/notify/send_document", documentRequest{ChatID: identity, Path: docPath, Caption: caption})
}

func (c *HTTPClient) post(ctx context.Context, endpointPath string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bot gateway unreachable: %w", domainErrors.ErrDeliveryFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("bot gateway request failed",
			slog.String("path", endpointPath),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(respBody)))
		return fmt.Errorf("bot gateway status %s: %w", resp.Status, domainErrors.ErrDeliveryFailure)
	}
	return nil
}
