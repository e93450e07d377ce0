package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/civicpulse/request-notifier/internal/domain"
)

const errorBodyLimit = 1024

// SendRequest is the JSON body posted to the push gateway.
type SendRequest struct {
	To        string          `json:"to"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Data      domain.PushData `json:"data"`
	Sound     string          `json:"sound,omitempty"`
	Priority  string          `json:"priority,omitempty"`
	ChannelID string          `json:"channelId,omitempty"`
}

// SendResponse maps the gateway's acknowledgement body.
type SendResponse struct {
	Data struct {
		Status  string         `json:"status"`
		ID      string         `json:"id"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"data"`
}

// ExpoGateway delivers messages with a single JSON POST to an Expo-style
// push endpoint. The URL is injected from config so tests can point to a
// local server.
type ExpoGateway struct {
	url         string
	accessToken string
	client      *retryablehttp.Client
}

func NewExpoGateway(url, accessToken string, timeout time.Duration) *ExpoGateway {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.CheckRetry = func(_ context.Context, _ *http.Response, _ error) (bool, error) {
		return false, nil
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	client.HTTPClient = &http.Client{Timeout: timeout}

	return &ExpoGateway{url: url, accessToken: accessToken, client: client}
}

// Send posts the message and expects a 2xx response whose acknowledgement
// status is "ok".
func (g *ExpoGateway) Send(ctx context.Context, msg *domain.PushMessage) (*Receipt, error) {
	body, err := json.Marshal(SendRequest{
		To:        msg.To,
		Title:     msg.Title,
		Body:      msg.Body,
		Data:      msg.Data,
		Sound:     msg.Hint.Sound,
		Priority:  msg.Hint.Priority,
		ChannelID: msg.Hint.ChannelID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		if text := strings.TrimSpace(string(snippet)); text != "" {
			return nil, errors.Errorf("unexpected gateway status: %d (%s)", resp.StatusCode, text)
		}
		return nil, errors.Errorf("unexpected gateway status: %d", resp.StatusCode)
	}

	var sendResp SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}

	if sendResp.Data.Status == "error" {
		reason := sendResp.Data.Message
		if code, ok := sendResp.Data.Details["error"].(string); ok {
			reason += " [" + code + "]"
		}
		return nil, errors.Errorf("gateway rejected message: %s", reason)
	}

	return &Receipt{ID: sendResp.Data.ID, Status: sendResp.Data.Status}, nil
}

// compile-time check that ExpoGateway implements Gateway
var _ Gateway = (*ExpoGateway)(nil)
