package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Gateway delivers one text message.
type Gateway interface {
	Send(ctx context.Context, to, body string) error
}

// HTTPGateway posts messages as JSON to an SMS provider.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	sender  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey, sender string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		sender:  sender,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// Send delivers body to an E.164 number. Failures are not retried.
func (g *HTTPGateway) Send(ctx context.Context, to, body string) error {
	jsonBody, err := json.Marshal(sendRequest{From: g.sender, To: to, Body: body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		var result sendResponse
		if json.Unmarshal(raw, &result) == nil && result.Error != "" {
			return fmt.Errorf("sms gateway: %d: %s", resp.StatusCode, result.Error)
		}
		return fmt.Errorf("sms gateway: unexpected status %d", resp.StatusCode)
	}
	return nil
}
