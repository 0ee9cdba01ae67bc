package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ecu-stand/internal/core/config"
	"ecu-stand/internal/core/httpclient"
	"ecu-stand/internal/features/orders/ports"
)

// ResendNotifier implements ports.Notifier using the Resend REST API.
type ResendNotifier struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// baseURL is the API root without a trailing slash.
	baseURL string
	// apiKey is sent as a bearer token.
	apiKey string
}

// NewResendNotifier creates a new instance of ResendNotifier.
// The key may be empty; the intake service refuses to send in that case.
func NewResendNotifier(cfg config.MailConfig) *ResendNotifier {
	return &ResendNotifier{
		client:  httpclient.NewClient("resend", 0),
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Send delivers one email. Any non-2xx answer is an error.
func (n *ResendNotifier) Send(ctx context.Context, email ports.Email) error {
	body, err := json.Marshal(resendEmail{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr resendError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API returned status %d: %s: %s", resp.StatusCode, apiErr.Name, apiErr.Message)
		}
		return fmt.Errorf("resend API returned status: %d", resp.StatusCode)
	}

	return nil
}

// resendEmail is the request body of POST /emails.
type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// resendError is the error body Resend returns for rejected sends.
type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

var _ ports.Notifier = (*ResendNotifier)(nil)
