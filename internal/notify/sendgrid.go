package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
)

// DefaultAPIURL is the SendGrid v3 send endpoint.
const DefaultAPIURL = "https://api.sendgrid.com/v3/mail/send"

var (
	ErrNoAPIKey   = errors.New("SENDGRID_API_KEY environment variable is not set")
	ErrSendFailed = errors.New("SendGrid API error")
)

// Message is one outgoing email.
type Message struct {
	ToEmail   string
	ToName    string
	FromEmail string
	FromName  string
	Subject   string
	HTML      string
	Text      string
}

// Client sends mail through the SendGrid API.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a SendGrid client. A missing key is reported per send with
// ErrNoAPIKey so every recipient gets a failed log row.
func NewClient(apiURL, apiKey string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiKey: apiKey,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send delivers msg.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	payload, err := buildPayload(msg)
	if err != nil {
		return fmt.Errorf("build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %d - %s", ErrSendFailed, resp.StatusCode, string(body))
	}

	return nil
}

type payloadField struct {
	path  string
	value any
}

// buildPayload assembles the v3 mail/send document. The plain-text part must
// precede the HTML part.
func buildPayload(msg Message) ([]byte, error) {
	fields := []payloadField{
		{"personalizations.0.to.0.email", msg.ToEmail},
		{"personalizations.0.to.0.name", msg.ToName},
		{"personalizations.0.subject", msg.Subject},
		{"from.email", msg.FromEmail},
		{"from.name", msg.FromName},
	}

	type part struct{ mime, body string }
	parts := []part{{"text/html", msg.HTML}}
	if msg.Text != "" {
		parts = append([]part{{"text/plain", msg.Text}}, parts...)
	}
	for i, p := range parts {
		fields = append(fields,
			payloadField{fmt.Sprintf("content.%d.type", i), p.mime},
			payloadField{fmt.Sprintf("content.%d.value", i), p.body},
		)
	}

	doc := []byte(`{}`)
	var err error
	for _, f := range fields {
		doc, err = sjson.SetBytes(doc, f.path, f.value)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}
