// Package resend sends mail through the Resend HTTP API.
package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmehra2102/Restaurant-POS/internal/report/application"
)

const DefaultEndpoint = "https://api.resend.com/emails"

type Client struct {
	log      *slog.Logger
	http     *http.Client
	endpoint string
}

type Option func(*Client)

func WithEndpoint(u string) Option {
	return func(c *Client) { c.endpoint = u }
}

func NewClient(log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		log:      log,
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: DefaultEndpoint,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type payload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send posts the message; any 2xx is success.
func (c *Client) Send(ctx context.Context, apiKey string, m application.Message) error {
	body, err := json.Marshal(payload{From: m.From, To: m.To, Subject: m.Subject, Text: m.Text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	c.log.Debug("resend accepted message", "status", resp.StatusCode, "subject", m.Subject)
	return nil
}
