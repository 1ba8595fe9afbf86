// Package newsletter forwards signups to the marketing automation webhook.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"
)

// ErrInvalidEmail is returned before any request is made when the address
// does not parse.
var ErrInvalidEmail = errors.New("newsletter: invalid email address")

// RejectedError reports a non-2xx webhook response.
type RejectedError struct {
	Status int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("newsletter: webhook rejected signup with status %d", e.Status)
}

// Signup is one newsletter registration.
type Signup struct {
	Email     string
	FirstName string
	LastName  string
	Source    string
}

type payload struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	SignupDate string `json:"signup_date"`
	Source     string `json:"source"`
}

// Client posts signups to a webhook URL.
type Client struct {
	url  string
	http *http.Client
	now  func() time.Time
}

// NewClient returns a Client for webhookURL. A nil httpClient uses a client
// with a ten second timeout.
func NewClient(webhookURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{url: webhookURL, http: httpClient, now: time.Now}
}

// Enabled reports whether a webhook is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// Subscribe sends s to the webhook once. Any 2xx response is success.
func (c *Client) Subscribe(ctx context.Context, s Signup) error {
	addr, err := ValidateEmail(s.Email)
	if err != nil {
		return err
	}
	source := strings.TrimSpace(s.Source)
	if source == "" {
		source = "website"
	}
	body, err := json.Marshal(payload{
		Email:      addr,
		FirstName:  strings.TrimSpace(s.FirstName),
		LastName:   strings.TrimSpace(s.LastName),
		SignupDate: c.now().UTC().Format(time.RFC3339),
		Source:     source,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("newsletter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("newsletter: post signup: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RejectedError{Status: resp.StatusCode}
	}
	return nil
}

// ValidateEmail returns the bare address in raw, rejecting display-name forms
// and anything net/mail cannot parse.
func ValidateEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 254 {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	if !strings.Contains(addr.Address[strings.LastIndexByte(addr.Address, '@')+1:], ".") {
		return "", ErrInvalidEmail
	}
	return addr.Address, nil
}
