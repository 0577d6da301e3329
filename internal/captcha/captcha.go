// Package captcha verifies hCaptcha tokens submitted with anonymous
// form submissions.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"volugram/internal/config"
)

// Verifier checks whether a captcha token is valid
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// Client verifies tokens against the hCaptcha siteverify endpoint
type Client struct {
	enabled   bool
	secret    string
	verifyURL string
	http      *http.Client
}

// NewClient creates a captcha client. When disabled, Verify always
// succeeds (useful in development).
func NewClient(cfg *config.CaptchaConfig) *Client {
	return &Client{
		enabled:   cfg.Enabled,
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify checks the captcha token with the provider
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	if !c.enabled {
		return true, nil
	}
	if token == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer resp.Body.Close()

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode captcha response: %w", err)
	}

	return result.Success, nil
}
