// Package imagegen calls the external service that renders GD&T symbol illustrations.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrNotConfigured = errors.New("image generation service not configured")
	ErrEmptyImage    = errors.New("image generation service returned no image")
)

type Client struct {
	url     string
	http    *http.Client
	timeout time.Duration
}

// New returns a client posting to url. A zero timeout means one minute.
func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Client{url: url, http: &http.Client{}, timeout: timeout}
}

type generateReq struct {
	SymbolName string `json:"symbolName"`
	SymbolCode string `json:"symbolCode"`
}

type generateRes struct {
	ImageData string `json:"imageData"`
}

// Generate asks the service for an illustration and returns it as image data
// (normally a data URL).
func (c *Client) Generate(ctx context.Context, symbolName, symbolCode string) (string, error) {
	if c.url == "" {
		return "", ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateReq{SymbolName: symbolName, SymbolCode: symbolCode})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image service returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	var out generateRes
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if out.ImageData == "" {
		return "", ErrEmptyImage
	}
	return out.ImageData, nil
}
