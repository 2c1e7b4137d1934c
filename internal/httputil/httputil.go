// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by every backend
// client: pooled connections, polite user agents, typed status
// errors, and a per-backend circuit breaker.
package httputil

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/academic-mcp/pkg/types"
)

// Connection pool caps, applied per backend client.
const (
	maxConnsPerHost = 10
	maxIdleConns    = 5
)

// maxErrSnippet bounds how much of an error response body is kept.
const maxErrSnippet = 512

// NewClient builds the pooled client for one backend. name labels the
// backend's circuit breaker. Zero timeouts fall back to the standard
// 5 s connect / 30 s overall pair.
func NewClient(name string, cfg types.Config) *http.Client {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = 5 * time.Second
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dialer := &net.Dialer{Timeout: connect}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxConnsPerHost:     maxConnsPerHost,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewBreakerTransport(name, transport, cfg.Breaker),
	}
}

// UserAgent renders the polite-pool user agent. The contact email is
// optional; without one the project URL stands in.
func UserAgent(version, email string) string {
	if email != "" {
		return fmt.Sprintf("academic-mcp/%s (mailto:%s)", version, email)
	}
	return fmt.Sprintf("academic-mcp/%s (+https://github.com/pdiddy/academic-mcp)", version)
}

// GetJSON issues a GET for rawURL and decodes the JSON body into v.
// Non-2xx responses come back as *StatusError.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, v any) error {
	resp, err := get(ctx, client, rawURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// GetXML issues a GET for rawURL and decodes the XML body into v.
// Non-2xx responses come back as *StatusError.
func GetXML(ctx context.Context, client *http.Client, rawURL string, header http.Header, v any) error {
	resp, err := get(ctx, client, rawURL, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := xml.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// GetText issues a GET for rawURL and returns the body verbatim.
func GetText(ctx context.Context, client *http.Client, rawURL string, header http.Header) (string, error) {
	resp, err := get(ctx, client, rawURL, header)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(b), nil
}

func get(ctx context.Context, client *http.Client, rawURL string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrSnippet))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        rawURL,
			Snippet:    strings.TrimSpace(string(snippet)),
		}
	}
	return resp, nil
}
