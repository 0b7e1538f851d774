// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/outline-engine/pkg/types"
)

// maxErrorBody bounds how much of a failed response body is kept in a StatusError.
const maxErrorBody = 512

// NewClient returns an HTTP client with the configured timeout. Every request
// it sends carries the configured User-Agent unless the caller set one.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.UserAgent},
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" || req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// StatusError reports a non-200 response from an external API.
type StatusError struct {
	API        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned HTTP %d", e.API, e.StatusCode)
	}
	return fmt.Sprintf("%s returned HTTP %d: %s", e.API, e.StatusCode, e.Body)
}

// CheckStatus returns a *StatusError when resp is not 200 OK. The body is
// read (up to a small limit) but not closed; the caller still owns it.
func CheckStatus(api string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		API:        api,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
