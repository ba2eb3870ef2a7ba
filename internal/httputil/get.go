// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the upstream clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// TransportError reports that a request produced no usable response: the
// connection failed, the context ended, or the body could not be read.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-200 response. Body holds the response text
// verbatim so callers can surface it.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Get issues a GET to base with params encoded as the query string and
// returns the body of a 200 response. Failures are returned as
// *TransportError or *StatusError. No retries are attempted.
func Get(ctx context.Context, client *http.Client, base string, params url.Values, userAgent string) ([]byte, error) {
	reqURL := base
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &TransportError{URL: base, Err: fmt.Errorf("creating request: %w", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: base, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: base, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: base, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
