// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrRunNotFound is wrapped by 404 responses. Every endpoint is scoped by
	// run, so a 404 always means a run id did not resolve.
	ErrRunNotFound = errors.New("run not found")
	// ErrUnauthorized is wrapped by 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadEnvelope is returned for 2xx bodies without "ok": true.
	ErrBadEnvelope = errors.New("malformed response envelope")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string
	Method     string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode,
		http.StatusText(e.StatusCode), e.Detail)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrRunNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

const maxDetail = 200

// newAPIError extracts the detail message. FastAPI validation errors carry a
// list rather than a string; those are kept as raw JSON.
func newAPIError(method, url string, status int, body []byte) *APIError {
	detail := gjson.GetBytes(body, "detail")
	var msg string
	switch {
	case detail.Type == gjson.String:
		msg = detail.Str
	case detail.Exists():
		msg = detail.Raw
	default:
		msg = strings.TrimSpace(string(body))
	}
	if len(msg) > maxDetail {
		msg = msg[:maxDetail] + "..."
	}
	return &APIError{StatusCode: status, Detail: msg, Method: method, URL: url}
}

// Friendly rewrites well known failures into a message that says what to do,
// keeping err in the chain for errors.Is and errors.As.
func Friendly(err error, op, server string) error {
	if err == nil {
		return nil
	}
	server = nonEmpty(server, "<unknown>")

	if errors.Is(err, ErrUnauthorized) {
		return fmt.Errorf("%s on %s: authentication failed. Set TRACEDIFF_TOKEN: %w",
			nonEmpty(op, "request"), server, err)
	}
	return fmt.Errorf("%s on %s: %w", nonEmpty(op, "request"), server, err)
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
