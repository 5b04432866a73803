// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package directory is the transport to the Bungie.net player directory.
// The Gateway interface is the narrow boundary the resolver depends on;
// Client is its HTTP implementation. Typed helpers in endpoints.go decode
// the three endpoints the resolution pipeline uses.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/sparos/internal/httputil"
	"github.com/pdiddy/sparos/internal/logging"
	"github.com/pdiddy/sparos/pkg/types"
)

// SuccessCode is the PlatformErrorCodes value Bungie returns on success.
const SuccessCode = 1

// Envelope is the wrapper Bungie puts around every platform response.
type Envelope struct {
	ErrorCode       int             `json:"ErrorCode"`
	ErrorStatus     string          `json:"ErrorStatus"`
	Message         string          `json:"Message"`
	ThrottleSeconds int             `json:"ThrottleSeconds"`
	Response        json.RawMessage `json:"Response"`
}

// OK reports whether the envelope carries the success error code.
func (e Envelope) OK() bool { return e.ErrorCode == SuccessCode }

// HasResponse reports whether Response holds a non-empty payload. Absent,
// null, empty object and empty array payloads count as empty.
func (e Envelope) HasResponse() bool {
	trimmed := bytes.TrimSpace(e.Response)
	switch string(trimmed) {
	case "", "null", "{}", "[]":
		return false
	}
	return true
}

// APIError is a platform-level failure: either a non-success ErrorCode in
// a 2xx envelope or a non-2xx response whose body parsed as an envelope.
type APIError struct {
	HTTPStatus  int
	ErrorCode   int
	ErrorStatus string
	Message     string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.ErrorStatus != "" {
		return e.ErrorStatus
	}
	return fmt.Sprintf("Bungie API error code %d", e.ErrorCode)
}

// Gateway performs one request against the directory. path is relative to
// the platform root and must already be escaped. A nil body sends none.
type Gateway interface {
	Do(ctx context.Context, method, path string, body any) (Envelope, error)
}

// Client is the HTTP Gateway.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string
	Log       logrus.FieldLogger
}

// NewClient builds a Client from configuration, filling defaults for the
// base URL, timeout and user agent.
func NewClient(cfg types.DirectoryConfig, log logrus.FieldLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	base := cfg.APIBase
	if base == "" {
		base = types.DefaultAPIBase
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.DefaultUserAgent
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimRight(base, "/"),
		APIKey:    cfg.APIKey,
		UserAgent: ua,
		Log:       logging.OrDiscard(log),
	}
}

// Do sends the request and decodes the envelope. A 2xx response is
// returned as-is even when ErrorCode is not success; callers decide.
func (c *Client) Do(ctx context.Context, method, path string, body any) (Envelope, error) {
	req, err := httputil.NewJSONRequest(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return Envelope{}, err
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	log := logging.OrDiscard(c.Log).WithFields(logrus.Fields{"method": method, "path": path})
	start := time.Now()

	var env Envelope
	err = httputil.DoJSON(c.HTTP, req, &env)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) {
			log.WithField("status", se.StatusCode).Debug("directory request failed")
			var body Envelope
			if json.Unmarshal(se.Body, &body) == nil && (body.Message != "" || body.ErrorCode != 0) {
				return Envelope{}, &APIError{
					HTTPStatus:  se.StatusCode,
					ErrorCode:   body.ErrorCode,
					ErrorStatus: body.ErrorStatus,
					Message:     body.Message,
				}
			}
		}
		return Envelope{}, fmt.Errorf("Bungie API %s %s: %w", method, path, err)
	}

	log.WithFields(logrus.Fields{
		"error_code": env.ErrorCode,
		"elapsed":    time.Since(start).Round(time.Millisecond),
	}).Debug("directory request")
	return env, nil
}
