// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRequest_EncodesBody(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.invalid/x", map[string]string{"displayNamePrefix": "Sparrow"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"displayNamePrefix":"Sparrow"}`, string(data))
}

func TestNewJSONRequest_NilBody(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodGet, "http://example.invalid/x", nil)
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestDoJSON_DecodesSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ErrorCode":1,"Message":"Ok"}`)
	}))
	defer ts.Close()

	req, err := NewJSONRequest(context.Background(), http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	var out struct {
		ErrorCode int
		Message   string
	}
	require.NoError(t, DoJSON(ts.Client(), req, &out))
	assert.Equal(t, 1, out.ErrorCode)
	assert.Equal(t, "Ok", out.Message)
}

func TestDoJSON_StatusErrorCarriesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"ErrorCode":5,"Message":"System disabled"}`)
	}))
	defer ts.Close()

	req, err := NewJSONRequest(context.Background(), http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	err = DoJSON(ts.Client(), req, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)

	var env map[string]any
	require.NoError(t, json.Unmarshal(se.Body, &env))
	assert.Equal(t, "System disabled", env["Message"])
}

func TestDoJSON_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer ts.Close()

	req, err := NewJSONRequest(context.Background(), http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	var out map[string]any
	err = DoJSON(ts.Client(), req, &out)
	assert.ErrorContains(t, err, "parsing response")
}

func TestDoJSON_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := NewJSONRequest(ctx, http.MethodGet, ts.URL, nil)
	require.NoError(t, err)

	err = DoJSON(ts.Client(), req, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
