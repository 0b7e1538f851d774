// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/outline-engine/pkg/types"
)

func TestNewClient_SetsUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "outline-engine/test"})
	assert.Equal(t, 5*time.Second, client.Timeout)

	resp, err := client.Get(ts.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "outline-engine/test", got)
}

func TestNewClient_KeepsCallerUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")

	resp, err := NewClient(types.HTTPConfig{UserAgent: "outline-engine/test"}).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom", got)
}

func TestCheckStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(" invalid token \n"))
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ok")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NoError(t, CheckStatus("ADS API", resp))

	resp2, err := http.Get(ts.URL + "/denied")
	require.NoError(t, err)
	defer resp2.Body.Close()

	err = CheckStatus("ADS API", resp2)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "invalid token", se.Body)
	assert.Equal(t, "ADS API returned HTTP 401: invalid token", err.Error())
}
