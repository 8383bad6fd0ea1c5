package transport

import (
	"context"
		"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoBertuzzi/API-Kolado/pkg/errors"
	"github.com/GustavoBertuzzi/API-Kolado/pkg/logging"
)

func TestClientGetAppliesAuthAndHeaders(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("source", &HeaderAuth{Header: "X-API-KEY", Value: "secret"})
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, DecodeResponse(c.Service(), resp, &body))
	assert.True(t, body.OK)
}

func TestClientPostJSON(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"call":"X","n":1}`, string(raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New("target", nil)
	resp, err := c.PostJSON(context.Background(), srv.URL, map[string]any{"call": "X", "n": 1})
	require.NoError(t, err)
	assert.NoError(t, DecodeResponse(c.Service(), resp, nil))
}

func TestClientPostJSONUnencodableBody(t *testing.T) {
	c := New("target", nil)
	_, err := c.PostJSON(context.Background(), "http://127.0.0.1", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	var pe *errors.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestClientInvalidURL(t *testing.T) {
	c := New("source", nil)
	_, err := c.Get(context.Background(), "://bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestClientTransportFailure(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New("source", nil, WithTimeout(time.Second))
	_, err := c.Get(context.Background(), url)
	assert.Error(t, err)
}

func TestDecodeResponseNon2xx(t *testing.T) {
	logging.DisableLoggingForTest(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"faultstring":"boom"}`))
	}))
	defer srv.Close()

	c := New("target", nil)
	resp, err := c.Get(context.Background(), srv.URL+"/clientes/")
	require.NoError(t, err)

	err = DecodeResponse(c.Service(), resp, &struct{}{})
	require.Error(t, err)

	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "target", apiErr.Service)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, `{"faultstring":"boom"}`, apiErr.Message)
	assert.Contains(t, apiErr.Endpoint, "/clientes/")
	assert.True(t, errors.IsRejected(err))
}

func TestDecodeResponseInvalidJSON(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("not json")),
	}
	var v map[string]any
	err := DecodeResponse("source", resp, &v)
	var pe *errors.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{Timeout: 3 * time.Second}
	c := New("x", nil, WithHTTPClient(hc))
	assert.Same(t, hc, c.http)

	c = New("x", nil, WithHTTPClient(nil))
	assert.Equal(t, DefaultHTTPTimeout, c.http.Timeout)
}

func TestResponseOK(t *testing.T) {
	for status, want := range map[int]bool{200: true, 204: true, 299: true, 199: false, 300: false, 404: false} {
		assert.Equal(t, want, (&Response{StatusCode: status}).OK(), status)
	}
}
