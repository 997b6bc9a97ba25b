package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "https://example.com/", r.Header.Get("Referer"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set("User-Agent", "test-agent")
	h.Set("Referer", "https://example.com/")

	body, err := New().Fetch(context.Background(), srv.URL, h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New().Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
	assert.Contains(t, te.Body, "go away")
	assert.False(t, te.Temporary())
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New().Fetch(context.Background(), url, nil)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 0, te.StatusCode)
	assert.True(t, te.Temporary())
}

func TestTemporary(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		e := &TransportError{URL: "u", StatusCode: tt.status, Err: errors.New("x")}
		assert.Equal(t, tt.want, e.Temporary(), "status %d", tt.status)
	}
}

func TestWithTimeoutKeepsClientSettings(t *testing.T) {
	redirect := func(req *http.Request, via []*http.Request) error { return http.ErrUseLastResponse }
	base := &http.Client{Timeout: time.Minute, CheckRedirect: redirect}

	c := New(WithHTTPClient(base), WithTimeout(3*time.Second))
	assert.Equal(t, 3*time.Second, c.http.Timeout)
	assert.NotNil(t, c.http.CheckRedirect)
	assert.Equal(t, time.Minute, base.Timeout)

	c = New(WithHTTPClient(nil), WithTimeout(time.Second))
	require.NotNil(t, c.http)
	assert.Equal(t, time.Second, c.http.Timeout)
}

func TestWithTimeoutFollowsNoRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	noFollow := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	_, err := New(WithHTTPClient(noFollow), WithTimeout(time.Second)).Fetch(context.Background(), srv.URL, nil)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusFound, te.StatusCode)
}
