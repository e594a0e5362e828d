package adapters

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostPort(t *testing.T, ts *httptest.Server) (string, int) {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestUpstream_ForwardPreservesRequest(t *testing.T) {
	var gotConnection string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotConnection = r.Header.Get("Keep-Alive")
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/a/b", r.URL.Path)
		assert.Equal(t, "x=1&y=2", r.URL.RawQuery)
		assert.Equal(t, "v", r.Header.Get("X-Custom"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "payload", string(body))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer backend.Close()
	host, port := hostPort(t, backend)

	in := httptest.NewRequest(http.MethodPut, "http://gateway.local/a/b?x=1&y=2", strings.NewReader("payload"))
	in.Header.Set("X-Custom", "v")
	in.Header.Set("Keep-Alive", "timeout=5")

	u := NewUpstream(&http.Client{})
	resp, err := u.Forward(in, host, port)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Empty(t, gotConnection, "hop-by-hop headers must be stripped")
}

func TestUpstream_ForwardConnectionRefused(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	host, port := hostPort(t, backend)
	backend.Close()

	in := httptest.NewRequest(http.MethodGet, "http://gateway.local/", nil)
	u := NewUpstream(&http.Client{})
	resp, err := u.Forward(in, host, port)
	require.Error(t, err)
	assert.Nil(t, resp)
}
