// Package adapters contains the gateway's outbound HTTP plumbing.
package adapters

import (
	"fmt"
	"net/http"
	"net/url"
)

// hopByHopHeaders must not be forwarded between the client and the backend.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Upstream forwards client requests to a backend's internal address. It
// carries no routing state of its own; the handlers decide the target before
// calling Forward and never re-validate it afterwards, so a backend deleted
// mid-flight just fails this one call.
type Upstream struct {
	client *http.Client
}

// NewUpstream creates a forwarder over the given HTTP client. The client's
// own connect/response timeouts are the only timeout contract; a hung backend
// makes its proxied requests hang correspondingly.
func NewUpstream(client *http.Client) *Upstream {
	return &Upstream{client: client}
}

// Forward replays in against host:port with the same method, path, query
// string, headers and body, and returns the backend's response unread. The
// caller owns the response body.
func (u *Upstream) Forward(in *http.Request, host string, port int) (*http.Response, error) {
	target := url.URL{
		Scheme:   "http",
		Host:     fmt.Sprintf("%s:%d", host, port),
		Path:     in.URL.Path,
		RawQuery: in.URL.RawQuery,
	}

	out, err := http.NewRequestWithContext(in.Context(), in.Method, target.String(), in.Body)
	if err != nil {
		return nil, err
	}
	out.Header = in.Header.Clone()
	for _, h := range hopByHopHeaders {
		out.Header.Del(h)
	}
	out.ContentLength = in.ContentLength

	return u.client.Do(out)
}
