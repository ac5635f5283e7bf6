// Package network holds the HTTP client shared by every backend call.
package network

import (
	"net/http"
	"time"

	"github.com/playctl/playctl/constant"
)

// Client talks to the streaming backend. Requests without a User-Agent get
// the playctl one.
var Client = New(30 * time.Second)

// New returns a client with the given overall request timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgent{base: newTransport()},
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 8
	t.IdleConnTimeout = 90 * time.Second
	t.ResponseHeaderTimeout = 15 * time.Second
	return t
}

type userAgent struct {
	base http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.base.RoundTrip(req)
}
