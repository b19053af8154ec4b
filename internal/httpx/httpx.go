package httpx

import (
	"net"
	"net/http"
	"time"
)

const DefaultUserAgent = "tron/0.1.0"

// Client is a small wrapper around http.Client with sane defaults for talking
// to market data APIs. It satisfies yahoo.HTTPClient.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

// New returns a pooled client. A zero timeout leaves the overall request
// unbounded; callers then rely on the request context.
func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: DefaultUserAgent}
}

// Do fills in the default headers the request does not set and sends it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req)
}
