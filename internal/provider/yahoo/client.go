// Package yahoo is a client for the public Yahoo Finance chart API
// (/v8/finance/chart). The chart endpoint needs no API key, crumb or cookie,
// which is why the client carries no credentials; its meta block holds the
// live price, previous close and instrument names used for a quote.
package yahoo

import (
	"net/http"
	"net/url"
)

// DefaultBaseURL is Yahoo's public query host. query2.finance.yahoo.com
// serves the same API and can be set with WithBaseURL.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// DefaultUserAgent is sent unless overridden. Yahoo throttles requests that
// carry Go's default "Go-http-client" agent much earlier.
const DefaultUserAgent = "Mozilla/5.0 (compatible; tron/0.1.0)"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=yahoo_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the chart API. The zero value is not usable; use NewClient.
type Client struct {
	// baseURL is the scheme and host requests go to, without a trailing slash.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header is sent with each request. Starts with Accept and User-Agent.
	header http.Header
	// query is merged into each request's range and interval parameters.
	query url.Values
}

// ClientOption configures a Client, either at construction or for one call.
type ClientOption func(*Client)

// WithBaseURL points the client at another host, e.g. an httptest server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the transport. http.DefaultClient is used otherwise.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent replaces DefaultUserAgent.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.header.Set("User-Agent", ua)
	}
}

// WithHeader adds headers to every request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithQuery adds query parameters such as region=US or includePrePost=true.
func WithQuery(query url.Values) ClientOption {
	return func(c *Client) {
		for key, values := range query {
			for _, value := range values {
				c.query.Add(key, value)
			}
		}
	}
}

// NewClient returns a client for DefaultBaseURL.
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header: http.Header{
			"Accept":     []string{"application/json"},
			"User-Agent": []string{DefaultUserAgent},
		},
		query: url.Values{},
	}
	for _, option := range options {
		option(client)
	}
	return client
}
