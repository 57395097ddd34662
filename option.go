package ilp

import (
	"net/http"
	"time"

	"github.com/vitwit/ilp/logger"
	"github.com/vitwit/ilp/metrics"
)

type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Client) {
		c.rec = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		c.timeout = t
	}
}

// WithConnectorURL overrides the quote service endpoint; it takes precedence
// over the config field and over derivation from the destination ledger.
func WithConnectorURL(u string) Option {
	return func(c *Client) {
		c.connectorURL = u
	}
}

// WithHTTPClient supplies the HTTP client used for the quote exchange.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}
