// Package ilp implements a client-side orchestrator for the interledger
// payment protocol: it resolves a pluggable ledger transport, negotiates
// quotes with a connector and submits conditional cross-ledger payments
// through the transport.
package ilp

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitwit/ilp/logger"
	"github.com/vitwit/ilp/metrics"
	"github.com/vitwit/ilp/payments"
	"github.com/vitwit/ilp/plugins"
	"github.com/vitwit/ilp/quoting"
	"github.com/vitwit/ilp/types"
)

// Client is the sole public entry point. It exclusively owns one ledger
// plugin, resolved once at construction, and composes quote negotiation,
// payment submission and the extension registry on top of it.
type Client struct {
	config     *types.ClientConfig
	plugin     plugins.Plugin
	negotiator *quoting.Negotiator
	submitter  *payments.Submitter

	log logger.Logger
	rec metrics.Recorder

	timeout      time.Duration
	connectorURL string
	httpClient   *http.Client

	connecting atomic.Bool

	extMu      sync.RWMutex
	extensions map[string]Extension
}

// New creates a Client for the given configuration. The plugin named by
// cfg.Type is resolved through the plugin registry exactly once; an
// unresolvable type fails with a TRANSPORT_NOT_FOUND error naming the
// identifier.
func New(cfg *types.ClientConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = &types.ClientConfig{}
	}

	// Captured before Validate fills the default: only an explicit log level
	// switches the client off the noop logger.
	logLevel := cfg.LogLevel

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:       cfg,
		log:          logger.NoopLogger{},
		rec:          metrics.NoopRecorder{},
		timeout:      cfg.Timeout,
		connectorURL: cfg.ConnectorURL,
		extensions:   make(map[string]Extension),
	}

	if cfg.EnableMetrics {
		c.rec = metrics.NewPrometheusRecorder()
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, isNoop := c.log.(logger.NoopLogger); isNoop && logLevel != "" {
		c.log = logger.NewZapLogger(logLevel)
	}

	plugin, err := plugins.New(cfg.Type, cfg.Auth)
	if err != nil {
		return nil, err
	}
	c.plugin = plugin

	c.negotiator = quoting.NewNegotiator(c.connectorURL, c.timeout, c.httpClient)
	c.submitter = payments.NewSubmitter(c.timeout)

	c.log.Debug("client created", map[string]any{
		"type":   cfg.Type,
		"ledger": plugin.Prefix(),
	})

	return c, nil
}

// NewWithDefaults creates a Client with default timeouts and logging for the
// given plugin type and auth.
func NewWithDefaults(pluginType string, auth map[string]interface{}) (*Client, error) {
	return New(&types.ClientConfig{
		Type:    pluginType,
		Auth:    auth,
		Timeout: 30 * time.Second,
	})
}

// GetPlugin returns the ledger plugin owned by this client.
func (c *Client) GetPlugin() plugins.Plugin {
	return c.plugin
}

// Connect initiates the plugin's connection to its ledger. The outcome is
// exactly the plugin's outcome; on failure the client returns to the
// not-connecting state.
func (c *Client) Connect(ctx context.Context) error {
	c.connecting.Store(true)

	err := c.plugin.Connect(ctx)
	if err != nil {
		c.connecting.Store(false)
		c.log.Error("connect failed", map[string]any{
			"ledger": c.plugin.Prefix(),
			"error":  err.Error(),
		})
		return err
	}

	c.rec.IncCounter("connect", map[string]string{"ledger": c.plugin.Prefix()})
	return nil
}

// Disconnect tears down the plugin connection and transitions the client to
// the not-connecting state.
func (c *Client) Disconnect(ctx context.Context) error {
	c.connecting.Store(false)
	return c.plugin.Disconnect(ctx)
}

// WaitForConnection waits until the plugin signals connected. It fails fast
// with NOT_CONNECTING when no connect is in flight at the time of the call:
// waiting for a connect that was never initiated would hang forever.
func (c *Client) WaitForConnection(ctx context.Context) error {
	if !c.connecting.Load() {
		return &types.ILPError{
			Code:    types.ErrNotConnecting,
			Message: "client is not currently connecting",
		}
	}

	select {
	case <-c.plugin.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Quote negotiates the price of a cross-ledger payment with the connector.
// The request must fix exactly one of source/destination amount; the result
// exposes the other side plus the connector account to pay through.
func (c *Client) Quote(ctx context.Context, req *types.QuoteRequest) (*types.Quote, error) {
	start := time.Now()
	ledger := c.plugin.Prefix()

	quote, err := c.negotiator.Quote(ctx, ledger, req)
	if err != nil {
		c.rec.IncCounter("quote_failed", map[string]string{"ledger": ledger})
		c.log.Warn("quote failed", map[string]any{
			"ledger":             ledger,
			"destination_ledger": req.DestinationLedger,
			"error":              err.Error(),
		})
		return nil, err
	}

	c.rec.IncCounter("quote", map[string]string{"ledger": ledger})
	c.rec.ObserveLatency("quote", time.Since(start), map[string]string{"ledger": ledger})
	c.log.Debug("quote received", map[string]any{
		"ledger":    ledger,
		"connector": quote.ConnectorAccount,
	})

	return quote, nil
}

// SendQuotedPayment derives a transfer envelope from req and submits it
// through the plugin. Input invariants are checked before any I/O; the
// submission itself happens at most once and its outcome is the plugin's
// outcome.
func (c *Client) SendQuotedPayment(ctx context.Context, req *types.PaymentRequest) error {
	start := time.Now()
	ledger := c.plugin.Prefix()

	if err := c.submitter.SendQuotedPayment(ctx, c.plugin, req); err != nil {
		c.rec.IncCounter("payment_failed", map[string]string{"ledger": ledger})
		c.log.Warn("payment submission failed", map[string]any{
			"ledger":             ledger,
			"destination_ledger": req.DestinationLedger,
			"error":              err.Error(),
		})
		return err
	}

	c.rec.IncCounter("payment", map[string]string{"ledger": ledger})
	c.rec.ObserveLatency("payment", time.Since(start), map[string]string{"ledger": ledger})
	c.log.Info("payment submitted", map[string]any{
		"ledger":              ledger,
		"destination_ledger":  req.DestinationLedger,
		"destination_account": req.DestinationAccount,
		"optimistic":          req.UnsafeOptimisticTransport,
	})

	return nil
}

// FulfillCondition submits the fulfillment of a held transfer's execution
// condition through the plugin. Both values are opaque encoded strings.
func (c *Client) FulfillCondition(ctx context.Context, fulfillment, condition string) error {
	return c.plugin.FulfillCondition(ctx, fulfillment, condition)
}

// Close disconnects and releases the plugin.
func (c *Client) Close() {
	c.connecting.Store(false)
	c.plugin.Close()
}

// Version information
const (
	Version = "1.0.0"
)
