package types

import (
	"time"
)

// ProtocolVersion is the version of the interledger payment protocol
// spoken by this library.
const ProtocolVersion = 1

// ClientConfig selects and configures the ledger plugin owned by a Client.
// Type resolves a plugin implementation through the plugin registry; Auth is
// handed to the plugin factory opaquely. The config is immutable after
// construction.
type ClientConfig struct {
	// Type is the plugin type identifier (e.g. "bells", "memory").
	Type string `json:"type" validate:"required"`

	// Auth carries plugin-specific credentials and endpoints. The core never
	// inspects it.
	Auth map[string]interface{} `json:"auth,omitempty"`

	// ConnectorURL is the quote service endpoint of the connector. When empty,
	// the negotiator derives the endpoint from the destination ledger.
	ConnectorURL string `json:"connectorUrl,omitempty"`

	// Timeout bounds each outbound operation (quote exchange, transfer
	// submission). Zero means the library default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// LogLevel selects the log verbosity ("debug", "info", "warn", "error").
	LogLevel string `json:"logLevel,omitempty"`

	// EnableMetrics turns on prometheus recording for client operations.
	EnableMetrics bool `json:"enableMetrics,omitempty"`
}

// Validate checks required fields and applies implicit defaults.
func (c *ClientConfig) Validate() error {
	if c.Type == "" {
		return &ILPError{
			Code:    ErrConfigError,
			Message: "plugin type is required",
		}
	}

	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	return nil
}

// QuoteRequest asks a connector for the price of a cross-ledger payment.
// Exactly one of SourceAmount/DestinationAmount must be set; the connector
// fills in the other side.
type QuoteRequest struct {
	// DestinationLedger is the URI-like prefix of the ledger the payment
	// should arrive on.
	DestinationLedger string `json:"destinationLedger" validate:"required"`

	// SourceAmount fixes the amount debited on the source ledger.
	// Represented as a decimal string to avoid float precision loss.
	SourceAmount string `json:"sourceAmount,omitempty"`

	// DestinationAmount fixes the amount credited on the destination ledger.
	DestinationAmount string `json:"destinationAmount,omitempty"`
}

// Validate enforces the exactly-one-of amount invariant. It is called before
// any network access.
func (q *QuoteRequest) Validate() error {
	if q.DestinationLedger == "" {
		return &ILPError{
			Code:    ErrInvalidQuoteRequest,
			Message: "destinationLedger is required",
		}
	}

	if (q.SourceAmount == "") == (q.DestinationAmount == "") {
		return &ILPError{
			Code:    ErrInvalidQuoteRequest,
			Message: "Should provide source or destination amount but not both",
		}
	}

	return nil
}

// Quote is the normalized result of a negotiation exchange. Exactly one of
// SourceAmount/DestinationAmount is set, mirroring which side of the request
// was fixed.
type Quote struct {
	SourceAmount      string `json:"sourceAmount,omitempty"`
	DestinationAmount string `json:"destinationAmount,omitempty"`

	// ConnectorAccount is the connector's account on the source ledger; a
	// quoted payment is submitted as a transfer to this account.
	ConnectorAccount string `json:"connectorAccount"`
}

// QuoteResponse is the raw wire shape returned by a connector's quote
// service.
type QuoteResponse struct {
	SourceAmount           string `json:"source_amount,omitempty"`
	DestinationAmount      string `json:"destination_amount,omitempty"`
	SourceConnectorAccount string `json:"source_connector_account"`
}

// PaymentRequest describes a quoted payment to submit through the plugin.
// Amounts and the connector account normally come from a prior Quote.
type PaymentRequest struct {
	// ConnectorAccount is the source-ledger account the transfer is sent to.
	ConnectorAccount string `json:"connectorAccount" validate:"required"`

	// SourceAmount is the amount of the source-ledger transfer.
	SourceAmount string `json:"sourceAmount" validate:"required"`

	// DestinationAmount is the amount the receiver should get on the
	// destination ledger.
	DestinationAmount string `json:"destinationAmount" validate:"required"`

	// DestinationLedger and DestinationAccount identify the receiving side.
	DestinationLedger  string `json:"destinationLedger" validate:"required"`
	DestinationAccount string `json:"destinationAccount" validate:"required"`

	// DestinationMemo is opaque data delivered to the receiver inside the
	// interledger header.
	DestinationMemo map[string]interface{} `json:"destinationMemo,omitempty"`

	// ExecutionCondition is the opaque crypto-condition gating execution of
	// the transfer. Required unless UnsafeOptimisticTransport is set.
	ExecutionCondition string `json:"executionCondition,omitempty"`

	// ExpiresAt is the transfer expiry timestamp (RFC 3339). Required
	// whenever ExecutionCondition is present.
	ExpiresAt string `json:"expiresAt,omitempty"`

	// UnsafeOptimisticTransport submits the payment without a condition,
	// accepting settlement risk.
	UnsafeOptimisticTransport bool `json:"unsafeOptimisticTransport,omitempty"`
}

// Validate enforces the condition/expiry invariants. It is called before any
// I/O; violating requests never reach the plugin.
func (p *PaymentRequest) Validate() error {
	if p.ExecutionCondition == "" && !p.UnsafeOptimisticTransport {
		return &ILPError{
			Code:    ErrMissingCondition,
			Message: "executionCondition must be provided unless unsafeOptimisticTransport is true",
		}
	}

	if p.ExecutionCondition != "" && p.ExpiresAt == "" {
		return &ILPError{
			Code:    ErrMissingExpiry,
			Message: "executionCondition should not be used without expiresAt",
		}
	}

	return nil
}

// ILPHeader is the destination-side leg of a payment, embedded inside the
// source transfer's payload for the connector/receiver to decode.
type ILPHeader struct {
	Account string                 `json:"account"`
	Ledger  string                 `json:"ledger"`
	Amount  string                 `json:"amount"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// TransferData is the opaque payload of a transfer envelope.
type TransferData struct {
	ILPHeader ILPHeader `json:"ilp_header"`
}

// TransferEnvelope is the payload handed to a plugin's SendTransfer. The
// top-level ledger and amount always describe the source-side leg (the leg
// local to this client's plugin); the nested ilp_header carries the
// destination-side leg.
type TransferEnvelope struct {
	Ledger  string       `json:"ledger"`
	Account string       `json:"account"`
	Amount  string       `json:"amount"`
	Data    TransferData `json:"data"`

	// ExecutionCondition and ExpiresAt are present only for conditional
	// transfers; optimistic payments omit both.
	ExecutionCondition string `json:"executionCondition,omitempty"`
	ExpiresAt          string `json:"expiresAt,omitempty"`
}

// LedgerInfo describes a plugin's ledger identity.
type LedgerInfo struct {
	Prefix    string `json:"prefix"`
	Currency  string `json:"currencyCode,omitempty"`
	Precision int    `json:"precision,omitempty"`
	Scale     int    `json:"scale,omitempty"`
}

// ILPError is the error type surfaced by every component of the library.
type ILPError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

func (e *ILPError) Error() string {
	return e.Message
}

func (e *ILPError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrTransportNotFound   = "TRANSPORT_NOT_FOUND"
	ErrNotConnecting       = "NOT_CONNECTING"
	ErrInvalidQuoteRequest = "INVALID_QUOTE_REQUEST"
	ErrQuoteFailed         = "QUOTE_FAILED"
	ErrMissingCondition    = "MISSING_CONDITION"
	ErrMissingExpiry       = "MISSING_EXPIRY"
	ErrExtensionContract   = "EXTENSION_CONTRACT"
	ErrInvalidPayment      = "INVALID_PAYMENT"
	ErrNetworkError        = "NETWORK_ERROR"
	ErrConfigError         = "CONFIG_ERROR"
)
