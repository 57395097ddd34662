// Package payments derives transfer envelopes from quoted payment requests
// and submits them through a ledger plugin.
package payments

import (
	"context"
	"time"

	"github.com/vitwit/ilp/plugins"
	"github.com/vitwit/ilp/types"
)

// Submitter validates payment requests and submits the derived transfer
// envelopes. It adds no retry or idempotence guarantee of its own: each call
// results in at most one plugin submission, and the call's outcome is exactly
// the plugin's outcome.
type Submitter struct {
	timeout time.Duration
}

// NewSubmitter creates a submitter whose plugin calls are bounded by timeout.
func NewSubmitter(timeout time.Duration) *Submitter {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Submitter{timeout: timeout}
}

// SendQuotedPayment validates req, builds the transfer envelope and submits
// it through plugin. Validation happens before any I/O; req is never
// mutated.
func (s *Submitter) SendQuotedPayment(ctx context.Context, plugin plugins.Plugin, req *types.PaymentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	envelope := buildEnvelope(plugin.Prefix(), req)

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return plugin.SendTransfer(sendCtx, envelope)
}

// buildEnvelope derives a fresh transfer envelope: the top-level fields
// describe the source-side leg local to the plugin, the nested ilp_header
// carries the destination-side leg for the connector to decode. Condition
// and expiry are included only when provided, so optimistic payments omit
// both.
func buildEnvelope(sourceLedger string, req *types.PaymentRequest) *types.TransferEnvelope {
	return &types.TransferEnvelope{
		Ledger:  sourceLedger,
		Account: req.ConnectorAccount,
		Amount:  req.SourceAmount,
		Data: types.TransferData{
			ILPHeader: types.ILPHeader{
				Account: req.DestinationAccount,
				Ledger:  req.DestinationLedger,
				Amount:  req.DestinationAmount,
				Data:    req.DestinationMemo,
			},
		},
		ExecutionCondition: req.ExecutionCondition,
		ExpiresAt:          req.ExpiresAt,
	}
}
