// Package plugins defines the ledger plugin contract consumed by the client
// and the registry through which plugin implementations are resolved by type
// identifier.
package plugins

import (
	"context"

	"github.com/vitwit/ilp/types"
)

// Plugin is the capability contract a ledger transport must implement. A
// client owns exactly one Plugin instance for its lifetime. All blocking
// operations take a context; cancelling the context abandons the wait but
// does not stop the underlying ledger operation.
type Plugin interface {
	// Connect establishes the connection to the ledger.
	Connect(ctx context.Context) error

	// Disconnect tears the connection down.
	Disconnect(ctx context.Context) error

	// IsConnected reports the current connection state.
	IsConnected() bool

	// Ready returns a channel that is closed once the plugin is connected.
	// The channel is reset by Disconnect; callers obtain a fresh one per wait.
	Ready() <-chan struct{}

	// SendTransfer submits a transfer envelope to the ledger. The envelope's
	// top-level ledger must match the plugin's own prefix.
	SendTransfer(ctx context.Context, transfer *types.TransferEnvelope) error

	// FulfillCondition submits the fulfillment of a held transfer's
	// execution condition. Both values are opaque encoded strings.
	FulfillCondition(ctx context.Context, fulfillment, condition string) error

	// Prefix returns the URI-like identifier of the ledger this plugin
	// speaks for.
	Prefix() string

	// GetInfo returns the plugin's ledger identity and precision metadata.
	GetInfo(ctx context.Context) (*types.LedgerInfo, error)

	// Close releases plugin resources.
	Close()
}
