package plugins

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitwit/ilp/types"
)

// MemoryPlugin is an in-process loopback ledger plugin. It keeps every sent
// envelope and fulfillment in memory, which makes it the reference transport
// for tests and examples. Register under type "memory"; auth accepts an
// optional "prefix" string (default "memory.test.").
type MemoryPlugin struct {
	mu        sync.Mutex
	prefix    string
	connected bool
	ready     chan struct{}

	sent         []*types.TransferEnvelope
	fulfillments map[string]string
}

func init() {
	Register("memory", func(auth map[string]interface{}) (Plugin, error) {
		prefix := "memory.test."
		if v, ok := auth["prefix"]; ok {
			s, ok := v.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("auth prefix must be a non-empty string")
			}
			prefix = s
		}
		return NewMemoryPlugin(prefix), nil
	})
}

// NewMemoryPlugin creates a disconnected loopback plugin for the given
// ledger prefix.
func NewMemoryPlugin(prefix string) *MemoryPlugin {
	return &MemoryPlugin{
		prefix:       prefix,
		ready:        make(chan struct{}),
		fulfillments: make(map[string]string),
	}
}

// Connect marks the plugin connected and closes the ready channel.
func (p *MemoryPlugin) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		p.connected = true
		close(p.ready)
	}
	return nil
}

// Disconnect marks the plugin disconnected and resets the ready channel.
func (p *MemoryPlugin) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connected {
		p.connected = false
		p.ready = make(chan struct{})
	}
	return nil
}

// IsConnected reports the connection state.
func (p *MemoryPlugin) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Ready returns the channel closed on connect.
func (p *MemoryPlugin) Ready() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// SendTransfer records the envelope. The plugin must be connected and the
// envelope's ledger must match the plugin's prefix.
func (p *MemoryPlugin) SendTransfer(ctx context.Context, transfer *types.TransferEnvelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return &types.ILPError{
			Code:    types.ErrNetworkError,
			Message: "memory plugin is not connected",
		}
	}

	if transfer.Ledger != p.prefix {
		return &types.ILPError{
			Code:    types.ErrNetworkError,
			Message: fmt.Sprintf("transfer ledger %q does not match plugin prefix %q", transfer.Ledger, p.prefix),
		}
	}

	p.sent = append(p.sent, transfer)
	return nil
}

// FulfillCondition records the fulfillment for a condition.
func (p *MemoryPlugin) FulfillCondition(ctx context.Context, fulfillment, condition string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return &types.ILPError{
			Code:    types.ErrNetworkError,
			Message: "memory plugin is not connected",
		}
	}

	p.fulfillments[condition] = fulfillment
	return nil
}

// Prefix returns the plugin's ledger prefix.
func (p *MemoryPlugin) Prefix() string {
	return p.prefix
}

// GetInfo returns the ledger identity.
func (p *MemoryPlugin) GetInfo(ctx context.Context) (*types.LedgerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &types.LedgerInfo{
		Prefix:    p.prefix,
		Currency:  "TST",
		Precision: 19,
		Scale:     9,
	}, nil
}

// Close disconnects the plugin.
func (p *MemoryPlugin) Close() {
	_ = p.Disconnect(context.Background())
}

// SentTransfers returns a copy of every envelope submitted so far.
func (p *MemoryPlugin) SentTransfers() []*types.TransferEnvelope {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*types.TransferEnvelope, len(p.sent))
	copy(out, p.sent)
	return out
}

// Fulfillment returns the recorded fulfillment for a condition, if any.
func (p *MemoryPlugin) Fulfillment(condition string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, ok := p.fulfillments[condition]
	return f, ok
}
