package plugins

import (
	"fmt"
	"sync"

	"github.com/vitwit/ilp/types"
)

// Factory constructs a Plugin from the opaque auth section of a client
// config.
type Factory func(auth map[string]interface{}) (Plugin, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a plugin factory resolvable under the given type
// identifier. Later registrations under the same identifier replace earlier
// ones. Typically called from a plugin package's init.
func Register(typ string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typ] = factory
}

// New resolves the factory registered for typ and instantiates a plugin with
// the supplied auth. An unresolvable identifier yields a TRANSPORT_NOT_FOUND
// error naming the identifier so operators can diagnose missing plugin
// packages.
func New(typ string, auth map[string]interface{}) (Plugin, error) {
	registryMu.RLock()
	factory, ok := registry[typ]
	registryMu.RUnlock()

	if !ok {
		return nil, &types.ILPError{
			Code:    types.ErrTransportNotFound,
			Message: fmt.Sprintf("no ledger plugin registered for type %q", typ),
			Data:    typ,
		}
	}

	plugin, err := factory(auth)
	if err != nil {
		return nil, &types.ILPError{
			Code:    types.ErrTransportNotFound,
			Message: fmt.Sprintf("ledger plugin %q failed to initialize: %v", typ, err),
			Data:    typ,
			Err:     err,
		}
	}

	return plugin, nil
}

// Registered reports whether a factory exists for typ.
func Registered(typ string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[typ]
	return ok
}

// Types returns the identifiers of all registered plugin factories.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(registry))
	for typ := range registry {
		out = append(out, typ)
	}
	return out
}
