package ilp

import (
	"github.com/vitwit/ilp/types"
)

// Extension is a capability object attached to a client namespace. Concrete
// extensions define their own operations; callers retrieve the instance with
// Client.Extension and assert to the concrete type.
type Extension interface{}

// ExtensionFactory is the registration-time contract for capability
// modules. Name yields the namespace the extension is attached under; New
// constructs the instance, receiving the client so the extension can call
// back into quote/send/connect.
type ExtensionFactory interface {
	Name() string
	New(client *Client) (Extension, error)
}

// Use registers an extension on the client. The factory contract is enforced
// here, at registration time, not at first use. Registering two extensions
// under the same name overwrites the earlier one: last registration wins.
func (c *Client) Use(factory ExtensionFactory) error {
	if factory == nil {
		return &types.ILPError{
			Code:    types.ErrExtensionContract,
			Message: "extension must provide a name accessor",
		}
	}

	name := factory.Name()
	if name == "" {
		return &types.ILPError{
			Code:    types.ErrExtensionContract,
			Message: "extension name must be a non-empty string",
		}
	}

	instance, err := factory.New(c)
	if err != nil {
		return &types.ILPError{
			Code:    types.ErrExtensionContract,
			Message: "extension construction failed: " + err.Error(),
			Data:    name,
			Err:     err,
		}
	}

	c.extMu.Lock()
	c.extensions[name] = instance
	c.extMu.Unlock()

	c.log.Debug("extension registered", map[string]any{"name": name})
	return nil
}

// Extension looks up a registered extension by namespace.
func (c *Client) Extension(name string) (Extension, bool) {
	c.extMu.RLock()
	defer c.extMu.RUnlock()

	ext, ok := c.extensions[name]
	return ext, ok
}

// Extensions returns the namespaces of all registered extensions.
func (c *Client) Extensions() []string {
	c.extMu.RLock()
	defer c.extMu.RUnlock()

	names := make([]string, 0, len(c.extensions))
	for name := range c.extensions {
		names = append(names, name)
	}
	return names
}
