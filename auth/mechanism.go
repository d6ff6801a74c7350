package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maxpert/amqp-go-client/config"
)

// Mechanism represents a client side SASL authentication mechanism
type Mechanism interface {
	// Name returns the mechanism name (e.g., "PLAIN", "EXTERNAL")
	Name() string

	// Response returns the bytes sent in connection.start-ok
	Response() []byte
}

// Registry manages available authentication mechanisms
type Registry struct {
	mechanisms map[string]Mechanism
}

// NewRegistry creates a new mechanism registry
func NewRegistry() *Registry {
	return &Registry{
		mechanisms: make(map[string]Mechanism),
	}
}

// Register adds a mechanism to the registry
func (r *Registry) Register(mechanism Mechanism) {
	r.mechanisms[mechanism.Name()] = mechanism
}

// Get retrieves a mechanism by name
func (r *Registry) Get(name string) (Mechanism, error) {
	mechanism, exists := r.mechanisms[name]
	if !exists {
		return nil, fmt.Errorf("unsupported authentication mechanism: %s", name)
	}
	return mechanism, nil
}

// List returns all registered mechanism names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.mechanisms))
	for name := range r.mechanisms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a space-separated list of mechanism names for AMQP
func (r *Registry) String() string {
	return strings.Join(r.List(), " ")
}

// Select returns the registered mechanism named name, provided the broker
// lists it in offered (the space separated mechanisms field of
// connection.start).
func (r *Registry) Select(name, offered string) (Mechanism, error) {
	m, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if !Offered(offered, name) {
		return nil, fmt.Errorf("broker does not offer SASL mechanism %s (offered: %s)", name, offered)
	}
	return m, nil
}

// Offered reports whether name appears in a mechanisms list.
func Offered(offered, name string) bool {
	for _, w := range strings.Fields(offered) {
		if w == name {
			return true
		}
	}
	return false
}

// FromConfig returns a registry holding the credentials of cfg under every
// mechanism they can serve.
func FromConfig(cfg config.ConnectionConfig) *Registry {
	registry := NewRegistry()
	registry.Register(&PlainMechanism{Username: cfg.Username, Password: cfg.Password})
	if cfg.Identity != "" {
		registry.Register(&ExternalMechanism{Identity: cfg.Identity})
	}
	return registry
}
