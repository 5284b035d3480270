package splicer

import (
	"github.com/rios0rios0/requpdate/domain"
)

// Registry manages all registered file splicer implementations.
type Registry struct {
	splicers map[string]domain.Splicer
}

// NewRegistry creates an empty splicer registry.
func NewRegistry() *Registry {
	return &Registry{
		splicers: make(map[string]domain.Splicer),
	}
}

// Register adds a splicer under its name.
func (r *Registry) Register(s domain.Splicer) {
	r.splicers[s.Name()] = s
}

// Get returns the splicer with the given name, or nil if not registered.
func (r *Registry) Get(name string) domain.Splicer {
	return r.splicers[name]
}

// Names returns the list of registered splicer names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.splicers))
	for name := range r.splicers {
		names = append(names, name)
	}
	return names
}
