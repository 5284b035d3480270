package parser

import (
	"github.com/rios0rios0/requpdate/domain"
)

// Registry manages all registered dependency parser implementations.
type Registry struct {
	parsers map[string]domain.Parser
	order   []string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[string]domain.Parser),
	}
}

// Register adds a parser under its name.
func (r *Registry) Register(p domain.Parser) {
	if _, ok := r.parsers[p.Name()]; !ok {
		r.order = append(r.order, p.Name())
	}
	r.parsers[p.Name()] = p
}

// Get returns the parser with the given name, or nil if not registered.
func (r *Registry) Get(name string) domain.Parser {
	return r.parsers[name]
}

// All returns every registered parser in registration order.
func (r *Registry) All() []domain.Parser {
	result := make([]domain.Parser, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.parsers[name])
	}
	return result
}

// Names returns the list of registered parser names.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
