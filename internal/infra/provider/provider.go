// Package provider holds the delivery channel implementations: one
// SMTP transport for email and two SMS gateways. Providers classify
// their send failures as transient or permanent; that classification
// is what drives retries upstream.
package provider

import (
	"fmt"

	"herald/internal/domain"
)

// Registry maps medium and logical name to a constructed provider. It
// is built once at startup and read-only afterwards.
type Registry struct {
	providers map[string]domain.Provider
	defaults  map[domain.Medium]string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]domain.Provider),
		defaults:  make(map[domain.Medium]string),
	}
}

func (r *Registry) Register(medium domain.Medium, p domain.Provider) {
	key := registryKey(medium, p.Name())
	r.providers[key] = p
	if _, ok := r.defaults[medium]; !ok {
		r.defaults[medium] = p.Name()
	}
}

func (r *Registry) SetDefault(medium domain.Medium, name string) {
	r.defaults[medium] = name
}

func (r *Registry) Resolve(medium domain.Medium, name string) (domain.Provider, error) {
	if name == "" {
		name = r.defaults[medium]
	}
	p, ok := r.providers[registryKey(medium, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrUnknownProvider, medium, name)
	}
	return p, nil
}

func registryKey(medium domain.Medium, name string) string {
	return string(medium) + "/" + name
}

var _ domain.ProviderRegistry = (*Registry)(nil)
