package payment

import (
	"fmt"
	"sync"

	"github.com/frozenfood/server/internal/module/order"
	"github.com/frozenfood/server/internal/module/payment/provider"
)

// ProviderRegistry manages the payment providers by method.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[order.PaymentMethod]provider.Provider
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[order.PaymentMethod]provider.Provider),
	}
}

// Register registers a provider under its method name.
func (r *ProviderRegistry) Register(p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[order.PaymentMethod(p.Name())] = p
}

// Get returns the provider for a payment method.
func (r *ProviderRegistry) Get(method order.PaymentMethod) (provider.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMethodNotSupported, method)
	}
	return p, nil
}

// List returns all registered method names.
func (r *ProviderRegistry) List() []order.PaymentMethod {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]order.PaymentMethod, 0, len(r.providers))
	for method := range r.providers {
		methods = append(methods, method)
	}
	return methods
}
