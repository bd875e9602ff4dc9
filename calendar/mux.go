package calendar

import (
	"context"
	"fmt"
	"sync"

	"github.com/guilherme-santos/agendahub"
)

type Mux struct {
	mu        sync.Mutex
	providers map[agendahub.Source]agendahub.Provider
}

func NewMux() *Mux {
	return &Mux{
		providers: make(map[agendahub.Source]agendahub.Provider),
	}
}

// Get resolves the provider for a source. Manual and friend-link agendas
// are populated by the generator rather than synchronized, so they get a
// provider that returns no events without touching the network.
func (m *Mux) Get(source agendahub.Source) (agendahub.Provider, error) {
	if !source.OAuth() {
		return noEvents{}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	provider, ok := m.providers[source]
	if !ok {
		return nil, fmt.Errorf("source %q is not implemented", source)
	}
	return provider, nil
}

func (m *Mux) Register(source agendahub.Source, provider agendahub.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.providers[source] = provider
}

type noEvents struct{}

func (noEvents) Events(context.Context, string, string) ([]*agendahub.Appointment, error) {
	return []*agendahub.Appointment{}, nil
}
