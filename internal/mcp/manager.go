package mcp

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
)

var ErrProviderNotFound = errors.New("provider not found")

type Manager struct {
	providers map[string]Provider // name -> instance
	order     []string
}

func NewManager() *Manager {
	return &Manager{providers: map[string]Provider{}}
}

// LoadFromConfig initializes every configured server entry via the registry.
func (m *Manager) LoadFromConfig(cfg *config.Config) error {
	for _, s := range cfg.MCP.Servers {
		f := Lookup(s.Provider)
		if f == nil {
			return fmt.Errorf("unknown provider: %s", s.Provider)
		}
		if _, dup := m.providers[s.Name]; dup {
			return fmt.Errorf("provider %s already loaded", s.Name)
		}
		opts := map[string]any{
			"serverName":      cfg.Server.Name,
			"catalogPath":     s.Catalog,
			"defaultDays":     cfg.Planner.DefaultDays,
			"defaultServings": cfg.Planner.DefaultServings,
		}
		p, err := f(opts)
		if err != nil {
			return fmt.Errorf("init provider %s: %w", s.Name, err)
		}
		m.Add(s.Name, p)
	}
	return nil
}

// Add registers an already built provider instance under name.
func (m *Manager) Add(name string, p Provider) {
	if _, ok := m.providers[name]; !ok {
		m.order = append(m.order, name)
	}
	m.providers[name] = p
}

// Provider returns a provider instance by name.
func (m *Manager) Provider(name string) (Provider, error) {
	p, ok := m.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return p, nil
}

// Default returns the first loaded provider.
func (m *Manager) Default() (Provider, error) {
	if len(m.order) == 0 {
		return nil, ErrProviderNotFound
	}
	return m.providers[m.order[0]], nil
}

// List returns loaded provider names in lexical order.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.providers))
	for k := range m.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
