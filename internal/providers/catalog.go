package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Options es la configuración declarativa (YAML) de un provider del catálogo.
type Options struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	ClientID     string            `yaml:"client_id"`
	ClientSecret string            `yaml:"client_secret"`
	Scopes       []string          `yaml:"scopes"`
	Params       map[string]string `yaml:"params"`
	// Extra es config específica del provider (tenant_id, team_id, ...).
	Extra map[string]string `yaml:"extra"`
}

// Factory construye un Config a partir de Options.
type Factory func(o Options) (Config, error)

// Registry mapea nombres de provider a su Factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry crea un registry vacío.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Catalog es el registry global donde se registran los sub-paquetes.
var Catalog = NewRegistry()

// Register registra f en el Catalog. Pensado para init().
func Register(name string, f Factory) { Catalog.RegisterFactory(name, f) }

// RegisterFactory registra una factory. Registrar dos veces el mismo nombre es un bug.
func (r *Registry) RegisterFactory(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.factories[name]; dup {
		panic("providers: factory already registered: " + name)
	}
	r.factories[name] = f
}

// Build construye el Config del provider name. ID por defecto = name.
func (r *Registry) Build(name string, o Options) (Config, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return Config{}, fmt.Errorf("provider not registered: %s", name)
	}
	c, err := f(o)
	if err != nil {
		return Config{}, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	if o.ID != "" {
		c.ID = o.ID
	}
	if o.Name != "" {
		c.Name = o.Name
	}
	return c, nil
}

// Available devuelve los nombres registrados, ordenados.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
