package strategy

import (
	"fmt"
	"sort"
)

// Registry holds named strategy constructors. Constructors, not instances:
// every backtest run gets a fresh strategy with fresh scratch state.
type Registry struct {
	constructors map[string]func() Strategy
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]func() Strategy)}
}

// DefaultRegistry returns a Registry with all built-in strategies registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("ma", func() Strategy { return NewSingleMA() })
	r.Register("ma_cross", func() Strategy { return NewMACross() })
	r.Register("one_three_one", func() Strategy { return NewOneThreeOne() })
	return r
}

// Register adds a constructor under the given name.
func (r *Registry) Register(name string, build func() Strategy) {
	r.constructors[name] = build
}

// New builds a fresh instance of the named strategy.
func (r *Registry) New(name string) (Strategy, error) {
	build, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return build(), nil
}

// Specs returns the parameter schema of the named strategy.
func (r *Registry) Specs(name string) ([]ParamSpec, error) {
	s, err := r.New(name)
	if err != nil {
		return nil, err
	}
	return s.Params(), nil
}

// List returns all registered strategy names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
