package resolver

import (
	"jsdeps/internal/modules"
)

// ResolvedPair is one resolved dependency edge: the declared name and the
// module it resolved to.
type ResolvedPair struct {
	Name   string
	Module *modules.Module
}

// Response accumulates the result of one graph build: modules in discovery
// order (entry first), each module's resolved pairs in declaration order, and
// the final mock table. The engine only appends; the caller owns the value.
type Response struct {
	Modules []*modules.Module
	Mocks   map[string]string

	deps map[string][]ResolvedPair
}

// NewResponse creates an empty response accumulator.
func NewResponse() *Response {
	return &Response{
		deps: make(map[string][]ResolvedPair),
	}
}

// Dependencies returns the ordered resolved pairs recorded for a module.
func (r *Response) Dependencies(m *modules.Module) []ResolvedPair {
	return r.deps[m.Path]
}

func (r *Response) addModule(m *modules.Module) {
	r.Modules = append(r.Modules, m)
}

func (r *Response) setDependencies(m *modules.Module, pairs []ResolvedPair) {
	r.deps[m.Path] = pairs
}

// GraphDependency is the serializable form of one resolved edge.
type GraphDependency struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}

// GraphModule is the serializable form of one visited module.
type GraphModule struct {
	Path         string            `json:"path" yaml:"path"`
	Asset        bool              `json:"asset,omitempty" yaml:"asset,omitempty"`
	Dependencies []GraphDependency `json:"dependencies" yaml:"dependencies"`
}

// Graph is the serializable form of a complete response.
type Graph struct {
	Entry   string            `json:"entry" yaml:"entry"`
	Modules []GraphModule     `json:"modules" yaml:"modules"`
	Mocks   map[string]string `json:"mocks,omitempty" yaml:"mocks,omitempty"`
}

// Graph converts the response into its serializable form, preserving
// discovery and declaration order.
func (r *Response) Graph() *Graph {
	g := &Graph{Mocks: r.Mocks}
	if len(r.Modules) > 0 {
		g.Entry = r.Modules[0].Path
	}
	for _, m := range r.Modules {
		gm := GraphModule{
			Path:         m.Path,
			Asset:        m.IsAsset(),
			Dependencies: []GraphDependency{},
		}
		for _, p := range r.deps[m.Path] {
			gm.Dependencies = append(gm.Dependencies, GraphDependency{
				Name: p.Name,
				Path: p.Module.Path,
			})
		}
		g.Modules = append(g.Modules, gm)
	}
	return g
}
