package registry

import (
	"fmt"
	"log/slog"
)

// RegisterOutputFunc registers a Go function that extracts an output value.
func (r *Registry) RegisterOutputFunc(name string, fn OutputFunc) {
	if _, exists := r.OutputFuncs[name]; exists {
		panic(fmt.Sprintf("output func with name '%s' already registered", name))
	}
	slog.Debug("Registering output func.", "name", name)
	r.OutputFuncs[name] = fn
}

// RegisterModel registers the deck and post-processing hooks of a model.
func (r *Registry) RegisterModel(name string, m Model) {
	if _, exists := r.Models[name]; exists {
		panic(fmt.Sprintf("model with name '%s' already registered", name))
	}
	slog.Debug("Registering model.", "name", name)
	r.Models[name] = m
}
