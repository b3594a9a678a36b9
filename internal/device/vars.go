package device

import (
	"fmt"
	"sync"
)

// Variable is one configuration entry owned by a device instance.
type Variable struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Default any    `json:"default"`
	Label   string `json:"label"`
	Min     any    `json:"min,omitempty"`
	Max     any    `json:"max,omitempty"`
	Remark  string `json:"remark,omitempty"`
}

// VarOption configures optional Variable fields at registration.
type VarOption func(*Variable)

func WithBounds(min, max any) VarOption {
	return func(v *Variable) {
		v.Min = min
		v.Max = max
	}
}

func WithRemark(remark string) VarOption {
	return func(v *Variable) {
		v.Remark = remark
	}
}

// Registry is the per-device configuration store. Each device owns exactly
// one, built lazily on first access and kept for the lifetime of the device.
// Registering an existing name never overwrites its current value, so user
// overrides survive re-initialization.
type Registry struct {
	mu    sync.RWMutex
	vars  map[string]*Variable
	order []string
}

func NewRegistry() *Registry {
	return &Registry{vars: make(map[string]*Variable)}
}

// Register inserts a variable if the name is absent. A second Register with
// the same name is a no-op on the current value.
func (r *Registry) Register(name string, def any, label string, opts ...VarOption) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vars[name]; ok {
		return
	}
	v := &Variable{Name: name, Value: def, Default: def, Label: label}
	for _, opt := range opts {
		opt(v)
	}
	r.vars[name] = v
	r.order = append(r.order, name)
}

// Set overwrites the current value of an existing variable.
func (r *Registry) Set(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vars[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrVariableNotFound)
	}
	v.Value = value
	return nil
}

// Lookup returns a copy of the variable for display purposes.
func (r *Registry) Lookup(name string) (Variable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vars[name]
	if !ok {
		return Variable{}, false
	}
	return *v, true
}

// Names returns the variable names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Get returns the typed current value of a variable.
func Get[T any](r *Registry, name string) (T, error) {
	var zero T
	r.mu.RLock()
	v, ok := r.vars[name]
	r.mu.RUnlock()
	if !ok {
		return zero, fmt.Errorf("get %q: %w", name, ErrVariableNotFound)
	}
	typed, ok := v.Value.(T)
	if !ok {
		return zero, fmt.Errorf("get %q: have %T, want %T: %w", name, v.Value, zero, ErrTypeMismatch)
	}
	return typed, nil
}

// GetOr returns the typed value, or fallback when the variable is missing or
// holds a value of the wrong type. Backends use it so that malformed
// configuration degrades to safe defaults instead of failing an update.
func GetOr[T any](r *Registry, name string, fallback T) T {
	v, err := Get[T](r, name)
	if err != nil {
		return fallback
	}
	return v
}
