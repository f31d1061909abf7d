// Package registry maps qualified function names to the Go functions the
// in-host dispatcher may call.
//
// The registry is the dispatcher's module table: a script "module"
// resolves if at least one function is registered under it. Population
// happens during process startup; dispatch is single-threaded, so no
// locking is needed.
package registry

import "fmt"

// Func is the calling convention for every dispatchable function.
// Positional arguments arrive already resolved (nested call expressions
// have been evaluated); kwargs is never nil.
type Func func(args []any, kwargs map[string]any) (any, error)

// Registry holds the dispatchable functions of one process.
type Registry struct {
	funcs map[string]Func
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func key(module, name string) string {
	return module + "." + name
}

// Add registers fn under module.name. Registering the same qualified name
// twice is an error.
func (r *Registry) Add(module, name string, fn Func) error {
	if module == "" || name == "" {
		return fmt.Errorf("registering %q.%q: module and name must be non-empty", module, name)
	}
	k := key(module, name)
	if _, exists := r.funcs[k]; exists {
		return fmt.Errorf("registering %s: already registered", k)
	}
	r.funcs[k] = fn
	return nil
}

// Lookup returns the function registered under module.name.
func (r *Registry) Lookup(module, name string) (Func, bool) {
	fn, ok := r.funcs[key(module, name)]
	return fn, ok
}

// HasModule reports whether any function is registered under module.
// This is what makes a script's "module" directive resolve.
func (r *Registry) HasModule(module string) bool {
	prefix := module + "."
	for k := range r.funcs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
