package runtime

import (
	"fmt"
	"sort"
)

// Observer is notified after every binding write. It must not affect
// execution.
type Observer func(name string, v Value)

// Scope represents a variable scope with a parent chain. The root scope of a
// program has no parent; each subroutine call gets a child of the scope the
// subroutine was defined in.
type Scope struct {
	name     string
	values   map[string]Value
	consts   map[string]bool // names declared CONSTANT in this scope
	parent   *Scope
	observer Observer
}

// NewScope creates a scope. A child inherits its parent's observer.
func NewScope(name string, parent *Scope) *Scope {
	s := &Scope{
		name:   name,
		values: make(map[string]Value),
		consts: make(map[string]bool),
		parent: parent,
	}
	if parent != nil {
		s.observer = parent.observer
	}
	return s
}

// Name returns the scope name, e.g. "global" or the subroutine name.
func (s *Scope) Name() string { return s.name }

// Parent returns the enclosing scope, nil for a root.
func (s *Scope) Parent() *Scope { return s.parent }

// SetObserver installs the binding observer for this scope and the scopes
// created from it afterwards.
func (s *Scope) SetObserver(fn Observer) { s.observer = fn }

// Get looks up a variable by walking the scope chain.
func (s *Scope) Get(name string) (Value, bool) {
	if owner := s.Lookup(name); owner != nil {
		return owner.values[name], true
	}
	return nil, false
}

// Lookup returns the innermost scope binding name, or nil.
func (s *Scope) Lookup(name string) *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if _, exists := sc.values[name]; exists {
			return sc
		}
	}
	return nil
}

// Has reports whether name is bound in this scope itself.
func (s *Scope) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// IsConstant reports whether name was declared CONSTANT in this scope.
func (s *Scope) IsConstant(name string) bool {
	return s.consts[name]
}

// Set binds name in this scope, replacing any previous local binding.
// Rebinding a local constant is an error.
func (s *Scope) Set(name string, value Value) error {
	if s.consts[name] {
		return fmt.Errorf("cannot assign to constant '%s'", name)
	}
	s.values[name] = value
	s.notify(name, value)
	return nil
}

// Define binds name unconditionally, optionally as a constant.
func (s *Scope) Define(name string, value Value, constant bool) {
	s.values[name] = value
	if constant {
		s.consts[name] = true
	}
	s.notify(name, value)
}

// Touch reports an in-place change of the value bound to name, such as an
// indexed assignment, to the observer.
func (s *Scope) Touch(name string) {
	if owner := s.Lookup(name); owner != nil {
		owner.notify(name, owner.values[name])
	}
}

func (s *Scope) notify(name string, v Value) {
	if s.observer != nil {
		s.observer(name, v)
	}
}

// Names returns every name visible from this scope, sorted and unique.
func (s *Scope) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for sc := s; sc != nil; sc = sc.parent {
		for name := range sc.values {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Bindings returns the names bound in this scope itself, sorted.
func (s *Scope) Bindings() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
