package runtime

import (
	"sort"
	"sync"
)

// Extension builds a native module for an interpreter. It runs once per
// IMPORT, so a module may keep per-interpreter state in closures.
type Extension func(in *Interpreter) (*BuiltinModule, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Extension)
)

// RegisterExtension makes a native module importable by name from every
// interpreter. It is meant to be called from init functions and panics if
// the name is taken or ext is nil.
func RegisterExtension(name string, ext Extension) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if ext == nil {
		panic("runtime: RegisterExtension " + name + " with nil extension")
	}
	if _, dup := registry[name]; dup {
		panic("runtime: RegisterExtension called twice for " + name)
	}
	registry[name] = ext
}

// RegisteredExtensions returns the names of the process-wide extensions,
// sorted.
func RegisteredExtensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadExtension builds the named extension module. Interpreter-local
// extensions take precedence over registered ones.
func (i *Interpreter) loadExtension(name string) (*BuiltinModule, bool, error) {
	ext, ok := i.exts[name]
	if !ok {
		registryMu.RLock()
		ext, ok = registry[name]
		registryMu.RUnlock()
	}
	if !ok {
		return nil, false, nil
	}
	mod, err := ext(i)
	if err != nil {
		return nil, true, err
	}
	if mod.Name == "" {
		mod.Name = name
	}
	return mod, true, nil
}

// extensionNames lists every extension visible to i.
func (i *Interpreter) extensionNames() []string {
	names := RegisteredExtensions()
	for name := range i.exts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
