package plugin

import (
	"sort"
	"sync"
)

type factory func() NodeHandler

type entry struct {
	new  factory
	desc NodeDescription
}

var (
	mu       sync.RWMutex
	registry = map[string]entry{}
	aliases  = map[string]string{}
	credDefs = map[string]CredentialType{}
)

// Register adds a node type. Registering the same type twice replaces the
// previous entry.
func Register(nodeType string, f factory, desc NodeDescription) {
	mu.Lock()
	defer mu.Unlock()
	if desc.Name == "" {
		desc.Name = nodeType
	}
	registry[nodeType] = entry{new: f, desc: desc}
	for _, a := range desc.Aliases {
		aliases[a] = nodeType
	}
}

// Resolve maps a registered type or one of its aliases to the registry key.
func Resolve(nodeType string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if _, ok := registry[nodeType]; ok {
		return nodeType, true
	}
	t, ok := aliases[nodeType]
	return t, ok
}

// RegisterCredential declares a credential type nodes can reference.
func RegisterCredential(ct CredentialType) {
	mu.Lock()
	defer mu.Unlock()
	credDefs[ct.Name] = ct
}

func New(nodeType string) (NodeHandler, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[nodeType]
	if !ok {
		return nil, false
	}
	return e.new(), true
}

// Describe returns the static description of a registered node type.
func Describe(nodeType string) (NodeDescription, bool) {
	mu.RLock()
	defer mu.RUnlock()
	e, ok := registry[nodeType]
	return e.desc, ok
}

// Descriptions lists every registered node type, sorted by name.
func Descriptions() []NodeDescription {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]NodeDescription, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Credential returns a declared credential type.
func Credential(name string) (CredentialType, bool) {
	mu.RLock()
	defer mu.RUnlock()
	ct, ok := credDefs[name]
	return ct, ok
}
