package core

import "sync"

var (
	registryMu sync.RWMutex
	registry   = make(map[string]BlockDefinition)
)

// RegisterBlockDefinition makes a block type buildable by name. Block
// packages call this from init; definitions are validated at registration
// so a bad one fails fast.
func RegisterBlockDefinition(def BlockDefinition) {
	if err := def.Validate(); err != nil {
		panic(err)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.Type] = def
}

// GetBlockDefinition retrieves the registered definition for a block type.
func GetBlockDefinition(typ string) (BlockDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[typ]
	return def, ok
}

// MustGetBlockDefinition panics on an unknown block type.
func MustGetBlockDefinition(typ string) BlockDefinition {
	def, ok := GetBlockDefinition(typ)
	if !ok {
		panic("unknown block type: " + typ)
	}
	return def
}

// RegisteredBlockTypes returns all registered type names, in no particular
// order.
func RegisteredBlockTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for typ := range registry {
		types = append(types, typ)
	}
	return types
}
