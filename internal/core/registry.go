package core

// ChannelRegistry indexes live channels by uniqueid and by name; both
// must agree at all times. Lookup misses raise the distinguished
// Missing* errors rather than a generic one, so the dispatcher can
// tell an expected-missing lookup apart from an invariant breach.
type ChannelRegistry struct {
	byName map[string]*Channel
	byID   map[string]*Channel
}

// NewChannelRegistry returns an empty channel registry.
func NewChannelRegistry() *ChannelRegistry {
	return &ChannelRegistry{
		byName: make(map[string]*Channel),
		byID:   make(map[string]*Channel),
	}
}

// Add registers a channel under both its name and its uniqueid.
func (r *ChannelRegistry) Add(ch *Channel) {
	r.byName[ch.Name] = ch
	r.byID[ch.UniqueID] = ch
}

// GetByUniqueID looks up a channel by uniqueid.
func (r *ChannelRegistry) GetByUniqueID(id string) (*Channel, error) {
	if ch, ok := r.byID[id]; ok {
		return ch, nil
	}
	return nil, &MissingUniqueIDError{UniqueID: id}
}

// GetByName looks up a channel by channel name.
func (r *ChannelRegistry) GetByName(name string) (*Channel, error) {
	if ch, ok := r.byName[name]; ok {
		return ch, nil
	}
	return nil, &MissingChannelError{Name: name}
}

// Remove drops a channel from both indexes.
func (r *ChannelRegistry) Remove(ch *Channel) {
	delete(r.byName, ch.Name)
	delete(r.byID, ch.UniqueID)
}

// Len reports the number of channels currently registered.
func (r *ChannelRegistry) Len() int {
	return len(r.byName)
}

// BridgeRegistry indexes live bridges by uniqueid.
type BridgeRegistry struct {
	byID map[string]*Bridge
}

// NewBridgeRegistry returns an empty bridge registry.
func NewBridgeRegistry() *BridgeRegistry {
	return &BridgeRegistry{byID: make(map[string]*Bridge)}
}

// Create registers a new, empty bridge. It is an invariant breach to
// create a bridge uniqueid that is already registered.
func (r *BridgeRegistry) Create(uniqueID string) *Bridge {
	if _, exists := r.byID[uniqueID]; exists {
		panicInvariant("duplicate BridgeCreate", RawEvent{"BridgeUniqueid": uniqueID})
	}
	bridge := NewBridge(uniqueID)
	r.byID[uniqueID] = bridge
	return bridge
}

// GetByUniqueID looks up a bridge by uniqueid.
func (r *BridgeRegistry) GetByUniqueID(id string) (*Bridge, error) {
	if b, ok := r.byID[id]; ok {
		return b, nil
	}
	return nil, &MissingBridgeError{UniqueID: id}
}

// Destroy removes a bridge. It is an invariant breach to destroy a
// bridge that still has peers.
func (r *BridgeRegistry) Destroy(bridge *Bridge) {
	if bridge.Len() != 0 {
		panicInvariant("BridgeDestroy on non-empty bridge", RawEvent{"BridgeUniqueid": bridge.UniqueID})
	}
	delete(r.byID, bridge.UniqueID)
}

// Len reports the number of bridges currently registered.
func (r *BridgeRegistry) Len() int {
	return len(r.byID)
}
