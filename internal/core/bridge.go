package core

// Bridge is a switch-level object holding the set of channels that
// currently share audio. Peers are tracked in entry order so that the
// two-party transfer handlers can deterministically name "the other
// peer" without relying on map iteration order.
type Bridge struct {
	UniqueID string
	peers    []*Channel
}

// NewBridge creates an empty bridge for a BridgeCreate event.
func NewBridge(uniqueID string) *Bridge {
	return &Bridge{UniqueID: uniqueID}
}

// Enter adds a channel to the bridge. The caller is responsible for
// setting channel.Bridge to this bridge.
func (b *Bridge) Enter(ch *Channel) {
	b.peers = append(b.peers, ch)
}

// Leave removes a channel from the bridge. It is an invariant breach
// for the channel to not already be a peer.
func (b *Bridge) Leave(ch *Channel) {
	for i, p := range b.peers {
		if p == ch {
			b.peers = append(b.peers[:i], b.peers[i+1:]...)
			return
		}
	}
	panicInvariant("leaving channel not a bridge peer", RawEvent{"BridgeUniqueid": b.UniqueID, "Uniqueid": ch.UniqueID})
}

// Peers returns the channels currently in the bridge, in entry order.
// Callers must not mutate the returned slice.
func (b *Bridge) Peers() []*Channel {
	return b.peers
}

// Len reports the number of peers currently in the bridge.
func (b *Bridge) Len() int {
	return len(b.peers)
}
