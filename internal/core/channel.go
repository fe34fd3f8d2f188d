package core

import "strings"

// ChannelState mirrors the subset of Asterisk's channel-state integers
// that drive engine logic. Other values exist on the wire but are
// simply stored, never branched on.
type ChannelState int

const (
	StateDown     ChannelState = 0
	StateDialing  ChannelState = 3
	StateRing     ChannelState = 4
	StateRinging  ChannelState = 5
	StateUp       ChannelState = 6
)

// Side is the calling/called role of a channel, assigned at the first
// state transition away from Down.
type Side int

const (
	SideUnset Side = iota
	SideA
	SideB
)

// Markers carries the per-channel dedup state a handler sets on one
// event and a later event consumes: ignore_b_dial, raw_blind_transfer,
// suppress_hangup and ignore_a_hangup. Explicit fields rather than a
// free-form map, since the set is fixed and each has a distinct type.
type Markers struct {
	IgnoreBDial      bool
	RawBlindTransfer *Channel
	SuppressHangup   bool
	IgnoreAHangup    bool
}

// Channel is one leg of audio as Asterisk sees it.
//
// Cross-references (FwdDials, BackDial, FwdLocalBridge,
// BackLocalBridge, Bridge) are back-references only: the
// ChannelRegistry is the sole owner, and on hangup the local-bridge
// pairing is explicitly broken before the channel is dropped from the
// registry.
type Channel struct {
	UniqueID string
	LinkedID string
	Name     string

	State ChannelState
	Exten string

	CallerID      CallerId
	ConnectedLine CallerId

	Side Side

	FwdDials        []*Channel
	BackDial        *Channel
	FwdLocalBridge  *Channel
	BackLocalBridge *Channel

	Bridge *Bridge

	IsPickedUp bool

	Markers Markers
}

// NewChannel builds a Channel from a Newchannel raw event. Only that
// event should ever be passed here; every other transition goes
// through the Set* methods below.
func NewChannel(event RawEvent) *Channel {
	return &Channel{
		UniqueID: event["Uniqueid"],
		LinkedID: event["Linkedid"],
		Name:     event["Channel"],
		State:    ChannelState(event.Int("ChannelState")),
		Exten:    event["Exten"],
		CallerID: NewCallerId(
			event.Int("AccountCode"),
			event["CallerIDName"],
			event["CallerIDNum"],
			true,
		),
		ConnectedLine: NewCallerId(
			0,
			event["ConnectedLineName"],
			event["ConnectedLineNum"],
			true,
		),
	}
}

// IsLocal reports whether this is one half of Asterisk's internal
// Local/... routing glue, as opposed to a real external leg.
func (c *Channel) IsLocal() bool {
	return strings.HasPrefix(c.Name, "Local/")
}

// IsSIP reports whether this is a real external leg (anything not
// Local/...); other tech prefixes (PJSIP/, DAHDI/) pass through it
// the same way as SIP/ does.
func (c *Channel) IsSIP() bool {
	return !c.IsLocal()
}

// IsUp reports whether the channel is currently answered.
func (c *Channel) IsUp() bool {
	return c.State == StateUp
}

// IsCallingChan reports whether this channel was classified as the
// A-side (the party placing the call).
func (c *Channel) IsCallingChan() bool {
	return c.Side == SideA
}

// IsCalledChan reports whether this channel was classified as the
// B-side (the party being called).
func (c *Channel) IsCalledChan() bool {
	return c.Side == SideB
}

// SyncData absorbs the cross-event carry fields (Linkedid, caller id,
// connected line, privacy) that may ride along any event for a
// channel the engine already knows about. Applied before dispatch.
func (c *Channel) SyncData(event RawEvent) {
	if v, ok := event["Linkedid"]; ok {
		c.LinkedID = v
	}

	if v, ok := event["CallerIDNum"]; ok {
		name := event["CallerIDName"]
		c.CallerID = c.CallerID.With(CallerIdPatch{Name: strPtr(name), Number: strPtr(v)})
	}

	if v, ok := event["CID-CallingPres"]; ok {
		c.CallerID = c.CallerID.With(CallerIdPatch{IsPublic: boolPtr(strings.Contains(v, "Allowed"))})
	}

	if v, ok := event["ConnectedLineNum"]; ok {
		name := event["ConnectedLineName"]
		c.ConnectedLine = c.ConnectedLine.With(CallerIdPatch{Name: strPtr(name), Number: strPtr(v)})
	}
}

// SetCallerId applies a NewCallerid event: the account code must
// never leak as a displayed caller number, so if the incoming number
// equals the current account code the prior number is retained.
func (c *Channel) SetCallerId(event RawEvent) {
	number := event["CallerIDNum"]
	if number == intToStr(c.CallerID.Code) {
		number = c.CallerID.Number
	}

	c.CallerID = c.CallerID.With(CallerIdPatch{
		Name:     strPtr(event["CallerIDName"]),
		Number:   strPtr(number),
		IsPublic: boolPtr(strings.Contains(event["CID-CallingPres"], "Allowed")),
	})
}

// SetConnectedLine applies a NewConnectedLine event.
func (c *Channel) SetConnectedLine(event RawEvent) {
	c.ConnectedLine = c.ConnectedLine.With(CallerIdPatch{
		Name:   strPtr(event["ConnectedLineName"]),
		Number: strPtr(event["ConnectedLineNum"]),
	})
}

// SetAccountCode applies a NewAccountCode event. Once a non-zero code
// is set, later updates are silently ignored.
func (c *Channel) SetAccountCode(event RawEvent) {
	if c.CallerID.Code != 0 {
		return
	}
	c.CallerID = c.CallerID.With(CallerIdPatch{Code: intPtr(event.Int("AccountCode"))})
}

// unlinkLocalBridge breaks this channel's local-bridge pairing in both
// directions, leaving the registry removal to drop the last owning
// reference.
func (c *Channel) unlinkLocalBridge() {
	if c.FwdLocalBridge != nil {
		c.FwdLocalBridge.BackLocalBridge = nil
	}
	if c.BackLocalBridge != nil {
		c.BackLocalBridge.FwdLocalBridge = nil
	}
}
