package core

import "strconv"

// ---------------------------------------------------------------
// Channel lifecycle handlers
// ---------------------------------------------------------------

func (e *Engine) handleNewchannel(event RawEvent) {
	ch := NewChannel(event)
	e.channels.Add(ch)
}

func (e *Engine) handleNewstate(event RawEvent) error {
	ch, err := e.channels.GetByName(event["Channel"])
	if err != nil {
		return err
	}

	oldState := ch.State
	newState := ChannelState(event.Int("ChannelState"))
	if oldState == newState {
		panicInvariant("Newstate with no actual state change", event)
	}
	ch.State = newState

	if ch.IsLocal() {
		return nil
	}

	switch {
	case oldState == StateDown && (newState == StateDialing || newState == StateRing || newState == StateUp):
		e.rawADial(ch)
	case oldState == StateDown && newState == StateRinging:
		e.rawBDial(ch)
	}

	return nil
}

func (e *Engine) handleNewCallerid(event RawEvent) error {
	ch, err := e.channels.GetByName(event["Channel"])
	if err != nil {
		return err
	}
	ch.SetCallerId(event)
	return nil
}

func (e *Engine) handleNewAccountCode(event RawEvent) error {
	ch, err := e.channels.GetByName(event["Channel"])
	if err != nil {
		return err
	}
	ch.SetAccountCode(event)
	return nil
}

func (e *Engine) handleNewConnectedLine(event RawEvent) error {
	ch, err := e.channels.GetByName(event["Channel"])
	if err != nil {
		return err
	}
	ch.SetConnectedLine(event)
	return nil
}

func (e *Engine) handleLocalBridge(event RawEvent) error {
	one, err := e.channels.GetByName(event["LocalOneChannel"])
	if err != nil {
		return err
	}
	two, err := e.channels.GetByName(event["LocalTwoChannel"])
	if err != nil {
		return err
	}

	if one.FwdLocalBridge != nil || one.BackLocalBridge != nil ||
		two.FwdLocalBridge != nil || two.BackLocalBridge != nil {
		panicInvariant("LocalBridge on an already-paired channel", event)
	}

	one.FwdLocalBridge = two
	two.BackLocalBridge = one
	return nil
}

func (e *Engine) handleDialBegin(event RawEvent) error {
	source, err := e.channels.GetByUniqueID(event["Uniqueid"])
	if err != nil {
		return err
	}
	target, err := e.channels.GetByUniqueID(event["DestUniqueid"])
	if err != nil {
		return err
	}

	if target.BackDial != nil {
		panicInvariant("DialBegin target already has a back-dial", event)
	}

	source.FwdDials = append(source.FwdDials, target)
	target.BackDial = source
	return nil
}

func (e *Engine) handleDialEnd(event RawEvent) error {
	source, err := e.channels.GetByUniqueID(event["Uniqueid"])
	if err != nil {
		return err
	}
	target, err := e.channels.GetByUniqueID(event["DestUniqueid"])
	if err != nil {
		return err
	}

	if target.BackDial == nil {
		panicInvariant("DialEnd target has no active back-dial", event)
	}

	for i, d := range source.FwdDials {
		if d == target {
			source.FwdDials = append(source.FwdDials[:i], source.FwdDials[i+1:]...)
			break
		}
	}
	target.BackDial = nil
	return nil
}

// ---------------------------------------------------------------
// Bridge lifecycle handlers
// ---------------------------------------------------------------

func (e *Engine) handleBridgeCreate(event RawEvent) {
	e.bridges.Create(event["BridgeUniqueid"])
}

func (e *Engine) handleBridgeEnter(event RawEvent) error {
	bridge, err := e.bridges.GetByUniqueID(event["BridgeUniqueid"])
	if err != nil {
		return err
	}
	channel, err := e.channels.GetByUniqueID(event["Uniqueid"])
	if err != nil {
		return err
	}

	bridge.Enter(channel)
	channel.Bridge = bridge
	assertBridgePeerCount(bridge, event)

	if channel.IsSIP() && !channel.IsPickedUp {
		e.rawInCall(channel, bridge, event)
	}
	return nil
}

func (e *Engine) handleBridgeLeave(event RawEvent) error {
	bridge, err := e.bridges.GetByUniqueID(event["BridgeUniqueid"])
	if err != nil {
		return err
	}
	channel, err := e.channels.GetByUniqueID(event["Uniqueid"])
	if err != nil {
		return err
	}

	bridge.Leave(channel)
	channel.Bridge = nil
	assertBridgePeerCount(bridge, event)
	return nil
}

func (e *Engine) handleBridgeDestroy(event RawEvent) error {
	bridge, err := e.bridges.GetByUniqueID(event["BridgeUniqueid"])
	if err != nil {
		return err
	}
	e.bridges.Destroy(bridge)
	return nil
}

// assertBridgePeerCount enforces the Bridge invariant: after each
// enter/leave, the tracked peer count must equal the switch's
// reported channel count for that event. The field is only checked
// when present, since not every synthetic/test event needs to carry
// it, but when it IS present a mismatch is a fatal internal error.
func assertBridgePeerCount(bridge *Bridge, event RawEvent) {
	raw, ok := event["BridgeNumChannels"]
	if !ok {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	if n != bridge.Len() {
		panicInvariant("bridge peer count does not match switch-reported count", event)
	}
}

// ---------------------------------------------------------------
// High-level synthesizer
// ---------------------------------------------------------------

func (e *Engine) rawADial(channel *Channel) {
	// The caller hearing ring tone carries no business event: getting
	// it right would duplicate on_b_dial's work and complicates
	// transfer inference for no benefit.
	channel.Side = SideA
}

func (e *Engine) rawBDial(channel *Channel) {
	channel.Side = SideB

	if !channel.IsSIP() {
		return
	}

	if channel.Markers.IgnoreBDial {
		channel.Markers.IgnoreBDial = false
		return
	}

	aChan := GetDialingChannel(channel)
	aChan.Side = SideA

	switch {
	case aChan.Markers.RawBlindTransfer != nil:
		e.rawBDialAfterBlindTransfer(channel, aChan)
	case IsConnectab(aChan):
		e.rawBDialConnectab(channel, aChan)
	case aChan.IsSIP():
		e.rawBDialPlain(channel, aChan)
	}
}

func (e *Engine) rawBDialAfterBlindTransfer(channel, aChan *Channel) {
	transferer := aChan.Markers.RawBlindTransfer
	aChan.Markers.RawBlindTransfer = nil

	targetChans := GetDialedChannels(aChan)
	targets := callerIDsOf(targetChans)

	for _, target := range targetChans {
		if target != channel {
			target.Markers.IgnoreBDial = true
		}
	}

	// Simulate a pre-flight dial event for consistency with blonde
	// transfers. channel.uniqueid substitutes for a linkedid here: we
	// know it is not the original master channel's linkedid.
	e.subscriber.OnBDial(channel.UniqueID, transferer.CallerID, aChan.Exten, targets)

	e.subscriber.OnColdTransfer(
		channel.LinkedID,
		channel.UniqueID,
		transferer.CallerID,
		aChan.CallerID,
		transferer.Exten,
		targets,
	)
}

func (e *Engine) rawBDialConnectab(channel, aChan *Channel) {
	caller, _ := ConnectabParticipants(aChan)
	realAChan := aChan.FwdLocalBridge
	realAChan.CallerID = aChan.CallerID.With(CallerIdPatch{Code: intPtr(caller.CallerID.Code)})

	e.subscriber.OnBDial(
		realAChan.UniqueID,
		realAChan.CallerID,
		channel.CallerID.Number,
		[]CallerId{channel.CallerID},
	)
}

func (e *Engine) rawBDialPlain(channel, aChan *Channel) {
	openDials := GetDialedChannels(aChan)
	targets := callerIDsOf(openDials)

	for _, bChan := range openDials {
		if bChan == channel {
			e.subscriber.OnBDial(channel.LinkedID, aChan.CallerID, aChan.Exten, targets)
		} else {
			// Suppress the notification when this sibling's own
			// RINGING transition fires later.
			bChan.Markers.IgnoreBDial = true
		}
	}
}

// rawInCall is the "up" emission rule: when a sip channel enters a
// bridge that already holds another distinct sip peer and has not
// already been marked picked up.
//
// Bridges with three or more sip peers fall outside this rule; no
// attempt is made to emit correct conference events.
func (e *Engine) rawInCall(channel *Channel, bridge *Bridge, event RawEvent) {
	var sipPeers []*Channel
	for _, peer := range bridge.Peers() {
		if peer.IsSIP() && peer != channel {
			sipPeers = append(sipPeers, peer)
		}
	}
	if len(sipPeers) == 0 {
		return
	}

	var aChan, bChan *Channel
	if channel.Exten == "s" {
		bChan = channel
		for _, peer := range sipPeers {
			if peer.Exten != "s" {
				aChan = peer
				break
			}
		}
		if aChan == nil {
			panicInvariant("bridge has no calling channel to pair with entrant", event)
		}
	} else {
		aChan = channel
		bChan = sipPeers[0]
	}

	aChan.IsPickedUp = true

	e.subscriber.OnUp(event["Linkedid"], aChan.CallerID, aChan.Exten, bChan.CallerID)
}

// ---------------------------------------------------------------
// Transfers
// ---------------------------------------------------------------

func (e *Engine) handleAttendedTransfer(event RawEvent) error {
	origTransferer, err := e.channels.GetByName(event["OrigTransfererChannel"])
	if err != nil {
		return err
	}
	secondTransferer, err := e.channels.GetByName(event["SecondTransfererChannel"])
	if err != nil {
		return err
	}

	switch {
	case event["DestType"] == "Bridge":
		return e.rawWarmTransfer(origTransferer, secondTransferer, event)
	case event["DestType"] == "App" && event["DestApp"] == "Dial":
		return e.rawBlondeTransfer(origTransferer, secondTransferer, event)
	default:
		panic(&UnknownTransferTopologyError{Event: event})
	}
}

func (e *Engine) rawWarmTransfer(origTransferer, secondTransferer *Channel, event RawEvent) error {
	targetBridge, err := e.bridges.GetByUniqueID(event["SecondBridgeUniqueid"])
	if err != nil {
		return err
	}

	peers := targetBridge.Peers()
	if len(peers) != 2 {
		panicInvariant("warm transfer target bridge does not have exactly two peers", event)
	}

	var source, target *Channel
	switch event["OrigTransfererLinkedid"] {
	case peers[0].LinkedID:
		source, target = peers[0], peers[1]
	case peers[1].LinkedID:
		source, target = peers[1], peers[0]
	default:
		panicInvariant("orig transferer linkedid not found in second bridge", event)
	}

	source.Side = SideA

	e.subscriber.OnWarmTransfer(
		source.LinkedID,
		target.LinkedID,
		origTransferer.CallerID,
		source.CallerID,
		target.CallerID,
	)

	origTransferer.Markers.SuppressHangup = true
	secondTransferer.Markers.SuppressHangup = true
	return nil
}

func (e *Engine) rawBlondeTransfer(origTransferer, secondTransferer *Channel, event RawEvent) error {
	origBridge, err := e.bridges.GetByUniqueID(event["OrigBridgeUniqueid"])
	if err != nil {
		return err
	}

	peers := origBridge.Peers()
	if len(peers) != 2 {
		panicInvariant("blonde transfer orig bridge does not have exactly two peers", event)
	}

	var transferSource *Channel
	switch origTransferer.UniqueID {
	case peers[0].UniqueID:
		transferSource = peers[1]
	case peers[1].UniqueID:
		transferSource = peers[0]
	default:
		panicInvariant("orig transferer not found in orig bridge", event)
	}

	transferSource.Side = SideA

	targetChans := GetDialedChannels(secondTransferer)
	targets := callerIDsOf(targetChans)

	e.subscriber.OnColdTransfer(
		origTransferer.LinkedID,
		secondTransferer.LinkedID,
		secondTransferer.CallerID,
		transferSource.CallerID,
		transferSource.Exten,
		targets,
	)

	origTransferer.Markers.SuppressHangup = true
	secondTransferer.Markers.SuppressHangup = true
	return nil
}

func (e *Engine) handleBlindTransfer(event RawEvent) error {
	transferer, err := e.channels.GetByUniqueID(event["TransfererUniqueid"])
	if err != nil {
		return err
	}
	transferee, err := e.channels.GetByUniqueID(event["TransfereeUniqueid"])
	if err != nil {
		return err
	}

	transferee.Markers.RawBlindTransfer = transferer
	transferee.IsPickedUp = false
	transferer.Markers.SuppressHangup = true
	transferee.Exten = event["Extension"]
	return nil
}

// ---------------------------------------------------------------
// Hangup
// ---------------------------------------------------------------

func (e *Engine) handleHangup(event RawEvent) error {
	channel, err := e.channels.GetByName(event["Channel"])
	if err != nil {
		return err
	}
	e.rawHangup(channel, event)
	return nil
}

func (e *Engine) rawHangup(channel *Channel, event RawEvent) {
	if channel.IsSIP() {
		switch {
		case channel.Markers.RawBlindTransfer != nil:
			e.hangupAfterBlindTransferAttempt(channel, event)
		case channel.Markers.IgnoreAHangup:
			channel.Markers.IgnoreAHangup = false
		case channel.Markers.SuppressHangup:
			channel.Markers.SuppressHangup = false
		case IsConnectab(GetDialingChannel(channel)):
			e.hangupConnectab(channel, event)
		case channel.IsCallingChan():
			e.subscriber.OnAHangup(channel.LinkedID, channel.CallerID, channel.Exten, hangupReason(channel, event))
		}
	}

	channel.unlinkLocalBridge()
	e.channels.Remove(channel)

	if e.channels.Len() == 0 {
		e.reporter.TraceMsg("(no channels left)")
	}
}

// hangupAfterBlindTransferAttempt handles a transferee hanging up
// before the synthetic b-dial against the transfer destination could
// complete — the blind transfer attempt terminated mid-flight.
func (e *Engine) hangupAfterBlindTransferAttempt(channel *Channel, event RawEvent) {
	redirector := channel.Markers.RawBlindTransfer
	channel.Markers.RawBlindTransfer = nil

	var aChan, bChan *Channel
	if redirector.IsCallingChan() {
		aChan, bChan = redirector, channel
	} else {
		aChan, bChan = channel, redirector
	}

	// "completed" here is a known quirk of the original handler: the
	// attempt never actually connected, but the reason is not
	// re-derived from the hangup cause in this branch. Retained as-is
	// rather than silently "fixed".
	e.subscriber.OnAHangup(aChan.UniqueID, aChan.CallerID, bChan.CallerID.Number, "completed")
}

func (e *Engine) hangupConnectab(channel *Channel, event RawEvent) {
	caller, callee := ConnectabParticipants(channel)

	if callee.State == StateDown {
		return
	}

	// Whichever leg hangs up first reaches here; mark both so the
	// second hangup of the pair is suppressed.
	callee.Markers.IgnoreAHangup = true
	caller.Markers.IgnoreAHangup = true

	aChan := GetDialingChannel(channel)
	patchedCaller := caller.CallerID.With(CallerIdPatch{Number: strPtr(aChan.CallerID.Number)})

	e.subscriber.OnAHangup(
		aChan.FwdLocalBridge.UniqueID,
		patchedCaller,
		callee.Exten,
		hangupReason(callee, event),
	)
}

// hangupReason maps the switch Cause integer to a business reason
// string.
func hangupReason(channel *Channel, event RawEvent) string {
	switch event.Int("Cause") {
	case 16: // Normal clearing
		if channel.IsUp() {
			return "completed"
		}
		return "no-answer"
	case 17: // User busy
		return "busy"
	case 18, 19: // No user responding / no answer
		return "no-answer"
	case 26: // Answered elsewhere
		return "answered-elsewhere"
	case 21: // Call rejected
		return "rejected"
	case 0: // Unknown cause
		// A queue member exiting is annotated upstream as emitting
		// "completed" here even though "cancelled" would describe it
		// better; retained rather than guessed at.
		if channel.IsUp() {
			return "completed"
		}
		return "cancelled"
	default:
		return "failed"
	}
}
