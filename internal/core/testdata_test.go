package core

import "fmt"

// recordingSubscriber captures every high-level event emitted during a
// test run, in order, as a flat string for easy comparison.
type recordingSubscriber struct {
	events []string
}

func (r *recordingSubscriber) OnBDial(callID string, caller CallerId, toNumber string, targets []CallerId) {
	r.events = append(r.events, fmt.Sprintf("b-dial call=%s caller=%s to=%s targets=%d", callID, caller.Number, toNumber, len(targets)))
}

func (r *recordingSubscriber) OnUp(callID string, caller CallerId, toNumber string, callee CallerId) {
	r.events = append(r.events, fmt.Sprintf("up call=%s caller=%s to=%s callee=%s", callID, caller.Number, toNumber, callee.Number))
}

func (r *recordingSubscriber) OnAHangup(callID string, caller CallerId, toNumber string, reason string) {
	r.events = append(r.events, fmt.Sprintf("a-hangup call=%s caller=%s to=%s reason=%s", callID, caller.Number, toNumber, reason))
}

func (r *recordingSubscriber) OnWarmTransfer(callID, mergedID string, redirector, caller, destination CallerId) {
	r.events = append(r.events, fmt.Sprintf("warm-transfer call=%s merged=%s redirector=%s caller=%s dest=%s", callID, mergedID, redirector.Number, caller.Number, destination.Number))
}

func (r *recordingSubscriber) OnColdTransfer(callID, mergedID string, redirector, caller CallerId, toNumber string, targets []CallerId) {
	r.events = append(r.events, fmt.Sprintf("cold-transfer call=%s merged=%s redirector=%s caller=%s to=%s targets=%d", callID, mergedID, redirector.Number, caller.Number, toNumber, len(targets)))
}

func (r *recordingSubscriber) OnUserEvent(event RawEvent) {
	r.events = append(r.events, fmt.Sprintf("user-event %s", event["UserEvent"]))
}

// silentReporter discards traces; tests assert on subscriber output,
// not on logging.
type silentReporter struct{}

func (silentReporter) TraceAMI(event RawEvent) {}
func (silentReporter) TraceMsg(msg string)      {}

func newTestEngine() (*Engine, *recordingSubscriber) {
	sub := &recordingSubscriber{}
	return NewEngine(sub, silentReporter{}), sub
}

// newchannel builds a minimal Newchannel event for a sip channel.
func newchannel(uniqueid, linkedid, name, exten, cidName, cidNum string) RawEvent {
	return RawEvent{
		"Event":        "Newchannel",
		"Uniqueid":     uniqueid,
		"Linkedid":     linkedid,
		"Channel":      name,
		"ChannelState": "0",
		"Exten":        exten,
		"CallerIDName": cidName,
		"CallerIDNum":  cidNum,
		"AccountCode":  "0",
	}
}

func newstate(name string, state string) RawEvent {
	return RawEvent{
		"Event":        "Newstate",
		"Channel":      name,
		"ChannelState": state,
	}
}

func dialBegin(srcUID, destUID string) RawEvent {
	return RawEvent{
		"Event":        "DialBegin",
		"Uniqueid":     srcUID,
		"DestUniqueid": destUID,
	}
}

func dialEnd(srcUID, destUID string) RawEvent {
	return RawEvent{
		"Event":        "DialEnd",
		"Uniqueid":     srcUID,
		"DestUniqueid": destUID,
	}
}

func bridgeCreate(bridgeUID string) RawEvent {
	return RawEvent{"Event": "BridgeCreate", "BridgeUniqueid": bridgeUID}
}

func bridgeEnter(bridgeUID, chanUID, linkedid string, numChannels int) RawEvent {
	return RawEvent{
		"Event":             "BridgeEnter",
		"BridgeUniqueid":    bridgeUID,
		"Uniqueid":          chanUID,
		"Linkedid":          linkedid,
		"BridgeNumChannels": fmt.Sprintf("%d", numChannels),
	}
}

func bridgeLeave(bridgeUID, chanUID string, numChannels int) RawEvent {
	return RawEvent{
		"Event":             "BridgeLeave",
		"BridgeUniqueid":    bridgeUID,
		"Uniqueid":          chanUID,
		"BridgeNumChannels": fmt.Sprintf("%d", numChannels),
	}
}

func bridgeDestroy(bridgeUID string) RawEvent {
	return RawEvent{"Event": "BridgeDestroy", "BridgeUniqueid": bridgeUID}
}

func hangup(name string, cause int) RawEvent {
	return RawEvent{
		"Event":   "Hangup",
		"Channel": name,
		"Cause":   fmt.Sprintf("%d", cause),
	}
}
