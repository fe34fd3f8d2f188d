package core

import (
	"reflect"
	"testing"
)

func TestSimpleCallAnsweredThenAHangup(t *testing.T) {
	e, sub := newTestEngine()

	e.Dispatch(newchannel("A1", "A1", "SIP/alice-001", "1000", "Alice", "1000"))
	e.Dispatch(newchannel("B1", "A1", "SIP/bob-002", "s", "Bob", "2000"))
	e.Dispatch(dialBegin("A1", "B1"))

	e.Dispatch(newstate("SIP/alice-001", "4")) // Ring
	e.Dispatch(newstate("SIP/bob-002", "5"))   // Ringing -> b-dial

	e.Dispatch(bridgeCreate("br1"))
	e.Dispatch(newstate("SIP/bob-002", "6"))
	e.Dispatch(newstate("SIP/alice-001", "6"))
	e.Dispatch(bridgeEnter("br1", "A1", "A1", 1))
	e.Dispatch(bridgeEnter("br1", "B1", "A1", 2)) // -> up

	e.Dispatch(dialEnd("A1", "B1"))
	e.Dispatch(bridgeLeave("br1", "A1", 1))
	e.Dispatch(bridgeLeave("br1", "B1", 0))
	e.Dispatch(bridgeDestroy("br1"))

	e.Dispatch(hangup("SIP/alice-001", 16)) // a-hangup
	e.Dispatch(hangup("SIP/bob-002", 16))

	want := []string{
		"b-dial call=A1 caller=1000 to=1000 targets=1",
		"up call=A1 caller=1000 to=1000 callee=2000",
		"a-hangup call=A1 caller=1000 to=1000 reason=completed",
	}

	if !reflect.DeepEqual(sub.events, want) {
		t.Fatalf("events mismatch:\ngot:  %v\nwant: %v", sub.events, want)
	}

	if e.ChannelCount() != 0 {
		t.Fatalf("expected no channels left, got %d", e.ChannelCount())
	}
	if e.BridgeCount() != 0 {
		t.Fatalf("expected no bridges left, got %d", e.BridgeCount())
	}
}

func TestCallGroupNoAnswerEmitsOneBDialAndNoUp(t *testing.T) {
	e, sub := newTestEngine()

	e.Dispatch(newchannel("A1", "A1", "SIP/alice-001", "2000", "Alice", "1000"))
	e.Dispatch(newchannel("B1", "A1", "SIP/bob-002", "s", "Bob", "2000"))
	e.Dispatch(newchannel("B2", "A1", "SIP/carl-003", "s", "Carl", "3000"))
	e.Dispatch(dialBegin("A1", "B1"))
	e.Dispatch(dialBegin("A1", "B2"))

	e.Dispatch(newstate("SIP/alice-001", "4"))
	e.Dispatch(newstate("SIP/bob-002", "5"))
	e.Dispatch(newstate("SIP/carl-003", "5"))

	// Only one b-dial should have been emitted; the second ringing
	// channel was marked ignore_b_dial by the first.
	if len(sub.events) != 1 {
		t.Fatalf("expected exactly one b-dial event, got %v", sub.events)
	}

	e.Dispatch(dialEnd("A1", "B1"))
	e.Dispatch(dialEnd("A1", "B2"))
	e.Dispatch(hangup("SIP/bob-002", 19))
	e.Dispatch(hangup("SIP/carl-003", 19))
	e.Dispatch(hangup("SIP/alice-001", 19))

	want := []string{
		"b-dial call=A1 caller=1000 to=2000 targets=2",
		"a-hangup call=A1 caller=1000 to=2000 reason=no-answer",
	}
	if !reflect.DeepEqual(sub.events, want) {
		t.Fatalf("events mismatch:\ngot:  %v\nwant: %v", sub.events, want)
	}
}

func TestBlindTransfer(t *testing.T) {
	e, sub := newTestEngine()

	// A calls B, B answers, B blind-transfers to C.
	e.Dispatch(newchannel("A1", "A1", "SIP/alice-001", "2000", "Alice", "1000"))
	e.Dispatch(newchannel("B1", "A1", "SIP/bob-002", "s", "Bob", "2000"))
	e.Dispatch(dialBegin("A1", "B1"))
	e.Dispatch(newstate("SIP/alice-001", "4"))
	e.Dispatch(newstate("SIP/bob-002", "5"))
	e.Dispatch(bridgeCreate("br1"))
	e.Dispatch(newstate("SIP/bob-002", "6"))
	e.Dispatch(newstate("SIP/alice-001", "6"))
	e.Dispatch(bridgeEnter("br1", "A1", "A1", 1))
	e.Dispatch(bridgeEnter("br1", "B1", "A1", 2))
	e.Dispatch(dialEnd("A1", "B1"))

	sub.events = nil // reset, only interested in the transfer onward

	e.Dispatch(bridgeLeave("br1", "A1", 1))
	e.Dispatch(bridgeLeave("br1", "B1", 0))
	e.Dispatch(bridgeDestroy("br1"))

	e.Dispatch(RawEvent{
		"Event":              "BlindTransfer",
		"TransfererUniqueid": "B1",
		"TransfereeUniqueid": "A1",
		"Extension":          "3000",
	})

	e.Dispatch(newchannel("C1", "A1", "SIP/carl-003", "s", "Carl", "3000"))
	e.Dispatch(dialBegin("A1", "C1"))
	e.Dispatch(newstate("SIP/carl-003", "5"))

	if len(sub.events) != 2 {
		t.Fatalf("expected b-dial + cold-transfer, got %v", sub.events)
	}
	if sub.events[1][:13] != "cold-transfer" {
		t.Fatalf("expected second event to be cold-transfer, got %q", sub.events[1])
	}
}
