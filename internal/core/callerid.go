// Package core implements the event-translation engine: it consumes
// Asterisk AMI's raw call-control stream and produces a small set of
// business call events (ringing, answered, warm transfer, cold
// transfer, hung up).
package core

const unknownSentinel = "<unknown>"

// CallerId is an immutable description of one end of a call.
//
// Two CallerId values are equal iff all four fields match exactly;
// Go's native struct equality already gives us this, since every
// field is a comparable scalar.
type CallerId struct {
	Code     int
	Name     string
	Number   string
	IsPublic bool
}

// NewCallerId builds a CallerId, normalizing the two Asterisk sentinel
// strings ("<unknown>") to empty.
func NewCallerId(code int, name, number string, isPublic bool) CallerId {
	return CallerId{
		Code:     code,
		Name:     normalizeUnknown(name),
		Number:   normalizeUnknown(number),
		IsPublic: isPublic,
	}
}

func normalizeUnknown(s string) string {
	if s == unknownSentinel {
		return ""
	}
	return s
}

// CallerIdPatch carries the fields a With call should overwrite. A nil
// field leaves the corresponding CallerId field untouched.
type CallerIdPatch struct {
	Code     *int
	Name     *string
	Number   *string
	IsPublic *bool
}

// With returns a new CallerId with the patched fields applied,
// normalizing the unknown-sentinel strings the same way the
// constructor does. The receiver is never mutated.
func (c CallerId) With(patch CallerIdPatch) CallerId {
	next := c
	if patch.Code != nil {
		next.Code = *patch.Code
	}
	if patch.Name != nil {
		next.Name = normalizeUnknown(*patch.Name)
	}
	if patch.Number != nil {
		next.Number = normalizeUnknown(*patch.Number)
	}
	if patch.IsPublic != nil {
		next.IsPublic = *patch.IsPublic
	}
	return next
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
