package core

import "strconv"

// RawEvent is one line-framed AMI message: a mapping-like structure
// with a mandatory "Event" field. Values arrive as strings; the
// engine converts to integers only where it needs to (ChannelState,
// AccountCode, Cause, bridge peer counts).
type RawEvent map[string]string

// Int parses the named field as an integer, treating a missing or
// unparsable field as zero. Used for ChannelState, AccountCode, Cause
// and bridge peer counts, none of which are meaningful as non-integers.
func (e RawEvent) Int(key string) int {
	v, err := strconv.Atoi(e[key])
	if err != nil {
		return 0
	}
	return v
}

func intToStr(i int) string {
	return strconv.Itoa(i)
}
