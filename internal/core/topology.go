package core

// GetDialingChannel walks backward from c through BackDial links (and,
// transparently, a single BackLocalBridge hop on each link) to find
// the ultimate origin of an in-flight call. If c has no back link, c
// itself is the origin.
func GetDialingChannel(c *Channel) *Channel {
	var aChan *Channel
	if c.BackDial != nil {
		aChan = c.BackDial
	}

	if aChan != nil && aChan.BackLocalBridge != nil {
		aChan = aChan.BackLocalBridge
	}

	if aChan == nil {
		return c
	}
	return GetDialingChannel(aChan)
}

// GetDialedChannels collects the frontier of non-local channels
// reachable from c through its FwdDials and, transparently, through a
// single FwdLocalBridge hop on each link. A double FwdLocalBridge hop
// on the same link is an invariant breach: Asterisk is not expected to
// chain local channels that deeply.
//
// The result preserves first-seen order and never repeats a channel,
// mirroring the Python implementation's use of a set but giving
// deterministic output for tests.
func GetDialedChannels(c *Channel) []*Channel {
	var bChans []*Channel
	if c.FwdLocalBridge != nil {
		bChans = c.FwdLocalBridge.FwdDials
	} else {
		bChans = c.FwdDials
	}

	seen := make(map[string]bool, len(bChans))
	var out []*Channel

	add := func(ch *Channel) {
		if !seen[ch.UniqueID] {
			seen[ch.UniqueID] = true
			out = append(out, ch)
		}
	}

	for _, bChan := range bChans {
		if bChan.FwdLocalBridge != nil {
			nested := bChan.FwdLocalBridge
			if nested.FwdLocalBridge != nil {
				panicInvariant("double local-bridge hop in GetDialedChannels", RawEvent{"Uniqueid": bChan.UniqueID})
			}
			for _, rc := range GetDialedChannels(nested) {
				add(rc)
			}
		} else {
			if len(bChan.FwdDials) != 0 {
				panicInvariant("dialed leaf channel unexpectedly has forward dials", RawEvent{"Uniqueid": bChan.UniqueID})
			}
			add(bChan)
		}
	}

	return out
}

// IsConnectab reports whether c is the origin channel of a ConnectAB
// call: a switch-originated two-leg dial where both endpoints are
// called (click-to-dial / call-me-now). The dialing channel of c must
// have a forward local bridge, and both that channel and its
// local-bridge counterpart must have open forward dials.
func IsConnectab(c *Channel) bool {
	localA := GetDialingChannel(c)
	return localA.FwdLocalBridge != nil &&
		len(localA.FwdDials) > 0 &&
		len(localA.FwdLocalBridge.FwdDials) > 0
}

// ConnectabParticipants extracts the two real endpoints of a ConnectAB
// call reachable from c: caller is the far leg of the local bridge,
// callee is the far leg of c's dialing channel.
func ConnectabParticipants(c *Channel) (caller, callee *Channel) {
	localA := GetDialingChannel(c)
	localB := localA.FwdLocalBridge
	callee = localA.FwdDials[0]
	caller = localB.FwdDials[0]
	return caller, callee
}

func callerIDsOf(chans []*Channel) []CallerId {
	out := make([]CallerId, len(chans))
	for i, ch := range chans {
		out[i] = ch.CallerID
	}
	return out
}
