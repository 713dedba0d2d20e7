package failover

import "time"

// AuthRotation is an ordered set of API keys with a current index and a
// per-key failure tally. The promised behavior is
// Rotate/ResetCurrent/AllExhausted; lastGood timestamps are bookkeeping
// for key stickiness and never gate those three.
type AuthRotation struct {
	keys     []string
	current  int
	tallies  []uint32
	lastGood []int64

	now func() int64
}

// NewAuthRotation builds a rotation over the given ordered key set.
func NewAuthRotation(keys []string) *AuthRotation {
	return &AuthRotation{
		keys:     append([]string(nil), keys...),
		tallies:  make([]uint32, len(keys)),
		lastGood: make([]int64, len(keys)),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// Current returns the currently selected key and its index. ok is false
// for an empty rotation.
func (a *AuthRotation) Current() (key string, ok bool) {
	if len(a.keys) == 0 {
		return "", false
	}
	return a.keys[a.current], true
}

// Rotate increments the current key's failure tally and advances the
// index modulo the key count. It is a no-op when there is at most one
// key, since there is nowhere to rotate to.
func (a *AuthRotation) Rotate() {
	if len(a.keys) == 0 {
		return
	}
	a.tallies[a.current]++
	if len(a.keys) <= 1 {
		return
	}
	a.current = (a.current + 1) % len(a.keys)
}

// ResetCurrent zeros the current key's failure tally.
func (a *AuthRotation) ResetCurrent() {
	if len(a.keys) == 0 {
		return
	}
	a.tallies[a.current] = 0
}

// AllExhausted reports whether every key's tally is at least max. An
// empty rotation is vacuously exhausted.
func (a *AuthRotation) AllExhausted(max uint32) bool {
	for _, t := range a.tallies {
		if t < max {
			return false
		}
	}
	return true
}

// MarkGood stamps the current key's last-known-good time. It does not
// reset the failure tally; callers that want both call ResetCurrent
// explicitly.
func (a *AuthRotation) MarkGood() {
	if len(a.keys) == 0 {
		return
	}
	a.lastGood[a.current] = a.now()
}

// LastGood returns the last-known-good timestamp (unix ms) recorded for
// the key at index i, or 0 if it has never been marked good.
func (a *AuthRotation) LastGood(i int) int64 {
	if i < 0 || i >= len(a.lastGood) {
		return 0
	}
	return a.lastGood[i]
}
