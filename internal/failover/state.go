// Package failover tracks per-provider failure state, auth-key rotation,
// and the model-resolution chain that together let a driver decide
// whether to retry a provider or move on to the next one.
package failover

import "time"

// Reason classifies why a provider call failed, grounding the fixed
// shouldFailover/isTransient policy table.
type Reason string

const (
	ReasonBilling        Reason = "billing"
	ReasonRateLimit      Reason = "rate_limit"
	ReasonAuth           Reason = "auth"
	ReasonTimeout        Reason = "timeout"
	ReasonFormat         Reason = "format"
	ReasonModelNotFound  Reason = "model_not_found"
	ReasonOverloaded     Reason = "overloaded"
	ReasonUnknown        Reason = "unknown"
)

type reasonPolicy struct {
	shouldFailover bool
	isTransient    bool
}

var policyTable = map[Reason]reasonPolicy{
	ReasonBilling:       {shouldFailover: true, isTransient: false},
	ReasonRateLimit:     {shouldFailover: true, isTransient: true},
	ReasonAuth:          {shouldFailover: true, isTransient: false},
	ReasonTimeout:       {shouldFailover: true, isTransient: true},
	ReasonFormat:        {shouldFailover: false, isTransient: false},
	ReasonModelNotFound: {shouldFailover: false, isTransient: false},
	ReasonOverloaded:    {shouldFailover: true, isTransient: true},
	ReasonUnknown:       {shouldFailover: true, isTransient: true},
}

// ShouldFailover reports whether a failure with this reason should move
// the driver to the next provider in its fallback chain.
func (r Reason) ShouldFailover() bool {
	p, ok := policyTable[r]
	if !ok {
		return policyTable[ReasonUnknown].shouldFailover
	}
	return p.shouldFailover
}

// IsTransient reports whether a failure with this reason is expected to
// clear on its own (worth a bare retry rather than a cooldown).
func (r Reason) IsTransient() bool {
	p, ok := policyTable[r]
	if !ok {
		return policyTable[ReasonUnknown].isTransient
	}
	return p.isTransient
}

type entry struct {
	failures      uint32
	lastFailureMs int64
	reason        Reason
}

// State is a provider:model failure tracker. It is owned by exactly one
// runtime and mutated only on the driving goroutine; it holds no lock
// because the runtime model is single-threaded cooperative.
type State struct {
	MaxRetries uint32
	CooldownMs int64

	entries map[string]*entry
	now     func() int64
}

// NewState returns an empty failover state. now defaults to the wall
// clock in milliseconds; a custom clock may be supplied for tests.
func NewState(maxRetries uint32, cooldownMs int64) *State {
	return &State{
		MaxRetries: maxRetries,
		CooldownMs: cooldownMs,
		entries:    make(map[string]*entry),
		now:        nowMs,
	}
}

func nowMs() int64 { return time.Now().UnixMilli() }

// BuildKey forms the canonical provider:model failover key.
func BuildKey(provider, model string) string {
	return provider + ":" + model
}

// RecordFailure inserts or updates the entry for key, bumping its
// failure count and stamping the current time.
func (s *State) RecordFailure(key string, reason Reason) {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.failures++
	e.lastFailureMs = s.now()
	e.reason = reason
}

// IsInCooldown reports whether key currently has at least MaxRetries
// recorded failures and the most recent one was within CooldownMs.
// Unknown keys, and keys below MaxRetries, are never in cooldown.
func (s *State) IsInCooldown(key string) bool {
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.failures < s.MaxRetries {
		return false
	}
	return s.now()-e.lastFailureMs < s.CooldownMs
}

// CircuitOpen reports the same cooldown condition as IsInCooldown under
// circuit-breaker vocabulary: "open" means the provider is skipped,
// "closed" is the normal available state. It is a read-only view over
// the counter+cooldown state; IsInCooldown remains the single source of
// truth.
func (s *State) CircuitOpen(key string) bool {
	return s.IsInCooldown(key)
}

// Reset removes key's recorded failures entirely.
func (s *State) Reset(key string) {
	delete(s.entries, key)
}

// GetFailureCount returns the recorded failure count for key, or 0 for
// an unknown key.
func (s *State) GetFailureCount(key string) uint32 {
	e, ok := s.entries[key]
	if !ok {
		return 0
	}
	return e.failures
}
