package failover

// FallbackModel is the compile-time constant returned when no level of
// the resolution chain names a model. There is no global state beyond
// this constant; everything else here is owner-local.
const FallbackModel = "claude-sonnet-4-20250514"

// ResolveModel returns the first non-empty value among user, session,
// agent, and global, in that priority order, falling back to
// FallbackModel if all are empty. Called once per turn before dispatch.
func ResolveModel(user, session, agent, global string) string {
	for _, v := range []string{user, session, agent, global} {
		if v != "" {
			return v
		}
	}
	return FallbackModel
}
