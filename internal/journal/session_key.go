package journal

import "strings"

// BuildSessionKey renders the "agent:{agentId}[:{part}]*" session
// address grammar used to look up a session within its store.
func BuildSessionKey(agentID string, parts []string) string {
	b := strings.Builder{}
	b.WriteString("agent:")
	b.WriteString(agentID)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}
