package env

import (
	"fmt"
	"strings"
)

// AgentMismatchError reports a step call whose agent-id set does not
// exactly match the partition's agents.
type AgentMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *AgentMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing agents %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("unknown agents %v", e.Extra))
	}
	return "env: " + strings.Join(parts, "; ")
}

// StateError reports an operation invoked in the wrong lifecycle phase.
type StateError struct {
	Op    string
	Phase Phase
}

func (e *StateError) Error() string {
	return fmt.Sprintf("env: %s called while %s", e.Op, e.Phase)
}
