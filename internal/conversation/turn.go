// Package conversation holds the ordered conversation transcript, enforces
// the retained-length invariant, and persists the transcript to a JSON file.
package conversation

import "time"

// Role identifies the author of a turn.
type Role string

// Turn roles. The transcript only ever contains these two; the system
// preamble is injected at completion time and never stored.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the transcript. Immutable once created; owned
// exclusively by the Store.
type Turn struct {
	Role      Role
	Content   string
	CreatedAt time.Time

	// FromCache marks an assistant turn that was served from the response
	// cache instead of the completion API.
	FromCache bool
}

// NewUserTurn creates a user turn timestamped now.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content, CreatedAt: time.Now().UTC()}
}

// NewAssistantTurn creates an assistant turn timestamped now.
func NewAssistantTurn(content string, fromCache bool) Turn {
	return Turn{Role: RoleAssistant, Content: content, CreatedAt: time.Now().UTC(), FromCache: fromCache}
}
