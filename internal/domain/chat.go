package domain

import "encoding/json"

// Role tags a transcript message.
type Role string

const (
	// RoleSystem carries instructions for the model.
	RoleSystem Role = "system"
	// RoleUser carries the user prompt and capability results.
	RoleUser Role = "user"
	// RoleAssistant carries model output.
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged transcript entry.
type Message struct {
	Role    Role
	Content string
}

// Transcript is an append-only conversation built fresh for a single request.
type Transcript struct {
	messages []Message
}

// NewTranscript starts a transcript with the given messages.
func NewTranscript(msgs ...Message) *Transcript {
	t := &Transcript{messages: make([]Message, 0, len(msgs)+2)}
	t.messages = append(t.messages, msgs...)
	return t
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(role Role, content string) {
	t.messages = append(t.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the messages in order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int { return len(t.messages) }

// ToolInvocation is a model-proposed call: capability name plus raw JSON arguments.
type ToolInvocation struct {
	Name      string
	Arguments json.RawMessage
}
