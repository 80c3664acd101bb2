package core

import "slices"

// Conversation is the ordered, append-only message log exchanged with the
// model across all turns of one run. It is not safe for concurrent mutation;
// a run appends to it from a single goroutine.
type Conversation struct {
	messages []Message
}

// NewConversation seeds a conversation with the given messages. The slice is
// shallow-copied so later appends do not alias caller-owned history.
func NewConversation(messages ...Message) *Conversation {
	return &Conversation{messages: slices.Clone(messages)}
}

// Append adds messages to the end of the log.
func (c *Conversation) Append(messages ...Message) {
	c.messages = append(c.messages, messages...)
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	return slices.Clone(c.messages)
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int { return len(c.messages) }

// Last returns the final message, or nil for an empty log.
func (c *Conversation) Last() Message {
	if len(c.messages) == 0 {
		return nil
	}
	return c.messages[len(c.messages)-1]
}
