package core

import "strings"

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentDirection distinguishes text the caller is sending from text a
// backend produced, inside a single Message.
type ContentDirection int

const (
	ContentInput ContentDirection = iota
	ContentOutput
)

// Content is one typed chunk of a Message's body.
type Content struct {
	Direction ContentDirection
	Text      string
}

// Message is one turn in a Prompt.
type Message struct {
	Role    Role
	Content []Content
}

// Text concatenates every chunk of the message regardless of direction.
func (m Message) Text() string {
	var b strings.Builder
	for _, c := range m.Content {
		b.WriteString(c.Text)
	}
	return b.String()
}

// UserMessage is a convenience constructor for a single-chunk input
// message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: []Content{{Direction: ContentInput, Text: text}}}
}

// SystemMessage is a convenience constructor for a single-chunk system
// message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: []Content{{Direction: ContentInput, Text: text}}}
}

// Prompt is an ordered sequence of messages sent to a backend.
//
// BaseInstructionsOverride, when non-empty, replaces the system role
// message for this call. LogTag is implementation-only and is never
// serialized onto the wire.
type Prompt struct {
	Messages                 []Message
	BaseInstructionsOverride string
	LogTag                   string
	Temperature              float64
	MaxTokens                int
	TopP                     float64
	TopK                     int
}

// Flatten renders the prompt as (role, text) pairs, applying
// BaseInstructionsOverride in place of any system message.
func (p Prompt) Flatten() []struct {
	Role Role
	Text string
} {
	out := make([]struct {
		Role Role
		Text string
	}, 0, len(p.Messages))
	overridden := false
	for _, m := range p.Messages {
		if m.Role == RoleSystem && p.BaseInstructionsOverride != "" {
			out = append(out, struct {
				Role Role
				Text string
			}{RoleSystem, p.BaseInstructionsOverride})
			overridden = true
			continue
		}
		out = append(out, struct {
			Role Role
			Text string
		}{m.Role, m.Text()})
	}
	if !overridden && p.BaseInstructionsOverride != "" {
		out = append([]struct {
			Role Role
			Text string
		}{{RoleSystem, p.BaseInstructionsOverride}}, out...)
	}
	return out
}

// TokenUsage reports consumption for a single completed call. A nil
// *TokenUsage means "unknown", never "zero".
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Total is the derived input+output count.
func (u TokenUsage) Total() int { return u.InputTokens + u.OutputTokens }

// EventKind tags a StreamingEvent variant.
type EventKind int

const (
	EventOutputTextDelta EventKind = iota
	EventCompleted
)

// StreamingEvent is the sum type produced by a backend stream: either an
// incremental text delta, or the terminal Completed event (at most one
// per stream, and always last).
type StreamingEvent struct {
	Kind  EventKind
	Delta string      // set when Kind == EventOutputTextDelta; always non-empty
	Usage *TokenUsage // set when Kind == EventCompleted; may be nil
}
