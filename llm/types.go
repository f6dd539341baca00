package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Role represents a message participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsDialogue reports whether messages with this role are forwarded to the model.
func (r Role) IsDialogue() bool {
	return r == RoleUser || r == RoleAssistant
}

// ContentText is the block type for plain text.
const ContentText = "text"

// ContentBlock is one structured element of a message's content.
//
// Blocks decoded from JSON keep their original encoding and marshal back to
// the same JSON value, so client-supplied block lists reach the provider
// unchanged.
type ContentBlock struct {
	Type string
	Text string

	raw json.RawMessage
}

type contentBlockJSON struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextBlock creates a text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: ContentText, Text: text}
}

func (b ContentBlock) MarshalJSON() ([]byte, error) {
	if len(b.raw) > 0 {
		return b.raw, nil
	}
	return json.Marshal(contentBlockJSON{Type: b.Type, Text: b.Text})
}

func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var wire contentBlockJSON
	// Blocks the relay does not understand are still kept and forwarded.
	_ = json.Unmarshal(data, &wire)
	b.Type = wire.Type
	b.Text = wire.Text
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Content is the structured content of a message.
//
// A JSON string decodes into a single text block; a JSON list decodes into
// its blocks as-is. Content always marshals as a list.
type Content []ContentBlock

func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*c = nil
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = Content{TextBlock(s)}
		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var blocks []ContentBlock
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return err
		}
		if blocks == nil {
			blocks = []ContentBlock{}
		}
		*c = blocks
		return nil
	default:
		return fmt.Errorf("content must be a string or a list of content blocks, got %s", trimmed)
	}
}

// Text concatenates the text of all text blocks.
func (c Content) Text() string {
	var b strings.Builder
	for _, p := range c {
		if p.Type == ContentText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Message is a single turn in a conversation.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// Text concatenates all text content in the message.
func (m Message) Text() string {
	return m.Content.Text()
}

// UserMessage creates a user message with a single text block.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: Content{TextBlock(text)}}
}

// AssistantMessage creates an assistant message with a single text block.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: Content{TextBlock(text)}}
}

// Conversation is an ordered list of messages, oldest first.
type Conversation []Message

// Dialogue returns the user and assistant turns in their original order.
// Any other role is dropped.
func (c Conversation) Dialogue() Conversation {
	out := make(Conversation, 0, len(c))
	for _, m := range c {
		if m.Role.IsDialogue() {
			out = append(out, m)
		}
	}
	return out
}

// DecodeConversation parses a client-supplied JSON message list.
//
// A missing, null or empty list yields an empty conversation. Each element
// must be an object carrying a role key. A role that is not a string keeps
// the turn out of the dialogue, like any unknown role. User and assistant
// turns must also carry content; the content of other turns is not
// inspected since they are never forwarded.
func DecodeConversation(data []byte) (Conversation, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Conversation{}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &Error{Kind: ErrInvalidRequest, Message: "messages must be a list", Cause: err}
	}

	conv := make(Conversation, 0, len(items))
	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf("message %d is malformed", i), Cause: err}
		}
		rawRole, ok := fields["role"]
		if !ok {
			return nil, &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf("message %d: missing role", i)}
		}

		var m Message
		// null and non-string roles leave Role empty.
		var role string
		if json.Unmarshal(rawRole, &role) == nil {
			m.Role = Role(role)
		}
		if m.Role.IsDialogue() {
			rawContent, ok := fields["content"]
			if !ok {
				return nil, &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf("message %d: missing content", i)}
			}
			if err := json.Unmarshal(rawContent, &m.Content); err != nil {
				return nil, &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf("message %d: invalid content", i), Cause: err}
			}
		}
		conv = append(conv, m)
	}
	return conv, nil
}

// Request is the provider-independent description of one model call.
type Request struct {
	Model       string
	Provider    string
	System      string
	Messages    Conversation
	Temperature *float64
	MaxTokens   *int
}

// Usage contains token counts from the response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the parsed reply of a model call.
type Response struct {
	ID         string
	Model      string
	Provider   string
	Text       string // text of the first reply segment
	StopReason string // provider's native stop reason
	Usage      Usage
	Raw        []byte // raw provider response JSON
}
