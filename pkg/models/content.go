// Package models defines the wire-level data shapes shared by the agent
// executor, the tool registry, and the MCP client: messages, content
// blocks, completion requests/responses, and tool definitions.
package models

import (
	"encoding/json"
	"fmt"
)

// Role identifies who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn in a conversation. Content is always a sequence of
// blocks; a plain-text turn is a single TextBlock.
//
// Invariant: assistant messages produced by the LLM are appended verbatim
// before any derived tool-result messages are appended on their behalf.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewTextMessage builds a single-block text message, the common case for
// user turns and system prompts represented as messages.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{TextBlock{Text: text}}}
}

// Text concatenates the text of every TextBlock in the message, ignoring
// other block kinds. Used by callers that only care about the prose.
func (m Message) Text() string {
	var out string
	for _, b := range m.Content {
		if t, ok := b.(TextBlock); ok {
			out += t.Text
		}
	}
	return out
}

// ToolUses returns every ToolUseBlock in the message, in appearance order.
func (m Message) ToolUses() []ToolUseBlock {
	var out []ToolUseBlock
	for _, b := range m.Content {
		if tu, ok := b.(ToolUseBlock); ok {
			out = append(out, tu)
		}
	}
	return out
}

// ContentBlock is the tagged-variant union of a message's content: text,
// an image, a model tool-use request, or a tool-result reply. The marker
// method keeps the set closed to this package's concrete types.
type ContentBlock interface {
	isContentBlock()
	blockType() string
}

// TextBlock is plain text content.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) isContentBlock()   {}
func (TextBlock) blockType() string { return "text" }

// ImageSource is the tagged variant describing where image bytes come
// from: a remote URL or inline base64 data.
type ImageSource interface {
	isImageSource()
}

// URLSource references an externally hosted image.
type URLSource struct {
	URL string `json:"url"`
}

func (URLSource) isImageSource() {}

// Base64Source carries inline image bytes.
type Base64Source struct {
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

func (Base64Source) isImageSource() {}

// ImageBlock is multi-modal image content.
type ImageBlock struct {
	Source ImageSource `json:"source"`
}

func (ImageBlock) isContentBlock()   {}
func (ImageBlock) blockType() string { return "image" }

// ToolUseBlock is the model's request to invoke a named tool. ID is
// opaque and unique within the assistant turn that produced it.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (ToolUseBlock) isContentBlock()   {}
func (ToolUseBlock) blockType() string { return "tool_use" }

// ToolResultBlock is the outcome of one prior ToolUseBlock, identified by
// ToolUseID. It always appears in a user-role message that immediately
// follows the assistant turn containing the matching id.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

func (ToolResultBlock) isContentBlock()   {}
func (ToolResultBlock) blockType() string { return "tool_result" }

// contentBlockWire is the discriminated-union wire shape every
// ContentBlock variant marshals to and unmarshals from.
type contentBlockWire struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Source    json.RawMessage `json:"source,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

type imageSourceWire struct {
	URL       string `json:"url,omitempty"`
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
}

// MarshalJSON implements json.Marshaler for the Message type, flattening
// the ContentBlock interface slice into its tagged wire form.
func (m Message) MarshalJSON() ([]byte, error) {
	type wire struct {
		Role    Role               `json:"role"`
		Content []contentBlockWire `json:"content"`
	}
	w := wire{Role: m.Role, Content: make([]contentBlockWire, len(m.Content))}
	for i, b := range m.Content {
		wb, err := marshalBlock(b)
		if err != nil {
			return nil, err
		}
		w.Content[i] = wb
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler, reconstructing the concrete
// ContentBlock variant for each tagged entry.
func (m *Message) UnmarshalJSON(data []byte) error {
	var w struct {
		Role    Role               `json:"role"`
		Content []contentBlockWire `json:"content"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.Role = w.Role
	m.Content = make([]ContentBlock, len(w.Content))
	for i, wb := range w.Content {
		b, err := unmarshalBlock(wb)
		if err != nil {
			return err
		}
		m.Content[i] = b
	}
	return nil
}

func marshalBlock(b ContentBlock) (contentBlockWire, error) {
	switch v := b.(type) {
	case TextBlock:
		return contentBlockWire{Type: "text", Text: v.Text}, nil
	case ImageBlock:
		src, err := marshalImageSource(v.Source)
		if err != nil {
			return contentBlockWire{}, err
		}
		return contentBlockWire{Type: "image", Source: src}, nil
	case ToolUseBlock:
		return contentBlockWire{Type: "tool_use", ID: v.ID, Name: v.Name, Input: v.Input}, nil
	case ToolResultBlock:
		return contentBlockWire{Type: "tool_result", ToolUseID: v.ToolUseID, Content: v.Content, IsError: v.IsError}, nil
	default:
		return contentBlockWire{}, fmt.Errorf("models: unknown content block type %T", b)
	}
}

func unmarshalBlock(w contentBlockWire) (ContentBlock, error) {
	switch w.Type {
	case "text":
		return TextBlock{Text: w.Text}, nil
	case "image":
		src, err := unmarshalImageSource(w.Source)
		if err != nil {
			return nil, err
		}
		return ImageBlock{Source: src}, nil
	case "tool_use":
		return ToolUseBlock{ID: w.ID, Name: w.Name, Input: w.Input}, nil
	case "tool_result":
		return ToolResultBlock{ToolUseID: w.ToolUseID, Content: w.Content, IsError: w.IsError}, nil
	default:
		return nil, fmt.Errorf("models: unknown content block type %q", w.Type)
	}
}

func marshalImageSource(s ImageSource) (json.RawMessage, error) {
	switch v := s.(type) {
	case URLSource:
		return json.Marshal(imageSourceWire{URL: v.URL})
	case Base64Source:
		return json.Marshal(imageSourceWire{MediaType: v.MediaType, Data: v.Data})
	default:
		return nil, fmt.Errorf("models: unknown image source type %T", s)
	}
}

func unmarshalImageSource(raw json.RawMessage) (ImageSource, error) {
	var w imageSourceWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	if w.URL != "" {
		return URLSource{URL: w.URL}, nil
	}
	return Base64Source{MediaType: w.MediaType, Data: w.Data}, nil
}
