// Package chatstream reconstructs a bot answer from the chunked body of a
// CENACE /chat response.
//
// The backend streams plain Markdown text and, once generation completes,
// a JSON control payload carrying the message id and its metadata. The
// payload has no delimiter: it is either fused to the end of the last text
// chunk or sent as a chunk of its own, and it can be wrapped in a
// "final_message_data" object or sent bare. A Reconstructor accepts
// fragments with arbitrary boundaries, keeps RawText append-only while
// streaming, and seals exactly once, either when the control payload is
// found at the tail of the stream or when the stream ends without one.
package chatstream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// State is the lifecycle state of a streamed message.
type State int

const (
	Streaming State = iota
	Sealed
)

func (s State) String() string {
	switch s {
	case Streaming:
		return "streaming"
	case Sealed:
		return "sealed"
	default:
		return "unknown"
	}
}

// Message is a snapshot of the answer being reconstructed.
type Message struct {
	// RawText is the Markdown received so far, without the control payload.
	RawText string `json:"raw_text"`

	// RenderedHTML is RawText passed through the Renderer.
	RenderedHTML string `json:"rendered_html"`

	// MessageID is empty until sealing, and stays empty when the stream
	// ended without a control payload.
	MessageID string `json:"message_id,omitempty"`

	// Metadata is nil while streaming. A degraded seal sets it to an empty
	// Metadata.
	Metadata *Metadata `json:"metadata,omitempty"`

	State State `json:"state"`
}

// Sealed reports whether the message reached its terminal state.
func (m Message) Sealed() bool {
	return m.State == Sealed
}

// HasID reports whether the backend assigned an id to the message. Only
// messages with an id can be liked.
func (m Message) HasID() bool {
	return m.MessageID != ""
}

// Metadata is the metadata the backend attaches to a finished answer.
type Metadata struct {
	References []Reference `json:"references,omitempty"`

	// Disable is the persisted "liked" flag.
	Disable bool `json:"disable"`
}

// ReferenceIDs returns the ids of the references in order.
func (m *Metadata) ReferenceIDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, 0, len(m.References))
	for _, r := range m.References {
		ids = append(ids, r.Reference)
	}
	return ids
}

// Reference is a citation attached to an answer.
type Reference struct {
	Reference string            `json:"reference"`
	Metadata  ReferenceMetadata `json:"metadata"`
}

// ReferenceMetadata describes where a reference comes from. Collection is
// one of "documentos", "tickets" or "soluciones"; unknown values are kept.
type ReferenceMetadata struct {
	Collection string     `json:"collection,omitempty"`
	Filename   string     `json:"filename,omitempty"`
	Title      string     `json:"title,omitempty"`
	PageNumber FlexString `json:"page_number,omitempty"`
	Author     FlexString `json:"author,omitempty"`
	Subject    string     `json:"subject,omitempty"`
	Source     string     `json:"source,omitempty"`
	Categories FlexString `json:"categories,omitempty"`
}

// FlexString is a string that also accepts JSON numbers, booleans and
// arrays of scalars. Backend revisions disagree on whether page numbers
// are integers and whether categories are a list.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s, err := flexValue(v)
	if err != nil {
		return err
	}
	*f = FlexString(s)
	return nil
}

func flexValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, err := flexValue(item)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", fmt.Errorf("unsupported value %T", v)
	}
}

// Update is the result of feeding one fragment.
type Update struct {
	Message Message

	// Delta is the text this fragment appended to RawText.
	Delta string

	// Sealed is true only for the update that sealed the message.
	Sealed bool

	// Ignored is true when the fragment arrived after sealing.
	Ignored bool
}
