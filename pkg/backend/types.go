package backend

import (
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	UserID         string            `json:"user_id"`
	ConversationID string            `json:"conversation_id,omitempty"`
	Query          string            `json:"query"`
	K              int               `json:"k"`
	FilterMetadata map[string]string `json:"filter_metadata"`
}

// Role of a history message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// HistoryMessage is one stored message of a conversation. The backend uses
// "assistant" and "bot" interchangeably; anything but "user" is the bot.
type HistoryMessage struct {
	ID       string               `json:"id,omitempty"`
	Role     string               `json:"role"`
	Content  string               `json:"content"`
	Metadata *chatstream.Metadata `json:"metadata,omitempty"`
}

// Sender normalizes Role.
func (m HistoryMessage) Sender() Role {
	if m.Role == string(RoleUser) {
		return RoleUser
	}
	return RoleBot
}

// Conversation is an entry of GET /conversations/{user}.
type Conversation struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
}

// DisplayTitle returns the title, or a placeholder for untitled conversations.
func (c Conversation) DisplayTitle() string {
	if c.Title == "" {
		return "Conversación sin título"
	}
	return c.Title
}

// Document is an uploaded file of the documents corpus.
type Document struct {
	Filename     string                `json:"filename"`
	Reference    string                `json:"reference"`
	LastModified chatstream.FlexString `json:"last_modified,omitempty"`
	Size         int64                 `json:"size,omitempty"`
	ProcessedAt  chatstream.FlexString `json:"processed_at,omitempty"`
	Chunks       int                   `json:"chunks,omitempty"`
}

// Processed reports whether the document was indexed.
func (d Document) Processed() bool {
	return d.ProcessedAt != ""
}

// UploadResult is the response of POST /upload_documents.
type UploadResult struct {
	Files []UploadedFile `json:"files"`
}

type UploadedFile struct {
	Filename string `json:"filename"`
}

// LoadResult summarizes a POST /load_documents run.
type LoadResult struct {
	Documents int `json:"documents"`
	New       int `json:"new"`
	Chunks    int `json:"chunks"`
}

// Solution is a liked answer promoted to the solutions corpus.
type Solution struct {
	ID       string               `json:"id"`
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Metadata *chatstream.Metadata `json:"metadata,omitempty"`
}

// Ticket is a support ticket.
type Ticket struct {
	Reference   string                `json:"reference"`
	Title       string                `json:"titulo"`
	Description string                `json:"descripcion"`
	Categories  chatstream.FlexString `json:"categories,omitempty"`
	IsSolved    bool                  `json:"is_solved"`
	SolutionID  string                `json:"solucion_id,omitempty"`
}

// NewTicket is the body of POST /tickets.
type NewTicket struct {
	Title       string `json:"titulo"`
	Description string `json:"descripcion"`
	Categories  string `json:"categories"`
}

// PingResponse is the body of GET /ping.
type PingResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type metadataPatch struct {
	NewMetadata map[string]any `json:"new_metadata"`
}

type referenceIDs struct {
	ReferenceIDs []string `json:"reference_ids"`
}
