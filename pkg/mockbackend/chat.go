package mockbackend

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
	"github.com/anmerino-pnd/proyectoCenace/pkg/utils"
)

const titleLength = 40

type finalMessageData struct {
	MessageID string               `json:"message_id"`
	Metadata  *chatstream.Metadata `json:"metadata"`
}

type wrappedControl struct {
	FinalMessageData finalMessageData `json:"final_message_data"`
}

// handleChat stores the question and a canned answer, then streams the
// answer followed by the control payload.
func (s *Server) handleChat(c *fiber.Ctx) error {
	if f, failed := s.nextChatFailure(); failed {
		s.logger.Debug("failing chat request on demand", zap.Int("status", f.status))
		if json.Valid([]byte(f.body)) {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		}
		return c.Status(f.status).SendString(f.body)
	}

	var req backend.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if req.UserID == "" || strings.TrimSpace(req.Query) == "" {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "user_id and query are required")
	}

	answer, err := s.answer(req)
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, err.Error())
	}

	control, err := s.controlPayload(answer)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "could not encode control payload")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	pr, pw := io.Pipe()
	go s.writeStream(pw, chunkRunes(answer.Content, s.config.ChunkSize), control)
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// answer records the question and its answer in the conversation and
// returns the stored answer.
func (s *Server) answer(req backend.ChatRequest) (backend.HistoryMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var conv *conversation
	if req.ConversationID == "" {
		conv = &conversation{id: uuid.NewString()}
		s.conversations[req.UserID] = append([]*conversation{conv}, s.conversations[req.UserID]...)
	} else {
		conv = s.findConversationLocked(req.UserID, req.ConversationID)
		if conv == nil {
			return backend.HistoryMessage{}, fmt.Errorf("conversation %s not found", req.ConversationID)
		}
	}
	if conv.title == "" {
		conv.title = utils.Truncate(strings.TrimSpace(req.Query), titleLength)
	}

	refs := s.referencesLocked(req)
	answer := backend.HistoryMessage{
		ID:       uuid.NewString(),
		Role:     string(backend.RoleBot),
		Content:  cannedAnswer(req.Query, refs),
		Metadata: &chatstream.Metadata{References: refs},
	}
	conv.messages = append(conv.messages,
		backend.HistoryMessage{ID: uuid.NewString(), Role: string(backend.RoleUser), Content: req.Query},
		answer,
	)
	return answer, nil
}

func (s *Server) referencesLocked(req backend.ChatRequest) []chatstream.Reference {
	collection := req.FilterMetadata["collection"]
	k := backend.NormalizeK(req.K)
	var refs []chatstream.Reference

	if collection == "" || collection == "documentos" {
		names := make([]string, 0, len(s.documents))
		for name, doc := range s.documents {
			if doc.Processed() {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			doc := s.documents[name]
			refs = append(refs, chatstream.Reference{
				Reference: doc.Reference,
				Metadata: chatstream.ReferenceMetadata{
					Collection: "documentos",
					Filename:   name,
					Title:      name,
					PageNumber: "1",
				},
			})
		}
	}

	if collection == "" || collection == "soluciones" {
		for _, sol := range s.solutions[req.UserID] {
			refs = append(refs, chatstream.Reference{
				Reference: sol.ID,
				Metadata: chatstream.ReferenceMetadata{
					Collection: "soluciones",
					Title:      utils.Truncate(sol.Question, titleLength),
				},
			})
		}
	}

	if collection == "" || collection == "tickets" {
		for _, t := range s.tickets {
			refs = append(refs, chatstream.Reference{
				Reference: t.Reference,
				Metadata: chatstream.ReferenceMetadata{
					Collection: "tickets",
					Title:      t.Title,
					Categories: t.Categories,
				},
			})
		}
	}

	if len(refs) > k {
		refs = refs[:k]
	}
	return refs
}

func cannedAnswer(query string, refs []chatstream.Reference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Esta es una respuesta simulada a tu pregunta:\n\n> %s\n\n", strings.TrimSpace(query))
	if len(refs) == 0 {
		b.WriteString("No encontré referencias en la colección consultada.")
		return b.String()
	}
	fmt.Fprintf(&b, "Consulté **%d** referencias:\n", len(refs))
	for _, r := range refs {
		fmt.Fprintf(&b, "\n- %s (%s)", r.Metadata.Title, r.Metadata.Collection)
	}
	return b.String()
}

func (s *Server) controlPayload(answer backend.HistoryMessage) ([]byte, error) {
	data := finalMessageData{MessageID: answer.ID, Metadata: answer.Metadata}
	if s.config.Framing == FramingStandalone {
		return json.Marshal(data)
	}
	return json.Marshal(wrappedControl{FinalMessageData: data})
}

func (s *Server) writeStream(pw *io.PipeWriter, chunks []string, control []byte) {
	defer pw.Close()

	for i, chunk := range chunks {
		out := []byte(chunk)
		if s.config.Framing == FramingWrapped && i == len(chunks)-1 {
			out = append(out, control...)
		}
		if _, err := pw.Write(out); err != nil {
			s.logger.Debug("client went away", zap.Error(err))
			return
		}
		if s.config.ChunkDelay > 0 {
			time.Sleep(s.config.ChunkDelay)
		}
	}

	if s.config.Framing == FramingStandalone || len(chunks) == 0 {
		if _, err := pw.Write(control); err != nil {
			s.logger.Debug("client went away", zap.Error(err))
		}
	}
}

// chunkRunes splits s into pieces of at most size runes.
func chunkRunes(s string, size int) []string {
	runes := []rune(s)
	var chunks []string
	for len(runes) > 0 {
		n := size
		if n > len(runes) {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}
