package mockbackend

import (
	"io"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatstream"
)

// bytes of a document per indexed chunk
const chunkBytes = 1000

type referenceIDs struct {
	ReferenceIDs []string `json:"reference_ids"`
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (s *Server) handleDocuments(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]backend.Document, len(s.documents))
	for name, doc := range s.documents {
		out[name] = doc.Document
	}
	return c.JSON(out)
}

// handleUploadDocuments stores the multipart "files". Uploading a file
// again replaces it and marks it as not indexed.
func (s *Server) handleUploadDocuments(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "multipart form expected")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "no files uploaded")
	}

	result := backend.UploadResult{}
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "could not read "+fh.Filename)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "could not read "+fh.Filename)
		}

		name := filepath.Base(fh.Filename)
		s.mu.Lock()
		s.documents[name] = &document{
			Document: backend.Document{
				Filename:     name,
				Reference:    uuid.NewString(),
				LastModified: chatstream.FlexString(time.Now().UTC().Format(time.RFC3339)),
				Size:         int64(len(content)),
			},
			content: content,
		}
		s.mu.Unlock()

		s.logger.Debug("document uploaded", zap.String("filename", name), zap.Int("size", len(content)))
		result.Files = append(result.Files, backend.UploadedFile{Filename: name})
	}
	return c.JSON(result)
}

// handleLoadDocuments indexes the uploaded documents and answers
// [documents, new, chunks].
func (s *Server) handleLoadDocuments(c *fiber.Ctx) error {
	force := c.QueryBool("force_reload", false)

	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, chunks := 0, 0
	now := chatstream.FlexString(time.Now().UTC().Format(time.RFC3339))
	for _, doc := range s.documents {
		if doc.Processed() && !force {
			continue
		}
		doc.ProcessedAt = now
		doc.Chunks = len(doc.content)/chunkBytes + 1
		loaded++
		chunks += doc.Chunks
	}

	s.logger.Debug("documents loaded",
		zap.String("collection", c.Query("collection_name")),
		zap.Int("new", loaded),
	)
	return c.JSON([]int{len(s.documents), loaded, chunks})
}

func (s *Server) handleDeleteDocuments(c *fiber.Ctx) error {
	var req referenceIDs
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	remove := idSet(req.ReferenceIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, doc := range s.documents {
		if remove[doc.Reference] {
			delete(s.documents, name)
		}
	}
	return ok(c)
}

func (s *Server) handleViewDocument(c *fiber.Ctx) error {
	name := c.Params("filename")

	s.mu.Lock()
	doc, found := s.documents[name]
	s.mu.Unlock()
	if !found {
		return errorJSON(c, fiber.StatusNotFound, "document not found")
	}

	c.Type(filepath.Ext(name))
	return c.Send(doc.content)
}

func (s *Server) handleSolutions(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := append([]backend.Solution{}, s.solutions[c.Params("user")]...)
	return c.JSON(out)
}

// handleProcessLikedSolutions turns every liked answer of the user into a
// solution, paired with the question that preceded it.
func (s *Server) handleProcessLikedSolutions(c *fiber.Ctx) error {
	user := c.Params("user")

	s.mu.Lock()
	defer s.mu.Unlock()

	known := map[string]bool{}
	for _, sol := range s.solutions[user] {
		known[sol.ID] = true
	}

	processed := 0
	for _, conv := range s.conversations[user] {
		question := ""
		for _, msg := range conv.messages {
			if msg.Sender() == backend.RoleUser {
				question = msg.Content
				continue
			}
			if msg.Metadata == nil || !msg.Metadata.Disable || known[msg.ID] {
				continue
			}
			s.solutions[user] = append(s.solutions[user], backend.Solution{
				ID:       msg.ID,
				Question: question,
				Answer:   msg.Content,
				Metadata: msg.Metadata,
			})
			known[msg.ID] = true
			processed++
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "processed": processed})
}

func (s *Server) handleDeleteSolutions(c *fiber.Ctx) error {
	var req referenceIDs
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	remove := idSet(req.ReferenceIDs)

	s.mu.Lock()
	defer s.mu.Unlock()
	for user, sols := range s.solutions {
		kept := sols[:0]
		for _, sol := range sols {
			if !remove[sol.ID] {
				kept = append(kept, sol)
			}
		}
		s.solutions[user] = kept
	}
	return ok(c)
}

func (s *Server) handleTickets(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]backend.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, *t)
	}
	return c.JSON(out)
}

func (s *Server) handleCreateTicket(c *fiber.Ctx) error {
	var req backend.NewTicket
	if err := c.BodyParser(&req); err != nil || req.Title == "" || req.Description == "" {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "titulo and descripcion are required")
	}

	t := &backend.Ticket{
		Reference:   uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Categories:  chatstream.FlexString(req.Categories),
	}

	s.mu.Lock()
	s.tickets = append(s.tickets, t)
	s.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(t)
}

// handleUpdateTicket merges new_metadata into a ticket.
func (s *Server) handleUpdateTicket(c *fiber.Ctx) error {
	var patch metadataPatch
	if err := c.BodyParser(&patch); err != nil {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := c.Params("reference")
	for _, t := range s.tickets {
		if t.Reference != ref {
			continue
		}
		if v, isString := patch.NewMetadata["solucion_id"].(string); isString {
			t.SolutionID = v
		}
		if v, isBool := patch.NewMetadata["is_solved"].(bool); isBool {
			t.IsSolved = v
		}
		if v, isString := patch.NewMetadata["titulo"].(string); isString && v != "" {
			t.Title = v
		}
		if v, isString := patch.NewMetadata["descripcion"].(string); isString && v != "" {
			t.Description = v
		}
		return ok(c)
	}
	return errorJSON(c, fiber.StatusNotFound, "ticket not found")
}
