package mockbackend

import (
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
)

// ErrorResponse is the error body of the backend.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StatusResponse is the body of endpoints that only acknowledge.
type StatusResponse struct {
	Status string `json:"status"`
}

type conversation struct {
	id       string
	title    string
	messages []backend.HistoryMessage
}

type document struct {
	backend.Document
	content []byte
}

type failure struct {
	status int
	body   string
}

// Server is the mock backend. All state lives in memory and is lost on
// shutdown.
type Server struct {
	config Config
	logger *zap.Logger
	app    *fiber.App

	mu sync.Mutex

	// conversations per user, newest first
	conversations map[string][]*conversation
	documents     map[string]*document
	solutions     map[string][]backend.Solution
	tickets       []*backend.Ticket
	chatFailures  []failure
}

// NewServer creates a mock backend.
func NewServer(config Config, logger *zap.Logger) *Server {
	if config.Framing == "" {
		config.Framing = FramingWrapped
	}
	if config.ChunkSize < 1 {
		config.ChunkSize = defaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		UnescapePath:          true,
		BodyLimit:             64 * 1024 * 1024,
	})

	s := &Server{
		config:        config,
		logger:        logger,
		app:           app,
		conversations: map[string][]*conversation{},
		documents:     map[string]*document{},
		solutions:     map[string][]backend.Solution{},
	}

	app.Get("/ping", s.handlePing)
	app.Post("/chat", s.handleChat)

	app.Get("/history/:user/:conversation", s.handleHistory)
	app.Delete("/history/:user/:conversation", s.handleClearHistory)
	app.Patch("/history/:user/messages/:id", s.handleUpdateMessage)
	app.Get("/conversations/:user", s.handleConversations)
	app.Post("/new_conversation", s.handleNewConversation)
	app.Post("/delete_conversation", s.handleDeleteConversation)

	app.Get("/documents", s.handleDocuments)
	app.Post("/upload_documents", s.handleUploadDocuments)
	app.Post("/load_documents", s.handleLoadDocuments)
	app.Post("/delete_document", s.handleDeleteDocuments)
	app.Get("/view_document/:filename", s.handleViewDocument)

	app.Get("/solutions/:user", s.handleSolutions)
	app.Post("/process_liked_solutions/:user", s.handleProcessLikedSolutions)
	app.Post("/delete_solution", s.handleDeleteSolutions)

	app.Get("/tickets", s.handleTickets)
	app.Post("/tickets", s.handleCreateTicket)
	app.Patch("/tickets/:reference", s.handleUpdateTicket)

	return s
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock backend",
		zap.String("listen", s.config.ListenAddr),
		zap.String("framing", string(s.config.Framing)),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve starts the server on ln.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// FailChat makes the next /chat request fail with status and body.
func (s *Server) FailChat(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatFailures = append(s.chatFailures, failure{status: status, body: body})
}

func (s *Server) nextChatFailure() (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.chatFailures) == 0 {
		return failure{}, false
	}
	f := s.chatFailures[0]
	s.chatFailures = s.chatFailures[1:]
	return f, true
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(backend.PingResponse{Status: "ok", Message: "pong"})
}

func errorJSON(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(ErrorResponse{Detail: detail})
}

func ok(c *fiber.Ctx) error {
	return c.JSON(StatusResponse{Status: "ok"})
}
