// Package mockbackendcmder provides the mock-backend command, an in-memory
// stand-in for the CENACE backend.
package mockbackendcmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
	"github.com/anmerino-pnd/proyectoCenace/pkg/logger"
	"github.com/anmerino-pnd/proyectoCenace/pkg/mockbackend"
)

const mockLongDesc string = `Run an in-memory mock of the CENACE backend.

The mock answers every endpoint the client uses. Chat answers are canned,
cite the loaded documents, solutions and tickets, and are streamed in small
chunks followed by the control payload. State is lost on exit.

--framing selects how the control payload is sent:
  wrapped      {"final_message_data":{...}} fused to the last text chunk
  standalone   a bare {"message_id":...,"metadata":{...}} chunk

Examples:
  cenace mock-backend
  cenace mock-backend --listen :9000 --framing standalone --chunk-delay 50ms`

const mockShortDesc string = "Run an in-memory mock of the CENACE backend"

type mockCommander struct {
	listen     string
	framing    string
	chunkSize  int
	chunkDelay time.Duration
	debug      bool
	logger     *zap.Logger
}

func NewMockBackendCmd() *cobra.Command {
	cmder := &mockCommander{}

	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: mockShortDesc,
		Long:  mockLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cfg, err := clientenv.Resolve(cmd, config.MockFlags)
			if err != nil {
				return err
			}
			cmder.listen = cfg.Mock.Listen
			cmder.framing = cfg.Mock.Framing
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.MockFlags, config.FlagMockListen, &cmder.listen)
	config.AddStringFlag(cmd, config.MockFlags, config.FlagMockFraming, &cmder.framing)
	cmd.Flags().IntVar(&cmder.chunkSize, "chunk-size", 0, "Runes per streamed chunk (default 12)")
	cmd.Flags().DurationVar(&cmder.chunkDelay, "chunk-delay", 0, "Pause between streamed chunks")

	return cmd
}

func (c *mockCommander) run() error {
	c.logger = logger.NewJSONLogger(c.debug, os.Stderr)
	defer func() { _ = c.logger.Sync() }()

	framing, err := mockbackend.ParseFraming(c.framing)
	if err != nil {
		return err
	}

	server := mockbackend.NewServer(mockbackend.Config{
		ListenAddr: c.listen,
		Framing:    framing,
		ChunkSize:  c.chunkSize,
		ChunkDelay: c.chunkDelay,
	}, c.logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("mock backend error: %w", err)
		}
		return nil
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
