// Package cenacecmder is the root of the cenace command tree.
package cenacecmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/chat"
	configcmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/config"
	conversationscmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/conversations"
	documentscmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/documents"
	historycmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/history"
	likecmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/like"
	logincmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/login"
	mcpcmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/mcp"
	mockbackendcmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/mockbackend"
	solutionscmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/solutions"
	ticketscmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/tickets"
	tuicmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/tui"
	versioncmder "github.com/anmerino-pnd/proyectoCenace/cmd/version"
)

const cenaceLongDesc string = `cenace is a terminal client for the CENACE assistant.

Ask questions about the indexed documents, solutions and tickets, keep
conversations, and mark useful answers so they become solutions.

Get started:
  cenace login <user>    Sign in (any name the backend knows you by)
  cenace chat            Chat in the terminal
  cenace tui             Chat in a full screen UI

Manage the knowledge base:
  cenace documents       Upload, index and view documents
  cenace solutions       Review answers marked as useful
  cenace tickets         Create tickets and discuss them with the assistant

Develop against a local backend:
  cenace mock-backend    Run an in-memory mock of the backend`

const cenaceShortDesc string = "cenace - CENACE assistant client"

func NewCenaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cenace",
		Short:         cenaceShortDesc,
		Long:          cenaceLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .cenace/ config directory")

	// Add subcommands
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(logincmder.NewLoginCmd())
	cmd.AddCommand(logincmder.NewLogoutCmd())
	cmd.AddCommand(logincmder.NewWhoamiCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())
	cmd.AddCommand(conversationscmder.NewConversationsCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(likecmder.NewLikeCmd())
	cmd.AddCommand(likecmder.NewUnlikeCmd())
	cmd.AddCommand(documentscmder.NewDocumentsCmd())
	cmd.AddCommand(solutionscmder.NewSolutionsCmd())
	cmd.AddCommand(ticketscmder.NewTicketsCmd())
	cmd.AddCommand(mcpcmder.NewMCPCmd())
	cmd.AddCommand(mockbackendcmder.NewMockBackendCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
