// Package tuicmder provides the tui command, a full screen chat with the
// CENACE assistant.
package tuicmder

import (
	"os"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
)

const tuiLongDesc string = `Open the CENACE assistant in a full screen terminal UI.

The transcript of the open conversation fills the screen and answers are
rendered as they stream in. Conversations of the signed-in user can be
switched without leaving the UI.

Keys:
  enter        send the question
  esc          stop the answer being streamed
  ctrl+l       mark the last answer as useful, or remove the mark
  ctrl+n       start a new conversation
  tab          open the next conversation (shift+tab: previous)
  ctrl+f       cycle the retrieval filter
  pgup/pgdown  scroll the transcript
  ctrl+c       quit`

const tuiShortDesc string = "Full screen chat with the CENACE assistant"

type tuiCommander struct {
	endpoint       string
	timeout        string
	k              uint
	filter         string
	likePolicy     string
	style          string
	width          uint
	eventsProvider string
	eventsBrokers  string
	eventsTopic    string

	env *clientenv.Env
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd, config.ChatFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer cmder.env.Close()
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &cmder.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &cmder.timeout)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagK, &cmder.k)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagFilter, &cmder.filter)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagLikePolicy, &cmder.likePolicy)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagRenderStyle, &cmder.style)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagRenderWidth, &cmder.width)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *tuiCommander) run(cmd *cobra.Command) error {
	user, err := c.env.RequireUser()
	if err != nil {
		return err
	}

	// Force TrueColor so lipgloss styles survive the alt screen.
	renderer := lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.TrueColor))
	renderer.SetColorProfile(termenv.TrueColor)
	lipgloss.SetDefaultRenderer(renderer)

	view := &programView{}
	ctrl, err := c.env.Controller(view)
	if err != nil {
		return err
	}

	md, err := c.env.TerminalRenderer()
	if err != nil {
		c.env.Logger.Warn("answers will not be rendered", zap.Error(err))
		md = nil
	}

	ctx := cmd.Context()
	model := newModel(ctx, ctrl, md, c.env.Config.Client.APIEndpoint, user)
	program := bubbletea.NewProgram(model,
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)
	view.program = program

	_, err = program.Run()
	ctrl.Cancel()
	return err
}
