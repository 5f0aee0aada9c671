// Package chatcmder provides the chat command, an interactive session with
// the CENACE assistant.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chatview"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/clientenv"
	"github.com/anmerino-pnd/proyectoCenace/pkg/config"
	"github.com/anmerino-pnd/proyectoCenace/pkg/session"
)

const chatLongDesc string = `Start an interactive chat session with the CENACE assistant.

Answers are streamed from the backend and cite the documents, solutions
and tickets they were built from. The session continues the open
conversation of the signed-in user; when nobody is signed in you are
asked for a user name.

Type a question and press Enter. Commands:
  /new [title]        Start a new conversation
  /conversations      List your conversations
  /use <id>           Open a conversation
  /delete [id]        Delete a conversation (default: the open one)
  /history            Show the open conversation again
  /clear              Delete the messages of the open conversation
  /like [id]          Mark an answer as useful (default: the last one)
  /unlike [id]        Remove the mark
  /k <n>              Number of retrieved passages
  /filter <name>      documentos, tickets, soluciones or None
  /exit               Quit (also Ctrl+D)

Ctrl+C stops the answer being streamed.

Examples:
  cenace chat
  cenace chat --filter documentos -k 5
  cenace chat --query "¿Cómo se reinicia la UPS?"`

const chatShortDesc string = "Interactive chat with the CENACE assistant"

type chatCommander struct {
	flags        flagValues
	conversation string
	query        string
	raw          bool

	in  io.Reader
	out io.Writer

	env  *clientenv.Env
	view *chatview.View
	ctrl *chat.Controller
}

type flagValues struct {
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
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.env, err = clientenv.New(cmd, config.ChatFlags)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			defer cmder.env.Close()
			return cmder.run(cmd.Context())
		},
	}

	registerFlags(cmd, &cmder.flags)
	cmd.Flags().StringVarP(&cmder.conversation, "conversation", "c", "", "Conversation to open")
	cmd.Flags().StringVarP(&cmder.query, "query", "q", "", "Ask one question and exit")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Stream answers without Markdown rendering")

	return cmd
}

func registerFlags(cmd *cobra.Command, f *flagValues) {
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPIEndpoint, &f.endpoint)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagTimeout, &f.timeout)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagK, &f.k)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagFilter, &f.filter)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagLikePolicy, &f.likePolicy)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagRenderStyle, &f.style)
	config.AddUintFlag(cmd, config.ChatFlags, config.FlagRenderWidth, &f.width)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEventsProvider, &f.eventsProvider)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEventsBrokers, &f.eventsBrokers)
	config.AddStringFlag(cmd, config.ChatFlags, config.FlagEventsTopic, &f.eventsTopic)
}

// remember selects conversationID for user so that the controller opens it
// on login. Only a missing user is fatal; the session file is best effort.
func (c *chatCommander) remember(user, conversationID string) error {
	if err := c.env.Session.Login(user); err != nil {
		if errors.Is(err, session.ErrNoUser) {
			return err
		}
		c.env.Logger.Warn("could not persist session", zap.Error(err))
	}
	if err := c.env.Session.Use(conversationID); err != nil {
		if errors.Is(err, session.ErrNoUser) {
			return err
		}
		c.env.Logger.Warn("could not persist session", zap.Error(err))
	}
	return nil
}

func (c *chatCommander) run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)

	user := c.env.Session.UserID()
	if user == "" {
		user = c.askUser(scanner)
	}
	if user == "" {
		return fmt.Errorf("%w: run \"cenace login <user>\" first", session.ErrNoUser)
	}

	c.view = c.env.TerminalView(c.out, c.raw)
	var err error
	c.ctrl, err = c.env.Controller(c.view)
	if err != nil {
		return err
	}

	if c.conversation != "" {
		if err := c.remember(user, c.conversation); err != nil {
			return err
		}
	}
	if err := c.ctrl.Login(ctx, user); err != nil {
		return fmt.Errorf("opening conversation: %w", err)
	}
	if opened := c.ctrl.Session().ConversationID(); c.conversation != "" && opened != c.conversation {
		c.env.Logger.Warn("conversation not found",
			zap.String("requested", c.conversation),
			zap.String("opened", opened),
		)
		fmt.Fprintf(c.out, "  %s conversation %s not found, opened %s\n\n", cliui.FailMark, c.conversation, opened)
	}

	if c.query != "" {
		_, err := c.ctrl.SendMessage(ctx, c.query)
		return err
	}

	stop := c.cancelOnInterrupt()
	defer stop()

	k, filter := c.ctrl.Retrieval()
	fmt.Fprintf(c.out, "  %s %s  %s %d  %s %s\n",
		cliui.KeyStyle.Render("Usuario:"), cliui.NameStyle.Render(user),
		cliui.KeyStyle.Render("k:"), k,
		cliui.KeyStyle.Render("Filtro:"), filter,
	)
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Escribe tu pregunta y presiona Enter. /help para ver los comandos, /exit o Ctrl+D para salir."))

	for {
		fmt.Fprint(c.out, cliui.UserPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			exit, err := c.handle(ctx, input)
			if err != nil {
				fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
			}
			if exit {
				break
			}
			continue
		}

		c.view.Typed(input)
		if _, err := c.ctrl.SendMessage(ctx, input); err != nil {
			// The transcript already shows what went wrong.
			c.env.Logger.Debug("question failed", zap.Error(err))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// askUser prompts for a user name when input is interactive.
func (c *chatCommander) askUser(scanner *bufio.Scanner) string {
	f, ok := c.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return ""
	}

	fmt.Fprintf(c.out, "\n  %s ", cliui.KeyStyle.Render("Usuario:"))
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// cancelOnInterrupt makes Ctrl+C stop the streamed answer instead of the
// program. Ctrl+C while idle exits.
func (c *chatCommander) cancelOnInterrupt() func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigChan:
				if c.env.Session.Busy() {
					c.ctrl.Cancel()
					fmt.Fprintf(c.out, "\n  %s\n", cliui.DimStyle.Render("respuesta cancelada"))
					continue
				}
				fmt.Fprintln(c.out)
				c.env.Close()
				os.Exit(130)
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
