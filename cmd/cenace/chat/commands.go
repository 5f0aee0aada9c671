package chatcmder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
)

// errNoAnswer is returned by /like and /unlike without an id when the
// conversation has no answer that can be liked.
var errNoAnswer = errors.New("no answer to mark yet")

const helpText = `  /new [title]      /conversations    /use <id>      /delete [id]
  /history          /clear            /like [id]     /unlike [id]
  /k <n>            /filter <name>    /exit`

// parseCommand splits "/name arg..." into name and the trimmed rest.
func parseCommand(line string) (string, string) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "/")
	name, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// handle runs a slash command. It reports whether the session should end.
func (c *chatCommander) handle(ctx context.Context, line string) (bool, error) {
	name, arg := parseCommand(line)

	switch name {
	case "exit", "quit", "salir":
		return true, nil

	case "help", "ayuda":
		fmt.Fprintf(c.out, "%s\n\n", cliui.DimStyle.Render(helpText))
		return false, nil

	case "new", "nueva":
		_, err := c.ctrl.NewConversation(ctx, arg)
		return false, err

	case "conversations", "conversaciones":
		conversations, err := c.ctrl.Conversations(ctx)
		if err != nil {
			return false, err
		}
		c.printConversations(conversations)
		return false, nil

	case "use":
		if arg == "" {
			return false, errors.New("usage: /use <id>")
		}
		return false, c.ctrl.LoadHistory(ctx, arg)

	case "delete":
		return false, c.ctrl.DeleteConversation(ctx, arg)

	case "history", "historial":
		return false, c.ctrl.LoadHistory(ctx, "")

	case "clear":
		return false, c.ctrl.ClearHistory(ctx)

	case "like", "unlike":
		id := arg
		if id == "" {
			id = c.lastAnswerID()
		}
		if id == "" {
			return false, errNoAnswer
		}
		return false, c.ctrl.Like(ctx, id, name == "like")

	case "k":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return false, errors.New("usage: /k <n>, with n >= 1")
		}
		_, filter := c.ctrl.Retrieval()
		c.ctrl.SetRetrieval(n, filter)
		c.printRetrieval()
		return false, nil

	case "filter", "filtro":
		if !validFilter(arg) {
			return false, fmt.Errorf("usage: /filter <%s|None>", strings.Join(backend.Collections, "|"))
		}
		k, _ := c.ctrl.Retrieval()
		c.ctrl.SetRetrieval(k, arg)
		c.printRetrieval()
		return false, nil

	default:
		return false, fmt.Errorf("unknown command /%s, try /help", name)
	}
}

func validFilter(name string) bool {
	if name == "None" {
		return true
	}
	for _, c := range backend.Collections {
		if name == c {
			return true
		}
	}
	return false
}

// lastAnswerID returns the id of the newest answer that can be liked.
func (c *chatCommander) lastAnswerID() string {
	entries := c.ctrl.Transcript().Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Likeable() {
			return entries[i].MessageID
		}
	}
	return ""
}

func (c *chatCommander) printRetrieval() {
	k, filter := c.ctrl.Retrieval()
	fmt.Fprintf(c.out, "  %s %d  %s %s\n\n",
		cliui.KeyStyle.Render("k:"), k,
		cliui.KeyStyle.Render("Filtro:"), filter,
	)
}

func (c *chatCommander) printConversations(conversations []backend.Conversation) {
	current := c.ctrl.Session().ConversationID()
	for _, conv := range conversations {
		marker := " "
		if conv.ConversationID == current {
			marker = cliui.SuccessMark
		}
		fmt.Fprintf(c.out, "  %s %s  %s\n", marker, cliui.IDStyle.Render(conv.ConversationID), conv.DisplayTitle())
	}
	fmt.Fprintln(c.out)
}
