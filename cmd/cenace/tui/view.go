package tuicmder

import (
	bubbletea "github.com/charmbracelet/bubbletea"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
)

type (
	resetMsg         struct{}
	entryAppendedMsg struct{ entry chat.Entry }
	entryUpdatedMsg  struct{ entry chat.Entry }
	alertMsg         struct{ text string }
	conversationsMsg struct{ conversations []backend.Conversation }
)

// programView forwards controller callbacks to the running program. The
// controller only calls it from commands, never from Update, so Send
// cannot deadlock the event loop.
type programView struct {
	program *bubbletea.Program
}

func (v *programView) send(msg bubbletea.Msg) {
	if v.program != nil {
		v.program.Send(msg)
	}
}

func (v *programView) Reset()              { v.send(resetMsg{}) }
func (v *programView) Append(e chat.Entry) { v.send(entryAppendedMsg{entry: e}) }
func (v *programView) Update(e chat.Entry) { v.send(entryUpdatedMsg{entry: e}) }
func (v *programView) Alert(text string)   { v.send(alertMsg{text: text}) }

func (v *programView) SetConversations(conversations []backend.Conversation) {
	v.send(conversationsMsg{conversations: conversations})
}
