// Package chatview prints a chat transcript to a terminal as the controller
// changes it.
package chatview

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/chat"
	"github.com/anmerino-pnd/proyectoCenace/pkg/cliui"
	"github.com/anmerino-pnd/proyectoCenace/pkg/references"
	"github.com/anmerino-pnd/proyectoCenace/pkg/render"
)

// Options configures a View.
type Options struct {
	Out io.Writer

	// Renderer formats finished answers. Without one, answers are printed
	// raw as they stream.
	Renderer render.Renderer

	// APIBase is the backend URL used for document links.
	APIBase string
}

type shown struct {
	printed int
	done    bool
	liked   bool
}

// View implements chat.View.
type View struct {
	mu       sync.Mutex
	out      io.Writer
	renderer render.Renderer
	apiBase  string

	entries map[int]*shown
	typed   string
}

func New(o Options) *View {
	return &View{
		out:      o.Out,
		renderer: o.Renderer,
		apiBase:  o.APIBase,
		entries:  map[int]*shown{},
	}
}

// Typed tells the view that the user already typed text at the prompt, so
// the next user entry with that text is not echoed.
func (v *View) Typed(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.typed = strings.TrimSpace(text)
}

func (v *View) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries = map[int]*shown{}
	fmt.Fprintln(v.out)
}

func (v *View) Append(e chat.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case e.Role == backend.RoleUser:
		if v.typed != "" && v.typed == e.Text {
			v.typed = ""
			return
		}
		fmt.Fprintf(v.out, "%s%s\n", cliui.UserPrompt, e.Text)

	case e.Notice:
		fmt.Fprintf(v.out, "%s%s\n\n", cliui.BotPrompt, cliui.DimStyle.Render(e.Text))

	case e.Streaming:
		s := &shown{}
		v.entries[e.Seq] = s
		fmt.Fprint(v.out, cliui.BotPrompt)
		if v.renderer == nil {
			fmt.Fprint(v.out, e.Text)
			s.printed = len(e.Text)
		} else {
			fmt.Fprintln(v.out, cliui.DimStyle.Render("…"))
		}

	default:
		v.entries[e.Seq] = &shown{printed: len(e.Text), done: true, liked: e.Liked}
		fmt.Fprint(v.out, cliui.BotPrompt)
		v.answerLocked(e)
	}
}

func (v *View) Update(e chat.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, found := v.entries[e.Seq]
	if !found {
		return
	}

	if s.done {
		if e.Liked != s.liked {
			s.liked = e.Liked
			fmt.Fprintf(v.out, "  %s\n\n", likeLine(e))
		}
		return
	}

	if v.renderer == nil {
		if len(e.Text) > s.printed {
			fmt.Fprint(v.out, e.Text[s.printed:])
			s.printed = len(e.Text)
		}
	}
	if e.Streaming {
		return
	}

	s.done = true
	s.liked = e.Liked
	if v.renderer == nil {
		fmt.Fprint(v.out, "\n")
		v.footerLocked(e)
		return
	}
	v.answerLocked(e)
}

func (v *View) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "  %s %s\n", cliui.ErrorStyle.Render("!"), msg)
}

// answerLocked prints a finished answer and its footer.
func (v *View) answerLocked(e chat.Entry) {
	text := e.Text
	if v.renderer != nil {
		if out, err := v.renderer.Render(e.Text); err == nil {
			text = out
		}
	}
	fmt.Fprint(v.out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprint(v.out, "\n")
	}
	v.footerLocked(e)
}

func (v *View) footerLocked(e chat.Entry) {
	for _, c := range references.DescribeAll(e.References, v.apiBase) {
		fmt.Fprintf(v.out, "  %s\n", cliui.DimStyle.Render(strings.ReplaceAll(c.String(), "\n", "\n  ")))
	}
	if e.MessageID != "" {
		fmt.Fprintf(v.out, "  %s\n", likeLine(e))
	}
	fmt.Fprintln(v.out)
}

func likeLine(e chat.Entry) string {
	line := cliui.KeyStyle.Render("id:") + " " + cliui.IDStyle.Render(e.MessageID)
	if e.Liked {
		line += " " + cliui.LikedMark
	}
	return line
}
