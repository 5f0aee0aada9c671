package chatstream

import "strings"

// DefaultMaxPending bounds how many bytes a candidate control payload may
// hold back from RawText before it is released as plain text.
const DefaultMaxPending = 64 * 1024

// tailScanner finds a control payload at the end of the stream without
// re-parsing the whole buffer on every fragment.
//
// A candidate starts at '{'. While it is open, its bytes are withheld so
// RawText only ever grows. The candidate is released back to the text when
// it cannot be a JSON object, when it closes but is not a control payload,
// when non-whitespace follows it, or when it exceeds maxPending. After a
// release, scanning resumes at the byte following the candidate's '{' so
// nested objects get their own chance.
type tailScanner struct {
	maxPending int

	pending  []byte
	trailing []byte
	depth    int
	inString bool
	escaped  bool
	started  bool
	closed   *control
}

func newTailScanner(maxPending int) *tailScanner {
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &tailScanner{maxPending: maxPending}
}

// feed consumes a fragment and returns the text that is now known not to be
// part of a control payload. ctrl is non-nil when the stream currently ends
// with a complete control payload followed only by whitespace.
func (s *tailScanner) feed(fragment string) (text string, ctrl *control) {
	var out strings.Builder
	work := []byte(fragment)

	for len(work) > 0 {
		b := work[0]
		work = work[1:]

		if s.pending == nil {
			if b == '{' {
				s.open()
				continue
			}
			out.WriteByte(b)
			continue
		}

		if s.closed != nil {
			if isSpace(b) && len(s.pending)+len(s.trailing) < s.maxPending {
				s.trailing = append(s.trailing, b)
				continue
			}
			work = s.release(&out, append([]byte{b}, work...))
			continue
		}

		s.pending = append(s.pending, b)
		if s.step(b) {
			work = s.release(&out, work)
			continue
		}

		if s.depth == 0 {
			if c, ok := parseControl(s.pending); ok {
				s.closed = c
			} else {
				work = s.release(&out, work)
				continue
			}
		}

		if len(s.pending)+len(s.trailing) > s.maxPending {
			work = s.release(&out, work)
		}
	}

	return out.String(), s.closed
}

// flush releases everything still held back.
func (s *tailScanner) flush() string {
	if s.pending == nil {
		return ""
	}
	text := string(s.pending) + string(s.trailing)
	s.reset()
	return text
}

func (s *tailScanner) open() {
	s.pending = []byte{'{'}
	s.trailing = nil
	s.depth = 1
	s.inString = false
	s.escaped = false
	s.started = false
	s.closed = nil
}

// step advances the JSON structure state by one byte of the open candidate.
// It returns true when the candidate can no longer be a JSON object.
func (s *tailScanner) step(b byte) bool {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case b == '\\':
			s.escaped = true
		case b == '"':
			s.inString = false
		}
		return false
	}

	if !s.started {
		if isSpace(b) {
			return false
		}
		s.started = true
		if b != '"' && b != '}' {
			return true
		}
	}

	switch b {
	case '"':
		s.inString = true
	case '{':
		s.depth++
	case '}':
		s.depth--
	}
	return false
}

// release writes the candidate's opening brace as text and returns the
// work queue with the rest of the candidate placed in front of it for
// rescanning.
func (s *tailScanner) release(out *strings.Builder, work []byte) []byte {
	out.WriteByte('{')

	rescan := make([]byte, 0, len(s.pending)-1+len(s.trailing)+len(work))
	rescan = append(rescan, s.pending[1:]...)
	rescan = append(rescan, s.trailing...)
	rescan = append(rescan, work...)

	s.reset()
	return rescan
}

func (s *tailScanner) reset() {
	s.pending = nil
	s.trailing = nil
	s.depth = 0
	s.inString = false
	s.escaped = false
	s.started = false
	s.closed = nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
