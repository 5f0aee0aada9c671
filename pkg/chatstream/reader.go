package chatstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

const readBufferSize = 4096

// ReadStream reads r until the message seals, r is exhausted or ctx is
// done, feeding every chunk to rc. onUpdate, when non-nil, is called after
// each fragment. Multi-byte characters split across reads are held until
// complete.
//
// On a read error the partial message is returned together with the error;
// the caller decides how to surface it.
func ReadStream(ctx context.Context, r io.Reader, rc *Reconstructor, onUpdate func(Update)) (Message, error) {
	buf := make([]byte, readBufferSize)
	var carry []byte

	emit := func(u Update) {
		if onUpdate != nil {
			onUpdate(u)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return rc.Message(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			data := make([]byte, 0, len(carry)+n)
			data = append(data, carry...)
			data = append(data, buf[:n]...)

			cut := completeRunes(data)
			carry = data[cut:]

			if cut > 0 {
				u := rc.Feed(string(data[:cut]))
				emit(u)
				if u.Sealed {
					return u.Message, nil
				}
			}
		}

		if errors.Is(err, io.EOF) {
			if len(carry) > 0 {
				u := rc.Feed(string(carry))
				emit(u)
				if u.Sealed {
					return u.Message, nil
				}
			}
			msg := rc.Finish()
			emit(Update{Message: msg, Sealed: true})
			return msg, nil
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return rc.Message(), ctxErr
			}
			return rc.Message(), fmt.Errorf("reading chat stream: %w", err)
		}
	}
}

// completeRunes returns the length of the longest prefix of b that does not
// end in the middle of a UTF-8 sequence.
func completeRunes(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}
