// Package mockbackend is an in-memory stand-in for the CENACE backend. It
// serves every endpoint the client uses and streams canned answers, so the
// CLI and TUI can be exercised without the retrieval service.
package mockbackend

import (
	"fmt"
	"time"
)

// Framing is how the control payload is placed in a /chat stream.
type Framing string

const (
	// FramingWrapped fuses {"final_message_data":{...}} to the last text chunk.
	FramingWrapped Framing = "wrapped"

	// FramingStandalone sends a bare {"message_id":...,"metadata":{...}} as
	// its own chunk.
	FramingStandalone Framing = "standalone"
)

// ParseFraming parses a configured framing; "" means FramingWrapped.
func ParseFraming(s string) (Framing, error) {
	switch Framing(s) {
	case "", FramingWrapped:
		return FramingWrapped, nil
	case FramingStandalone:
		return FramingStandalone, nil
	default:
		return "", fmt.Errorf("unknown framing %q (want wrapped or standalone)", s)
	}
}

// Config is the mock backend configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8000")
	ListenAddr string

	Framing Framing

	// ChunkSize is the number of characters per streamed chunk.
	ChunkSize int

	// ChunkDelay is the pause between streamed chunks.
	ChunkDelay time.Duration
}

const defaultChunkSize = 12
