package lexchat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxChunkSize bounds a single streamed line. Fragments are short; the
// limit only guards against a misbehaving server.
const maxChunkSize = 1 << 20

// Stream reads answer fragments from a streaming response. It is not
// safe for concurrent use.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

func newStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxChunkSize)
	return &Stream{body: body, scanner: scanner}
}

// Recv returns the next fragment. It returns io.EOF when the server has
// finished the answer.
func (s *Stream) Recv() (ResultChunk, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		var chunk ResultChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return ResultChunk{}, fmt.Errorf("lexchat: decode chunk: %w", err)
		}
		return chunk, nil
	}

	if err := s.scanner.Err(); err != nil {
		return ResultChunk{}, fmt.Errorf("lexchat: read stream: %w", err)
	}
	return ResultChunk{}, io.EOF
}

// Close releases the underlying connection. Always call it, even after
// io.EOF.
func (s *Stream) Close() error {
	if err := s.body.Close(); err != nil {
		return fmt.Errorf("lexchat: close stream: %w", err)
	}
	return nil
}
