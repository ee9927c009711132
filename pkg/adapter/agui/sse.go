package agui

import (
	"bufio"
	"io"
	"strings"
)

// ReadEventStream parses a Server-Sent Events body and invokes emit with
// each complete data payload. Multi-line data fields are joined with
// newlines per the SSE specification; comment and non-data fields are
// skipped. Returns when the stream ends.
func ReadEventStream(r io.Reader, emit func(data []byte)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var data []string
	flush := func() {
		if len(data) == 0 {
			return
		}
		payload := strings.Join(data, "\n")
		data = data[:0]
		if payload == "" || payload == "[DONE]" {
			return
		}
		emit([]byte(payload))
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, ":"):
			// comment/keepalive
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// event:/id:/retry: fields are not needed; payload type is
			// carried inside the JSON data.
		}
	}
	flush()
	return scanner.Err()
}
