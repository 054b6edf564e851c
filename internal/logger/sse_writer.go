package logger

import (
	"github.com/r3labs/sse/v2"
)

// SSEWriter publishes every log line to the "logs" SSE stream so the admin
// dashboard can tail the server live.
type SSEWriter struct {
	sse *sse.Server
}

func NewSSEWriter(server *sse.Server) *SSEWriter {
	return &SSEWriter{sse: server}
}

func (w *SSEWriter) Write(p []byte) (n int, err error) {
	// the sse server retains the slice; copy to keep lines intact
	line := make([]byte, len(p))
	copy(line, p)

	w.sse.Publish("logs", &sse.Event{
		Data: line,
	})

	return len(p), nil
}
