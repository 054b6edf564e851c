package logger

import (
	"testing"

	"github.com/r3labs/sse/v2"
)

func TestSSEWriter_Write(t *testing.T) {
	server := sse.New()
	defer server.Close()
	server.CreateStream("logs")

	writer := NewSSEWriter(server)

	line := []byte(`{"level":"info","message":"test"}`)
	n, err := writer.Write(line)
	if err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if n != len(line) {
		t.Errorf("Write() returned %d bytes, want %d", n, len(line))
	}
}

func TestSSEWriter_WriteCopiesLine(t *testing.T) {
	server := sse.New()
	defer server.Close()
	server.CreateStream("logs")

	writer := NewSSEWriter(server)

	line := []byte(`{"level":"info","message":"first"}`)
	if _, err := writer.Write(line); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	// reusing the buffer must not corrupt the published event
	copy(line, []byte(`{"level":"info","message":"other"}`))
	if _, err := writer.Write(line); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
}
