// Package file delivers formatted output: operation results to stdout and,
// optionally, a JSON-lines journal of every device operation to a
// size-rotated file.
//
//	device.Report → format/{text,json} → transport/file
//
// Each call to Send writes one record followed by a newline.
package file

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// ─────────────────────────────────────────────────────────────────────────────
// Transport interface
// ─────────────────────────────────────────────────────────────────────────────

// Transport delivers one pre-formatted record per Send. Close releases any
// resources the transport owns.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config controls WriterTransport behaviour.
type Config struct {
	// Writer is the destination. nil defaults to os.Stdout.
	Writer io.Writer

	// Newline appended after each record. Default "\n".
	Newline string

	// CloseWriter makes Close close Writer when it implements io.Closer.
	// Set it when the transport owns the writer, as with a journal file.
	CloseWriter bool
}

// ─────────────────────────────────────────────────────────────────────────────
// WriterTransport
// ─────────────────────────────────────────────────────────────────────────────

// WriterTransport writes each record to an io.Writer followed by a newline.
// It is safe for concurrent use.
type WriterTransport struct {
	mu     sync.Mutex
	w      io.Writer
	nl     []byte
	owns   bool
	closed bool
	logger *slog.Logger
}

// New constructs a WriterTransport.
func New(cfg Config, logger *slog.Logger) *WriterTransport {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	nl := cfg.Newline
	if nl == "" {
		nl = "\n"
	}
	return &WriterTransport{
		w:      w,
		nl:     []byte(nl),
		owns:   cfg.CloseWriter,
		logger: logger,
	}
}

// OpenJournal opens a size-rotated JSON-lines journal at cfg.FilePath. The
// returned transport owns the file and closes it on Close.
func OpenJournal(cfg RotateConfig, logger *slog.Logger) (*WriterTransport, error) {
	rf, err := NewRotatingFile(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(Config{Writer: rf, CloseWriter: true}, logger), nil
}

// Send writes data and the newline as one Write so concurrent senders never
// interleave and a rotating writer never splits a record across files.
func (t *WriterTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport/file: send on closed transport")
	}
	rec := make([]byte, 0, len(data)+len(t.nl))
	rec = append(append(rec, data...), t.nl...)
	if _, err := t.w.Write(rec); err != nil {
		t.logger.Error("transport/file: write failed", "error", err.Error(), "bytes", len(data))
		return fmt.Errorf("transport/file: write: %w", err)
	}

	t.logger.Debug("transport/file: sent record", "bytes", len(data))
	return nil
}

// Close closes the writer when the transport owns it. Later Sends fail.
func (t *WriterTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	if c, ok := t.w.(io.Closer); ok && t.owns {
		return c.Close()
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// no-op logger writer
// ─────────────────────────────────────────────────────────────────────────────

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
