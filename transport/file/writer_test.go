package file_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vpbank/rackctl/transport/file"
)

var _ file.Transport = (*file.WriterTransport)(nil)

func newBuf(t *testing.T) (*bytes.Buffer, *file.WriterTransport) {
	t.Helper()
	var buf bytes.Buffer
	return &buf, file.New(file.Config{Writer: &buf}, nil)
}

func TestSend_WritesRecordsOnePerLine(t *testing.T) {
	buf, tr := newBuf(t)
	msgs := []string{"Status for rack-a:", `{"device":"nas"}`, "Sent Wake-on-Lan packet to nas"}
	for _, m := range msgs {
		if err := tr.Send([]byte(m)); err != nil {
			t.Fatalf("Send(%q): %v", m, err)
		}
	}
	if got, want := buf.String(), strings.Join(msgs, "\n")+"\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestSend_CustomNewline(t *testing.T) {
	var buf bytes.Buffer
	tr := file.New(file.Config{Writer: &buf, Newline: "\r\n"}, nil)
	_ = tr.Send([]byte(`{"x":1}`))
	if buf.String() != "{\"x\":1}\r\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSend_ConcurrentRecordsDoNotInterleave(t *testing.T) {
	buf, tr := newBuf(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tr.Send([]byte("0123456789"))
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for i, l := range lines {
		if l != "0123456789" {
			t.Fatalf("line %d = %q", i, l)
		}
	}
}

func TestSend_ErrorOnFailingWriter(t *testing.T) {
	tr := file.New(file.Config{Writer: errWriter{}}, nil)
	if err := tr.Send([]byte("x")); err == nil {
		t.Error("expected error from failing writer, got nil")
	}
}

func TestClose_OwnershipAndAfterClose(t *testing.T) {
	cw := &closeWriter{}
	borrowed := file.New(file.Config{Writer: cw}, nil)
	if err := borrowed.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if cw.closed {
		t.Error("a borrowed writer must not be closed")
	}
	if err := borrowed.Send([]byte("late")); err == nil {
		t.Error("Send after Close should fail")
	}

	owned := file.New(file.Config{Writer: cw, CloseWriter: true}, nil)
	_ = owned.Close()
	if !cw.closed {
		t.Error("an owned writer should be closed")
	}
	if err := owned.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "rackctl.jsonl")
	j, err := file.OpenJournal(file.RotateConfig{FilePath: path}, nil)
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	_ = j.Send([]byte(`{"device":"rack-a"}`))
	_ = j.Send([]byte(`{"device":"nas"}`))
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "{\"device\":\"rack-a\"}\n{\"device\":\"nas\"}\n" {
		t.Errorf("journal = %q", data)
	}
}

// errWriter always fails.
type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("simulated write error") }

type closeWriter struct {
	bytes.Buffer
	closed bool
}

func (c *closeWriter) Close() error {
	c.closed = true
	return nil
}
