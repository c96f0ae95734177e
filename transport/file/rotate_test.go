package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vpbank/rackctl/transport/file"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestRotatingFile_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	if err := os.WriteFile(path, []byte("old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	rf, err := file.NewRotatingFile(file.RotateConfig{FilePath: path}, nil)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	if _, err := rf.Write([]byte("new\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rf.Close()
	if got := readFile(t, path); got != "old\nnew\n" {
		t.Errorf("content = %q", got)
	}
}

func TestRotatingFile_RotatesAndShifts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	rf, err := file.NewRotatingFile(file.RotateConfig{FilePath: path, MaxBytes: 10, MaxBackups: 2}, nil)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	defer rf.Close()

	// Each record is 8 bytes, so every write after the first rotates.
	for _, rec := range []string{"rec-001\n", "rec-002\n", "rec-003\n", "rec-004\n"} {
		if _, err := rf.Write([]byte(rec)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if got := readFile(t, path); got != "rec-004\n" {
		t.Errorf("active = %q", got)
	}
	if got := readFile(t, path+".1"); got != "rec-003\n" {
		t.Errorf(".1 = %q", got)
	}
	if got := readFile(t, path+".2"); got != "rec-002\n" {
		t.Errorf(".2 = %q", got)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Error(".3 should not exist with MaxBackups=2")
	}
}

func TestRotatingFile_UnlimitedBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	rf, err := file.NewRotatingFile(file.RotateConfig{FilePath: path, MaxBytes: 5}, nil)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	defer rf.Close()

	for _, rec := range []string{"aaaa\n", "bbbb\n", "cccc\n", "dddd\n"} {
		_, _ = rf.Write([]byte(rec))
	}
	if got := readFile(t, path+".3"); got != "aaaa\n" {
		t.Errorf(".3 = %q, want the oldest record", got)
	}
}

func TestRotatingFile_OversizedRecordWrittenWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	rf, err := file.NewRotatingFile(file.RotateConfig{FilePath: path, MaxBytes: 4, MaxBackups: 1}, nil)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	defer rf.Close()

	if _, err := rf.Write([]byte("0123456789\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := readFile(t, path); got != "0123456789\n" {
		t.Errorf("active = %q", got)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Error("an empty active file must not be rotated")
	}
}

func TestRotatingFile_RequiresFilePath(t *testing.T) {
	if _, err := file.NewRotatingFile(file.RotateConfig{}, nil); err == nil {
		t.Error("expected error for empty FilePath")
	}
}

func TestRotatingFile_WriteAfterClose(t *testing.T) {
	rf, err := file.NewRotatingFile(file.RotateConfig{FilePath: filepath.Join(t.TempDir(), "j")}, nil)
	if err != nil {
		t.Fatalf("NewRotatingFile: %v", err)
	}
	_ = rf.Close()
	if _, err := rf.Write([]byte("x")); err == nil {
		t.Error("expected error after Close")
	}
}
