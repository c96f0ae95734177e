package file

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// RotateConfig controls journal rotation.
type RotateConfig struct {
	// FilePath is the active file name (required).
	FilePath string

	// MaxBytes triggers rotation before a write that would grow the active
	// file past this size. Zero disables rotation.
	MaxBytes int64

	// MaxBackups is the number of rotated files kept as FilePath.1 (newest)
	// through FilePath.N (oldest). Zero keeps every rotated file.
	MaxBackups int
}

// RotatingFile is an io.WriteCloser that performs size-based rotation. It is
// safe for concurrent use.
type RotatingFile struct {
	mu     sync.Mutex
	cfg    RotateConfig
	file   *os.File
	size   int64
	logger *slog.Logger
}

// NewRotatingFile opens or creates cfg.FilePath, creating parent directories
// as needed. The caller must call Close when finished.
func NewRotatingFile(cfg RotateConfig, logger *slog.Logger) (*RotatingFile, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("transport/file: rotate: FilePath is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("transport/file: rotate: mkdir %s: %w", dir, err)
	}

	rf := &RotatingFile{cfg: cfg, logger: logger}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

// Write implements io.Writer. A record larger than MaxBytes is still written
// whole, into a fresh file.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, os.ErrClosed
	}
	if rf.cfg.MaxBytes > 0 && rf.size > 0 && rf.size+int64(len(p)) > rf.cfg.MaxBytes {
		if err := rf.rotate(); err != nil {
			// Keep appending to whatever is open rather than drop the record.
			rf.logger.Error("transport/file: rotate failed", "file", rf.cfg.FilePath, "error", err.Error())
		}
	}
	if rf.file == nil {
		return 0, fmt.Errorf("transport/file: rotate: no open file for %s", rf.cfg.FilePath)
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// Close closes the active file.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (rf *RotatingFile) open() error {
	f, err := os.OpenFile(rf.cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("transport/file: rotate: open %s: %w", rf.cfg.FilePath, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("transport/file: rotate: stat %s: %w", rf.cfg.FilePath, err)
	}
	rf.file = f
	rf.size = info.Size()
	return nil
}

func (rf *RotatingFile) backup(i int) string {
	return fmt.Sprintf("%s.%d", rf.cfg.FilePath, i)
}

// rotate shifts FilePath.i to FilePath.i+1 from the oldest down, moves the
// active file to FilePath.1 and opens a fresh one. With MaxBackups set, the
// backup that would become FilePath.MaxBackups+1 is removed first.
func (rf *RotatingFile) rotate() error {
	if err := rf.file.Close(); err != nil {
		rf.logger.Warn("transport/file: rotate: close error", "error", err.Error())
	}
	rf.file = nil

	highest := rf.cfg.MaxBackups
	if highest > 0 {
		_ = os.Remove(rf.backup(highest))
		highest--
	} else {
		for highest = 0; ; highest++ {
			if _, err := os.Stat(rf.backup(highest + 1)); err != nil {
				break
			}
		}
	}
	for i := highest; i >= 1; i-- {
		_ = os.Rename(rf.backup(i), rf.backup(i+1))
	}
	if err := os.Rename(rf.cfg.FilePath, rf.backup(1)); err != nil && !os.IsNotExist(err) {
		rf.logger.Warn("transport/file: rotate: rename error", "error", err.Error())
	}

	rf.logger.Info("transport/file: rotated", "file", rf.cfg.FilePath)
	return rf.open()
}
