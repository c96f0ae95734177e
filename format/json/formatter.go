// Package json renders device operation reports as JSON documents, one per
// report. The journal and the -output=json mode both use it.
//
//	{
//	  "device": "rack-a",
//	  "kind": "switch",
//	  "action": "status",
//	  "ports": [ { "port": 1, "status": "on" } ],
//	  "failures": [ { "port": 3, "error": "request timeout" } ],
//	  "started_at": "2026-02-26T10:30:00.123Z",
//	  "duration_ms": 41.7
//	}
package json

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/vpbank/rackctl/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// Formatter interface
// ─────────────────────────────────────────────────────────────────────────────

// Formatter serialises a report into a byte slice.
type Formatter interface {
	Format(r *models.Report) ([]byte, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config controls JSONFormatter behaviour.
type Config struct {
	// PrettyPrint emits indented, human-readable JSON when true. The journal
	// always uses compact output so that each report stays on one line.
	PrettyPrint bool

	// Indent is the indent string used when PrettyPrint=true.
	// Defaults to two spaces when empty and PrettyPrint=true.
	Indent string
}

// ─────────────────────────────────────────────────────────────────────────────
// Wire schema
// ─────────────────────────────────────────────────────────────────────────────

type document struct {
	Device     string              `json:"device"`
	Kind       string              `json:"kind"`
	Action     models.Action       `json:"action"`
	Ports      []models.PortStatus `json:"ports"`
	Failures   []failure           `json:"failures"`
	StartedAt  time.Time           `json:"started_at"`
	DurationMs float64             `json:"duration_ms"`
}

type failure struct {
	Port  uint32 `json:"port"`
	Error string `json:"error"`
}

// ─────────────────────────────────────────────────────────────────────────────
// JSONFormatter
// ─────────────────────────────────────────────────────────────────────────────

// JSONFormatter implements Formatter. It is safe for concurrent use; all
// fields are immutable after construction.
type JSONFormatter struct {
	cfg    Config
	logger *slog.Logger
}

// New constructs a JSONFormatter. If logger is nil, a no-op logger is
// substituted.
func New(cfg Config, logger *slog.Logger) *JSONFormatter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	if cfg.PrettyPrint && cfg.Indent == "" {
		cfg.Indent = "  "
	}
	return &JSONFormatter{cfg: cfg, logger: logger}
}

// Format serialises r. Ports and failures are always arrays, never null, and
// are emitted in port order.
func (f *JSONFormatter) Format(r *models.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("format/json: report must not be nil")
	}

	sorted := *r
	sorted.Ports = append([]models.PortStatus{}, r.Ports...)
	sorted.Failures = append([]models.PortFailure{}, r.Failures...)
	sorted.Sort()

	doc := document{
		Device:     sorted.Device,
		Kind:       sorted.Kind,
		Action:     sorted.Action,
		Ports:      sorted.Ports,
		Failures:   make([]failure, 0, len(sorted.Failures)),
		StartedAt:  sorted.StartedAt.UTC(),
		DurationMs: float64(sorted.Duration.Microseconds()) / 1000,
	}
	for _, pf := range sorted.Failures {
		doc.Failures = append(doc.Failures, failure{Port: pf.Port, Error: pf.Error()})
	}

	var (
		data []byte
		err  error
	)
	if f.cfg.PrettyPrint {
		data, err = json.MarshalIndent(doc, "", f.cfg.Indent)
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		f.logger.Error("format/json: marshal failed",
			"device", r.Device,
			"error", err.Error(),
		)
		return nil, fmt.Errorf("format/json: marshal: %w", err)
	}

	f.logger.Debug("format/json: formatted report",
		"device", r.Device,
		"action", string(r.Action),
		"ports", len(doc.Ports),
		"bytes", len(data),
	)
	return data, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// no-op logger writer
// ─────────────────────────────────────────────────────────────────────────────

// noopWriter discards all log output when no logger is provided.
type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
