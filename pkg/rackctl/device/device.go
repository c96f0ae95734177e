// Package device implements the uniform capability contract shared by every
// managed device kind. A Switch composes the vendor OID table with the SNMP
// client and drives its selected ports; a Wake target composes magic-packet
// construction with a broadcast sender.
package device

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/snmpclient"
)

// Kind distinguishes device variants.
type Kind string

const (
	KindSwitch Kind = "switch"
	KindWake   Kind = "wol"
)

var (
	// ErrUnsupported is returned by operations a device kind cannot perform,
	// such as disabling a wake target.
	ErrUnsupported = errors.New("operation not supported")

	// ErrConfigIntegrity marks a stored record that can no longer be acted
	// upon: a vendor missing from the OID table, an invalid credential shape
	// or a malformed hardware address. It is fatal for that device's
	// operation and never replaced by a default.
	ErrConfigIntegrity = errors.New("configuration integrity")

	// ErrKindMismatch is returned by Update when the attribute set belongs to
	// another device kind.
	ErrKindMismatch = errors.New("attribute set does not match device kind")
)

// Device is the capability contract consumed by the command layer.
type Device interface {
	Name() string
	Kind() Kind

	// Enable drives the device, or each selected switch port, to "on".
	Enable(ctx context.Context) (models.Report, error)

	// Disable drives the device, or each selected switch port, to "off".
	Disable(ctx context.Context) (models.Report, error)

	// Status reports the current state without changing it.
	Status(ctx context.Context) (models.Report, error)

	// Update replaces every mutable attribute at once. Either all fields
	// change or, when attrs is rejected, none do.
	Update(attrs Attributes) error
}

// Attributes is a complete replacement set of a device's mutable fields.
// The implementations are SwitchAttributes and WakeAttributes.
type Attributes interface {
	attributes()
}

// PortClient is the per-port SNMP surface a Switch needs. *snmpclient.Client
// satisfies it.
type PortClient interface {
	Get(ctx context.Context, t snmpclient.Target, ports []uint32) (snmpclient.Result, error)
	Set(ctx context.Context, t snmpclient.Target, ports []uint32, value int) (snmpclient.Result, error)
}

// Waker sends a wake packet to a hardware address. *wol.Sender satisfies it.
type Waker interface {
	Wake(ctx context.Context, mac string) error
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return logger
}

// noopWriter discards log output.
type noopWriter struct{}

func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }
