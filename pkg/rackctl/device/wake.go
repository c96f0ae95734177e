package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/wol"
)

// WakeAttributes is the mutable field set of a wake target.
type WakeAttributes struct {
	MAC string
}

func (WakeAttributes) attributes() {}

// Wake is a host powered on by a magic packet. Only Enable is supported.
type Wake struct {
	waker  Waker
	logger *slog.Logger

	mu  sync.RWMutex
	rec models.WakeTarget
}

// NewWake wraps rec after checking its hardware address.
func NewWake(rec models.WakeTarget, waker Waker, logger *slog.Logger) (*Wake, error) {
	if _, err := wol.ParseMAC(rec.MAC); err != nil {
		return nil, fmt.Errorf("wol %q: %w: %w", rec.Name, ErrConfigIntegrity, err)
	}
	return &Wake{waker: waker, logger: orDiscard(logger), rec: rec}, nil
}

func (w *Wake) Name() string { return w.rec.Name }
func (w *Wake) Kind() Kind   { return KindWake }

// Record returns a copy of the current record.
func (w *Wake) Record() models.WakeTarget {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rec
}

// Enable broadcasts the magic packet. Success means the datagram was handed
// to the local stack, not that the host woke up.
func (w *Wake) Enable(ctx context.Context) (models.Report, error) {
	if w.waker == nil {
		return models.Report{}, fmt.Errorf("wol %q: no sender configured", w.rec.Name)
	}
	rec := w.Record()
	report := models.Report{
		Device:    rec.Name,
		Kind:      string(KindWake),
		Action:    models.ActionEnable,
		StartedAt: time.Now(),
	}
	if err := w.waker.Wake(ctx, rec.MAC); err != nil {
		return models.Report{}, fmt.Errorf("wol %q: %w", rec.Name, err)
	}
	report.Duration = time.Since(report.StartedAt)

	w.logger.Info("magic packet sent", "wol", rec.Name, "mac", rec.MAC)
	return report, nil
}

func (w *Wake) Disable(context.Context) (models.Report, error) {
	return models.Report{}, fmt.Errorf("wol %q disable: %w", w.rec.Name, ErrUnsupported)
}

func (w *Wake) Status(context.Context) (models.Report, error) {
	return models.Report{}, fmt.Errorf("wol %q status: %w", w.rec.Name, ErrUnsupported)
}

// Update replaces the hardware address after validating it.
func (w *Wake) Update(attrs Attributes) error {
	a, ok := attrs.(WakeAttributes)
	if !ok {
		return fmt.Errorf("wol %q: %w: got %T", w.rec.Name, ErrKindMismatch, attrs)
	}
	if _, err := wol.ParseMAC(a.MAC); err != nil {
		return fmt.Errorf("wol %q: %w: %w", w.rec.Name, ErrConfigIntegrity, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rec.MAC = a.MAC
	return nil
}
