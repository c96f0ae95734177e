package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/oidtable"
	"github.com/vpbank/rackctl/pkg/rackctl/portrange"
	"github.com/vpbank/rackctl/pkg/rackctl/snmpclient"
)

// SwitchAttributes is the mutable field set of a switch. Name is identity
// and is not part of it.
type SwitchAttributes struct {
	Address     string
	Vendor      string
	PortCount   uint32
	Credentials models.Credentials
}

func (SwitchAttributes) attributes() {}

// Switch is a PoE managed switch.
type Switch struct {
	table  *oidtable.Table
	client PortClient
	logger *slog.Logger

	mu       sync.RWMutex
	rec      models.Switch
	selected portrange.PortSet // nil: 1..PortCount
}

// NewSwitch wraps rec. The vendor and credentials are checked here so an
// inconsistent record is reported before any network activity.
func NewSwitch(rec models.Switch, table *oidtable.Table, client PortClient, logger *slog.Logger) (*Switch, error) {
	if table == nil {
		table = oidtable.Default()
	}
	attrs := SwitchAttributes{
		Address:     rec.Address,
		Vendor:      rec.Vendor,
		PortCount:   rec.PortCount,
		Credentials: rec.Credentials,
	}
	if err := validateSwitch(table, attrs); err != nil {
		return nil, fmt.Errorf("switch %q: %w", rec.Name, err)
	}
	return &Switch{
		table:  table,
		client: client,
		logger: orDiscard(logger),
		rec:    rec,
	}, nil
}

func (s *Switch) Name() string { return s.rec.Name }
func (s *Switch) Kind() Kind   { return KindSwitch }

// Record returns a copy of the current switch record.
func (s *Switch) Record() models.Switch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec
}

// Select restricts later Enable/Disable/Status calls to ports. An empty set
// restores the default selection 1..PortCount. Ports above PortCount are
// allowed.
func (s *Switch) Select(ports portrange.PortSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(ports) == 0 {
		s.selected = nil
		return
	}
	s.selected = append(portrange.PortSet(nil), ports...)
}

// Ports returns the effective selection.
func (s *Switch) Ports() portrange.PortSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected != nil {
		return append(portrange.PortSet(nil), s.selected...)
	}
	return portrange.Default(s.rec.PortCount)
}

func (s *Switch) Enable(ctx context.Context) (models.Report, error) {
	return s.apply(ctx, models.ActionEnable)
}

func (s *Switch) Disable(ctx context.Context) (models.Report, error) {
	return s.apply(ctx, models.ActionDisable)
}

func (s *Switch) Status(ctx context.Context) (models.Report, error) {
	return s.apply(ctx, models.ActionStatus)
}

// Update validates attrs against the OID table and credential rules, then
// swaps them in under the lock.
func (s *Switch) Update(attrs Attributes) error {
	a, ok := attrs.(SwitchAttributes)
	if !ok {
		return fmt.Errorf("switch %q: %w: got %T", s.rec.Name, ErrKindMismatch, attrs)
	}
	if err := validateSwitch(s.table, a); err != nil {
		return fmt.Errorf("switch %q: %w", s.rec.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Address = a.Address
	s.rec.Vendor = a.Vendor
	s.rec.PortCount = a.PortCount
	s.rec.Credentials = a.Credentials
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (s *Switch) apply(ctx context.Context, action models.Action) (models.Report, error) {
	if s.client == nil {
		return models.Report{}, fmt.Errorf("switch %q: no SNMP client configured", s.rec.Name)
	}
	rec := s.Record()
	ports := s.Ports()

	entry, err := s.table.Resolve(rec.Vendor)
	if err != nil {
		return models.Report{}, fmt.Errorf("switch %q: %w: %w", rec.Name, ErrConfigIntegrity, err)
	}
	target := snmpclient.Target{
		Name:        rec.Name,
		Address:     rec.Address,
		Credentials: rec.Credentials,
		Entry:       entry,
	}

	report := models.Report{
		Device:    rec.Name,
		Kind:      string(KindSwitch),
		Action:    action,
		StartedAt: time.Now(),
	}

	var res snmpclient.Result
	switch action {
	case models.ActionEnable:
		res, err = s.client.Set(ctx, target, ports, entry.On)
	case models.ActionDisable:
		res, err = s.client.Set(ctx, target, ports, entry.Off)
	default:
		res, err = s.client.Get(ctx, target, ports)
	}
	if err != nil {
		return models.Report{}, fmt.Errorf("switch %q %s: %w", rec.Name, action, err)
	}

	report.Ports = res.Statuses
	report.Failures = res.Failures
	report.Duration = time.Since(report.StartedAt)
	report.Sort()

	s.logger.Info("switch operation completed",
		"switch", rec.Name,
		"action", string(action),
		"ports", portrange.Format(ports),
		"ok", len(report.Ports),
		"failed", len(report.Failures),
	)
	return report, nil
}

func validateSwitch(table *oidtable.Table, a SwitchAttributes) error {
	if _, _, err := snmpclient.ParseAddress(a.Address); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigIntegrity, err)
	}
	if _, err := table.Resolve(a.Vendor); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigIntegrity, err)
	}
	if a.PortCount == 0 {
		return fmt.Errorf("%w: port count must be positive", ErrConfigIntegrity)
	}
	if a.Credentials == nil {
		return fmt.Errorf("%w: %w: none configured", ErrConfigIntegrity, models.ErrInvalidCredentials)
	}
	if err := a.Credentials.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigIntegrity, err)
	}
	return nil
}
