package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vpbank/rackctl/models"
)

var (
	// ErrDuplicateName is returned when a record name is already taken within
	// its collection.
	ErrDuplicateName = errors.New("name already exists")

	// ErrNotFound is returned when no record carries the requested name.
	ErrNotFound = errors.New("not found")
)

// Inventory is the persisted set of devices. Names are unique within each
// collection; switches and wake targets have separate namespaces.
type Inventory struct {
	Switches []models.Switch
	Wake     []models.WakeTarget

	// faults holds switches whose stored credentials could not be resolved,
	// keyed by name. The original fields are written back by Save until the
	// record is replaced or deleted.
	faults map[string]switchFault
}

type switchFault struct {
	err error
	raw rawSwitch
}

// Fault returns the load-time problem of the switch called name, or nil when
// its record is consistent.
func (inv *Inventory) Fault(name string) error {
	if f, ok := inv.faults[name]; ok {
		return f.err
	}
	return nil
}

func (inv *Inventory) setFault(name string, err error, raw rawSwitch) {
	if inv.faults == nil {
		inv.faults = make(map[string]switchFault)
	}
	inv.faults[name] = switchFault{err: err, raw: raw}
}

// ─────────────────────────────────────────────────────────────────────────────
// Switches
// ─────────────────────────────────────────────────────────────────────────────

// AddSwitch appends s unless its name is taken.
func (inv *Inventory) AddSwitch(s models.Switch) error {
	if s.Name == "" {
		return fmt.Errorf("switch: empty name")
	}
	if inv.switchIndex(s.Name) >= 0 {
		return fmt.Errorf("switch %q: %w", s.Name, ErrDuplicateName)
	}
	inv.Switches = append(inv.Switches, s)
	return nil
}

// Switch returns the switch called name.
func (inv *Inventory) Switch(name string) (models.Switch, error) {
	i := inv.switchIndex(name)
	if i < 0 {
		return models.Switch{}, fmt.Errorf("switch %q: %w", name, ErrNotFound)
	}
	return inv.Switches[i], nil
}

// ReplaceSwitch overwrites the record whose name matches s.Name.
func (inv *Inventory) ReplaceSwitch(s models.Switch) error {
	i := inv.switchIndex(s.Name)
	if i < 0 {
		return fmt.Errorf("switch %q: %w", s.Name, ErrNotFound)
	}
	inv.Switches[i] = s
	delete(inv.faults, s.Name)
	return nil
}

// DeleteSwitch removes the switch called name, keeping the order of the rest.
func (inv *Inventory) DeleteSwitch(name string) error {
	i := inv.switchIndex(name)
	if i < 0 {
		return fmt.Errorf("switch %q: %w", name, ErrNotFound)
	}
	inv.Switches = append(inv.Switches[:i], inv.Switches[i+1:]...)
	delete(inv.faults, name)
	return nil
}

// SwitchNames returns every switch name sorted alphabetically.
func (inv *Inventory) SwitchNames() []string {
	names := make([]string, 0, len(inv.Switches))
	for _, s := range inv.Switches {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

func (inv *Inventory) switchIndex(name string) int {
	for i, s := range inv.Switches {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// ─────────────────────────────────────────────────────────────────────────────
// Wake targets
// ─────────────────────────────────────────────────────────────────────────────

// AddWake appends w unless its name is taken.
func (inv *Inventory) AddWake(w models.WakeTarget) error {
	if w.Name == "" {
		return fmt.Errorf("wol: empty name")
	}
	if inv.wakeIndex(w.Name) >= 0 {
		return fmt.Errorf("wol %q: %w", w.Name, ErrDuplicateName)
	}
	inv.Wake = append(inv.Wake, w)
	return nil
}

// WakeTarget returns the wake target called name.
func (inv *Inventory) WakeTarget(name string) (models.WakeTarget, error) {
	i := inv.wakeIndex(name)
	if i < 0 {
		return models.WakeTarget{}, fmt.Errorf("wol %q: %w", name, ErrNotFound)
	}
	return inv.Wake[i], nil
}

// ReplaceWake overwrites the record whose name matches w.Name.
func (inv *Inventory) ReplaceWake(w models.WakeTarget) error {
	i := inv.wakeIndex(w.Name)
	if i < 0 {
		return fmt.Errorf("wol %q: %w", w.Name, ErrNotFound)
	}
	inv.Wake[i] = w
	return nil
}

// DeleteWake removes the wake target called name.
func (inv *Inventory) DeleteWake(name string) error {
	i := inv.wakeIndex(name)
	if i < 0 {
		return fmt.Errorf("wol %q: %w", name, ErrNotFound)
	}
	inv.Wake = append(inv.Wake[:i], inv.Wake[i+1:]...)
	return nil
}

// WakeNames returns every wake target name sorted alphabetically.
func (inv *Inventory) WakeNames() []string {
	names := make([]string, 0, len(inv.Wake))
	for _, w := range inv.Wake {
		names = append(names, w.Name)
	}
	sort.Strings(names)
	return names
}

func (inv *Inventory) wakeIndex(name string) int {
	for i, w := range inv.Wake {
		if w.Name == name {
			return i
		}
	}
	return -1
}
