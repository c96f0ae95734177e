// Package oidtable holds the static vendor table that maps a switch brand to
// the base OID of its per-port PoE admin object and to the two integer values
// that object uses for "on" and "off".
//
// Vendor differences are data, not code: supporting another brand means
// adding an Entry.
package oidtable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vpbank/rackctl/models"
)

// ErrUnknownVendor is returned (wrapped) when a vendor name has no entry.
var ErrUnknownVendor = errors.New("unknown vendor")

// Entry is a single vendor row.
type Entry struct {
	// Name is the vendor key stored on each switch, e.g. "Netgear".
	Name string

	// BaseOID is the numeric OID prefix; the port number is appended to it.
	BaseOID []uint32

	// On and Off are the integer values the agent uses for the two states.
	On  int
	Off int
}

// PortOID returns the dotted OID addressing port, i.e. BaseOID ++ [port].
func (e Entry) PortOID(port uint32) string {
	return FormatOID(append(append([]uint32(nil), e.BaseOID...), port))
}

// Label maps an agent value to models.StatusOn / models.StatusOff. Any other
// value is an error.
func (e Entry) Label(value int64) (string, error) {
	switch value {
	case int64(e.On):
		return models.StatusOn, nil
	case int64(e.Off):
		return models.StatusOff, nil
	default:
		return "", fmt.Errorf("%s: unexpected value %d (on=%d off=%d)", e.Name, value, e.On, e.Off)
	}
}

// Table is an ordered, read-only collection of entries.
type Table struct {
	entries []Entry
}

// New builds a table from entries in the given order. Later duplicates of a
// name are ignored so that lookups stay unambiguous.
func New(entries ...Entry) *Table {
	seen := make(map[string]bool, len(entries))
	t := &Table{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		if seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		e.BaseOID = append([]uint32(nil), e.BaseOID...)
		t.entries = append(t.entries, e)
	}
	return t
}

// Default returns the built-in vendor table.
func Default() *Table {
	return New(
		// POWER-ETHERNET-MIB pethPsePortAdminEnable, group 1:
		// true(1) / false(2).
		Entry{
			Name:    "Netgear",
			BaseOID: []uint32{1, 3, 6, 1, 2, 1, 105, 1, 1, 1, 3, 1},
			On:      1,
			Off:     2,
		},
	)
}

// Names returns vendor names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Name
	}
	return names
}

// Lookup finds the entry for name (exact match).
func (t *Table) Lookup(name string) (Entry, bool) {
	for _, e := range t.entries {
		if e.Name == name {
			e.BaseOID = append([]uint32(nil), e.BaseOID...)
			return e, true
		}
	}
	return Entry{}, false
}

// Resolve is Lookup returning an error that wraps ErrUnknownVendor.
func (t *Table) Resolve(name string) (Entry, error) {
	e, ok := t.Lookup(name)
	if !ok {
		return Entry{}, fmt.Errorf("%w %q", ErrUnknownVendor, name)
	}
	return e, nil
}

// BaseOID returns the vendor's OID prefix.
func (t *Table) BaseOID(name string) ([]uint32, bool) {
	e, ok := t.Lookup(name)
	return e.BaseOID, ok
}

// OnValue returns the vendor's "on" sentinel.
func (t *Table) OnValue(name string) (int, bool) {
	e, ok := t.Lookup(name)
	return e.On, ok
}

// OffValue returns the vendor's "off" sentinel.
func (t *Table) OffValue(name string) (int, bool) {
	e, ok := t.Lookup(name)
	return e.Off, ok
}

// ─────────────────────────────────────────────────────────────────────────────
// OID helpers
// ─────────────────────────────────────────────────────────────────────────────

// ParseOID converts "1.3.6.1" or ".1.3.6.1" into its numeric components.
func ParseOID(s string) ([]uint32, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, fmt.Errorf("empty OID")
	}
	parts := strings.Split(s, ".")
	oid := make([]uint32, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("OID %q: component %q is not an unsigned integer", s, p)
		}
		oid[i] = uint32(n)
	}
	return oid, nil
}

// FormatOID renders oid in dotted form without a leading dot.
func FormatOID(oid []uint32) string {
	parts := make([]string, len(oid))
	for i, n := range oid {
		parts[i] = strconv.FormatUint(uint64(n), 10)
	}
	return strings.Join(parts, ".")
}
