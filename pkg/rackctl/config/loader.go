// Package config persists the device inventory as a single YAML document.
//
//	switches:
//	  - name: rack-a
//	    address: 192.0.2.10
//	    vendor: Netgear
//	    ports: 8
//	    version: v2
//	    community: private
//	wake:
//	  - name: nas
//	    mac: AA:BB:CC:DD:EE:FF
//
// A v3 switch replaces community with username, auth, auth_passphrase,
// privacy and privacy_passphrase. A record whose populated credential fields
// disagree with its version is rejected.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vpbank/rackctl/models"
)

// EnvPath names the environment variable that overrides the inventory path.
const EnvPath = "RACKCTL_CONFIG"

// PathFromEnv returns $RACKCTL_CONFIG when set, otherwise
// <user config dir>/rackctl/config.yaml. When the user config directory is
// unknown the file is looked up in the working directory.
func PathFromEnv() string {
	if v := os.Getenv(EnvPath); v != "" {
		return v
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "rackctl.yaml"
	}
	return filepath.Join(dir, "rackctl", "config.yaml")
}

// ─────────────────────────────────────────────────────────────────────────────
// YAML schema
// ─────────────────────────────────────────────────────────────────────────────

type rawInventory struct {
	Switches []rawSwitch `yaml:"switches"`
	Wake     []rawWake   `yaml:"wake"`
}

type rawSwitch struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Vendor  string `yaml:"vendor"`
	Ports   uint32 `yaml:"ports"`
	Version string `yaml:"version"`

	// v2
	Community string `yaml:"community,omitempty"`

	// v3
	Username          string `yaml:"username,omitempty"`
	Auth              string `yaml:"auth,omitempty"`
	AuthPassphrase    string `yaml:"auth_passphrase,omitempty"`
	Privacy           string `yaml:"privacy,omitempty"`
	PrivacyPassphrase string `yaml:"privacy_passphrase,omitempty"`
}

type rawWake struct {
	Name string `yaml:"name"`
	MAC  string `yaml:"mac"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Load
// ─────────────────────────────────────────────────────────────────────────────

// Load reads the inventory at path. A missing or empty file yields an empty
// inventory. Structural errors (unnamed or duplicate records) are accumulated
// and returned together so that operators see all problems at once. A switch
// whose credential fields are inconsistent is kept and reported through
// Inventory.Fault; only operations on that switch fail.
func Load(path string, logger *slog.Logger) (*Inventory, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	var raw rawInventory
	if err := decodeFile(path, &raw); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("config: inventory not found, starting empty", "file", path)
			return &Inventory{}, nil
		}
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	var errs []string
	inv := &Inventory{}
	for i, rs := range raw.Switches {
		s, fault := convertSwitch(rs)
		if err := inv.AddSwitch(s); err != nil {
			errs = append(errs, fmt.Sprintf("switches[%d]: %v", i, err))
			continue
		}
		if fault != nil {
			inv.setFault(s.Name, fault, rs)
			logger.Warn("config: inconsistent switch record",
				"file", path,
				"switch", s.Name,
				"error", fault.Error(),
			)
		}
	}
	for i, rw := range raw.Wake {
		err := inv.AddWake(models.WakeTarget{Name: rw.Name, MAC: rw.MAC})
		if err != nil {
			errs = append(errs, fmt.Sprintf("wake[%d]: %v", i, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("config: %d error(s):\n  %s", len(errs), strings.Join(errs, "\n  "))
	}

	logger.Debug("config: loaded inventory",
		"file", path,
		"switches", len(inv.Switches),
		"wake", len(inv.Wake),
	)
	return inv, nil
}

// convertSwitch resolves the flat YAML record into the credential sum type.
// On error the returned switch still carries its identity and address; its
// credentials are nil when the shape could not be determined.
func convertSwitch(r rawSwitch) (models.Switch, error) {
	s := models.Switch{
		Name:      r.Name,
		Address:   r.Address,
		Vendor:    r.Vendor,
		PortCount: r.Ports,
	}
	version, err := models.ParseVersion(r.Version)
	if err != nil {
		return s, fmt.Errorf("switch %q: %w", r.Name, err)
	}

	v3Set := r.Username != "" || r.Auth != "" || r.AuthPassphrase != "" ||
		r.Privacy != "" || r.PrivacyPassphrase != ""

	switch version {
	case models.V2:
		if v3Set {
			return s, fmt.Errorf("switch %q: %w: v2 record carries v3 fields", r.Name, models.ErrInvalidCredentials)
		}
		s.Credentials = models.CommunityCredentials{Community: r.Community}
	case models.V3:
		if r.Community != "" {
			return s, fmt.Errorf("switch %q: %w: v3 record carries a community", r.Name, models.ErrInvalidCredentials)
		}
		auth, err := models.ParseAuthProtocol(r.Auth)
		if err != nil {
			return s, fmt.Errorf("switch %q: %w", r.Name, err)
		}
		priv, err := models.ParsePrivProtocol(r.Privacy)
		if err != nil {
			return s, fmt.Errorf("switch %q: %w", r.Name, err)
		}
		s.Credentials = models.USMCredentials{
			Username:       r.Username,
			Auth:           auth,
			AuthPassphrase: r.AuthPassphrase,
			Priv:           priv,
			PrivPassphrase: r.PrivacyPassphrase,
		}
	}
	if err := s.Credentials.Validate(); err != nil {
		return s, fmt.Errorf("switch %q: %w", r.Name, err)
	}
	return s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save
// ─────────────────────────────────────────────────────────────────────────────

// Save writes inv to path atomically: the document is written to a temporary
// file in the same directory with mode 0600 and renamed over path. Parent
// directories are created as needed.
func Save(path string, inv *Inventory) error {
	raw := rawInventory{
		Switches: make([]rawSwitch, 0, len(inv.Switches)),
		Wake:     make([]rawWake, 0, len(inv.Wake)),
	}
	for _, s := range inv.Switches {
		if f, ok := inv.faults[s.Name]; ok {
			raw.Switches = append(raw.Switches, f.raw)
			continue
		}
		rs, err := flattenSwitch(s)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		raw.Switches = append(raw.Switches, rs)
	}
	for _, w := range inv.Wake {
		raw.Wake = append(raw.Wake, rawWake{Name: w.Name, MAC: w.MAC})
	}

	data, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create dir %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".rackctl-*.yaml")
	if err != nil {
		return fmt.Errorf("config: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("config: chmod %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("config: sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("config: rename to %s: %w", path, err)
	}
	return nil
}

func flattenSwitch(s models.Switch) (rawSwitch, error) {
	r := rawSwitch{
		Name:    s.Name,
		Address: s.Address,
		Vendor:  s.Vendor,
		Ports:   s.PortCount,
	}
	switch c := s.Credentials.(type) {
	case models.CommunityCredentials:
		r.Version = models.V2.String()
		r.Community = c.Community
	case models.USMCredentials:
		r.Version = models.V3.String()
		r.Username = c.Username
		r.Auth = strings.ToLower(c.Auth.String())
		r.AuthPassphrase = c.AuthPassphrase
		r.Privacy = strings.ToLower(c.Priv.String())
		r.PrivacyPassphrase = c.PrivPassphrase
	default:
		return r, fmt.Errorf("switch %q: %w: unsupported credential type %T", s.Name, models.ErrInvalidCredentials, s.Credentials)
	}
	return r, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// decodeFile opens path and unmarshals the YAML content into out. An empty
// document leaves out untouched.
func decodeFile(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(false)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
