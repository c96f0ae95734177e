// Package models defines the data structures shared across every layer of
// rackctl: the device records persisted in the inventory, the SNMP credential
// shapes, and the per-port outcomes handed to the presentation layer. Nothing
// here depends on any other internal package.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// SNMP protocol enumerations
// ─────────────────────────────────────────────────────────────────────────────

// Version is the SNMP protocol version spoken to a switch.
type Version int

const (
	V2 Version = iota // SNMPv2c, community based
	V3                // SNMPv3, user-based security model
)

func (v Version) String() string {
	switch v {
	case V2:
		return "v2"
	case V3:
		return "v3"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// ParseVersion accepts "v2", "2", "2c", "v2c", "v3" and "3" (case-insensitive).
func ParseVersion(s string) (Version, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v2", "2", "2c", "v2c":
		return V2, nil
	case "v3", "3":
		return V3, nil
	default:
		return 0, fmt.Errorf("unknown SNMP version %q (expected v2|v3)", s)
	}
}

// AuthProtocol is the SNMPv3 authentication protocol.
type AuthProtocol int

const (
	AuthNone AuthProtocol = iota
	AuthMD5
	AuthSHA
)

// AuthProtocols lists the selectable authentication protocols in display order.
var AuthProtocols = []AuthProtocol{AuthNone, AuthMD5, AuthSHA}

func (a AuthProtocol) String() string {
	switch a {
	case AuthNone:
		return "None"
	case AuthMD5:
		return "MD5"
	case AuthSHA:
		return "SHA"
	default:
		return fmt.Sprintf("AuthProtocol(%d)", int(a))
	}
}

// ParseAuthProtocol maps "", "none", "noauth", "md5" and "sha".
func ParseAuthProtocol(s string) (AuthProtocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "noauth":
		return AuthNone, nil
	case "md5":
		return AuthMD5, nil
	case "sha":
		return AuthSHA, nil
	default:
		return 0, fmt.Errorf("unknown authentication protocol %q (expected none|md5|sha)", s)
	}
}

// PrivProtocol is the SNMPv3 privacy (encryption) protocol.
type PrivProtocol int

const (
	PrivNone PrivProtocol = iota
	PrivDES
	PrivAES
)

// PrivProtocols lists the selectable privacy protocols in display order.
var PrivProtocols = []PrivProtocol{PrivNone, PrivDES, PrivAES}

func (p PrivProtocol) String() string {
	switch p {
	case PrivNone:
		return "None"
	case PrivDES:
		return "DES"
	case PrivAES:
		return "AES"
	default:
		return fmt.Sprintf("PrivProtocol(%d)", int(p))
	}
}

// ParsePrivProtocol maps "", "none", "nopriv", "des" and "aes".
func ParsePrivProtocol(s string) (PrivProtocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "nopriv":
		return PrivNone, nil
	case "des":
		return PrivDES, nil
	case "aes":
		return PrivAES, nil
	default:
		return 0, fmt.Errorf("unknown privacy protocol %q (expected none|des|aes)", s)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Credentials: one shape per protocol version
// ─────────────────────────────────────────────────────────────────────────────

// ErrInvalidCredentials is wrapped by every credential validation failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the version-dependent secret material of a switch. The only
// implementations are CommunityCredentials (V2) and USMCredentials (V3), so a
// switch never carries fields of the shape it does not use.
type Credentials interface {
	Version() Version
	Validate() error
	credentials()
}

// CommunityCredentials authenticates SNMPv2c requests with a shared community.
type CommunityCredentials struct {
	Community string
}

func (CommunityCredentials) Version() Version { return V2 }
func (CommunityCredentials) credentials()     {}

// Validate requires a non-empty community string.
func (c CommunityCredentials) Validate() error {
	if c.Community == "" {
		return fmt.Errorf("%w: empty community", ErrInvalidCredentials)
	}
	return nil
}

// USMCredentials holds SNMPv3 user-based security parameters.
type USMCredentials struct {
	Username       string
	Auth           AuthProtocol
	AuthPassphrase string
	Priv           PrivProtocol
	PrivPassphrase string
}

func (USMCredentials) Version() Version { return V3 }
func (USMCredentials) credentials()     {}

// Validate enforces the USM rules: a user name is always required, a chosen
// protocol needs its passphrase, and privacy requires authentication.
func (u USMCredentials) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("%w: empty v3 username", ErrInvalidCredentials)
	}
	if u.Auth != AuthNone && u.AuthPassphrase == "" {
		return fmt.Errorf("%w: %s authentication without passphrase", ErrInvalidCredentials, u.Auth)
	}
	if u.Priv != PrivNone {
		if u.Auth == AuthNone {
			return fmt.Errorf("%w: %s privacy requires authentication", ErrInvalidCredentials, u.Priv)
		}
		if u.PrivPassphrase == "" {
			return fmt.Errorf("%w: %s privacy without passphrase", ErrInvalidCredentials, u.Priv)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Device records
// ─────────────────────────────────────────────────────────────────────────────

// Switch is the persisted record of a PoE managed switch.
type Switch struct {
	// Name is the display name, unique within the inventory.
	Name string

	// Address is the management endpoint: "host" or "host:port".
	// UDP port 161 is used when no port is given.
	Address string

	// Vendor is the key into the vendor OID table, e.g. "Netgear".
	Vendor string

	// PortCount is the number of front ports. It only provides the default
	// port selection (1-PortCount).
	PortCount uint32

	// Credentials is CommunityCredentials for V2 or USMCredentials for V3.
	Credentials Credentials
}

// Version reports the SNMP version implied by the credential shape.
func (s Switch) Version() Version {
	if s.Credentials == nil {
		return V2
	}
	return s.Credentials.Version()
}

// WakeTarget is the persisted record of a host woken by magic packet.
type WakeTarget struct {
	// Name is the display name, unique within the inventory.
	Name string

	// MAC is the hardware address, colon- or hyphen-delimited.
	MAC string
}
