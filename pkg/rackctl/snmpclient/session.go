// Package snmpclient performs the per-port SNMP exchanges that read and write
// a switch's PoE admin state. Every requested port is handled by its own task;
// tasks run concurrently on a bounded number of workers, each holding a
// private gosnmp session borrowed from a SessionPool, and are joined before
// Get or Set returns. A port whose exchange fails is reported separately and
// never affects its siblings.
package snmpclient

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/vpbank/rackctl/models"
)

// DefaultPort is the SNMP agent port used when an address carries none.
const DefaultPort = 161

// ─────────────────────────────────────────────────────────────────────────────
// Session abstraction
// ─────────────────────────────────────────────────────────────────────────────

// Session is the subset of *gosnmp.GoSNMP used by the client. It exists so
// tests can substitute an in-memory agent.
type Session interface {
	Get(oids []string) (*gosnmp.SnmpPacket, error)
	Set(pdus []gosnmp.SnmpPDU) (*gosnmp.SnmpPacket, error)
	Close() error
}

// SessionConfig is everything needed to open a session to one agent.
type SessionConfig struct {
	Host        string
	Port        uint16
	Credentials models.Credentials
	Timeout     time.Duration
}

// Key identifies sessions that may be reused for one another: same endpoint,
// same credential set. Secrets enter the key only as a SHA-256 digest.
func (c SessionConfig) Key() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%#v", c.Credentials)))
	return fmt.Sprintf("%s|%d|%s", c.Host, c.Port, hex.EncodeToString(sum[:]))
}

func (c SessionConfig) endpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// gosnmpSession adapts *gosnmp.GoSNMP to Session.
type gosnmpSession struct {
	g *gosnmp.GoSNMP
}

func (s gosnmpSession) Get(oids []string) (*gosnmp.SnmpPacket, error) { return s.g.Get(oids) }

func (s gosnmpSession) Set(pdus []gosnmp.SnmpPDU) (*gosnmp.SnmpPacket, error) {
	return s.g.Set(pdus)
}

func (s gosnmpSession) Close() error {
	if s.g.Conn == nil {
		return nil
	}
	return s.g.Conn.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Session factory: SessionConfig → *gosnmp.GoSNMP
// ─────────────────────────────────────────────────────────────────────────────

// NewSession creates and connects a gosnmp session. The caller must Close it.
func NewSession(cfg SessionConfig) (Session, error) {
	g, err := BuildParams(cfg)
	if err != nil {
		return nil, err
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("snmp connect %s: %w", cfg.endpoint(), err)
	}
	return gosnmpSession{g: g}, nil
}

// BuildParams maps cfg onto an unconnected *gosnmp.GoSNMP. Retries is always
// zero: a failed exchange is reported, never repeated.
func BuildParams(cfg SessionConfig) (*gosnmp.GoSNMP, error) {
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("%w: none configured", models.ErrInvalidCredentials)
	}
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}

	g := &gosnmp.GoSNMP{
		Target:    cfg.Host,
		Port:      cfg.Port,
		Transport: "udp",
		Timeout:   cfg.Timeout,
		Retries:   0,
		MaxOids:   gosnmp.MaxOids,
	}

	switch c := cfg.Credentials.(type) {
	case models.CommunityCredentials:
		g.Version = gosnmp.Version2c
		g.Community = c.Community
	case models.USMCredentials:
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		g.MsgFlags = usmMsgFlags(c)
		g.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 c.Username,
			AuthenticationProtocol:   mapAuthProto(c.Auth),
			AuthenticationPassphrase: c.AuthPassphrase,
			PrivacyProtocol:          mapPrivProto(c.Priv),
			PrivacyPassphrase:        c.PrivPassphrase,
		}
	default:
		return nil, fmt.Errorf("%w: unsupported credential type %T", models.ErrInvalidCredentials, cfg.Credentials)
	}
	return g, nil
}

// ParseAddress splits a stored switch address into host and port, applying
// DefaultPort when none is present. Accepted forms: "host", "host:port",
// "v6literal", "[v6literal]" and "[v6literal]:port".
func ParseAddress(addr string) (string, uint16, error) {
	if addr == "" {
		return "", 0, fmt.Errorf("empty address")
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.TrimSuffix(strings.TrimPrefix(addr, "["), "]")
		if host == "" || strings.ContainsAny(host, "[]") {
			return "", 0, fmt.Errorf("invalid address %q", addr)
		}
		return host, DefaultPort, nil
	}
	if host == "" {
		return "", 0, fmt.Errorf("invalid address %q: empty host", addr)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return "", 0, fmt.Errorf("invalid address %q: bad port %q", addr, portStr)
	}
	return host, uint16(port), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SNMPv3 helpers
// ─────────────────────────────────────────────────────────────────────────────

func usmMsgFlags(c models.USMCredentials) gosnmp.SnmpV3MsgFlags {
	switch {
	case c.Auth != models.AuthNone && c.Priv != models.PrivNone:
		return gosnmp.AuthPriv
	case c.Auth != models.AuthNone:
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.NoAuthNoPriv
	}
}

func mapAuthProto(a models.AuthProtocol) gosnmp.SnmpV3AuthProtocol {
	switch a {
	case models.AuthMD5:
		return gosnmp.MD5
	case models.AuthSHA:
		return gosnmp.SHA
	default:
		return gosnmp.NoAuth
	}
}

func mapPrivProto(p models.PrivProtocol) gosnmp.SnmpV3PrivProtocol {
	switch p {
	case models.PrivDES:
		return gosnmp.DES
	case models.PrivAES:
		return gosnmp.AES
	default:
		return gosnmp.NoPriv
	}
}
