package snmpclient

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/oidtable"
	"github.com/vpbank/rackctl/snmp/decoder"
)

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	// Workers bounds the concurrent port exchanges of one call (default 8).
	Workers int

	// Timeout bounds session establishment and each exchange (default 3s).
	Timeout time.Duration

	// Pool configures session reuse. MaxInFlightPerTarget defaults to
	// Workers.
	Pool PoolOptions
}

func (o *Options) defaults() {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	if o.Timeout <= 0 {
		o.Timeout = 3 * time.Second
	}
	if o.Pool.MaxInFlightPerTarget <= 0 {
		o.Pool.MaxInFlightPerTarget = o.Workers
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Target / Result
// ─────────────────────────────────────────────────────────────────────────────

// Target is a switch reduced to what an exchange needs.
type Target struct {
	// Name labels log lines.
	Name string

	// Address is "host" or "host:port"; see ParseAddress.
	Address string

	Credentials models.Credentials

	// Entry supplies the base OID and the on/off sentinels.
	Entry oidtable.Entry
}

// Result holds the per-port outcomes of one Get or Set. Statuses and
// Failures are disjoint, sorted by port, and together cover every requested
// port.
type Result struct {
	Statuses []models.PortStatus
	Failures []models.PortFailure
}

// ─────────────────────────────────────────────────────────────────────────────
// Client
// ─────────────────────────────────────────────────────────────────────────────

// Client issues concurrent per-port Get / Set exchanges.
type Client struct {
	opts   Options
	pool   *SessionPool
	logger *slog.Logger
}

// New creates a Client with its own session pool.
func New(opts Options, logger *slog.Logger) *Client {
	opts.defaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &Client{
		opts:   opts,
		pool:   NewSessionPool(opts.Pool, logger),
		logger: logger,
	}
}

// Close releases pooled sessions.
func (c *Client) Close() error { return c.pool.Close() }

// Get reads the admin state of every port. The error return is reserved for
// problems that make the whole call impossible (bad address, invalid
// credentials); per-port failures are in Result.Failures.
func (c *Client) Get(ctx context.Context, t Target, ports []uint32) (Result, error) {
	return c.run(ctx, "get", t, ports, func(s Session, oid string) (*gosnmp.SnmpPacket, error) {
		return s.Get([]string{oid})
	})
}

// Set writes value to every port and reports the state the agent echoes
// back.
func (c *Client) Set(ctx context.Context, t Target, ports []uint32, value int) (Result, error) {
	return c.run(ctx, "set", t, ports, func(s Session, oid string) (*gosnmp.SnmpPacket, error) {
		return s.Set([]gosnmp.SnmpPDU{{Name: oid, Type: gosnmp.Integer, Value: value}})
	})
}

type exchangeFunc func(s Session, oid string) (*gosnmp.SnmpPacket, error)

func (c *Client) run(ctx context.Context, op string, t Target, ports []uint32, exchange exchangeFunc) (Result, error) {
	cfg, err := c.sessionConfig(t)
	if err != nil {
		return Result{}, fmt.Errorf("snmp %s %s: %w", op, t.Name, err)
	}

	started := time.Now()
	slots := fanOut(ctx, c.opts.Workers, ports, func(ctx context.Context, port uint32) (models.PortStatus, error) {
		return c.exchangePort(ctx, cfg, t.Entry, port, exchange)
	})

	var res Result
	for i, s := range slots {
		if s.err != nil {
			c.logger.Warn("port exchange failed",
				"op", op,
				"switch", t.Name,
				"port", ports[i],
				"error", s.err.Error(),
			)
			res.Failures = append(res.Failures, models.PortFailure{Port: ports[i], Err: s.err})
			continue
		}
		res.Statuses = append(res.Statuses, s.status)
	}
	sort.Slice(res.Statuses, func(i, j int) bool { return res.Statuses[i].Port < res.Statuses[j].Port })
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Port < res.Failures[j].Port })

	c.logger.Debug("snmp call completed",
		"op", op,
		"switch", t.Name,
		"ports", len(ports),
		"failed", len(res.Failures),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return res, nil
}

func (c *Client) exchangePort(ctx context.Context, cfg SessionConfig, e oidtable.Entry, port uint32, exchange exchangeFunc) (models.PortStatus, error) {
	oid := e.PortOID(port)

	sess, err := c.pool.Get(ctx, cfg)
	if err != nil {
		return models.PortStatus{}, fmt.Errorf("session %s: %w", cfg.endpoint(), err)
	}
	pkt, err := exchange(sess, oid)
	if err != nil {
		// The session may be wedged after a timeout; do not reuse it.
		c.pool.Discard(cfg, sess)
		return models.PortStatus{}, fmt.Errorf("%s: %w", oid, err)
	}
	c.pool.Put(cfg, sess)

	value, err := decoder.ResponseInt(pkt, oid)
	if err != nil {
		return models.PortStatus{}, err
	}
	label, err := e.Label(value)
	if err != nil {
		return models.PortStatus{}, fmt.Errorf("%s: %w", oid, err)
	}
	return models.PortStatus{Port: port, Status: label}, nil
}

func (c *Client) sessionConfig(t Target) (SessionConfig, error) {
	host, port, err := ParseAddress(t.Address)
	if err != nil {
		return SessionConfig{}, err
	}
	if t.Credentials == nil {
		return SessionConfig{}, fmt.Errorf("%w: none configured", models.ErrInvalidCredentials)
	}
	if err := t.Credentials.Validate(); err != nil {
		return SessionConfig{}, err
	}
	if len(t.Entry.BaseOID) == 0 {
		return SessionConfig{}, fmt.Errorf("vendor %q has no base OID", t.Entry.Name)
	}
	return SessionConfig{
		Host:        host,
		Port:        port,
		Credentials: t.Credentials,
		Timeout:     c.opts.Timeout,
	}, nil
}
