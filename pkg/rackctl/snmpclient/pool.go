package snmpclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrPoolClosed is returned by Get after Close.
var ErrPoolClosed = errors.New("session pool closed")

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// PoolOptions configures the session pool.
type PoolOptions struct {
	// MaxIdlePerTarget is the number of idle sessions kept per endpoint and
	// credential set (default 2). Extra sessions handed back are closed.
	MaxIdlePerTarget int

	// MaxInFlightPerTarget caps concurrently borrowed sessions per endpoint
	// and credential set (default 8).
	MaxInFlightPerTarget int

	// IdleTimeout discards idle sessions older than this. Zero keeps them.
	IdleTimeout time.Duration

	// Dial opens a new session. Defaults to NewSession.
	Dial func(SessionConfig) (Session, error)
}

func (o *PoolOptions) defaults() {
	if o.MaxIdlePerTarget <= 0 {
		o.MaxIdlePerTarget = 2
	}
	if o.MaxInFlightPerTarget <= 0 {
		o.MaxInFlightPerTarget = 8
	}
	if o.Dial == nil {
		o.Dial = NewSession
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// SessionPool
// ─────────────────────────────────────────────────────────────────────────────

type idleSession struct {
	sess       Session
	returnedAt time.Time
}

// targetPool holds the idle stack and in-flight semaphore of one target.
type targetPool struct {
	mu   sync.Mutex
	idle []idleSession // LIFO

	sem chan struct{}
}

// SessionPool hands out sessions keyed by endpoint and credential set. A
// borrowed session belongs to exactly one goroutine until it is returned with
// Put or Discard, so gosnmp sessions are never used concurrently.
type SessionPool struct {
	opts   PoolOptions
	logger *slog.Logger

	mu      sync.Mutex
	targets map[string]*targetPool

	closed chan struct{}
	once   sync.Once
}

// NewSessionPool creates an empty pool.
func NewSessionPool(opts PoolOptions, logger *slog.Logger) *SessionPool {
	opts.defaults()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &SessionPool{
		opts:    opts,
		logger:  logger,
		targets: make(map[string]*targetPool),
		closed:  make(chan struct{}),
	}
}

// Get borrows a session for cfg, reusing an idle one when possible. It blocks
// while MaxInFlightPerTarget sessions are out and honours ctx while waiting.
func (p *SessionPool) Get(ctx context.Context, cfg SessionConfig) (Session, error) {
	select {
	case <-p.closed:
		return nil, ErrPoolClosed
	default:
	}

	tp := p.target(cfg.Key())

	select {
	case tp.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, ErrPoolClosed
	}

	if s := p.popIdle(tp); s != nil {
		return s, nil
	}

	s, err := p.opts.Dial(cfg)
	if err != nil {
		<-tp.sem
		return nil, err
	}
	p.logger.Debug("snmp session opened", "endpoint", cfg.endpoint())
	return s, nil
}

// Put returns a healthy session for reuse and releases its in-flight slot.
func (p *SessionPool) Put(cfg SessionConfig, s Session) {
	tp := p.lookup(cfg.Key())
	if tp == nil {
		_ = s.Close()
		return
	}
	defer func() { <-tp.sem }()

	select {
	case <-p.closed:
		_ = s.Close()
		return
	default:
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	if len(tp.idle) >= p.opts.MaxIdlePerTarget {
		_ = s.Close()
		return
	}
	tp.idle = append(tp.idle, idleSession{sess: s, returnedAt: time.Now()})
}

// Discard closes a session that must not be reused (after a transport
// error) and releases its in-flight slot.
func (p *SessionPool) Discard(cfg SessionConfig, s Session) {
	_ = s.Close()
	if tp := p.lookup(cfg.Key()); tp != nil {
		<-tp.sem
	}
}

// Idle reports the number of idle sessions held for cfg.
func (p *SessionPool) Idle(cfg SessionConfig) int {
	tp := p.lookup(cfg.Key())
	if tp == nil {
		return 0
	}
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return len(tp.idle)
}

// Close closes every idle session and makes later Get calls fail.
func (p *SessionPool) Close() error {
	p.once.Do(func() { close(p.closed) })

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, tp := range p.targets {
		tp.mu.Lock()
		for _, e := range tp.idle {
			_ = e.sess.Close()
		}
		tp.idle = nil
		tp.mu.Unlock()
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (p *SessionPool) target(key string) *targetPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	tp, ok := p.targets[key]
	if !ok {
		tp = &targetPool{
			idle: make([]idleSession, 0, p.opts.MaxIdlePerTarget),
			sem:  make(chan struct{}, p.opts.MaxInFlightPerTarget),
		}
		p.targets[key] = tp
	}
	return tp
}

func (p *SessionPool) lookup(key string) *targetPool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.targets[key]
}

func (p *SessionPool) popIdle(tp *targetPool) Session {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	for len(tp.idle) > 0 {
		n := len(tp.idle) - 1
		e := tp.idle[n]
		tp.idle = tp.idle[:n]

		if p.opts.IdleTimeout > 0 && time.Since(e.returnedAt) > p.opts.IdleTimeout {
			_ = e.sess.Close()
			continue
		}
		return e.sess
	}
	return nil
}

// noopWriter discards log output.
type noopWriter struct{}

func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }
