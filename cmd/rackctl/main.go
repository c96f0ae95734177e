// Command rackctl switches PoE ports on rack switches over SNMP and wakes
// hosts with Wake-on-LAN.
//
// The device inventory is a YAML file, by default
// $XDG_CONFIG_HOME/rackctl/config.yaml; RACKCTL_CONFIG or -config override it.
//
// Usage:
//
//	rackctl [flags] list
//	rackctl [flags] switch add|delete|list|update|enable|disable|status [NAME]
//	rackctl [flags] wol    add|delete|list|update|enable [NAME]
//
// A missing NAME is asked for interactively.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/vpbank/rackctl/pkg/rackctl/app"
	"github.com/vpbank/rackctl/pkg/rackctl/snmpclient"
	"github.com/vpbank/rackctl/pkg/rackctl/wol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rackctl: %v\n", err)
		if errors.Is(err, app.ErrUsage) {
			fmt.Fprintln(os.Stderr, app.Usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run() error {
	// ── Flags ────────────────────────────────────────────────────────────
	var (
		cfgPath  string
		logLevel string
		logFmt   string
		output   string
		pretty   bool
		ports    string
		yes      bool
		wakeAddr string

		// SNMP
		timeoutMs   int
		workers     int
		poolMaxIdle int
		poolIdleSec int

		// Journal
		journal        string
		journalMax     int64
		journalBackups int
	)

	flag.StringVar(&cfgPath, "config", "", "Inventory file (default: $RACKCTL_CONFIG or the user config dir)")
	flag.StringVar(&logLevel, "log.level", "warn", "Log level: debug, info, warn, error")
	flag.StringVar(&logFmt, "log.fmt", "text", "Log format: json, text")
	flag.StringVar(&output, "output", "text", "Report format: text, json")
	flag.BoolVar(&pretty, "format.pretty", false, "Pretty-print JSON reports")
	flag.StringVar(&ports, "ports", "", "Port selection for enable/disable/status, e.g. 1-6,8 (default: asked on a terminal, else all ports)")
	flag.BoolVar(&yes, "yes", false, "Do not ask for confirmation before deleting")
	flag.StringVar(&wakeAddr, "wol.addr", wol.DefaultAddr, "Wake-on-LAN destination host:port")

	flag.IntVar(&timeoutMs, "snmp.timeout", 3000, "Per-port SNMP timeout in milliseconds")
	flag.IntVar(&workers, "snmp.workers", 8, "Concurrent SNMP exchanges per switch")
	flag.IntVar(&poolMaxIdle, "snmp.pool.max.idle", 2, "Max idle SNMP sessions per switch")
	flag.IntVar(&poolIdleSec, "snmp.pool.idle.timeout", 30, "Idle SNMP session timeout in seconds")

	flag.StringVar(&journal, "journal", "", "Append every report as a JSON line to this file")
	flag.Int64Var(&journalMax, "journal.max.bytes", 0, "Max journal size in bytes before rotation (0=disabled)")
	flag.IntVar(&journalBackups, "journal.max.backups", 5, "Max rotated journal files to keep (0=unlimited)")

	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), app.Usage)
		fmt.Fprintln(flag.CommandLine.Output(), "\nflags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	// ── Logger ───────────────────────────────────────────────────────────
	logger, err := buildLogger(logLevel, logFmt)
	if err != nil {
		return err
	}

	// ── Build App ────────────────────────────────────────────────────────
	cfg := app.Config{
		InventoryPath: cfgPath,
		WakeAddr:      wakeAddr,
		Output:        output,
		PrettyPrint:   pretty,
		Ports:         ports,
		AskPorts:      term.IsTerminal(int(os.Stdin.Fd())),
		AssumeYes:     yes,
		SNMP: snmpclient.Options{
			Workers: workers,
			Timeout: time.Duration(timeoutMs) * time.Millisecond,
			Pool: snmpclient.PoolOptions{
				MaxIdlePerTarget: poolMaxIdle,
				IdleTimeout:      time.Duration(poolIdleSec) * time.Second,
			},
		},
		JournalPath:       journal,
		JournalMaxBytes:   journalMax,
		JournalMaxBackups: journalBackups,
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx, flag.Args())
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func buildLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q (expected debug|info|warn|error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler

	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json|text)", format)
	}

	return slog.New(handler), nil
}
