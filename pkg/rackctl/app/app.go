// Package app wires the inventory, device layer, prompts and output sinks
// into the rackctl command verbs.
//
// Switch path:
//
//	inventory → device.Switch → snmpclient (per-port fan-out) → Report →
//	format/{text,json} → stdout, format/json → journal
//
// Wake path:
//
//	inventory → device.Wake → wol.Sender → Report → (same sinks)
package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	jsonformat "github.com/vpbank/rackctl/format/json"
	textformat "github.com/vpbank/rackctl/format/text"
	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/config"
	"github.com/vpbank/rackctl/pkg/rackctl/device"
	"github.com/vpbank/rackctl/pkg/rackctl/oidtable"
	"github.com/vpbank/rackctl/pkg/rackctl/portrange"
	"github.com/vpbank/rackctl/pkg/rackctl/prompt"
	"github.com/vpbank/rackctl/pkg/rackctl/snmpclient"
	"github.com/vpbank/rackctl/pkg/rackctl/wol"
	filetransport "github.com/vpbank/rackctl/transport/file"
)

var (
	// ErrUsage is returned for an unknown command or verb.
	ErrUsage = errors.New("usage")

	// ErrPortFailures is returned after a switch report has been printed in
	// which at least one port failed.
	ErrPortFailures = errors.New("one or more ports failed")
)

// Usage is the command synopsis printed by the binary.
const Usage = `usage:
  rackctl [flags] list
  rackctl [flags] switch add|delete|list|update|enable|disable|status [NAME]
  rackctl [flags] wol    add|delete|list|update|enable [NAME]`

// ─────────────────────────────────────────────────────────────────────────────
// Configuration
// ─────────────────────────────────────────────────────────────────────────────

// Config holds the settings of one rackctl invocation. Zero-value fields fall
// back to documented defaults.
type Config struct {
	// InventoryPath is the YAML inventory. Default: config.PathFromEnv().
	InventoryPath string

	// Table is the vendor OID table. Default: oidtable.Default().
	Table *oidtable.Table

	// SNMP configures the per-port client.
	SNMP snmpclient.Options

	// WakeAddr is the magic packet destination. Default: wol.DefaultAddr.
	WakeAddr string

	// Output selects the stdout format: "text" (default) or "json".
	Output string

	// PrettyPrint indents JSON written to stdout.
	PrettyPrint bool

	// Ports restricts switch enable/disable/status to a port range such as
	// "1-6,8". Empty selects 1..PortCount.
	Ports string

	// AskPorts makes switch enable/disable/status ask for the port range
	// when Ports is empty, offering 1..PortCount.
	AskPorts bool

	// AssumeYes skips delete confirmations.
	AssumeYes bool

	// JournalPath enables the JSON-lines journal when not empty.
	JournalPath       string
	JournalMaxBytes   int64
	JournalMaxBackups int

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer

	// PortClient and Waker replace the network implementations when set.
	PortClient device.PortClient
	Waker      device.Waker
}

func (c *Config) withDefaults() {
	if c.InventoryPath == "" {
		c.InventoryPath = config.PathFromEnv()
	}
	if c.Table == nil {
		c.Table = oidtable.Default()
	}
	if c.WakeAddr == "" {
		c.WakeAddr = wol.DefaultAddr
	}
	if c.Output == "" {
		c.Output = "text"
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// App
// ─────────────────────────────────────────────────────────────────────────────

type reportFormatter interface {
	Format(r *models.Report) ([]byte, error)
}

// App executes rackctl verbs.
type App struct {
	cfg    Config
	logger *slog.Logger

	client   device.PortClient
	snmp     *snmpclient.Client // nil when cfg.PortClient is injected
	waker    device.Waker
	prompter *prompt.Prompter

	out       filetransport.Transport
	formatter reportFormatter
	journal   filetransport.Transport // nil when disabled
	journalFm *jsonformat.JSONFormatter
}

// New builds an App. The caller must Close it.
func New(cfg Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	cfg.withDefaults()

	a := &App{
		cfg:       cfg,
		logger:    logger,
		client:    cfg.PortClient,
		waker:     cfg.Waker,
		prompter:  prompt.New(cfg.Stdin, cfg.Stdout),
		out:       filetransport.New(filetransport.Config{Writer: cfg.Stdout}, logger),
		journalFm: jsonformat.New(jsonformat.Config{}, logger),
	}

	switch cfg.Output {
	case "text":
		a.formatter = textformat.New()
	case "json":
		a.formatter = jsonformat.New(jsonformat.Config{PrettyPrint: cfg.PrettyPrint}, logger)
	default:
		return nil, fmt.Errorf("unknown output format %q (expected text|json)", cfg.Output)
	}

	if a.client == nil {
		a.snmp = snmpclient.New(cfg.SNMP, logger)
		a.client = a.snmp
	}
	if a.waker == nil {
		a.waker = &wol.Sender{Addr: cfg.WakeAddr, Logger: logger}
	}

	if cfg.JournalPath != "" {
		j, err := filetransport.OpenJournal(filetransport.RotateConfig{
			FilePath:   cfg.JournalPath,
			MaxBytes:   cfg.JournalMaxBytes,
			MaxBackups: cfg.JournalMaxBackups,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open journal: %w", err)
		}
		a.journal = j
	}
	return a, nil
}

// Close releases SNMP sessions and the journal.
func (a *App) Close() error {
	var errs []error
	if a.snmp != nil {
		errs = append(errs, a.snmp.Close())
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	errs = append(errs, a.out.Close())
	return errors.Join(errs...)
}

// Run dispatches args (without the program name) to a verb.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	name := ""
	if len(args) > 2 {
		name = args[2]
	}
	if len(args) > 3 {
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, args[3:])
	}

	switch args[0] {
	case "list":
		if len(args) > 1 {
			return fmt.Errorf("%w: list takes no arguments", ErrUsage)
		}
		return a.List()
	case "switch", "wol":
		if len(args) < 2 {
			return fmt.Errorf("%w: %s needs a verb", ErrUsage, args[0])
		}
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	verb := args[1]
	if args[0] == "switch" {
		switch verb {
		case "add":
			return a.SwitchAdd()
		case "delete":
			return a.SwitchDelete(name)
		case "list":
			return a.SwitchList()
		case "update":
			return a.SwitchUpdate(name)
		case "enable":
			return a.SwitchOperate(ctx, name, models.ActionEnable)
		case "disable":
			return a.SwitchOperate(ctx, name, models.ActionDisable)
		case "status":
			return a.SwitchOperate(ctx, name, models.ActionStatus)
		}
		return fmt.Errorf("%w: unknown switch verb %q", ErrUsage, verb)
	}

	switch verb {
	case "add":
		return a.WakeAdd()
	case "delete":
		return a.WakeDelete(name)
	case "list":
		return a.WakeList()
	case "update":
		return a.WakeUpdate(name)
	case "enable":
		return a.WakeEnable(ctx, name)
	}
	return fmt.Errorf("%w: unknown wol verb %q", ErrUsage, verb)
}

// List prints both inventory tables.
func (a *App) List() error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := textformat.PrintSwitches(&buf, inv.Switches); err != nil {
		return err
	}
	buf.WriteByte('\n')
	if err := textformat.PrintWake(&buf, inv.Wake); err != nil {
		return err
	}
	return a.print(buf.Bytes())
}

// ─────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ─────────────────────────────────────────────────────────────────────────────

func (a *App) load() (*config.Inventory, error) {
	return config.Load(a.cfg.InventoryPath, a.logger)
}

func (a *App) save(inv *config.Inventory) error {
	if err := config.Save(a.cfg.InventoryPath, inv); err != nil {
		return err
	}
	a.logger.Debug("inventory saved", "file", a.cfg.InventoryPath)
	return nil
}

// pick returns name, or asks the operator to choose one of names when name
// is empty.
func (a *App) pick(kind, name string, names []string) (string, error) {
	if name != "" {
		return name, nil
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no %s devices configured", kind)
	}
	i, err := a.prompter.Select("Select "+kind, names, 0)
	if err != nil {
		return "", err
	}
	return names[i], nil
}

func (a *App) confirmDelete(kind, name string) (bool, error) {
	if a.cfg.AssumeYes {
		return true, nil
	}
	return a.prompter.Confirm(fmt.Sprintf("Delete %s %q?", kind, name), false)
}

func (a *App) selection() (portrange.PortSet, error) {
	if a.cfg.Ports == "" {
		return nil, nil
	}
	return portrange.Parse(a.cfg.Ports)
}

// emit prints r in the configured format and appends it to the journal.
// A journal failure is logged, never returned.
func (a *App) emit(r models.Report) error {
	data, err := a.formatter.Format(&r)
	if err != nil {
		return err
	}
	if err := a.print(data); err != nil {
		return err
	}
	if a.journal == nil {
		return nil
	}
	line, err := a.journalFm.Format(&r)
	if err == nil {
		err = a.journal.Send(line)
	}
	if err != nil {
		a.logger.Warn("journal write failed", "device", r.Device, "error", err.Error())
	}
	return nil
}

func (a *App) print(data []byte) error {
	return a.out.Send(bytes.TrimRight(data, "\n"))
}

func (a *App) printf(format string, args ...any) error {
	return a.print([]byte(strings.TrimRight(fmt.Sprintf(format, args...), "\n")))
}

// noopWriter discards log output.
type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
