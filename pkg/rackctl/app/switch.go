package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	textformat "github.com/vpbank/rackctl/format/text"
	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/config"
	"github.com/vpbank/rackctl/pkg/rackctl/device"
	"github.com/vpbank/rackctl/pkg/rackctl/portrange"
)

// SwitchAdd asks for a new switch and stores it.
func (a *App) SwitchAdd() error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	rec, err := a.prompter.NewSwitch(inv.SwitchNames(), a.cfg.Table)
	if err != nil {
		return err
	}
	if _, err := device.NewSwitch(rec, a.cfg.Table, a.client, a.logger); err != nil {
		return err
	}
	if err := inv.AddSwitch(rec); err != nil {
		return err
	}
	if err := a.save(inv); err != nil {
		return err
	}
	a.logger.Info("switch added", "switch", rec.Name)
	return a.printf("Added switch %s", rec.Name)
}

// SwitchDelete removes a switch after confirmation.
func (a *App) SwitchDelete(name string) error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	if name, err = a.pick("switch", name, inv.SwitchNames()); err != nil {
		return err
	}
	if _, err := inv.Switch(name); err != nil {
		return err
	}
	ok, err := a.confirmDelete("switch", name)
	if err != nil || !ok {
		return err
	}
	if err := inv.DeleteSwitch(name); err != nil {
		return err
	}
	if err := a.save(inv); err != nil {
		return err
	}
	a.logger.Info("switch deleted", "switch", name)
	return a.printf("Deleted switch %s", name)
}

// SwitchList prints the switch table.
func (a *App) SwitchList() error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := textformat.PrintSwitches(&buf, inv.Switches); err != nil {
		return err
	}
	return a.print(buf.Bytes())
}

// SwitchUpdate asks for new attributes and replaces them atomically. A record
// that no longer passes validation (inconsistent credentials, or a vendor
// removed from the table) can still be repaired this way.
func (a *App) SwitchUpdate(name string) error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	if name, err = a.pick("switch", name, inv.SwitchNames()); err != nil {
		return err
	}
	rec, err := inv.Switch(name)
	if err != nil {
		return err
	}
	edited, err := a.prompter.EditSwitch(rec, a.cfg.Table)
	if err != nil {
		return err
	}

	attrs := device.SwitchAttributes{
		Address:     edited.Address,
		Vendor:      edited.Vendor,
		PortCount:   edited.PortCount,
		Credentials: edited.Credentials,
	}
	if dev, err := a.newSwitch(inv, rec); err == nil {
		if err := dev.Update(attrs); err != nil {
			return err
		}
		edited = dev.Record()
	} else {
		a.logger.Warn("repairing inconsistent switch record", "switch", name, "error", err.Error())
		if _, err := device.NewSwitch(edited, a.cfg.Table, a.client, a.logger); err != nil {
			return err
		}
	}

	if err := inv.ReplaceSwitch(edited); err != nil {
		return err
	}
	if err := a.save(inv); err != nil {
		return err
	}
	a.logger.Info("switch updated", "switch", name)
	return a.printf("Updated switch %s", name)
}

// SwitchOperate runs enable, disable or status on the selected ports and
// prints the report. ErrPortFailures is returned when any port failed.
func (a *App) SwitchOperate(ctx context.Context, name string, action models.Action) error {
	if _, err := a.selection(); err != nil {
		return err
	}
	inv, err := a.load()
	if err != nil {
		return err
	}
	if name, err = a.pick("switch", name, inv.SwitchNames()); err != nil {
		return err
	}
	rec, err := inv.Switch(name)
	if err != nil {
		return err
	}
	sw, err := a.newSwitch(inv, rec)
	if err != nil {
		return err
	}
	ports, err := a.askPorts(rec)
	if err != nil {
		return err
	}
	sw.Select(ports)

	var dev device.Device = sw
	var report models.Report
	switch action {
	case models.ActionEnable:
		report, err = dev.Enable(ctx)
	case models.ActionDisable:
		report, err = dev.Disable(ctx)
	default:
		report, err = dev.Status(ctx)
	}
	if err != nil {
		return err
	}
	if err := a.emit(report); err != nil {
		return err
	}
	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("switch %q: %w (%d of %d)", name, ErrPortFailures, n, n+len(report.Ports))
	}
	return nil
}

// newSwitch builds the device for a stored record. A record the inventory
// flagged at load time, or one that fails validation, is reported with
// ErrConfigIntegrity and a repair hint.
func (a *App) newSwitch(inv *config.Inventory, rec models.Switch) (*device.Switch, error) {
	if fault := inv.Fault(rec.Name); fault != nil {
		return nil, fmt.Errorf("%w: %w (run \"rackctl switch update %s\" to repair)", device.ErrConfigIntegrity, fault, rec.Name)
	}
	sw, err := device.NewSwitch(rec, a.cfg.Table, a.client, a.logger)
	if errors.Is(err, device.ErrConfigIntegrity) {
		return nil, fmt.Errorf("%w (run \"rackctl switch update %s\" to repair)", err, rec.Name)
	}
	return sw, err
}

// askPorts returns the -ports selection, or asks for one when none was given
// and AskPorts is set. The offered default is every port of rec.
func (a *App) askPorts(rec models.Switch) (portrange.PortSet, error) {
	ports, err := a.selection()
	if err != nil || ports != nil || !a.cfg.AskPorts {
		return ports, err
	}
	answer, err := a.prompter.Input("Ports", portrange.Format(portrange.Default(rec.PortCount)), func(s string) error {
		_, err := portrange.Parse(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return portrange.Parse(answer)
}
