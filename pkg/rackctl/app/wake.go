package app

import (
	"bytes"
	"context"

	textformat "github.com/vpbank/rackctl/format/text"
	"github.com/vpbank/rackctl/pkg/rackctl/device"
)

// WakeAdd asks for a new wake target and stores it.
func (a *App) WakeAdd() error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	rec, err := a.prompter.NewWake(inv.WakeNames())
	if err != nil {
		return err
	}
	if err := inv.AddWake(rec); err != nil {
		return err
	}
	if err := a.save(inv); err != nil {
		return err
	}
	a.logger.Info("wol added", "wol", rec.Name)
	return a.printf("Added Wake-on-Lan device %s", rec.Name)
}

// WakeDelete removes a wake target after confirmation.
func (a *App) WakeDelete(name string) error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	if name, err = a.pick("wol", name, inv.WakeNames()); err != nil {
		return err
	}
	if _, err := inv.WakeTarget(name); err != nil {
		return err
	}
	ok, err := a.confirmDelete("wol", name)
	if err != nil || !ok {
		return err
	}
	if err := inv.DeleteWake(name); err != nil {
		return err
	}
	if err := a.save(inv); err != nil {
		return err
	}
	a.logger.Info("wol deleted", "wol", name)
	return a.printf("Deleted Wake-on-Lan device %s", name)
}

// WakeList prints the wake target table.
func (a *App) WakeList() error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := textformat.PrintWake(&buf, inv.Wake); err != nil {
		return err
	}
	return a.print(buf.Bytes())
}

// WakeUpdate asks for a new hardware address.
func (a *App) WakeUpdate(name string) error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	if name, err = a.pick("wol", name, inv.WakeNames()); err != nil {
		return err
	}
	rec, err := inv.WakeTarget(name)
	if err != nil {
		return err
	}
	edited, err := a.prompter.EditWake(rec)
	if err != nil {
		return err
	}

	// A stored address that no longer parses is replaced outright.
	if dev, err := device.NewWake(rec, a.waker, a.logger); err == nil {
		if err := dev.Update(device.WakeAttributes{MAC: edited.MAC}); err != nil {
			return err
		}
		edited = dev.Record()
	}

	if err := inv.ReplaceWake(edited); err != nil {
		return err
	}
	if err := a.save(inv); err != nil {
		return err
	}
	a.logger.Info("wol updated", "wol", name)
	return a.printf("Updated Wake-on-Lan device %s", name)
}

// WakeEnable sends the magic packet for a wake target.
func (a *App) WakeEnable(ctx context.Context, name string) error {
	inv, err := a.load()
	if err != nil {
		return err
	}
	if name, err = a.pick("wol", name, inv.WakeNames()); err != nil {
		return err
	}
	rec, err := inv.WakeTarget(name)
	if err != nil {
		return err
	}
	var dev device.Device
	if dev, err = device.NewWake(rec, a.waker, a.logger); err != nil {
		return err
	}
	report, err := dev.Enable(ctx)
	if err != nil {
		return err
	}
	return a.emit(report)
}
