package prompt

import (
	"fmt"
	"slices"

	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/oidtable"
	"github.com/vpbank/rackctl/pkg/rackctl/snmpclient"
	"github.com/vpbank/rackctl/pkg/rackctl/wol"
)

var versions = []string{models.V2.String(), models.V3.String()}

// NewSwitch asks for every field of a new switch. taken lists names already
// in use.
func (p *Prompter) NewSwitch(taken []string, table *oidtable.Table) (models.Switch, error) {
	name, err := p.Input("Name", "", uniqueName(taken))
	if err != nil {
		return models.Switch{}, err
	}
	s, err := p.switchFields(models.Switch{Name: name}, table, -1)
	if err != nil {
		return models.Switch{}, err
	}
	return s, nil
}

// EditSwitch asks for new values of every mutable field, offering the current
// ones as defaults. The name is kept.
func (p *Prompter) EditSwitch(cur models.Switch, table *oidtable.Table) (models.Switch, error) {
	vendor := slices.Index(table.Names(), cur.Vendor)
	return p.switchFields(cur, table, vendor)
}

func (p *Prompter) switchFields(cur models.Switch, table *oidtable.Table, vendorDef int) (models.Switch, error) {
	out := models.Switch{Name: cur.Name}

	addr, err := p.Input("IP", cur.Address, func(s string) error {
		_, _, err := snmpclient.ParseAddress(s)
		return err
	})
	if err != nil {
		return out, err
	}
	ports, err := p.Int("Ports", int(cur.PortCount))
	if err != nil {
		return out, err
	}
	names := table.Names()
	vendor, err := p.Select("Brand", names, vendorDef)
	if err != nil {
		return out, err
	}
	version, err := p.Select("SNMP Version", versions, int(cur.Version()))
	if err != nil {
		return out, err
	}

	var creds models.Credentials
	if models.Version(version) == models.V2 {
		creds, err = p.communityCredentials(cur.Credentials)
	} else {
		creds, err = p.usmCredentials(cur.Credentials)
	}
	if err != nil {
		return out, err
	}

	out.Address = addr
	out.PortCount = uint32(ports)
	out.Vendor = names[vendor]
	out.Credentials = creds
	return out, nil
}

func (p *Prompter) communityCredentials(cur models.Credentials) (models.Credentials, error) {
	old, _ := cur.(models.CommunityCredentials)
	c, err := p.Input("Community", old.Community, nil)
	if err != nil {
		return nil, err
	}
	return models.CommunityCredentials{Community: c}, nil
}

// usmCredentials asks the v3 questions. Privacy is only offered once an
// authentication protocol is chosen.
func (p *Prompter) usmCredentials(cur models.Credentials) (models.Credentials, error) {
	old, _ := cur.(models.USMCredentials)
	var u models.USMCredentials
	var err error

	if u.Username, err = p.Input("Username", old.Username, nil); err != nil {
		return nil, err
	}
	auth, err := p.Select("SNMP Authentication", protoNames(models.AuthProtocols), int(old.Auth))
	if err != nil {
		return nil, err
	}
	u.Auth = models.AuthProtocols[auth]
	if u.Auth == models.AuthNone {
		return u, nil
	}
	if u.AuthPassphrase, err = p.Password("Password", true); err != nil {
		return nil, err
	}

	priv, err := p.Select("SNMP Encryption", protoNames(models.PrivProtocols), int(old.Priv))
	if err != nil {
		return nil, err
	}
	u.Priv = models.PrivProtocols[priv]
	if u.Priv != models.PrivNone {
		if u.PrivPassphrase, err = p.Password("Encryption Password", true); err != nil {
			return nil, err
		}
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// NewWake asks for the name and hardware address of a new wake target.
func (p *Prompter) NewWake(taken []string) (models.WakeTarget, error) {
	name, err := p.Input("Name", "", uniqueName(taken))
	if err != nil {
		return models.WakeTarget{}, err
	}
	mac, err := p.Input("MAC", "", validMAC)
	if err != nil {
		return models.WakeTarget{}, err
	}
	return models.WakeTarget{Name: name, MAC: mac}, nil
}

// EditWake asks for a new hardware address, offering the current one.
func (p *Prompter) EditWake(cur models.WakeTarget) (models.WakeTarget, error) {
	mac, err := p.Input("MAC", cur.MAC, validMAC)
	if err != nil {
		return models.WakeTarget{}, err
	}
	return models.WakeTarget{Name: cur.Name, MAC: mac}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Validators
// ─────────────────────────────────────────────────────────────────────────────

func uniqueName(taken []string) func(string) error {
	return func(s string) error {
		if slices.Contains(taken, s) {
			return fmt.Errorf("name already exists")
		}
		return nil
	}
}

func validMAC(s string) error {
	if _, err := wol.ParseMAC(s); err != nil {
		return fmt.Errorf("invalid MAC address")
	}
	return nil
}

func protoNames[T fmt.Stringer](ps []T) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.String()
	}
	return out
}
