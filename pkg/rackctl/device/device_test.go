package device_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/vpbank/rackctl/models"
	"github.com/vpbank/rackctl/pkg/rackctl/device"
	"github.com/vpbank/rackctl/pkg/rackctl/oidtable"
	"github.com/vpbank/rackctl/pkg/rackctl/portrange"
	"github.com/vpbank/rackctl/pkg/rackctl/snmpclient"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type call struct {
	op     string
	target snmpclient.Target
	ports  []uint32
	value  int
}

// fakeClient answers every port with state, except those listed in failing.
type fakeClient struct {
	calls   []call
	state   string
	failing map[uint32]bool
	err     error
}

func (f *fakeClient) result(ports []uint32, status string) snmpclient.Result {
	var res snmpclient.Result
	for _, p := range ports {
		if f.failing[p] {
			res.Failures = append(res.Failures, models.PortFailure{Port: p, Err: errors.New("timeout")})
			continue
		}
		res.Statuses = append(res.Statuses, models.PortStatus{Port: p, Status: status})
	}
	return res
}

func (f *fakeClient) Get(_ context.Context, t snmpclient.Target, ports []uint32) (snmpclient.Result, error) {
	f.calls = append(f.calls, call{op: "get", target: t, ports: ports})
	if f.err != nil {
		return snmpclient.Result{}, f.err
	}
	return f.result(ports, f.state), nil
}

func (f *fakeClient) Set(_ context.Context, t snmpclient.Target, ports []uint32, value int) (snmpclient.Result, error) {
	f.calls = append(f.calls, call{op: "set", target: t, ports: ports, value: value})
	if f.err != nil {
		return snmpclient.Result{}, f.err
	}
	status := models.StatusOff
	if value == t.Entry.On {
		status = models.StatusOn
	}
	return f.result(ports, status), nil
}

type fakeWaker struct {
	macs []string
	err  error
}

func (f *fakeWaker) Wake(_ context.Context, mac string) error {
	f.macs = append(f.macs, mac)
	return f.err
}

func v2Switch() models.Switch {
	return models.Switch{
		Name:        "rack-a",
		Address:     "192.0.2.10",
		Vendor:      "Netgear",
		PortCount:   8,
		Credentials: models.CommunityCredentials{Community: "private"},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Switch
// ─────────────────────────────────────────────────────────────────────────────

func TestSwitch_EnableDisableStatus(t *testing.T) {
	fc := &fakeClient{state: models.StatusOn}
	sw, err := device.NewSwitch(v2Switch(), oidtable.Default(), fc, nil)
	if err != nil {
		t.Fatalf("NewSwitch: %v", err)
	}
	var d device.Device = sw
	if d.Kind() != device.KindSwitch || d.Name() != "rack-a" {
		t.Fatalf("Kind/Name = %s/%s", d.Kind(), d.Name())
	}

	ctx := context.Background()
	rep, err := d.Enable(ctx)
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if rep.Action != models.ActionEnable || rep.Device != "rack-a" || rep.Kind != "switch" {
		t.Errorf("report header = %+v", rep)
	}
	if len(rep.Ports) != 8 || rep.Ports[0].Status != models.StatusOn {
		t.Errorf("Enable ports = %+v", rep.Ports)
	}

	if _, err := d.Disable(ctx); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if _, err := d.Status(ctx); err != nil {
		t.Fatalf("Status: %v", err)
	}

	if len(fc.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(fc.calls))
	}
	if c := fc.calls[0]; c.op != "set" || c.value != 1 {
		t.Errorf("enable call = %+v, want set 1", c)
	}
	if c := fc.calls[1]; c.op != "set" || c.value != 2 {
		t.Errorf("disable call = %+v, want set 2", c)
	}
	if c := fc.calls[2]; c.op != "get" {
		t.Errorf("status call = %+v, want get", c)
	}
	if got := fc.calls[0].target.Entry.PortOID(3); got != "1.3.6.1.2.1.105.1.1.1.3.1.3" {
		t.Errorf("target OID = %s", got)
	}
}

func TestSwitch_SelectedPorts(t *testing.T) {
	fc := &fakeClient{state: models.StatusOff}
	sw, err := device.NewSwitch(v2Switch(), nil, fc, nil)
	if err != nil {
		t.Fatalf("NewSwitch: %v", err)
	}

	// Ports above PortCount are allowed.
	sw.Select(portrange.MustParse("2-3,12"))
	if _, err := sw.Status(context.Background()); err != nil {
		t.Fatalf("Status: %v", err)
	}
	if got, want := fc.calls[0].ports, []uint32{2, 3, 12}; !reflect.DeepEqual(got, want) {
		t.Errorf("ports = %v, want %v", got, want)
	}

	sw.Select(nil)
	if got := sw.Ports().String(); got != "1-8" {
		t.Errorf("default selection = %q, want 1-8", got)
	}
}

func TestSwitch_PartialFailureInReport(t *testing.T) {
	fc := &fakeClient{state: models.StatusOn, failing: map[uint32]bool{2: true}}
	sw, _ := device.NewSwitch(v2Switch(), nil, fc, nil)
	sw.Select(portrange.MustParse("1-3"))

	rep, err := sw.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(rep.Ports) != 2 || rep.Ports[0].Port != 1 || rep.Ports[1].Port != 3 {
		t.Errorf("ports = %+v, want 1 and 3", rep.Ports)
	}
	if len(rep.Failures) != 1 || rep.Failures[0].Port != 2 {
		t.Errorf("failures = %+v, want port 2", rep.Failures)
	}
}

func TestSwitch_WholeCallErrorPropagates(t *testing.T) {
	fc := &fakeClient{err: errors.New("boom")}
	sw, _ := device.NewSwitch(v2Switch(), nil, fc, nil)
	if _, err := sw.Enable(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewSwitch_ConfigIntegrity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Switch)
	}{
		{"unknown vendor", func(s *models.Switch) { s.Vendor = "Acme" }},
		{"vendor case", func(s *models.Switch) { s.Vendor = "netgear" }},
		{"no address", func(s *models.Switch) { s.Address = "" }},
		{"zero ports", func(s *models.Switch) { s.PortCount = 0 }},
		{"no credentials", func(s *models.Switch) { s.Credentials = nil }},
		{"empty community", func(s *models.Switch) { s.Credentials = models.CommunityCredentials{} }},
		{"v3 priv without auth", func(s *models.Switch) {
			s.Credentials = models.USMCredentials{Username: "ops", Priv: models.PrivAES, PrivPassphrase: "privpass1"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := v2Switch()
			tt.mutate(&rec)
			_, err := device.NewSwitch(rec, oidtable.Default(), &fakeClient{}, nil)
			if !errors.Is(err, device.ErrConfigIntegrity) {
				t.Fatalf("err = %v, want ErrConfigIntegrity", err)
			}
		})
	}
}

func TestSwitch_VendorRemovedFromTable(t *testing.T) {
	fc := &fakeClient{}
	// A table without the vendor the record names: operations must fail,
	// never fall back to another row.
	table := oidtable.New(oidtable.Entry{Name: "Other", BaseOID: []uint32{1, 3, 6}, On: 1, Off: 2})
	_, err := device.NewSwitch(v2Switch(), table, fc, nil)
	if !errors.Is(err, device.ErrConfigIntegrity) || !errors.Is(err, oidtable.ErrUnknownVendor) {
		t.Fatalf("err = %v, want ErrConfigIntegrity wrapping ErrUnknownVendor", err)
	}
}

func TestSwitch_Update(t *testing.T) {
	sw, _ := device.NewSwitch(v2Switch(), nil, &fakeClient{}, nil)

	v3 := models.USMCredentials{
		Username: "ops", Auth: models.AuthSHA, AuthPassphrase: "authpass1",
		Priv: models.PrivAES, PrivPassphrase: "privpass1",
	}
	err := sw.Update(device.SwitchAttributes{
		Address: "192.0.2.20:1161", Vendor: "Netgear", PortCount: 24, Credentials: v3,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec := sw.Record()
	if rec.Address != "192.0.2.20:1161" || rec.PortCount != 24 || rec.Version() != models.V3 {
		t.Errorf("record after update = %+v", rec)
	}
	if rec.Name != "rack-a" {
		t.Errorf("name changed to %q", rec.Name)
	}
	if _, isV2 := rec.Credentials.(models.CommunityCredentials); isV2 {
		t.Error("v2 credential shape must not survive a switch to v3")
	}
}

func TestSwitch_UpdateIsAllOrNothing(t *testing.T) {
	sw, _ := device.NewSwitch(v2Switch(), nil, &fakeClient{}, nil)
	before := sw.Record()

	bad := []device.Attributes{
		device.SwitchAttributes{Address: "192.0.2.99", Vendor: "Acme", PortCount: 4,
			Credentials: models.CommunityCredentials{Community: "x"}},
		device.SwitchAttributes{Address: "192.0.2.99", Vendor: "Netgear", PortCount: 4,
			Credentials: models.USMCredentials{}},
		device.WakeAttributes{MAC: "AA:BB:CC:DD:EE:FF"},
	}
	for _, a := range bad {
		if err := sw.Update(a); err == nil {
			t.Errorf("Update(%+v) succeeded, want error", a)
		}
	}
	if !reflect.DeepEqual(sw.Record(), before) {
		t.Errorf("record changed after rejected updates: %+v", sw.Record())
	}
	if err := sw.Update(device.WakeAttributes{}); !errors.Is(err, device.ErrKindMismatch) {
		t.Errorf("err = %v, want ErrKindMismatch", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Wake
// ─────────────────────────────────────────────────────────────────────────────

func TestWake_Enable(t *testing.T) {
	fw := &fakeWaker{}
	w, err := device.NewWake(models.WakeTarget{Name: "nas", MAC: "AA-BB-CC-DD-EE-FF"}, fw, nil)
	if err != nil {
		t.Fatalf("NewWake: %v", err)
	}
	var d device.Device = w
	if d.Kind() != device.KindWake {
		t.Errorf("Kind = %s", d.Kind())
	}
	rep, err := d.Enable(context.Background())
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if rep.Device != "nas" || rep.Kind != "wol" || rep.Action != models.ActionEnable {
		t.Errorf("report = %+v", rep)
	}
	if len(fw.macs) != 1 || fw.macs[0] != "AA-BB-CC-DD-EE-FF" {
		t.Errorf("woken = %v", fw.macs)
	}
}

func TestWake_SendErrorPropagates(t *testing.T) {
	fw := &fakeWaker{err: errors.New("network unreachable")}
	w, _ := device.NewWake(models.WakeTarget{Name: "nas", MAC: "AA:BB:CC:DD:EE:FF"}, fw, nil)
	if _, err := w.Enable(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWake_DisableAndStatusUnsupported(t *testing.T) {
	fw := &fakeWaker{}
	w, _ := device.NewWake(models.WakeTarget{Name: "nas", MAC: "AA:BB:CC:DD:EE:FF"}, fw, nil)

	if _, err := w.Disable(context.Background()); !errors.Is(err, device.ErrUnsupported) {
		t.Errorf("Disable err = %v, want ErrUnsupported", err)
	}
	if _, err := w.Status(context.Background()); !errors.Is(err, device.ErrUnsupported) {
		t.Errorf("Status err = %v, want ErrUnsupported", err)
	}
	if len(fw.macs) != 0 {
		t.Error("unsupported operations must not send packets")
	}
}

func TestWake_InvalidMAC(t *testing.T) {
	_, err := device.NewWake(models.WakeTarget{Name: "nas", MAC: "AA:BB:CC"}, &fakeWaker{}, nil)
	if !errors.Is(err, device.ErrConfigIntegrity) {
		t.Fatalf("err = %v, want ErrConfigIntegrity", err)
	}
}

func TestWake_Update(t *testing.T) {
	w, _ := device.NewWake(models.WakeTarget{Name: "nas", MAC: "AA:BB:CC:DD:EE:FF"}, &fakeWaker{}, nil)

	if err := w.Update(device.WakeAttributes{MAC: "zz"}); !errors.Is(err, device.ErrConfigIntegrity) {
		t.Errorf("err = %v, want ErrConfigIntegrity", err)
	}
	if err := w.Update(device.SwitchAttributes{}); !errors.Is(err, device.ErrKindMismatch) {
		t.Errorf("err = %v, want ErrKindMismatch", err)
	}
	if got := w.Record().MAC; got != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("MAC changed to %q after rejected updates", got)
	}

	if err := w.Update(device.WakeAttributes{MAC: "00-11-22-33-44-55"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := w.Record().MAC; got != "00-11-22-33-44-55" {
		t.Errorf("MAC = %q", got)
	}
}
