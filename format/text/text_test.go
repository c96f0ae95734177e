package text_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/vpbank/rackctl/format/text"
	"github.com/vpbank/rackctl/models"
)

// splitLines splits output into lines, removing only the trailing newline.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestFormat_SwitchReport(t *testing.T) {
	r := &models.Report{
		Device: "rack-a",
		Kind:   "switch",
		Action: models.ActionStatus,
		Ports: []models.PortStatus{
			{Port: 12, Status: models.StatusOff},
			{Port: 1, Status: models.StatusOn},
		},
		Failures: []models.PortFailure{{Port: 2, Err: errors.New("request timeout")}},
	}
	out, err := text.New().Format(r)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := []string{
		"Status for rack-a:",
		"\tPort: 1  - on",
		"\tPort: 2  - error: request timeout",
		"\tPort: 12 - off",
	}
	got := splitLines(string(out))
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Format =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestFormat_WakeReport(t *testing.T) {
	out, err := text.New().Format(&models.Report{Device: "nas", Kind: "wol", Action: models.ActionEnable})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(out) != "Sent Wake-on-Lan packet to nas" {
		t.Errorf("Format = %q", out)
	}
}

func TestPrintSwitches(t *testing.T) {
	var buf bytes.Buffer
	err := text.PrintSwitches(&buf, []models.Switch{
		{Name: "rack-a", Address: "192.0.2.10", Vendor: "Netgear", PortCount: 8,
			Credentials: models.CommunityCredentials{Community: "secret-community"}},
		{Name: "core", Address: "192.0.2.40", Vendor: "Netgear", PortCount: 48,
			Credentials: models.USMCredentials{Username: "ops", Auth: models.AuthSHA, AuthPassphrase: "hunter22",
				Priv: models.PrivAES, PrivPassphrase: "hunter33"}},
	})
	if err != nil {
		t.Fatalf("PrintSwitches: %v", err)
	}
	lines := splitLines(buf.String())
	// title + header + separator + 2 rows
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "Name   | Address") {
		t.Errorf("header = %q", lines[1])
	}
	if len(lines[2]) != len(lines[1]) || strings.Trim(lines[2], "-") != "" {
		t.Errorf("separator = %q", lines[2])
	}
	if !strings.Contains(lines[4], "authPriv SHA/AES") {
		t.Errorf("row = %q", lines[4])
	}
	for _, secret := range []string{"secret-community", "hunter22", "hunter33"} {
		if strings.Contains(buf.String(), secret) {
			t.Errorf("output leaks %q", secret)
		}
	}
}

func TestPrintWake_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := text.PrintWake(&buf, nil); err != nil {
		t.Fatalf("PrintWake: %v", err)
	}
	if !strings.Contains(buf.String(), "No Wake-on-Lan devices configured") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintTable_RowWidthMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := text.PrintTable(&buf, []string{"A", "B"}, [][]string{{"only one"}}); err == nil {
		t.Fatal("expected error")
	}
}
