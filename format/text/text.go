// Package text renders reports and the device inventory for a terminal.
package text

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vpbank/rackctl/models"
)

// Formatter renders reports as human-readable lines.
type Formatter struct{}

// New returns a text Formatter.
func New() *Formatter { return &Formatter{} }

// Format renders r. A switch report lists every port in order, failed ports
// included, under a "Status for <name>:" heading; a wake report is a single
// confirmation line.
func (Formatter) Format(r *models.Report) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("format/text: report must not be nil")
	}
	var b strings.Builder
	if r.Kind == "wol" {
		fmt.Fprintf(&b, "Sent Wake-on-Lan packet to %s", r.Device)
		return []byte(b.String()), nil
	}

	sorted := *r
	sorted.Ports = append([]models.PortStatus{}, r.Ports...)
	sorted.Failures = append([]models.PortFailure{}, r.Failures...)
	sorted.Sort()

	fmt.Fprintf(&b, "Status for %s:", r.Device)
	i, j := 0, 0
	for i < len(sorted.Ports) || j < len(sorted.Failures) {
		b.WriteString("\n\t")
		if j >= len(sorted.Failures) || (i < len(sorted.Ports) && sorted.Ports[i].Port < sorted.Failures[j].Port) {
			b.WriteString(portLine(sorted.Ports[i].Port, sorted.Ports[i].Status))
			i++
			continue
		}
		b.WriteString(portLine(sorted.Failures[j].Port, "error: "+sorted.Failures[j].Error()))
		j++
	}
	return []byte(b.String()), nil
}

// portLine pads single-digit ports so the status column lines up.
func portLine(port uint32, status string) string {
	sep := " - "
	if port < 10 {
		sep = "  - "
	}
	return "Port: " + strconv.FormatUint(uint64(port), 10) + sep + status
}

// ─────────────────────────────────────────────────────────────────────────────
// Inventory tables
// ─────────────────────────────────────────────────────────────────────────────

// PrintSwitches writes a table of switches, or a placeholder line when there
// are none. Secrets are never printed.
func PrintSwitches(w io.Writer, switches []models.Switch) error {
	fmt.Fprintln(w, "Switches:")
	if len(switches) == 0 {
		_, err := fmt.Fprintln(w, "  No Switches configured")
		return err
	}
	rows := make([][]string, 0, len(switches))
	for _, s := range switches {
		rows = append(rows, []string{
			s.Name,
			s.Address,
			s.Vendor,
			strconv.FormatUint(uint64(s.PortCount), 10),
			s.Version().String(),
			securityLevel(s.Credentials),
		})
	}
	return PrintTable(w, []string{"Name", "Address", "Brand", "Ports", "Version", "Security"}, rows)
}

// PrintWake writes a table of wake targets.
func PrintWake(w io.Writer, targets []models.WakeTarget) error {
	fmt.Fprintln(w, "Wols:")
	if len(targets) == 0 {
		_, err := fmt.Fprintln(w, "  No Wake-on-Lan devices configured")
		return err
	}
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		rows = append(rows, []string{t.Name, t.MAC})
	}
	return PrintTable(w, []string{"Name", "MAC"}, rows)
}

func securityLevel(c models.Credentials) string {
	switch c := c.(type) {
	case models.CommunityCredentials:
		return "community"
	case models.USMCredentials:
		switch {
		case c.Priv != models.PrivNone:
			return "authPriv " + c.Auth.String() + "/" + c.Priv.String()
		case c.Auth != models.AuthNone:
			return "authNoPriv " + c.Auth.String()
		default:
			return "noAuthNoPriv"
		}
	default:
		return "-"
	}
}

// PrintTable prints rows under headers as aligned columns separated by " | ",
// with a dashed line below the header. Every row must have len(headers)
// cells.
func PrintTable(w io.Writer, headers []string, rows [][]string) error {
	colCount := len(headers)
	colWidths := make([]int, colCount)
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for n, row := range rows {
		if len(row) != colCount {
			return fmt.Errorf("format/text: row %d has %d cells, want %d", n, len(row), colCount)
		}
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	totalWidth := 0
	for i, cw := range colWidths {
		if i > 0 {
			totalWidth += 3 // " | "
		}
		totalWidth += cw
	}

	writeRow(w, headers, colWidths)
	fmt.Fprintln(w, strings.Repeat("-", totalWidth))
	for _, row := range rows {
		writeRow(w, row, colWidths)
	}
	return nil
}

func writeRow(w io.Writer, cells []string, widths []int) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, " | ")
		}
		fmt.Fprint(w, padRight(c, widths[i]))
	}
	fmt.Fprintln(w)
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
