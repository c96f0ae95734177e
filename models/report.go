package models

import (
	"sort"
	"time"
)

// Port status labels.
const (
	StatusOn  = "on"
	StatusOff = "off"
)

// PortStatus is the outcome of one successful per-port SNMP exchange.
type PortStatus struct {
	Port   uint32 `json:"port"`
	Status string `json:"status"` // StatusOn | StatusOff
}

// PortFailure records why a port is missing from a result.
type PortFailure struct {
	Port uint32 `json:"port"`
	Err  error  `json:"-"`
}

// Error returns the failure text ("" when Err is nil).
func (f PortFailure) Error() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Action names the operation that produced a Report.
type Action string

const (
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
	ActionStatus  Action = "status"
)

// Report is what a device operation hands back to the presentation layer.
// Ports holds successful outcomes only; ports that failed are listed in
// Failures and are absent from Ports.
type Report struct {
	Device    string
	Kind      string // "switch" | "wol"
	Action    Action
	Ports     []PortStatus
	Failures  []PortFailure
	StartedAt time.Time
	Duration  time.Duration
}

// Sort orders Ports and Failures by port number.
func (r *Report) Sort() {
	sort.Slice(r.Ports, func(i, j int) bool { return r.Ports[i].Port < r.Ports[j].Port })
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].Port < r.Failures[j].Port })
}
