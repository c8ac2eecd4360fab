// Package signal defines the abstract host-probe surface the trigger
// layer polls (§4.1, §4.11) and ships one best-effort implementation
// backed by gopsutil and journalctl.
package signal

import "context"

// ResourceSample is a point-in-time reading of host resource usage.
type ResourceSample struct {
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   float64 // worst (highest-used) mounted filesystem
	LoadPerCPU    float64 // 1-minute load average divided by core count
}

// ServiceStatus is the systemd state of a single monitored unit.
type ServiceStatus struct {
	Name   string
	Active bool
	State  string // systemd "ActiveState" string, e.g. "failed", "active"
}

// LogLine is one journal entry read since the last cursor position.
type LogLine struct {
	Unit     string
	Message  string
	Cursor   string
	Priority int // syslog priority, 0 (emerg) to 7 (debug); -1 if unknown
}

// Source is the abstract signal surface the trigger layer's checks poll.
// Implementations must be safe for concurrent use and should treat
// collection failures as soft errors: return a zero value and a non-nil
// error rather than panicking, so one failing probe never blocks another.
type Source interface {
	// Resources returns the current CPU/memory/disk/load snapshot.
	Resources(ctx context.Context) (ResourceSample, error)

	// Services returns the status of each named systemd unit.
	Services(ctx context.Context, names []string) ([]ServiceStatus, error)

	// LogsSince returns journal lines appended after cursor (an empty
	// cursor reads the last five minutes), along with the new cursor to
	// resume from.
	LogsSince(ctx context.Context, cursor string) ([]LogLine, string, error)
}
