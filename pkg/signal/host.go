package signal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostSource is the default Source: gopsutil for resource metrics, a
// systemctl subprocess for service state, a journalctl subprocess for
// log lines. It never panics —
// every probe degrades to its own error rather than failing the others.
type HostSource struct {
	// CPUSampleWindow is how long cpu.PercentWithContext blocks to take a
	// usage sample. Short windows are noisier; the trigger layer calls
	// this once per interval so blocking briefly is acceptable.
	CPUSampleWindow time.Duration
}

// NewHostSource returns a HostSource with a 1-second CPU sample window,
// matching the original collector's psutil.cpu_percent(interval=1).
func NewHostSource() *HostSource {
	return &HostSource{CPUSampleWindow: time.Second}
}

func (h *HostSource) Resources(ctx context.Context) (ResourceSample, error) {
	var sample ResourceSample
	var firstErr error

	pct, err := cpu.PercentWithContext(ctx, h.CPUSampleWindow, false)
	if err != nil {
		firstErr = fmt.Errorf("cpu: %w", err)
	} else if len(pct) > 0 {
		sample.CPUPercent = pct[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("memory: %w", err)
		}
	} else {
		sample.MemoryPercent = vm.UsedPercent
	}

	diskPct, err := worstDiskPercent(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("disk: %w", err)
		}
	} else {
		sample.DiskPercent = diskPct
	}

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("load: %w", err)
		}
	} else {
		cores := runtime.NumCPU()
		if cores < 1 {
			cores = 1
		}
		sample.LoadPerCPU = avg.Load1 / float64(cores)
	}

	return sample, firstErr
}

func worstDiskPercent(ctx context.Context) (float64, error) {
	partitions, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return 0, err
	}

	var worst float64
	for _, p := range partitions {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			continue // permission errors on pseudo-filesystems are routine
		}
		if usage.UsedPercent > worst {
			worst = usage.UsedPercent
		}
	}
	return worst, nil
}

// systemctlUnit mirrors the fields systemctl's --output=json emits for
// `systemctl show <unit> --property=ActiveState`.
type systemctlUnit struct {
	ActiveState string `json:"ActiveState"`
}

func (h *HostSource) Services(ctx context.Context, names []string) ([]ServiceStatus, error) {
	statuses := make([]ServiceStatus, 0, len(names))
	var firstErr error

	for _, name := range names {
		state, err := queryUnitState(ctx, name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			statuses = append(statuses, ServiceStatus{Name: name, Active: false, State: "unknown"})
			continue
		}
		statuses = append(statuses, ServiceStatus{
			Name:   name,
			Active: state == "active",
			State:  state,
		})
	}

	return statuses, firstErr
}

func queryUnitState(ctx context.Context, unit string) (string, error) {
	cmd := exec.CommandContext(ctx, "systemctl", "show", unit, "--property=ActiveState", "--value")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("systemctl show %s: %w", unit, err)
	}
	return strings.TrimSpace(string(out)), nil
}

type journalEntry struct {
	Cursor           string `json:"__CURSOR"`
	Message          string `json:"MESSAGE"`
	SystemdUnit      string `json:"_SYSTEMD_UNIT"`
	SyslogIdentifier string `json:"SYSLOG_IDENTIFIER"`
	Priority         string `json:"PRIORITY"`
}

func (h *HostSource) LogsSince(ctx context.Context, cursor string) ([]LogLine, string, error) {
	args := []string{"--no-pager", "-o", "json"}
	if cursor != "" {
		args = append(args, "--after-cursor", cursor)
	} else {
		args = append(args, "--since", "5 minutes ago")
	}

	cmd := exec.CommandContext(ctx, "journalctl", args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, cursor, fmt.Errorf("journalctl: %w", err)
	}

	lines := make([]LogLine, 0)
	newCursor := cursor
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry journalEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue // malformed/partial line — skip, don't abort the batch
		}
		unit := entry.SystemdUnit
		if unit == "" {
			unit = entry.SyslogIdentifier
		}
		lines = append(lines, LogLine{Unit: unit, Message: entry.Message, Cursor: entry.Cursor, Priority: parsePriority(entry.Priority)})
		if entry.Cursor != "" {
			newCursor = entry.Cursor
		}
	}

	return lines, newCursor, nil
}

func parsePriority(s string) int {
	if s == "" {
		return -1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
