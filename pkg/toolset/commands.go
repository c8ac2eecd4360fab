package toolset

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
)

const defaultCommandTimeout = 3600 * time.Second

type executeCommandArgs struct {
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

func (t *Toolset) execExecuteCommand(ctx context.Context, arguments json.RawMessage) (meta.ToolResult, error) {
	var args executeCommandArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if strings.TrimSpace(args.Command) == "" {
		return errorResult("command must not be empty"), nil
	}

	if t.safeMode {
		base := strings.Fields(args.Command)[0]
		if !t.allowedCommands[base] {
			return toResult(false, map[string]any{
				"error":            fmt.Sprintf("command '%s' not in allowed list (safe mode enabled)", base),
				"allowed_commands": allowedCommandNames(t.allowedCommands),
			}), nil
		}
	}

	timeout := defaultCommandTimeout
	if args.Timeout > 0 {
		timeout = time.Duration(args.Timeout) * time.Second
	}

	res := t.runner.Run(ctx, args.Command, timeout)
	if res.Err != nil {
		return toResult(false, map[string]any{
			"error":   res.Err.Error(),
			"command": args.Command,
		}), nil
	}

	return toResult(res.Success, map[string]any{
		"exit_code": res.ExitCode,
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
		"command":   args.Command,
	}), nil
}

func allowedCommandNames(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	return out
}

func (t *Toolset) runCommand(ctx context.Context, command string) CommandResult {
	return t.runner.Run(ctx, command, defaultCommandTimeout)
}

type checkServiceStatusArgs struct {
	ServiceName string `json:"service_name"`
}

func (t *Toolset) execCheckServiceStatus(ctx context.Context, arguments json.RawMessage) (meta.ToolResult, error) {
	var args checkServiceStatusArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.ServiceName == "" {
		return errorResult("service_name must not be empty"), nil
	}

	name := args.ServiceName
	if !strings.HasSuffix(name, ".service") {
		name += ".service"
	}

	status := t.runCommand(ctx, fmt.Sprintf("systemctl status %s", name))
	isActive := t.runCommand(ctx, fmt.Sprintf("systemctl is-active %s", name))
	isEnabled := t.runCommand(ctx, fmt.Sprintf("systemctl is-enabled %s", name))
	logs := t.runCommand(ctx, fmt.Sprintf("journalctl -u %s -n 10 --no-pager", name))

	return toResult(true, map[string]any{
		"service":       name,
		"active":        strings.TrimSpace(isActive.Stdout) == "active",
		"enabled":       strings.TrimSpace(isEnabled.Stdout) == "enabled",
		"status_output": status.Stdout,
		"recent_logs":   logs.Stdout,
	}), nil
}

type viewLogsArgs struct {
	Unit     string `json:"unit"`
	Lines    int    `json:"lines"`
	Priority string `json:"priority"`
	JQFilter string `json:"jq_filter"`
}

func (t *Toolset) execViewLogs(ctx context.Context, arguments json.RawMessage) (meta.ToolResult, error) {
	var args viewLogsArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.Lines <= 0 {
		args.Lines = 50
	}

	parts := []string{"journalctl", "--no-pager"}
	if args.Unit != "" {
		parts = append(parts, "-u", args.Unit)
	}
	parts = append(parts, "-n", fmt.Sprintf("%d", args.Lines))
	if args.Priority != "" {
		parts = append(parts, "-p", args.Priority)
	}
	if args.JQFilter != "" {
		parts = append(parts, "-o", "json")
	}

	result := t.runCommand(ctx, strings.Join(parts, " "))

	if args.JQFilter == "" {
		return toResult(true, map[string]any{
			"logs":     result.Stdout,
			"unit":     args.Unit,
			"lines":    args.Lines,
			"priority": args.Priority,
		}), nil
	}

	entries, err := parseJournalJSONLines(result.Stdout)
	if err != nil {
		return errorResult("parse journal output: %s", err), nil
	}
	filtered, err := applyJQFilter(args.JQFilter, entries)
	if err != nil {
		return errorResult("%s", err), nil
	}

	return toResult(true, map[string]any{
		"logs":      filtered,
		"unit":      args.Unit,
		"lines":     args.Lines,
		"priority":  args.Priority,
		"jq_filter": args.JQFilter,
	}), nil
}

// parseJournalJSONLines decodes journalctl's "-o json" output, one JSON
// object per line, into a slice gojq can iterate over.
func parseJournalJSONLines(output string) ([]any, error) {
	entries := make([]any, 0)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, err
		}
		entries = append(entries, obj)
	}
	return entries, nil
}

func (t *Toolset) execGetSystemMetrics(ctx context.Context) (meta.ToolResult, error) {
	uptime := t.runCommand(ctx, "uptime")
	free := t.runCommand(ctx, "free -h")
	df := t.runCommand(ctx, "df -h")

	return toResult(true, map[string]any{
		"uptime": uptime.Stdout,
		"memory": free.Stdout,
		"disk":   df.Stdout,
	}), nil
}

func (t *Toolset) execGetHardwareInfo(ctx context.Context) (meta.ToolResult, error) {
	hardware := map[string]any{}

	if r := t.runCommand(ctx, "lscpu"); r.Success {
		hardware["cpu"] = r.Stdout
	}
	if r := t.runCommand(ctx, "free -h"); r.Success {
		hardware["memory"] = r.Stdout
	}
	if r := t.runCommand(ctx, "lspci | grep -i 'vga\\|3d\\|display'"); r.Success {
		hardware["gpu"] = r.Stdout
	}
	if r := t.runCommand(ctx, "ip link show"); r.Success {
		hardware["network_interfaces"] = r.Stdout
	}
	if r := t.runCommand(ctx, "ip addr show"); r.Success {
		hardware["network_addresses"] = r.Stdout
	}
	if r := t.runCommand(ctx, "lsblk -o NAME,SIZE,TYPE,MOUNTPOINT,FSTYPE"); r.Success {
		hardware["storage"] = r.Stdout
	}
	if r := t.runCommand(ctx, "dmidecode -t baseboard 2>/dev/null"); r.Success {
		hardware["motherboard"] = r.Stdout
	}

	return toResult(true, hardware), nil
}

func (t *Toolset) execGetGPUMetrics(ctx context.Context) (meta.ToolResult, error) {
	metrics := map[string]any{}

	if r := t.runCommand(ctx, "nvidia-smi --query-gpu=temperature.gpu,utilization.gpu,clocks.sm,power.draw --format=csv,noheader"); r.Success {
		metrics["nvidia"] = strings.TrimSpace(r.Stdout)
	}
	if r := t.runCommand(ctx, "cat /sys/class/drm/card0/device/hwmon/hwmon*/temp1_input 2>/dev/null"); r.Success && strings.TrimSpace(r.Stdout) != "" {
		metrics["amd_temp_millidegrees"] = strings.TrimSpace(r.Stdout)
	}
	if r := t.runCommand(ctx, "cat /sys/class/drm/card0/device/gpu_busy_percent 2>/dev/null"); r.Success && strings.TrimSpace(r.Stdout) != "" {
		metrics["amd_gpu_utilization_percent"] = strings.TrimSpace(r.Stdout)
	}

	if len(metrics) == 0 {
		return toResult(false, map[string]any{"error": "no supported GPU metrics source found"}), nil
	}
	return toResult(true, metrics), nil
}

type listDirectoryArgs struct {
	DirectoryPath string `json:"directory_path"`
	ShowHidden    bool   `json:"show_hidden"`
}

func (t *Toolset) execListDirectory(arguments json.RawMessage) (meta.ToolResult, error) {
	var args listDirectoryArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.DirectoryPath == "" {
		return errorResult("directory_path must not be empty"), nil
	}
	return listDirectory(args.DirectoryPath, args.ShowHidden)
}

type checkNetworkArgs struct {
	Host   string `json:"host"`
	Method string `json:"method"`
}

func (t *Toolset) execCheckNetwork(ctx context.Context, arguments json.RawMessage) (meta.ToolResult, error) {
	var args checkNetworkArgs
	if err := json.Unmarshal(arguments, &args); err != nil {
		return errorResult("invalid arguments: %s", err), nil
	}
	if args.Host == "" {
		return errorResult("host must not be empty"), nil
	}
	if args.Method == "" {
		args.Method = "ping"
	}

	var result CommandResult
	switch args.Method {
	case "http":
		result = t.runCommand(ctx, fmt.Sprintf("curl -s -o /dev/null -w '%%{http_code}' --max-time 5 %s", args.Host))
	default:
		result = t.runCommand(ctx, fmt.Sprintf("ping -c 3 -W 2 %s", args.Host))
	}

	return toResult(result.Success, map[string]any{
		"host":   args.Host,
		"method": args.Method,
		"output": result.Stdout,
	}), nil
}
