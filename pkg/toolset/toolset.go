// Package toolset implements §4.10, the fixed catalogue of read-oriented
// tools exposed to the meta layer. Grounded on original_source/tools.py.
package toolset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
)

// ToolKind is a tagged-union discriminator over the fixed catalogue (§9
// redesign flag: a tagged union over tool kinds rather than a loosely
// typed name string everywhere).
type ToolKind string

// The full catalogue, in the order spec.md §4.10 lists them.
const (
	ToolExecuteCommand       ToolKind = "execute_command"
	ToolReadFile             ToolKind = "read_file"
	ToolCheckServiceStatus   ToolKind = "check_service_status"
	ToolViewLogs             ToolKind = "view_logs"
	ToolGetSystemMetrics     ToolKind = "get_system_metrics"
	ToolGetHardwareInfo      ToolKind = "get_hardware_info"
	ToolGetGPUMetrics        ToolKind = "get_gpu_metrics"
	ToolListDirectory        ToolKind = "list_directory"
	ToolCheckNetwork         ToolKind = "check_network"
	ToolRetrieveCachedOutput ToolKind = "retrieve_cached_output"
	ToolSendNotification     ToolKind = "send_notification"
)

// allKinds is the exhaustive list buildCatalogue is checked against by
// this package's own test, the closest a non-generated Go program gets
// to a compile-time-checked dispatch table.
var allKinds = []ToolKind{
	ToolExecuteCommand, ToolReadFile, ToolCheckServiceStatus, ToolViewLogs,
	ToolGetSystemMetrics, ToolGetHardwareInfo, ToolGetGPUMetrics,
	ToolListDirectory, ToolCheckNetwork, ToolRetrieveCachedOutput,
	ToolSendNotification,
}

// Tool pairs a catalogue entry with its chat-completions definition.
type Tool struct {
	Kind       ToolKind
	Definition inference.Tool
}

var catalogue = buildCatalogue()

func buildCatalogue() map[ToolKind]Tool {
	m := make(map[ToolKind]Tool, len(allKinds))
	for _, k := range allKinds {
		switch k {
		case ToolExecuteCommand:
			m[k] = Tool{Kind: k, Definition: executeCommandDefinition()}
		case ToolReadFile:
			m[k] = Tool{Kind: k, Definition: readFileDefinition()}
		case ToolCheckServiceStatus:
			m[k] = Tool{Kind: k, Definition: checkServiceStatusDefinition()}
		case ToolViewLogs:
			m[k] = Tool{Kind: k, Definition: viewLogsDefinition()}
		case ToolGetSystemMetrics:
			m[k] = Tool{Kind: k, Definition: getSystemMetricsDefinition()}
		case ToolGetHardwareInfo:
			m[k] = Tool{Kind: k, Definition: getHardwareInfoDefinition()}
		case ToolGetGPUMetrics:
			m[k] = Tool{Kind: k, Definition: getGPUMetricsDefinition()}
		case ToolListDirectory:
			m[k] = Tool{Kind: k, Definition: listDirectoryDefinition()}
		case ToolCheckNetwork:
			m[k] = Tool{Kind: k, Definition: checkNetworkDefinition()}
		case ToolRetrieveCachedOutput:
			m[k] = Tool{Kind: k, Definition: retrieveCachedOutputDefinition()}
		case ToolSendNotification:
			m[k] = Tool{Kind: k, Definition: sendNotificationDefinition()}
		default:
			panic(fmt.Sprintf("toolset: unhandled tool kind %q in buildCatalogue", k))
		}
	}
	return m
}

// Notifier is the subset of pkg/notify the send_notification tool needs,
// declared locally so this package carries no import-time dependency on
// the notification sink's implementation.
type Notifier interface {
	Send(ctx context.Context, title, message string, priority int) error
}

// Toolset dispatches tool calls by name against the fixed catalogue.
// Satisfies pkg/meta.Toolset.
type Toolset struct {
	safeMode        bool
	allowedCommands map[string]bool
	cacheDir        string
	runner          CommandRunner
	notifier        Notifier
}

// Option configures a Toolset at construction time.
type Option func(*Toolset)

// WithNotifier wires a notification sink for send_notification. Without
// one, send_notification reports success=false.
func WithNotifier(n Notifier) Option {
	return func(t *Toolset) { t.notifier = n }
}

// WithRunner overrides the default shell-executing CommandRunner, for
// tests.
func WithRunner(r CommandRunner) Option {
	return func(t *Toolset) { t.runner = r }
}

// WithSafeMode toggles the allow-list restriction on execute_command
// (default: on).
func WithSafeMode(enabled bool) Option {
	return func(t *Toolset) { t.safeMode = enabled }
}

// New builds a Toolset. cacheDir is the tool-output cache directory,
// shared read/write with the meta layer per spec §5 "Resource sharing" —
// callers pass the tool_cache directory that meta.New derives from its
// stateDir argument.
func New(cacheDir string, opts ...Option) *Toolset {
	t := &Toolset{
		safeMode:        true,
		allowedCommands: defaultAllowedCommands(),
		cacheDir:        cacheDir,
		runner:          execRunner{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func defaultAllowedCommands() map[string]bool {
	names := []string{
		"systemctl", "journalctl", "free", "df", "uptime",
		"ps", "top", "ip", "ss", "cat", "ls", "grep",
		"ping", "dig", "nslookup", "curl", "wget",
		"lscpu", "lspci", "lsblk", "lshw", "dmidecode",
		"du", "netstat", "who", "last", "logger",
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// ListTools returns the chat-completions tool definitions for the full
// catalogue, in a stable order.
func (t *Toolset) ListTools() []inference.Tool {
	out := make([]inference.Tool, 0, len(allKinds))
	for _, k := range allKinds {
		out = append(out, catalogue[k].Definition)
	}
	return out
}

// Execute dispatches one tool call by name. Every handler is total: the
// only Go error is for an unknown tool name — malformed arguments and
// operation failures are reported as
// {"success": false, "error": "..."} inside the result content, per
// spec.md §4.10 "All tools must be total (never raise)".
func (t *Toolset) Execute(ctx context.Context, name string, arguments json.RawMessage) (meta.ToolResult, error) {
	switch ToolKind(name) {
	case ToolExecuteCommand:
		return t.execExecuteCommand(ctx, arguments)
	case ToolReadFile:
		return t.execReadFile(arguments)
	case ToolCheckServiceStatus:
		return t.execCheckServiceStatus(ctx, arguments)
	case ToolViewLogs:
		return t.execViewLogs(ctx, arguments)
	case ToolGetSystemMetrics:
		return t.execGetSystemMetrics(ctx)
	case ToolGetHardwareInfo:
		return t.execGetHardwareInfo(ctx)
	case ToolGetGPUMetrics:
		return t.execGetGPUMetrics(ctx)
	case ToolListDirectory:
		return t.execListDirectory(arguments)
	case ToolCheckNetwork:
		return t.execCheckNetwork(ctx, arguments)
	case ToolRetrieveCachedOutput:
		return t.execRetrieveCachedOutput(arguments)
	case ToolSendNotification:
		return t.execSendNotification(ctx, arguments)
	default:
		return meta.ToolResult{}, fmt.Errorf("toolset: unknown tool %q", name)
	}
}

func toResult(success bool, data map[string]any) meta.ToolResult {
	if data == nil {
		data = map[string]any{}
	}
	data["success"] = success
	content, err := json.Marshal(data)
	if err != nil {
		return meta.ToolResult{Success: false, Content: fmt.Sprintf(`{"success": false, "error": %q}`, err.Error())}
	}
	return meta.ToolResult{Success: success, Content: string(content)}
}

func errorResult(format string, args ...any) meta.ToolResult {
	return toResult(false, map[string]any{"error": fmt.Sprintf(format, args...)})
}
