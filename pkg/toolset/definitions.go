package toolset

import "github.com/codeready-toolchain/ai-sysadmin/pkg/inference"

func executeCommandDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolExecuteCommand),
		Description: "Execute a shell command on the system. Use this to run system commands, check status, or gather information. Returns command output.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"command": map[string]any{
					"type":        "string",
					"description": "The shell command to execute (e.g., 'systemctl status sshd', 'df -h', 'journalctl -u myservice -n 20')",
				},
				"timeout": map[string]any{
					"type":        "integer",
					"description": "Command timeout in seconds (default: 3600)",
					"default":     3600,
				},
			},
			"required": []string{"command"},
		},
	}
}

func readFileDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolReadFile),
		Description: "Read the contents of a file from the filesystem. Use this to inspect configuration files, logs, or other text files.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"file_path": map[string]any{
					"type":        "string",
					"description": "Absolute path to the file to read",
				},
				"max_lines": map[string]any{
					"type":        "integer",
					"description": "Maximum number of lines to read (default: 500)",
					"default":     500,
				},
				"jq_filter": map[string]any{
					"type":        "string",
					"description": "Optional jq expression to project the file through, if its contents are JSON (e.g. '.services[] | select(.enabled)')",
				},
			},
			"required": []string{"file_path"},
		},
	}
}

func checkServiceStatusDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolCheckServiceStatus),
		Description: "Check the status of a systemd service. Returns whether the service is active, enabled, and recent log entries.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"service_name": map[string]any{
					"type":        "string",
					"description": "Name of the systemd service (e.g., 'nginx', 'sshd')",
				},
			},
			"required": []string{"service_name"},
		},
	}
}

func viewLogsDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolViewLogs),
		Description: "View systemd journal logs. Can filter by unit or priority.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"unit": map[string]any{
					"type":        "string",
					"description": "Systemd unit name to filter logs",
				},
				"lines": map[string]any{
					"type":        "integer",
					"description": "Number of recent log lines to return (default: 50)",
					"default":     50,
				},
				"priority": map[string]any{
					"type":        "string",
					"description": "Filter by priority",
					"enum":        []string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug"},
				},
				"jq_filter": map[string]any{
					"type":        "string",
					"description": "Optional jq expression to project the journal entries through; when set, logs are fetched as structured JSON records instead of plain text (e.g. '.[] | select(.PRIORITY==\"3\") | .MESSAGE')",
				},
			},
		},
	}
}

func getSystemMetricsDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolGetSystemMetrics),
		Description: "Get current system resource metrics including CPU, memory, disk, and load average.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func getHardwareInfoDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolGetHardwareInfo),
		Description: "Get detailed hardware information including CPU model, GPU, network interfaces, storage devices, and memory specs.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func getGPUMetricsDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolGetGPUMetrics),
		Description: "Get GPU temperature, utilization, clock speeds, and power usage. Best effort across vendors.",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	}
}

func listDirectoryDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolListDirectory),
		Description: "List contents of a directory. Returns file names, sizes, and permissions.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory_path": map[string]any{
					"type":        "string",
					"description": "Absolute path to the directory",
				},
				"show_hidden": map[string]any{
					"type":        "boolean",
					"description": "Include hidden files (starting with dot)",
					"default":     false,
				},
			},
			"required": []string{"directory_path"},
		},
	}
}

func checkNetworkDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolCheckNetwork),
		Description: "Test network connectivity to a host. Can use ping or HTTP check.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"host": map[string]any{
					"type":        "string",
					"description": "Hostname or IP address to check",
				},
				"method": map[string]any{
					"type":        "string",
					"description": "Test method to use",
					"enum":        []string{"ping", "http"},
					"default":     "ping",
				},
			},
			"required": []string{"host"},
		},
	}
}

func retrieveCachedOutputDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolRetrieveCachedOutput),
		Description: "Retrieve full cached output from a previous tool call. Use this when you need to see complete data that was summarized earlier.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cache_id": map[string]any{
					"type":        "string",
					"description": "Cache ID from a previous tool summary (e.g., 'view_logs_20251006_103045')",
				},
				"max_chars": map[string]any{
					"type":        "integer",
					"description": "Maximum characters to return (default: 10000)",
					"default":     10000,
				},
			},
			"required": []string{"cache_id"},
		},
	}
}

func sendNotificationDefinition() inference.Tool {
	return inference.Tool{
		Name:        string(ToolSendNotification),
		Description: "Send a notification to the operator. Use this to alert about important events, issues, or completed actions.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Notification title",
				},
				"message": map[string]any{
					"type":        "string",
					"description": "Notification message body",
				},
				"priority": map[string]any{
					"type":        "integer",
					"description": "Priority level: 2=Low, 5=Medium, 8=High",
					"enum":        []int{2, 5, 8},
					"default":     5,
				},
			},
			"required": []string{"title", "message"},
		},
	}
}
