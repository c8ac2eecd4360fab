package config

import "time"

// DefaultStateDir is the default state root (§6).
const DefaultStateDir = "/var/lib/ai-sysadmin"

// DefaultConfigPath is the default configuration file path (§6).
const DefaultConfigPath = "/etc/ai-sysadmin/config.json"

// defaultThresholds returns the §4.1 metric-check defaults.
func defaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		CPUPercent:    90.0,
		MemoryPercent: 85.0,
		DiskPercent:   90.0,
		LoadPerCPU:    2.0,
		ErrorLogRate:  10.0,
	}
}

// defaultCriticalServices are the systemd units the trigger layer always
// watches (§4.1 step 2), mirroring original_source/trigger_monitor.py's
// CRITICAL_SERVICES.
func defaultCriticalServices() []string {
	return []string{
		"sshd",
		"systemd-networkd",
		"NetworkManager",
		"systemd-resolved",
		"dbus",
		"systemd-journald",
	}
}

// defaultProtectedServices are units the executor refuses to restart
// regardless of autonomy level (§4.5).
func defaultProtectedServices() []string {
	return []string{
		"sshd",
		"systemd-networkd",
		"NetworkManager",
		"systemd-resolved",
		"dbus",
	}
}

// defaultLogPatterns is the ordered, case-insensitive journal pattern
// list (§4.1 step 3), mirroring original_source/trigger_monitor.py's
// CRITICAL_PATTERNS. First match wins.
func defaultLogPatterns() []LogPattern {
	return []LogPattern{
		{Pattern: `kernel:.*panic`, Severity: "critical", Description: "Kernel panic detected"},
		{Pattern: `Out of memory`, Severity: "critical", Description: "OOM condition detected"},
		{Pattern: `segfault`, Severity: "high", Description: "Segmentation fault detected"},
		{Pattern: `Failed to start`, Severity: "high", Description: "Service failed to start"},
		{Pattern: `FAILED`, Severity: "medium", Description: "Service failure"},
		{Pattern: `error.*authentication`, Severity: "medium", Description: "Authentication error"},
		{Pattern: `Connection refused`, Severity: "low", Description: "Connection refused"},
		{Pattern: `timeout`, Severity: "low", Description: "Timeout detected"},
	}
}

// defaultInvestigationAllowlist is the §4.5 investigation command
// allow-list: the allowed first tokens (with "systemctl" restricted to
// its "status" subcommand, the one read-only invocation).
func defaultInvestigationAllowlist() []string {
	return []string{
		"journalctl",
		"systemctl status",
		"df",
		"free",
		"ps",
		"ss",
		"netstat",
	}
}

// Defaults returns a fully populated built-in Config, used as the base
// that a user-supplied JSON document is merged on top of (loader.go).
func Defaults() *Config {
	return &Config{
		StateDir:               DefaultStateDir,
		TriggerIntervalSeconds: 60,
		ReviewIntervalSeconds:  300,
		Context: ContextConfig{
			BudgetTokens: 8000,
		},
		Trigger: TriggerConfig{
			IntervalSeconds:     60,
			Thresholds:          defaultThresholds(),
			DebounceSeconds:     300,
			LogDebounceSeconds:  60,
			CriticalServices:    defaultCriticalServices(),
			LogPatterns:         defaultLogPatterns(),
			UseAIClassification: true,
		},
		Inference: InferenceConfig{
			BackendURL:          "http://127.0.0.1:40080/v1",
			Model:               "qwen3:8b",
			TriggerModel:        "qwen3:1b",
			ReviewModel:         "qwen3:4b",
			MetaModel:           "qwen3:8b",
			ModelCapacityTokens: 8192,
		},
		Executor: ExecutorConfig{
			AutonomyLevel:          AutonomySuggest,
			ProtectedServices:      defaultProtectedServices(),
			RebuildCommand:         []string{"nixos-rebuild"},
			InvestigationAllowlist: defaultInvestigationAllowlist(),
			CleanupCommands:        []string{"nix-collect-garbage --delete-old"},
		},
		Queue: QueueConfig{
			Dir:          "queues/ollama",
			PollInterval: 2 * time.Second,
			RetentionAge: time.Hour,
		},
		Escalation: EscalationConfig{
			DebounceSeconds: 300,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Timeseries: TimeseriesConfig{
			RetentionDays: 30,
		},
		VectorStore: VectorStoreConfig{
			EmbeddingDims: 384,
			FallbackPath:  "vectorstore.json",
		},
		Tracker: TrackerConfig{
			StateDir:       "issues",
			SimilarityHigh: 0.85,
		},
		Notify: NotifyConfig{
			Enabled:     false,
			MinSeverity: "high",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
	}
}
