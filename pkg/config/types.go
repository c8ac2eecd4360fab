package config

import "time"

// ThresholdsConfig overrides the §4.1 metric-check defaults.
type ThresholdsConfig struct {
	CPUPercent    float64 `json:"cpu_percent,omitempty"`
	MemoryPercent float64 `json:"memory_percent,omitempty"`
	DiskPercent   float64 `json:"disk_percent,omitempty"`
	LoadPerCPU    float64 `json:"load_per_cpu,omitempty"`
	ErrorLogRate  float64 `json:"error_log_rate,omitempty"`
}

// LogPattern is one entry of the trigger layer's ordered journal
// pattern list (§4.1 step 3): case-insensitive regex, first match wins.
type LogPattern struct {
	Pattern     string `json:"pattern"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// InferenceConfig selects the backend and per-layer models (§6).
type InferenceConfig struct {
	BackendURL   string `json:"backend_url"`
	Model        string `json:"model"`
	TriggerModel string `json:"trigger_model,omitempty"`
	ReviewModel  string `json:"review_model,omitempty"`
	MetaModel    string `json:"meta_model,omitempty"`

	// ModelCapacityTokens is the declared capacity of Model, used by the
	// context layer's startup clamp (§4.2 "Context-size validation").
	ModelCapacityTokens int `json:"model_capacity_tokens,omitempty"`
}

// TriggerConfig controls the §4.1 trigger layer.
type TriggerConfig struct {
	IntervalSeconds     int              `json:"interval_seconds,omitempty"`
	Thresholds          ThresholdsConfig `json:"thresholds,omitempty"`
	DebounceSeconds     int              `json:"debounce_seconds,omitempty"`     // default 300
	LogDebounceSeconds  int              `json:"log_debounce_seconds,omitempty"` // default 60
	CriticalServices    []string         `json:"critical_services,omitempty"`
	LogPatterns         []LogPattern     `json:"log_patterns,omitempty"`
	UseAIClassification bool             `json:"use_ai_classification"`
}

// ContextConfig controls the §4.2 context layer.
type ContextConfig struct {
	BudgetTokens int    `json:"budget_tokens,omitempty"`
	StateDir     string `json:"state_dir,omitempty"`
}

// QueueConfig controls the §4.9 LLM queue.
type QueueConfig struct {
	Dir          string        `json:"dir,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty"`
	RetentionAge time.Duration `json:"retention_age,omitempty"` // default 1h
}

// ExecutorConfig controls the §4.5 executor.
type ExecutorConfig struct {
	AutonomyLevel          AutonomyLevel `json:"autonomy_level,omitempty"`
	ProtectedServices      []string      `json:"protected_services,omitempty"`
	RebuildCommand         []string      `json:"rebuild_command,omitempty"` // base argv; the dry-build phase appends "dry-build", the switch phase appends "switch"
	RebuildWorkDir         string        `json:"rebuild_work_dir,omitempty"`
	InvestigationAllowlist []string      `json:"investigation_allowlist,omitempty"`
	// CleanupCommands are host-specific garbage-collection shell lines run
	// after the always-run journal vacuum (§4.5 "cleanup").
	CleanupCommands []string `json:"cleanup_commands,omitempty"`
	DryRun          bool     `json:"dry_run,omitempty"`
}

// EscalationConfig controls the orchestrator's per-reason escalation
// debounce (§9 open question — the source doesn't debounce; we do).
type EscalationConfig struct {
	DebounceSeconds int `json:"debounce_seconds,omitempty"` // default 300 (>=5min)
}

// DatabaseConfig is the Postgres connection used by the time-series and
// vector adapters (§4.7, §4.8).
type DatabaseConfig struct {
	DSN             string        `json:"dsn,omitempty"`
	MaxOpenConns    int           `json:"max_open_conns,omitempty"`
	MaxIdleConns    int           `json:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime,omitempty"`
}

// TimeseriesConfig controls the §4.8 time-series adapter.
type TimeseriesConfig struct {
	RetentionDays int `json:"retention_days,omitempty"` // chunks older than this are dropped
}

// VectorStoreConfig controls the §4.7 vector adapter.
type VectorStoreConfig struct {
	EmbeddingDims int `json:"embedding_dims,omitempty"`
	// FallbackPath is used when Database.DSN is empty: an in-memory store
	// persisted to this JSON file between runs (§4.7 degraded mode).
	FallbackPath string `json:"fallback_path,omitempty"`
}

// TrackerConfig controls the §4.6 issue tracker.
type TrackerConfig struct {
	StateDir       string  `json:"state_dir,omitempty"`
	SimilarityHigh float64 `json:"similarity_high,omitempty"` // auto-link threshold
}

// NotifyConfig controls the §4.12 notification sink.
type NotifyConfig struct {
	Enabled     bool   `json:"enabled,omitempty"`
	WebhookURL  string `json:"webhook_url,omitempty"`
	TokenEnv    string `json:"token_env,omitempty"`
	Channel     string `json:"channel,omitempty"`
	MinSeverity string `json:"min_severity,omitempty"` // default "high"
}

// MetricsConfig controls the ambient Prometheus exporter.
type MetricsConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Addr    string `json:"addr,omitempty"` // default ":9090"
}
