// Package config loads, validates, and serves the core's JSON
// configuration file (§6): trigger/review intervals, context budget,
// autonomy level, thresholds, inference backend selection, and the state
// directory.
package config

// Config is the immutable, validated configuration returned by Initialize.
type Config struct {
	configDir string

	StateDir               string `json:"state_dir,omitempty"`
	TriggerIntervalSeconds int    `json:"trigger_interval_seconds,omitempty"`
	ReviewIntervalSeconds  int    `json:"review_interval_seconds,omitempty"`

	Context     ContextConfig     `json:"context,omitempty"`
	Trigger     TriggerConfig     `json:"trigger,omitempty"`
	Inference   InferenceConfig   `json:"inference,omitempty"`
	Executor    ExecutorConfig    `json:"executor,omitempty"`
	Queue       QueueConfig       `json:"queue,omitempty"`
	Escalation  EscalationConfig  `json:"escalation,omitempty"`
	Database    DatabaseConfig    `json:"database,omitempty"`
	Timeseries  TimeseriesConfig  `json:"timeseries,omitempty"`
	VectorStore VectorStoreConfig `json:"vector_store,omitempty"`
	Tracker     TrackerConfig     `json:"tracker,omitempty"`
	Notify      NotifyConfig      `json:"notify,omitempty"`
	Metrics     MetricsConfig     `json:"metrics,omitempty"`
}

// ConfigDir returns the directory the configuration file was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Stats summarises configuration for logging/health-check surfaces.
type Stats struct {
	CriticalServices  int
	LogPatterns       int
	ProtectedServices int
}

// Stats returns summary counts for logging.
func (c *Config) Stats() Stats {
	return Stats{
		CriticalServices:  len(c.Trigger.CriticalServices),
		LogPatterns:       len(c.Trigger.LogPatterns),
		ProtectedServices: len(c.Executor.ProtectedServices),
	}
}
