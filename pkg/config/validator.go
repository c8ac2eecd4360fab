package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at the
// first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateIntervals(); err != nil {
		return fmt.Errorf("interval validation failed: %w", err)
	}
	if err := v.validateTrigger(); err != nil {
		return fmt.Errorf("trigger validation failed: %w", err)
	}
	if err := v.validateContext(); err != nil {
		return fmt.Errorf("context validation failed: %w", err)
	}
	if err := v.validateInference(); err != nil {
		return fmt.Errorf("inference validation failed: %w", err)
	}
	if err := v.validateExecutor(); err != nil {
		return fmt.Errorf("executor validation failed: %w", err)
	}
	if err := v.validateQueue(); err != nil {
		return fmt.Errorf("queue validation failed: %w", err)
	}
	if err := v.validateEscalation(); err != nil {
		return fmt.Errorf("escalation validation failed: %w", err)
	}
	if err := v.validateDatabase(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := v.validateTimeseries(); err != nil {
		return fmt.Errorf("timeseries validation failed: %w", err)
	}
	if err := v.validateVectorStore(); err != nil {
		return fmt.Errorf("vector store validation failed: %w", err)
	}
	if err := v.validateTracker(); err != nil {
		return fmt.Errorf("tracker validation failed: %w", err)
	}
	if err := v.validateNotify(); err != nil {
		return fmt.Errorf("notify validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateIntervals() error {
	if v.cfg.TriggerIntervalSeconds <= 0 {
		return NewValidationError("core", "trigger_interval_seconds", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if v.cfg.ReviewIntervalSeconds <= 0 {
		return NewValidationError("core", "review_interval_seconds", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if v.cfg.ReviewIntervalSeconds < v.cfg.TriggerIntervalSeconds {
		return NewValidationError("core", "review_interval_seconds", fmt.Errorf("must be at least trigger_interval_seconds"))
	}
	return nil
}

func (v *Validator) validateTrigger() error {
	t := v.cfg.Trigger

	if t.IntervalSeconds <= 0 {
		return NewValidationError("trigger", "interval_seconds", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if t.DebounceSeconds < 0 {
		return NewValidationError("trigger", "debounce_seconds", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}
	if t.LogDebounceSeconds < 0 {
		return NewValidationError("trigger", "log_debounce_seconds", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}

	th := t.Thresholds
	if th.CPUPercent < 0 || th.CPUPercent > 100 {
		return NewValidationError("trigger", "thresholds.cpu_percent", fmt.Errorf("must be between 0 and 100"))
	}
	if th.MemoryPercent < 0 || th.MemoryPercent > 100 {
		return NewValidationError("trigger", "thresholds.memory_percent", fmt.Errorf("must be between 0 and 100"))
	}
	if th.DiskPercent < 0 || th.DiskPercent > 100 {
		return NewValidationError("trigger", "thresholds.disk_percent", fmt.Errorf("must be between 0 and 100"))
	}
	if th.LoadPerCPU < 0 {
		return NewValidationError("trigger", "thresholds.load_per_cpu", fmt.Errorf("must be non-negative"))
	}
	if th.ErrorLogRate < 0 {
		return NewValidationError("trigger", "thresholds.error_log_rate", fmt.Errorf("must be non-negative"))
	}

	for i, p := range t.LogPatterns {
		if p.Pattern == "" {
			return NewValidationError("trigger", fmt.Sprintf("log_patterns[%d].pattern", i), fmt.Errorf("%w", ErrMissingRequiredField))
		}
		if p.Severity != "" && !isValidSeverity(p.Severity) {
			return NewValidationError("trigger", fmt.Sprintf("log_patterns[%d].severity", i), fmt.Errorf("invalid severity: %s", p.Severity))
		}
	}

	for i, svc := range t.CriticalServices {
		if svc == "" {
			return NewValidationError("trigger", fmt.Sprintf("critical_services[%d]", i), fmt.Errorf("%w", ErrMissingRequiredField))
		}
	}

	return nil
}

func (v *Validator) validateContext() error {
	c := v.cfg.Context
	if c.BudgetTokens <= 0 {
		return NewValidationError("context", "budget_tokens", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateInference() error {
	inf := v.cfg.Inference
	if inf.BackendURL == "" {
		return NewValidationError("inference", "backend_url", fmt.Errorf("%w", ErrMissingRequiredField))
	}
	if _, err := url.Parse(inf.BackendURL); err != nil {
		return NewValidationError("inference", "backend_url", fmt.Errorf("not a valid URL: %w", err))
	}
	if inf.Model == "" {
		return NewValidationError("inference", "model", fmt.Errorf("%w", ErrMissingRequiredField))
	}
	if inf.ModelCapacityTokens < 0 {
		return NewValidationError("inference", "model_capacity_tokens", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateExecutor() error {
	e := v.cfg.Executor

	if !e.AutonomyLevel.IsValid() {
		return NewValidationError("executor", "autonomy_level", fmt.Errorf("invalid autonomy level: %s", e.AutonomyLevel))
	}

	protected := make(map[string]bool, len(e.ProtectedServices))
	for _, svc := range e.ProtectedServices {
		if svc == "" {
			return NewValidationError("executor", "protected_services", fmt.Errorf("%w", ErrMissingRequiredField))
		}
		protected[svc] = true
	}

	if len(e.RebuildCommand) == 0 {
		return NewValidationError("executor", "rebuild_command", fmt.Errorf("%w", ErrMissingRequiredField))
	}

	for i, cmd := range e.InvestigationAllowlist {
		if cmd == "" {
			return NewValidationError("executor", fmt.Sprintf("investigation_allowlist[%d]", i), fmt.Errorf("%w", ErrMissingRequiredField))
		}
	}

	return nil
}

func (v *Validator) validateQueue() error {
	q := v.cfg.Queue
	if q.Dir == "" {
		return NewValidationError("queue", "dir", fmt.Errorf("%w", ErrMissingRequiredField))
	}
	if q.PollInterval <= 0 {
		return NewValidationError("queue", "poll_interval", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if q.RetentionAge <= 0 {
		return NewValidationError("queue", "retention_age", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateEscalation() error {
	if v.cfg.Escalation.DebounceSeconds < 0 {
		return NewValidationError("escalation", "debounce_seconds", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateDatabase() error {
	d := v.cfg.Database
	if d.DSN == "" {
		// Degraded mode is permitted (vector store falls back to the
		// in-memory adapter, time-series writes are skipped with a
		// warning) — nothing further to validate.
		return nil
	}
	if d.MaxOpenConns < 0 {
		return NewValidationError("database", "max_open_conns", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}
	if d.MaxIdleConns < 0 {
		return NewValidationError("database", "max_idle_conns", fmt.Errorf("%w: must be non-negative", ErrInvalidValue))
	}
	if d.MaxIdleConns > d.MaxOpenConns && d.MaxOpenConns > 0 {
		return NewValidationError("database", "max_idle_conns", fmt.Errorf("must not exceed max_open_conns"))
	}
	return nil
}

func (v *Validator) validateTimeseries() error {
	if v.cfg.Timeseries.RetentionDays <= 0 {
		return NewValidationError("timeseries", "retention_days", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	return nil
}

func (v *Validator) validateVectorStore() error {
	vs := v.cfg.VectorStore
	if vs.EmbeddingDims <= 0 {
		return NewValidationError("vector_store", "embedding_dims", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if v.cfg.Database.DSN == "" && vs.FallbackPath == "" {
		return NewValidationError("vector_store", "fallback_path", fmt.Errorf("required when database.dsn is unset"))
	}
	return nil
}

func (v *Validator) validateTracker() error {
	t := v.cfg.Tracker
	if t.StateDir == "" {
		return NewValidationError("tracker", "state_dir", fmt.Errorf("%w", ErrMissingRequiredField))
	}
	if t.SimilarityHigh <= 0 || t.SimilarityHigh > 1 {
		return NewValidationError("tracker", "similarity_high", fmt.Errorf("must be in (0, 1]"))
	}
	return nil
}

func (v *Validator) validateNotify() error {
	n := v.cfg.Notify
	if !n.Enabled {
		return nil
	}
	if n.WebhookURL == "" {
		return NewValidationError("notify", "webhook_url", fmt.Errorf("required when notify is enabled"))
	}
	if _, err := url.Parse(n.WebhookURL); err != nil {
		return NewValidationError("notify", "webhook_url", fmt.Errorf("not a valid URL: %w", err))
	}
	if n.MinSeverity != "" && !isValidSeverity(n.MinSeverity) {
		return NewValidationError("notify", "min_severity", fmt.Errorf("invalid severity: %s", n.MinSeverity))
	}
	return nil
}

// isValidSeverity reports whether s is one of the four severities
// recognised across the trigger, review, and notification layers.
func isValidSeverity(s string) bool {
	switch strings.ToLower(s) {
	case "low", "medium", "high", "critical":
		return true
	default:
		return false
	}
}
