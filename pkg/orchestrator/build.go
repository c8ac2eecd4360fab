package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/contextwindow"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/executor"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/inference"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/llmqueue"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/meta"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/notify"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/review"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/signal"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/timeseries"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/toolset"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/tracker"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/trigger"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/vectorstore"
)

const (
	defaultTriggerInterval = 30
	defaultReviewInterval  = 60
	aiName                 = "ai-sysadmin"
)

// Build wires every concrete production component from cfg and returns a
// ready-to-run Orchestrator (§9 "initialisation builder": stores are
// constructed first, then the orchestrator, breaking the
// config-parser/vector-store/orchestrator cycle the source has).
// Grounded on cmd/tarsy/main.go's linear construct-and-check wiring,
// generalised from one domain's services to this one's layers.
func Build(ctx context.Context, cfg *config.Config) (*Orchestrator, error) {
	backend, err := inference.New(cfg.Inference)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build inference backend: %w", err)
	}

	vstore, err := vectorstore.New(ctx, cfg.Database, cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build vector store: %w", err)
	}

	// §7 "store unavailable — core continues with degraded recall":
	// the time-series adapter has no built-in degraded path, so it is
	// skipped entirely (leaving the context window's metrics section
	// empty) rather than opened against an empty DSN.
	var tstore *timeseries.Store
	if cfg.Database.DSN != "" {
		tstore, err = timeseries.New(ctx, cfg.Database, cfg.Timeseries)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: build time-series store: %w", err)
		}
	}

	windowOpts := []contextwindow.Option{contextwindow.WithVectorStore(vstore)}
	if tstore != nil {
		windowOpts = append(windowOpts, contextwindow.WithMetricsStore(tstore))
	}
	budget := contextwindow.ClampTokenBudget(cfg.Context.BudgetTokens, cfg.Inference.ModelCapacityTokens)
	ctxWindow := contextwindow.New(budget, cfg.StateDir, windowOpts...)

	var classifier trigger.Classifier
	if cfg.Trigger.UseAIClassification {
		classifier = inference.NewLogClassifier(backend, modelOrDefault(cfg.Inference.TriggerModel, cfg.Inference.Model))
	}
	triggerMonitor := trigger.NewMonitor(signal.NewHostSource(), cfg.Trigger, classifier)

	issueTracker, err := tracker.New(cfg.Tracker.StateDir)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build tracker: %w", err)
	}

	notifier := notify.NewFromConfig(cfg.Notify)

	exec := executor.New(cfg.Executor, cfg.StateDir)

	reviewModel := review.New(backend, modelOrDefault(cfg.Inference.ReviewModel, cfg.Inference.Model), ctxWindow, exec, cfg.StateDir)

	cacheDir := cfg.StateDir + "/tool_cache"
	tools := toolset.New(cacheDir, toolset.WithNotifier(notifier))

	queue, err := llmqueue.New(cfg.Queue.Dir)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build llm queue: %w", err)
	}
	dispatcher := llmqueue.NewClient(queue, backend, llmqueue.WithPriority(config.PriorityAutonomous))

	metaModel := meta.New(dispatcher, modelOrDefault(cfg.Inference.MetaModel, cfg.Inference.Model), aiName, ctxWindow, tools, vstore, cfg.StateDir)

	triggerInterval := intervalOrDefault(cfg.TriggerIntervalSeconds, defaultTriggerInterval)
	reviewInterval := intervalOrDefault(cfg.ReviewIntervalSeconds, defaultReviewInterval)
	escalationWindow := intervalOrDefault(cfg.Escalation.DebounceSeconds, int(defaultEscalationDebounce.Seconds()))

	return New(
		triggerMonitor, ctxWindow, reviewModel, metaModel, exec, issueTracker, notifier,
		secondsToDuration(triggerInterval), secondsToDuration(reviewInterval), secondsToDuration(escalationWindow),
	), nil
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

func intervalOrDefault(seconds, fallback int) int {
	if seconds > 0 {
		return seconds
	}
	return fallback
}

func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
