package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/metrics"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/orchestrator"
)

func newRunCmd() *cobra.Command {
	var mode string
	var autonomy string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one cycle or loop continuously (§6)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Initialize(ctx, configDir)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			if autonomy != "" {
				level := config.AutonomyLevel(autonomy)
				if !level.IsValid() {
					return fmt.Errorf("invalid --autonomy value %q", autonomy)
				}
				cfg.Executor.AutonomyLevel = level
			}

			orch, err := orchestrator.Build(ctx, cfg)
			if err != nil {
				return fmt.Errorf("build orchestrator: %w", err)
			}

			if cfg.Metrics.Enabled {
				go serveMetrics(cfg.Metrics.Addr)
			}

			switch mode {
			case "once":
				result, err := orch.RunOnce(ctx)
				if err != nil {
					return fmt.Errorf("run once: %w", err)
				}
				slog.Info("cycle complete",
					"issues_tracked", result.IssuesTracked,
					"issues_auto_resolved", result.IssuesAutoResolved,
					"escalated", result.Escalated)
				return nil

			case "continuous":
				orch.Start(ctx)
				<-ctx.Done()
				slog.Info("shutdown signal received, stopping orchestrator")
				orch.Stop()
				return nil

			default:
				return fmt.Errorf("invalid --mode value %q (want once|continuous)", mode)
			}
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "once", "once or continuous")
	cmd.Flags().StringVar(&autonomy, "autonomy", "", "override the configured autonomy level")
	return cmd
}

func serveMetrics(addr string) {
	if addr == "" {
		addr = ":9090"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("metrics server stopped", "error", err)
	}
}
