package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/orchestrator"
)

// buildExecutorOnly loads configuration and builds an orchestrator
// without starting its scheduling loop, for the queue/approve/reject
// surface (§6), which only needs the executor and tracker.
func buildExecutorOnly(ctx context.Context) (*orchestrator.Orchestrator, error) {
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return orchestrator.Build(ctx, cfg)
}

func newQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Dump the pending approval queue (§6)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			orch, err := buildExecutorOnly(ctx)
			if err != nil {
				return err
			}

			pending, err := orch.Executor().PendingApprovals()
			if err != nil {
				return fmt.Errorf("read approval queue: %w", err)
			}

			data, err := json.MarshalIndent(pending, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func newApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <index>",
		Short: "Approve and execute a queued proposal (§6)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			orch, err := buildExecutorOnly(ctx)
			if err != nil {
				return err
			}

			result, err := orch.Executor().Approve(ctx, index)
			if err != nil {
				return fmt.Errorf("approve: %w", err)
			}

			fmt.Println(result.Output)
			if !result.Succeeded() {
				os.Exit(1)
			}
			return nil
		},
	}
}

func newRejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <index>",
		Short: "Reject a queued proposal without executing it (§6)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			ctx := cmd.Context()
			orch, err := buildExecutorOnly(ctx)
			if err != nil {
				return err
			}

			if err := orch.Executor().Reject(index); err != nil {
				return fmt.Errorf("reject: %w", err)
			}
			fmt.Printf("rejected proposal %d\n", index)
			return nil
		},
	}
}
