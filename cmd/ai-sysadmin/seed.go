package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/config"
	"github.com/codeready-toolchain/ai-sysadmin/pkg/vectorstore"
)

// seedItem is the on-disk shape of one bundle entry for `seed-knowledge
// --file`; it mirrors models.KnowledgeItem but omits the id, which the
// command assigns itself, and the timestamps and reference count, which
// it does not set.
type seedItem struct {
	Topic      string   `json:"topic"`
	Knowledge  string   `json:"knowledge"`
	Category   string   `json:"category"`
	Source     string   `json:"source"`
	Confidence string   `json:"confidence"`
	Tags       []string `json:"tags,omitempty"`
}

// defaultKnowledge is the foundational operational knowledge this binary
// seeds when no --file is given, carried over from
// original_source/seed_knowledge.py's static list.
var defaultKnowledge = []seedItem{
	{
		Topic:      "nh os switch",
		Knowledge:  "NixOS rebuild command. Takes 1-5 minutes normally, up to 1 hour for major updates with many packages. Do not retry if slow, this is normal. Use -u to update flake inputs first. Supports --target-host and --hostname for remote deployment.",
		Category:   "command",
		Source:     "documentation",
		Confidence: "high",
		Tags:       []string{"nixos", "rebuild", "deployment"},
	},
	{
		Topic:      "nh os boot",
		Knowledge:  "NixOS rebuild for next boot only. Safer than switch for high-risk changes since it allows easy rollback. Requires a reboot for changes to take effect. Use -u to update flake inputs.",
		Category:   "command",
		Source:     "documentation",
		Confidence: "high",
		Tags:       []string{"nixos", "rebuild", "safety"},
	},
	{
		Topic:      "nh remote deployment",
		Knowledge:  "Format: nh os switch -u --target-host=HOSTNAME --hostname=HOSTNAME. Builds locally and deploys to a remote host over its root SSH keys.",
		Category:   "command",
		Source:     "documentation",
		Confidence: "high",
		Tags:       []string{"nixos", "remote", "deployment"},
	},
	{
		Topic:      "build timeouts",
		Knowledge:  "System rebuilds can take an hour or more. Never retry a build prematurely; concurrent builds corrupt the Nix cache. Default timeout is 3600 seconds.",
		Category:   "performance",
		Source:     "experience",
		Confidence: "high",
		Tags:       []string{"builds", "timeouts", "patience"},
	},
	{
		Topic:      "nix-store repair",
		Knowledge:  "Command: nix-store --verify --check-contents --repair. Verifies and repairs store integrity but can take hours on large stores. Use only when there's clear evidence of corruption (hash mismatches, sqlite errors); most build failures are not corruption.",
		Category:   "troubleshooting",
		Source:     "documentation",
		Confidence: "high",
		Tags:       []string{"nix-store", "repair", "corruption"},
	},
	{
		Topic:      "nix cache corruption",
		Knowledge:  "Caused by interrupted or concurrent builds. Symptoms: hash mismatches, sqlite errors. Fix with nix-store --verify --check-contents --repair, but prevention (never retrying builds, proper timeouts) is cheaper.",
		Category:   "troubleshooting",
		Source:     "experience",
		Confidence: "high",
		Tags:       []string{"nix-store", "corruption", "builds"},
	},
	{
		Topic:      "systemd-journal-remote errors",
		Knowledge:  "Common failure is a missing output directory: needs /var/log/journal/remote with root:root 755 permissions. Create it, then restart the service.",
		Category:   "troubleshooting",
		Source:     "experience",
		Confidence: "medium",
		Tags:       []string{"systemd", "journal", "logging"},
	},
	{
		Topic:      "command retries",
		Knowledge:  "Never automatically retry long-running commands like builds or system updates. Check whether it is still running before retrying; automatic retries can corrupt state or conflict with the original operation.",
		Category:   "pattern",
		Source:     "experience",
		Confidence: "high",
		Tags:       []string{"best-practices", "safety", "retries"},
	},
}

func newSeedKnowledgeCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "seed-knowledge",
		Short: "Load foundational operational knowledge into the vector store (§4.12)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Initialize(ctx, configDir)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			items := defaultKnowledge
			if filePath != "" {
				items, err = loadSeedFile(filePath)
				if err != nil {
					return err
				}
			}

			vstore, err := vectorstore.New(ctx, cfg.Database, cfg.VectorStore)
			if err != nil {
				return fmt.Errorf("open vector store: %w", err)
			}
			defer vstore.Close()

			fmt.Println("Seeding knowledge base...")
			for _, item := range items {
				rec := vectorstore.Record{
					ID:        uuid.NewString(),
					Document:  item.Knowledge,
					Embedding: vectorstore.TextEmbedding(item.Topic + " " + item.Knowledge),
					Metadata: map[string]any{
						"topic":      item.Topic,
						"category":   item.Category,
						"source":     item.Source,
						"confidence": item.Confidence,
						"tags":       item.Tags,
					},
				}
				if err := vstore.Upsert(ctx, vectorstore.CollectionKnowledge, rec); err != nil {
					fmt.Printf("  x failed: %s: %v\n", item.Topic, err)
					continue
				}
				fmt.Printf("  + added: %s\n", item.Topic)
			}
			fmt.Printf("\nSeeded %d knowledge items\n", len(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "path to a JSON bundle of knowledge items (defaults to the built-in seed list)")
	return cmd
}

func loadSeedFile(path string) ([]seedItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var items []seedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return items, nil
}
