// ai-sysadmin is the core's single binary (§6): a Cobra CLI exposing
// run, queue, approve, reject, and seed-knowledge over one orchestrator
// built from a JSON configuration directory.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/ai-sysadmin/pkg/version"
)

var configDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "ai-sysadmin",
		Short: "Autonomous host-administration agent",
		Long: `ai-sysadmin watches a host's metrics, services, and logs, reviews
what it sees against accumulated context, and proposes or executes
remediation within the bounds of its configured autonomy level.`,
		Version: version.Full(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envPath := configDir + "/.env"
			if err := godotenv.Load(envPath); err != nil {
				fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", envPath, err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", getEnv("CONFIG_DIR", "/etc/ai-sysadmin"), "path to configuration directory")

	rootCmd.AddCommand(newRunCmd(), newQueueCmd(), newApproveCmd(), newRejectCmd(), newSeedKnowledgeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
