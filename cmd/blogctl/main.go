// Command blogctl is the operator CLI: schema migrations, sample data and
// admin account management.
package main

import (
	"fmt"
	"os"

	"finsight/pkg/config"
	"finsight/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "blogctl",
	Short:         "Operate the finsight blog database",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		log = logger.NewWithLevel(cfg.LogLevel).Named("blogctl")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
