// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
	"github.com/zhangxinyong12/auto-fill-extension/internal/observability"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "autofill",
	Short: "LLM-backed form filler for web pages",
	Long: `autofill drives a headless browser against a target page, extracts the
form fields in the active scope (topmost modal or whole document), asks a
chat-completions model for plausible values, and writes them back with the
event choreography each control kind needs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		observability.InitializeLogger(cfg.Logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	defer observability.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		observability.Sync()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml, then ~/.autofill/config.yaml)")
}
