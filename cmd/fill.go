// cmd/fill.go
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zhangxinyong12/auto-fill-extension/internal/browser"
	"github.com/zhangxinyong12/auto-fill-extension/internal/config"
	"github.com/zhangxinyong12/auto-fill-extension/internal/filler"
	"github.com/zhangxinyong12/auto-fill-extension/internal/generate"
	"github.com/zhangxinyong12/auto-fill-extension/internal/inject"
	"github.com/zhangxinyong12/auto-fill-extension/internal/observability"
)

var (
	fillHeadless bool
	fillTimeout  time.Duration
	fillDryRun   bool
	fillJSON     bool
)

var fillCmd = &cobra.Command{
	Use:   "fill <url>",
	Short: "Fill the form fields on a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		target := args[0]

		browserCfg := cfg.Browser
		if cmd.Flags().Changed("headless") {
			browserCfg.Headless = fillHeadless
		}

		ctx := cmd.Context()
		if fillTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, fillTimeout)
			defer cancel()
		}

		session, err := browser.NewSession(ctx, browserCfg, logger)
		if err != nil {
			return err
		}
		defer session.Close()

		gen := generate.NewClient(cfg.Generator, logger)

		writer := browser.NewWriter(session, logger)
		injector := inject.New(writer, inject.WithLogger(logger))

		repo, err := stateRepository()
		if err != nil {
			logger.Warn("state repository unavailable, overrides disabled", zap.Error(err))
		}

		f := filler.New(session, gen, injector, repo, cfg.Sites, logger)

		var report *filler.Report
		if fillDryRun {
			report, err = f.Preview(ctx, target)
		} else {
			report, err = f.Fill(ctx, target)
		}
		if err != nil {
			return err
		}

		// Let deferred writes (date picker blurs, dropdown clicks) finish
		// before the session closes.
		injector.Wait()

		return printReport(cmd, report, fillJSON)
	},
}

func printReport(cmd *cobra.Command, report *filler.Report, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(out, "Operation: %s\n", report.OperationID)
	fmt.Fprintf(out, "Fields:    %d\n", report.FieldCount)
	fmt.Fprintf(out, "Written:   %d\n", report.Written)
	if report.Message != "" {
		fmt.Fprintf(out, "Note:      %s\n", report.Message)
	}
	for key, value := range report.Values {
		fmt.Fprintf(out, "  %s = %v\n", key, value)
	}
	return nil
}

func stateRepository() (config.Repository, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}
	return config.NewFileRepository(filepath.Join(dir, "state.json")), nil
}

func init() {
	fillCmd.Flags().BoolVar(&fillHeadless, "headless", true, "run the browser headless")
	fillCmd.Flags().DurationVar(&fillTimeout, "timeout", 0, "overall operation timeout (0 = no limit)")
	fillCmd.Flags().BoolVar(&fillDryRun, "dry-run", false, "generate values but do not write them")
	fillCmd.Flags().BoolVar(&fillJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(fillCmd)
}
