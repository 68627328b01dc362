// cmd/inspect.go
package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhangxinyong12/auto-fill-extension/internal/browser"
	"github.com/zhangxinyong12/auto-fill-extension/internal/dom"
	"github.com/zhangxinyong12/auto-fill-extension/internal/fields"
	"github.com/zhangxinyong12/auto-fill-extension/internal/observability"
	"github.com/zhangxinyong12/auto-fill-extension/internal/scope"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <url-or-file>",
	Short: "Extract field descriptors without generating or writing values",
	Long: `inspect prints the field descriptors the filler would send to the model.
Given an http(s) URL it captures the live page; given a local file path it
parses the HTML statically (no browser, no computed styles).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		target := args[0]

		var (
			snap *dom.Snapshot
			err  error
		)
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			session, serr := browser.NewSession(cmd.Context(), cfg.Browser, logger)
			if serr != nil {
				return serr
			}
			defer session.Close()
			if err = session.Navigate(cmd.Context(), target); err != nil {
				return err
			}
			snap, err = dom.Capture(cmd.Context(), session)
		} else {
			var f *os.File
			f, err = os.Open(target)
			if err != nil {
				return err
			}
			defer f.Close()
			snap, err = dom.ParseHTML(f)
		}
		if err != nil {
			return err
		}

		root := scope.Resolve(snap, logger)
		descs := fields.Extract(snap, root, logger)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
