// Package cmd implements the weft CLI: render a scene file once, watch
// it for changes, or serve it with live reload.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-weft/weft/pkg/errors"
)

// Version is set at build time.
var Version = "0.1.0-dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "weft",
	Short:   "Weft - declarative UI trees, diffed and applied incrementally",
	Version: Version,
	Long: `Weft renders declarative scene files through the same reconciliation
pipeline a live application uses: build a tree, diff it against the
previous one, apply the minimal patches to a target surface.

  weft render scene.yaml          Render a scene to HTML once
  weft watch scene.yaml           Re-render on every file change
  weft serve scene.yaml           Serve with websocket live reload`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		errors.SetHandler(&errors.LogHandler{Verbose: verbose})
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log stack traces with reported errors")
}
