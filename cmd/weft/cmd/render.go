package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-weft/weft/cmd/weft/internal/scene"
	"github.com/go-weft/weft/pkg/runtime"
	"github.com/go-weft/weft/pkg/surface"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <scene.yaml>",
	Short: "Render a scene file to HTML once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}

		h := surface.NewHTML()
		root, err := runtime.Mount(h, scene.Component(sc))
		if err != nil {
			return fmt.Errorf("mount scene: %w", err)
		}
		defer root.Unmount()

		out := h.Render()
		if renderOut == "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		return os.WriteFile(renderOut, []byte(out), 0o644)
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "write HTML to a file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}
