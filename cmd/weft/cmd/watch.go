package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/go-weft/weft/cmd/weft/internal/scene"
	"github.com/go-weft/weft/pkg/runtime"
	"github.com/go-weft/weft/pkg/surface"
)

var watchCmd = &cobra.Command{
	Use:   "watch <scene.yaml>",
	Short: "Re-render a scene on every file change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		sc, err := scene.Load(path)
		if err != nil {
			return err
		}

		h := surface.NewHTML()
		root, err := runtime.Mount(h, scene.Component(sc))
		if err != nil {
			return fmt.Errorf("mount scene: %w", err)
		}
		defer root.Unmount()

		fmt.Fprintln(cmd.OutOrStdout(), h.Render())

		return watchScene(cmd, root, path, sc, func() {
			fmt.Fprintln(cmd.OutOrStdout(), h.Render())
		})
	},
}

// watchScene runs the host event loop: fsnotify events reload the scene
// file into the scene signal, the scheduler's ping drives Flush, and
// onRender observes each completed pass. Watching the directory instead
// of the file survives editors that replace the file on save.
func watchScene(cmd *cobra.Command, root *runtime.Root, path string, initial scene.Scene, onRender func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch scene: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch scene: %w", err)
	}

	flushc := make(chan struct{}, 1)
	root.SetOnNeedsFlush(func() {
		select {
		case flushc <- struct{}{}:
		default:
		}
	})
	sig := scene.Signal(root.Store(), initial)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			next, err := scene.Load(path)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "reload: %v\n", err)
				continue
			}
			sig.Set(next)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		case <-flushc:
			if err := root.Flush(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "flush: %v\n", err)
				continue
			}
			onRender()
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
