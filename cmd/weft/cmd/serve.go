package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/go-weft/weft/cmd/weft/internal/devserver"
	"github.com/go-weft/weft/cmd/weft/internal/scene"
	"github.com/go-weft/weft/pkg/runtime"
	"github.com/go-weft/weft/pkg/surface"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <scene.yaml>",
	Short: "Serve a scene over HTTP with live reload",
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

		ds := devserver.New(sc.Title, h.Render())
		httpSrv := &http.Server{Addr: serveAddr, Handler: ds.Handler()}

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- httpSrv.ListenAndServe()
		}()
		defer httpSrv.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "serving %s on http://%s\n", path, serveAddr)

		watchDone := make(chan error, 1)
		go func() {
			watchDone <- watchScene(cmd, root, path, sc, func() {
				ds.Update(h.Render())
			})
		}()

		select {
		case err := <-serveErr:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case err := <-watchDone:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8750", "listen address")
	rootCmd.AddCommand(serveCmd)
}
