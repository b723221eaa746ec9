package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/events"
	"github.com/bnema/modctl/internal/launcher"
	"github.com/bnema/modctl/internal/metrics"
	"github.com/bnema/modctl/internal/server"
	"github.com/bnema/modctl/internal/ui/progress"
)

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API",
	Long: `Run the local HTTP API used by launcher frontends.

Download and process events are streamed on /ws, Prometheus metrics are
exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, sc, err := loadState()
		if err != nil {
			return err
		}

		hub := events.NewHub(getLogger("events"))
		defer hub.Close()
		if err := state.Handle.Set(hub); err != nil {
			return err
		}

		m := metrics.New(state.Mods)
		tracker := download.NewTracker(state.Mods, state.Handle, m, getLogger("download"))
		installer := download.NewInstaller(
			tracker,
			download.NewFetcher(cfg.Download.Timeout),
			sc,
			sc.Root(),
			getLogger("download"),
		)

		l := launcher.New(state, launcher.Options{
			CaptureOutput: cfg.Mods.ShowTerminalOutput,
			Wine:          cfg.Launcher.Wine,
			TuneEnv:       cfg.Launcher.TuneEnv,
		}, getLogger("launcher"))
		defer l.StopAll()

		srv := server.New(server.Deps{
			State:     state,
			Scanner:   sc,
			Launcher:  l,
			Installer: installer,
			Catalog:   newCatalog(),
			Hub:       hub,
			Metrics:   m.Handler(),
			Logger:    getLogger("server"),
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := serveFlags.addr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		progress.PrintComplete(fmt.Sprintf("Serving %d mod(s) on http://%s", state.Mods.Len(), addr))

		err = srv.Run(ctx, addr)
		installer.CancelAll()
		installer.Wait()
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
