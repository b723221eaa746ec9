package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/launcher"
	"github.com/bnema/modctl/internal/ui/progress"
)

var launchCmd = &cobra.Command{
	Use:     "launch <mod>",
	Aliases: []string{"start", "run", "play"},
	Short:   "Launch an installed mod",
	Long: `Launches the executable of an installed mod and waits for it to exit.

This will:
  1. Scan the install location
  2. Setup environment (Wayland, GPU optimizations)
  3. Start the mod from its own folder (through Wine for .exe on Linux)

Interrupting modctl stops the mod.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _, err := loadState()
		if err != nil {
			return err
		}

		l := launcher.New(state, launcher.Options{
			CaptureOutput: cfg.Mods.ShowTerminalOutput,
			Wine:          cfg.Launcher.Wine,
			TuneEnv:       cfg.Launcher.TuneEnv,
		}, getLogger("launcher"))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m, err := l.Launch(ctx, args[0])
		if err != nil {
			progress.PrintError("Failed to launch: " + err.Error())
			return err
		}
		progress.PrintComplete(fmt.Sprintf("Started %s (pid %d)", m.Name, *m.ProcessID))

		code, err := l.Wait(ctx, m.ID)
		switch {
		case errors.Is(err, context.Canceled):
			progress.PrintWarning("Interrupted, stopping " + m.Name)
			l.StopAll()
			return nil
		case err != nil:
			return err
		}

		if code != 0 {
			progress.PrintError(fmt.Sprintf("%s exited with code %d", m.Name, code))
			return fmt.Errorf("%s exited with code %d", m.Name, code)
		}
		progress.PrintComplete(m.Name + " exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
}
