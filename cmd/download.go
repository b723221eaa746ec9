package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/download"
	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/ui/progress"
)

var downloadCmd = &cobra.Command{
	Use:     "download <gamebanana-id>",
	Aliases: []string{"install", "get"},
	Short:   "Download and install a mod from GameBanana",
	Long: `Download a mod archive from GameBanana and install it into the
install location.

The archive is extracted, the mod folder is scanned for its metadata and the
mod is added to the registry. Press ctrl+c to cancel.

Examples:
  modctl download 12345`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid mod id %q", args[0])
		}

		state, sc, err := loadState()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		entry, err := newCatalog().Get(ctx, modID)
		if err != nil {
			return fmt.Errorf("failed to fetch mod %d: %w", modID, err)
		}

		tracker := download.NewTracker(state.Mods, state.Handle, nil, getLogger("download"))
		installer := download.NewInstaller(
			tracker,
			download.NewFetcher(cfg.Download.Timeout),
			sc,
			sc.Root(),
			getLogger("download"),
		)

		model := progress.NewModel("Installing " + entry.Name).WithCancel(cancel)
		p := tea.NewProgram(model)
		if err := state.Handle.Set(progress.NewDownloadHandle(p.Send)); err != nil {
			return err
		}

		var installed mods.ModInfo
		done := make(chan error, 1)
		go func() {
			info, err := installer.Install(ctx, download.FromCatalog(entry))
			installed = info
			p.Send(progress.DoneMsg{Err: err})
			done <- err
		}()

		finalModel, err := p.Run()
		if err != nil {
			cancel()
			<-done
			return err
		}
		installErr := <-done

		if errors.Is(installErr, download.ErrCancelled) {
			progress.PrintWarning("Download cancelled")
			return nil
		}
		if fm := finalModel.(progress.Model); fm.GetError() != nil {
			return fm.GetError()
		}
		if installErr != nil {
			return installErr
		}

		progress.PrintNewline()
		progress.PrintComplete(fmt.Sprintf("%s installed to %s", installed.Name, installed.Path))
		progress.PrintDetail("Launch with: modctl launch " + strconv.Quote(installed.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
