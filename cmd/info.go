package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/ui/progress"
	"github.com/bnema/modctl/internal/ui/styles"
)

var infoCmd = &cobra.Command{
	Use:   "info <mod>",
	Short: "Show details about an installed mod",
	Long: `Show the registry record of an installed mod.

The mod can be given by id or by name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _, err := loadState()
		if err != nil {
			return err
		}

		m, err := state.Mods.Lookup(args[0])
		if err != nil {
			return err
		}

		printModInfo(m)
		return nil
	},
}

func printModInfo(m mods.ModInfo) {
	progress.PrintTitle(styles.ModName.Render(m.Name) + " " + styles.ModVersion.Render(m.Version))

	progress.PrintField("ID", m.ID)
	progress.PrintField("Path", m.Path)
	progress.PrintField("Executable", m.ExecutablePath)
	progress.PrintField("Description", m.Description)
	if m.MetadataVersion != nil {
		progress.PrintField("Metadata", fmt.Sprintf("v%d", *m.MetadataVersion))
	}
	if m.Engine != nil {
		progress.PrintField("Engine", strings.TrimSpace(m.Engine.EngineType+" "+m.Engine.EngineName))
		if m.Engine.ModsFolder {
			progress.PrintField("Mods folder", m.Engine.ModsFolderPath)
		}
	}
	progress.PrintField("Status", styles.FormatModStatus(m.IsRunning()))
	progress.PrintField("Added", formatUnix(m.DateAdded))
	progress.PrintField("Last played", formatUnix(m.LastPlayed))

	for _, g := range m.Contributors {
		names := make([]string, 0, len(g.Members))
		for _, c := range g.Members {
			names = append(names, c.Name)
		}
		progress.PrintField(g.Group, strings.Join(names, ", "))
	}
}

func formatUnix(ts *int64) string {
	if ts == nil || *ts == 0 {
		return ""
	}
	return time.Unix(*ts, 0).Format("2006-01-02 15:04")
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
