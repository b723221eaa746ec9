package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/scanner"
	"github.com/bnema/modctl/internal/ui/progress"
	"github.com/bnema/modctl/internal/ui/styles"
)

var engineModsCmd = &cobra.Command{
	Use:     "engine-mods <mod>",
	Aliases: []string{"submods"},
	Short:   "List the sub-mods of an engine mod",
	Long: `List the mods inside the mods folder of an engine such as Psych Engine
or a Polymod based build.

Examples:
  modctl engine-mods "Psych Engine"
  modctl engine-mods disable "Psych Engine" week7
  modctl engine-mods enable "Psych Engine" week7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := lookupMod(args[0])
		if err != nil {
			return err
		}

		resp, err := scanner.EngineMods(m)
		if err != nil {
			return err
		}

		if len(resp.Mods) == 0 {
			fmt.Println("No engine mods found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
			styles.Title.Render("FOLDER"),
			styles.Title.Render("NAME"),
			styles.Title.Render("STATUS"),
		)
		for _, sub := range resp.Mods {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
				filepath.Base(sub.FolderPath),
				styles.ModName.Render(sub.Name),
				styles.FormatEnabled(sub.IsEnabled()),
			)
		}
		_ = w.Flush()

		fmt.Printf("\n%d engine mod(s) %s\n", len(resp.Mods), styles.FormatEngine(resp.EngineType))
		return nil
	},
}

var engineModsEnableCmd = &cobra.Command{
	Use:   "enable <mod> <folder>",
	Short: "Enable a sub-mod",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleEngineMod(args[0], args[1], true)
	},
}

var engineModsDisableCmd = &cobra.Command{
	Use:   "disable <mod> <folder>",
	Short: "Disable a sub-mod",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleEngineMod(args[0], args[1], false)
	},
}

func lookupMod(key string) (mods.ModInfo, error) {
	state, _, err := loadState()
	if err != nil {
		return mods.ModInfo{}, err
	}
	return state.Mods.Lookup(key)
}

func toggleEngineMod(key, folder string, enabled bool) error {
	m, err := lookupMod(key)
	if err != nil {
		return err
	}

	dir, err := scanner.EngineModFolder(m, folder)
	if err != nil {
		return err
	}

	result := scanner.SetEnabled(dir, enabled)
	if !result.Success {
		progress.PrintError(result.Message)
		return fmt.Errorf("failed to toggle %s", folder)
	}
	progress.PrintComplete(folder + ": " + result.Message)
	return nil
}

func init() {
	engineModsCmd.AddCommand(engineModsEnableCmd)
	engineModsCmd.AddCommand(engineModsDisableCmd)
	rootCmd.AddCommand(engineModsCmd)
}
