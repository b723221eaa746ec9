package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/ui/styles"
)

var listFlags struct {
	rejected bool
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed mods",
	Long:    `List all mods found in the install location.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, sc, err := loadState()
		if err != nil {
			return err
		}

		installed := state.Mods.List()
		if len(installed) == 0 {
			fmt.Println("No mods installed")
			fmt.Println("\nFind mods with: modctl search <query>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			styles.Title.Render("NAME"),
			styles.Title.Render("VERSION"),
			styles.Title.Render("ENGINE"),
			styles.Title.Render("STATUS"),
		)

		for _, m := range installed {
			ver := m.Version
			if ver == "" {
				ver = "-"
			}
			engine := ""
			if m.Engine != nil {
				engine = m.Engine.EngineType
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				styles.ModName.Render(m.Name),
				styles.ModVersion.Render(ver),
				styles.FormatEngine(engine),
				styles.FormatModStatus(m.IsRunning()),
			)
		}

		_ = w.Flush()

		fmt.Printf("\n%d mod(s) installed\n", len(installed))
		fmt.Printf("Install location: %s\n", sc.Root())

		if listFlags.rejected {
			result, err := sc.Scan()
			if err != nil {
				return err
			}
			for _, r := range result.Rejected {
				fmt.Println(styles.FormatWarning(r.Path + ": " + r.Err.Error()))
			}
		}

		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listFlags.rejected, "rejected", false, "Also show folders that failed to load")
	rootCmd.AddCommand(listCmd)
}
