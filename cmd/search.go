package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/modctl/internal/gamebanana"
	"github.com/bnema/modctl/internal/mods"
	"github.com/bnema/modctl/internal/ui/styles"
)

var searchFlags struct {
	page    int
	perPage int
}

var searchCmd = &cobra.Command{
	Use:     "search [query]",
	Aliases: []string{"browse"},
	Short:   "Search the GameBanana catalog",
	Long: `Search Friday Night Funkin' mods on GameBanana.

Without a query the most recent mods are listed.

Examples:
  modctl search
  modctl search "vs whitty" --page 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, _, err := loadState()
		if err != nil {
			return err
		}

		q := gamebanana.Query{Page: searchFlags.page, PerPage: searchFlags.perPage}
		if len(args) == 1 {
			q.Search = args[0]
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		resp, err := newCatalog().Search(ctx, q)
		if err != nil {
			return fmt.Errorf("catalog search failed: %w", err)
		}

		if len(resp.Mods) == 0 {
			fmt.Println("No mods found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			styles.Title.Render("ID"),
			styles.Title.Render("NAME"),
			styles.Title.Render("BY"),
			styles.Title.Render("STATS"),
		)

		for _, m := range resp.Mods {
			name := styles.ModName.Render(m.Name)
			if isInstalled(state.Mods, m) {
				name += " " + styles.FormatInstalledBadge()
			}
			stats := strings.TrimSpace(styles.FormatStat("♥", m.Likes) + " " + styles.FormatStat("↓", m.Downloads))

			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, name, m.Owner, stats)
		}
		_ = w.Flush()

		page := searchFlags.page
		if page < 1 {
			page = 1
		}
		fmt.Printf("\nPage %d, %d mod(s) total\n", page, resp.Total)
		fmt.Println("Install with: modctl download <id>")
		return nil
	},
}

func newCatalog() *gamebanana.Client {
	return gamebanana.NewClient(
		cfg.GameBanana.BaseURL,
		cfg.GameBanana.GameID,
		cfg.GameBanana.PerPage,
		0,
		getLogger("gamebanana"),
	)
}

// isInstalled matches catalog entries against the registry by name
func isInstalled(registry *mods.Registry, m gamebanana.Mod) bool {
	_, err := registry.FindByName(m.Name)
	return err == nil
}

func init() {
	searchCmd.Flags().IntVarP(&searchFlags.page, "page", "p", 1, "Result page")
	searchCmd.Flags().IntVar(&searchFlags.perPage, "per-page", 0, "Results per page (default from config)")
	rootCmd.AddCommand(searchCmd)
}
