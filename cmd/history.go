package cmd

import (
	"context"
	"fmt"
	"html"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/quotegen/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print generation history",
	Long: `Prints past generations, newest first, one page at a time. The table view
shows a truncated excerpt per row; the gallery view prints each quote as an
HTML card.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("view", string(history.ViewTable), "table or gallery")
	historyCmd.Flags().Int("pages", 1, "number of pages to load")
	historyCmd.Flags().Bool("all", false, "load every page")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	viewFlag, _ := cmd.Flags().GetString("view")
	view, err := history.ParseView(viewFlag)
	if err != nil {
		return err
	}
	pages, _ := cmd.Flags().GetInt("pages")
	all, _ := cmd.Flags().GetBool("all")

	store, closeStore, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer closeStore()

	pager := history.NewPager(store, cfg.History.PageSize)
	if _, err := pager.LoadInitial(ctx); err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	for loaded := 1; pager.HasMore() && (all || loaded < pages); loaded++ {
		if _, err := pager.LoadMore(ctx); err != nil {
			return fmt.Errorf("loading page %d: %w", loaded+1, err)
		}
	}

	records := pager.Records()
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No history yet. Generate a quote first.")
		return nil
	}

	switch view {
	case history.ViewGallery:
		cards, err := history.Gallery(records)
		if err != nil {
			return err
		}
		for _, c := range cards {
			fmt.Printf("<article id=%q>\n<header>%s · %s · %s · %s</header>\n%s</article>\n",
				c.ID, html.EscapeString(c.Topic), html.EscapeString(c.Language),
				html.EscapeString(c.Tone), c.Timestamp.Local().Format("2006-01-02 15:04"), c.HTML)
		}
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTOPIC\tLANGUAGE\tTONE\tQUOTE")
		for _, r := range history.Table(records) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04"), r.Topic, r.Language, r.Tone, r.Excerpt)
		}
		w.Flush()
	}

	if pager.HasMore() {
		fmt.Fprintf(os.Stderr, "\n%d shown, more available (use --pages or --all)\n", len(records))
	}
	return nil
}
