package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/quotegen/internal/docstore"
	"github.com/ziadkadry99/quotegen/internal/export"
	"github.com/ziadkadry99/quotegen/internal/history"
	"github.com/ziadkadry99/quotegen/internal/progress"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history as PNG quote cards",
	Long: `Renders one PNG card per history record into a directory. Records are
matched by language/tone/topic globs, e.g. --include 'Bengali/**' or
--exclude '*/romantic/*'.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "o", "cards", "output directory")
	exportCmd.Flags().StringSlice("include", nil, "glob patterns of records to export")
	exportCmd.Flags().StringSlice("exclude", nil, "glob patterns of records to skip")
	exportCmd.Flags().Bool("dry-run", false, "list matching records without writing files")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	filter := export.Filter{Include: include, Exclude: exclude}
	if err := filter.Validate(); err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer closeStore()

	matched, err := collect(ctx, store, cfg.History.PageSize, filter)
	if err != nil {
		return err
	}
	if len(matched) == 0 {
		fmt.Fprintln(os.Stderr, "No records matched.")
		return nil
	}

	if dryRun {
		for _, r := range matched {
			fmt.Println(export.Key(r))
		}
		fmt.Fprintf(os.Stderr, "%d records would be exported to %s\n", len(matched), outDir)
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	written, err := writeCards(outDir, matched, progress.NewReporter("Exporting cards"))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported %d cards to %s\n", written, outDir)
	return nil
}

// collect walks the whole history a page at a time and keeps the records
// the filter selects.
func collect(ctx context.Context, src history.Source, pageSize int, filter export.Filter) ([]docstore.Record, error) {
	var (
		matched []docstore.Record
		cursor  docstore.Cursor
	)
	for {
		records, next, more, err := history.Fetch(ctx, src, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		for _, r := range records {
			if filter.Match(r) {
				matched = append(matched, r)
			}
		}
		if !more {
			return matched, nil
		}
		cursor = next
	}
}

// writeCards renders one file per record and returns how many were written.
func writeCards(dir string, records []docstore.Record, reporter progress.Reporter) (int, error) {
	reporter.Start(len(records))
	defer reporter.Finish()

	seen := make(map[string]bool, len(records))
	for i, r := range records {
		name := export.RecordFilename(r)
		if seen[name] {
			return i, fmt.Errorf("two records map to %s", name)
		}
		seen[name] = true
		if err := writeCard(filepath.Join(dir, name), r); err != nil {
			return i, err
		}
		reporter.Update(i+1, name)
	}
	return len(records), nil
}

func writeCard(path string, r docstore.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.RenderPNG(f, export.Card{Quote: r.Quote, Topic: r.Topic}); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}
