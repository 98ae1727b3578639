package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/quotegen/internal/quotes"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a single quote",
	Long: `Generates one quote for a topic and prints it. The topic may be given as
an argument or with --topic; --surprise picks a random topic and language.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "what the quote should be about")
	generateCmd.Flags().String("language", quotes.DefaultLanguage, "language to write the quote in")
	generateCmd.Flags().String("tone", quotes.DefaultTone, "tone of the quote")
	generateCmd.Flags().Bool("surprise", false, "pick a random topic and language")
	generateCmd.Flags().Bool("memory", false, "do not write the quote to history")
	generateCmd.Flags().Bool("list-tones", false, "print the available tones and exit")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list-tones"); list {
		for _, t := range quotes.Tones {
			fmt.Printf("%-14s %s\n", t.Value, t.Label)
		}
		return nil
	}

	start := time.Now()
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	topic, _ := cmd.Flags().GetString("topic")
	if len(args) == 1 {
		topic = args[0]
	}
	language, _ := cmd.Flags().GetString("language")
	tone, _ := cmd.Flags().GetString("tone")
	if surprise, _ := cmd.Flags().GetBool("surprise"); surprise {
		s := quotes.Surprise(nil)
		topic, language = s.Topic, s.Language
		fmt.Fprintf(os.Stderr, "Surprise: %s in %s\n", topic, language)
	}

	memory, _ := cmd.Flags().GetBool("memory")
	store, closeStore, err := openStore(cfg, memory)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, err := newQuoteService(cfg, store)
	if err != nil {
		return err
	}

	rec, err := svc.Generate(ctx, quotes.Request{Topic: topic, Language: language, Tone: tone})
	switch {
	case errors.Is(err, quotes.ErrNotPersisted):
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	case err != nil:
		return err
	}

	fmt.Println(strings.TrimSpace(rec.Quote))
	if verbose {
		fmt.Fprintf(os.Stderr, "\n%s / %s / %s", rec.Topic, rec.Language, rec.Tone)
		if rec.ID != "" {
			fmt.Fprintf(os.Stderr, " (id %s)", rec.ID)
		}
		fmt.Fprintf(os.Stderr, " in %s\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}
