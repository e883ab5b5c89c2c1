package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	scrapeCount int
	scrapeFresh bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [keyword]",
	Short: "Scrape product pages for a keyword",
	Long: `Search for a keyword, fetch the matching product pages, and store the
normalized records. Re-scraping a product replaces its stored record.

Examples:
  # Scrape the default number of products
  shopscout scrape "cordless drill"

  # Scrape more products
  shopscout scrape "cordless drill" --count 25

  # Discard previously stored records first
  shopscout scrape "cordless drill" --fresh`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().IntVarP(&scrapeCount, "count", "n", 0, "Number of products to scrape (default from config)")
	scrapeCmd.Flags().BoolVar(&scrapeFresh, "fresh", false, "Discard previously stored records before scraping")
}

func runScrape(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, st, err := newPipeline(GetConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	if scrapeFresh {
		if err := st.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset record store: %w", err)
		}
	}

	summary, err := p.Ingest(ctx, args[0], scrapeCount)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	fmt.Printf("Found:    %d\n", summary.Found)
	fmt.Printf("Fetched:  %d\n", summary.Fetched)
	fmt.Printf("Inserted: %d\n", summary.Inserted)
	fmt.Printf("Replaced: %d\n", summary.Replaced)
	for _, failure := range summary.Failures {
		fmt.Printf("  Warning: %s\n", failure)
	}

	if summary.Inserted+summary.Replaced > 0 {
		fmt.Println("\nRun 'shopscout index' to make the new records searchable")
	}
	return nil
}
