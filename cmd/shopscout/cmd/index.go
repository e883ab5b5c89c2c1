package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the vector index",
	Long: `Embed stored records and publish a new index snapshot. By default only
records whose text changed since the last build are re-embedded.

Examples:
  # Incremental refresh
  shopscout index

  # Re-embed everything, e.g. after switching embedding models
  shopscout index --full`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolVar(&indexFull, "full", false, "Re-embed all records from scratch")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, st, err := newPipeline(GetConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := p.Reindex(ctx, indexFull)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("Records:  %d\n", summary.Records)
	fmt.Printf("Indexed:  %d\n", summary.Indexed)
	fmt.Printf("Reused:   %d\n", summary.Reused)
	fmt.Printf("Dropped:  %d\n", summary.Dropped)
	fmt.Printf("Skipped:  %d\n", summary.Skipped)
	fmt.Printf("Entries:  %d\n", summary.Entries)
	fmt.Printf("Duration: %v\n", summary.Duration)
	return nil
}
