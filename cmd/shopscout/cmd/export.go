package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored records",
	Long: `Export all stored records in their first-seen order.

Examples:
  # JSONL to stdout
  shopscout export

  # CSV to a file
  shopscout export --format csv --out products.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", "jsonl", "Output format: jsonl or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStore(GetConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "jsonl":
		err = st.ExportJSONL(ctx, out)
	case "csv":
		err = st.ExportCSV(ctx, out)
	default:
		return fmt.Errorf("unknown format %q, want jsonl or csv", exportFormat)
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if exportOut != "" {
		count, err := st.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d records to %s\n", count, exportOut)
	}
	return nil
}
