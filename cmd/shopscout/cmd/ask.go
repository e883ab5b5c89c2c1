package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	askTopK   int
	askFormat string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed products",
	Long: `Retrieve the most relevant indexed products and answer the question from
them, citing the product IDs the answer draws on.

Examples:
  # Basic question
  shopscout ask "which drill has the best battery life?"

  # Widen retrieval
  shopscout ask "compare the cordless drills" --top-k 8

  # JSON output for scripting
  shopscout ask "cheapest saw?" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "Number of products to retrieve")
	askCmd.Flags().StringVar(&askFormat, "format", "text", "Output format: text or json")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, st, err := newPipeline(GetConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	ans, retrieved, err := p.Ask(ctx, args[0], askTopK)
	if err != nil {
		return err
	}

	if askFormat == "json" {
		output, err := json.MarshalIndent(map[string]any{
			"answer":    ans,
			"retrieved": retrieved,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(ans.Text)
	if len(ans.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range ans.Citations {
			fmt.Printf("  %s (score %.3f)\n", c.RecordID, c.Score)
		}
	}
	return nil
}
