package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features [record-id]",
	Short: "Extract structured technical features from a stored record",
	Long: `Run model-assisted feature extraction over a stored record's text and
print the detected specifications (battery life, warranty, wattage, ...)
as JSON. Fields the record does not mention are omitted.

Examples:
  shopscout features B0EXAMPLE01`,
	Args: cobra.ExactArgs(1),
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	st, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, ok, err := st.Get(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("record %q not found", args[0])
	}
	if rec.RawText == "" {
		return fmt.Errorf("record %q has no text to extract from", args[0])
	}

	chat, err := newChatClient(cfg)
	if err != nil {
		return err
	}

	features, err := chat.ExtractFeatures(ctx, rec.RawText)
	if err != nil {
		return fmt.Errorf("feature extraction failed: %w", err)
	}

	output, err := json.MarshalIndent(features, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}
