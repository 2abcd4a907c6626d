package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ingestUserID string

var ingestCmd = &cobra.Command{
	Use:   "ingest <text>",
	Short: "Feed a message through the learning engine",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestUserID, "user", "cli", "user ID to attribute the message to")
}

func runIngest(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := eng.ProcessMessage(context.Background(), text, uuid.NewString(), ingestUserID)
	if err != nil {
		return fmt.Errorf("process message: %w", err)
	}

	if !report.Processed {
		fmt.Printf("not processed: %s\n", report.Reason)
		return nil
	}

	fmt.Printf("message #%s processed: %d tokens, %d categorized\n",
		humanize.Comma(int64(report.MessageIndex)), report.TokensProcessed, report.Categorized)
	fmt.Printf("pairs: %d new, %d reinforced, %d promoted, %d decayed, %d retired\n",
		report.NewPairs, report.Reinforced, report.Promoted, report.Decayed, report.Removed)
	return nil
}
