package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lazypower/aria/internal/aria"
)

var categoryLimit int

var categoryCmd = &cobra.Command{
	Use:   "category <name>",
	Short: "List tokens in a behavioral category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategory,
}

func init() {
	categoryCmd.Flags().IntVarP(&categoryLimit, "limit", "n", 50, "maximum number of tokens")
}

func runCategory(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	tokens, err := eng.GetTokensByCategory(context.Background(), aria.Category(args[0]), categoryLimit)
	if err != nil {
		return fmt.Errorf("tokens by category: %w", err)
	}
	if len(tokens) == 0 {
		fmt.Println("no tokens found.")
		return nil
	}

	for _, t := range tokens {
		fmt.Printf("%-20s occurrences=%s\n", t.Token, humanize.Comma(int64(t.TotalOccurrences)))
	}
	return nil
}
