package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <word>",
	Short: "Find pairs involving a word",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	pairs, err := eng.SearchByWord(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(pairs) == 0 {
		fmt.Println("no pairs found.")
		return nil
	}

	for _, p := range pairs {
		fmt.Printf("%-8s %.3f  %s <-> %s\n", p.Tier, p.Strength, p.TokenA, p.TokenB)
	}
	return nil
}
