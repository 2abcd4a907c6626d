package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <word>",
	Short: "Show a token's behavioral stats",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func runToken(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := eng.GetTokenStats(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("token stats: %w", err)
	}
	if stats == nil {
		fmt.Printf("%q has never been seen.\n", args[0])
		return nil
	}

	fmt.Printf("%s [%s]\n", stats.Token, stats.Category)
	fmt.Printf("  occurrences: %s (contexts: %s)\n", humanize.Comma(int64(stats.TotalOccurrences)), humanize.Comma(int64(stats.ContextCount)))
	fmt.Printf("  stability:   %.3f\n", stats.Stability)
	fmt.Printf("  transition:  %.3f\n", stats.Transition)
	fmt.Printf("  dependency:  %.3f\n", stats.Dependency)
	fmt.Printf("  structural:  %.3f\n", stats.Structural)
	return nil
}
