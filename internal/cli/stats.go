package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lazypower/aria/internal/aria"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory stats",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := eng.MemoryStats(context.Background())
	if err != nil {
		return fmt.Errorf("memory stats: %w", err)
	}

	fmt.Printf("messages seen:    %s\n", humanize.Comma(int64(stats.CurrentMessageIndex)))
	fmt.Printf("tokens seen:      %s\n", humanize.Comma(int64(stats.TotalTokensSeen)))
	fmt.Printf("tokens tracked:   %s\n", humanize.Comma(int64(stats.TotalTokensTracked)))
	fmt.Printf("pairs tracked:    %s\n", humanize.Comma(int64(stats.TotalPairsTracked)))
	for _, tier := range []aria.Tier{aria.TierShort, aria.TierMedium, aria.TierLong, aria.TierDecay} {
		fmt.Printf("  %-8s %s\n", tier, humanize.Comma(int64(stats.PairsByTier[tier])))
	}
	return nil
}
