package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lazypower/aria/internal/aria"
)

var (
	topLimit int
	topTier  string
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the strongest pairs",
	RunE:  runTop,
}

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 20, "maximum number of pairs")
	topCmd.Flags().StringVarP(&topTier, "tier", "t", "", "filter by tier (short, medium, long, decay)")
}

func runTop(cmd *cobra.Command, args []string) error {
	eng, db, err := openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	var tierFilter *aria.Tier
	if topTier != "" {
		tier := aria.Tier(topTier)
		tierFilter = &tier
	}

	pairs, err := eng.GetTopPairs(context.Background(), topLimit, tierFilter)
	if err != nil {
		return fmt.Errorf("top pairs: %w", err)
	}
	if len(pairs) == 0 {
		fmt.Println("no pairs found.")
		return nil
	}

	for _, p := range pairs {
		fmt.Printf("%-8s %.3f  freq=%-6s decay_at=%-8s %s <-> %s\n",
			p.Tier, p.Strength, humanize.Comma(int64(p.Frequency)), humanize.Comma(int64(p.DecayAtMessage)), p.TokenA, p.TokenB)
	}
	return nil
}
