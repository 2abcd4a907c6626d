package store

import (
	"context"
	"testing"

	"github.com/lazypower/aria/internal/aria"
)

func TestUpdateGlobalStatsAdditive(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.UpdateGlobalStats(ctx, aria.GlobalStatsDelta{Contexts: 1, AdjWindows: 4, TokensSeen: 5}); err != nil {
		t.Fatalf("UpdateGlobalStats: %v", err)
	}

	g, err := db.GetGlobalStats(ctx)
	if err != nil {
		t.Fatalf("GetGlobalStats: %v", err)
	}
	if g.TotalContextsSeen != 2 || g.TotalAdjWindows != 5 || g.TotalTokensSeen != 6 {
		t.Errorf("GetGlobalStats = %+v, want contexts=2 adj=5 tokens=6", g)
	}
}

func TestUpdateGlobalStatsMaxVariance(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	lower := 0.5
	if err := db.UpdateGlobalStats(ctx, aria.GlobalStatsDelta{NewMaxVar: &lower}); err != nil {
		t.Fatalf("UpdateGlobalStats (lower): %v", err)
	}
	g, _ := db.GetGlobalStats(ctx)
	if g.MaxPositionalVariance != 1 {
		t.Errorf("MaxPositionalVariance = %v after a lower candidate, want unchanged 1", g.MaxPositionalVariance)
	}

	higher := 3.5
	if err := db.UpdateGlobalStats(ctx, aria.GlobalStatsDelta{NewMaxVar: &higher}); err != nil {
		t.Fatalf("UpdateGlobalStats (higher): %v", err)
	}
	g, _ = db.GetGlobalStats(ctx)
	if g.MaxPositionalVariance != 3.5 {
		t.Errorf("MaxPositionalVariance = %v, want 3.5", g.MaxPositionalVariance)
	}
}

func TestUpdateGlobalStatsAgingLastRunAt(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.UpdateGlobalStats(ctx, aria.GlobalStatsDelta{Contexts: 1}); err != nil {
		t.Fatalf("UpdateGlobalStats: %v", err)
	}
	g, _ := db.GetGlobalStats(ctx)
	if g.AgingLastRunAt != 0 {
		t.Errorf("AgingLastRunAt = %d after an unrelated update, want unchanged 0", g.AgingLastRunAt)
	}

	now := int64(123456)
	if err := db.UpdateGlobalStats(ctx, aria.GlobalStatsDelta{NewAgingLastRunAt: &now}); err != nil {
		t.Fatalf("UpdateGlobalStats (aging): %v", err)
	}
	g, _ = db.GetGlobalStats(ctx)
	if g.AgingLastRunAt != now {
		t.Errorf("AgingLastRunAt = %d, want %d", g.AgingLastRunAt, now)
	}
}
