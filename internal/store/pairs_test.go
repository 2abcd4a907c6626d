package store

import (
	"context"
	"testing"

	"github.com/lazypower/aria/internal/aria"
)

func newTestPair(key, a, b string) *aria.Pair {
	return &aria.Pair{
		PatternKey:           key,
		TokenA:                a,
		TokenB:                b,
		Frequency:             1,
		Strength:              0.02,
		CategoryPattern:       "unclassified->unclassified",
		ReinforcementCount:    1,
		Tier:                  aria.TierShort,
		DecayAtMessage:        50,
		LastSeenMessageIndex:  1,
	}
}

func TestInsertPairAndGetPair(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	p := newTestPair("is_weather", "is", "weather")
	result, err := db.InsertPair(ctx, p)
	if err != nil {
		t.Fatalf("InsertPair: %v", err)
	}
	if result != aria.InsertCreated {
		t.Errorf("InsertPair result = %v, want Created", result)
	}

	got, err := db.GetPair(ctx, "is_weather")
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if got == nil || got.Strength != 0.02 || got.Tier != aria.TierShort {
		t.Errorf("GetPair = %+v", got)
	}
}

func TestInsertPairConflict(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	p := newTestPair("is_weather", "is", "weather")
	if _, err := db.InsertPair(ctx, p); err != nil {
		t.Fatalf("InsertPair (first): %v", err)
	}

	result, err := db.InsertPair(ctx, p)
	if err != nil {
		t.Fatalf("InsertPair (second): %v", err)
	}
	if result != aria.InsertConflict {
		t.Errorf("InsertPair result = %v, want Conflict", result)
	}
}

func TestUpdatePairMutates(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	p := newTestPair("is_weather", "is", "weather")
	if _, err := db.InsertPair(ctx, p); err != nil {
		t.Fatalf("InsertPair: %v", err)
	}

	err = db.UpdatePair(ctx, "is_weather", func(p *aria.Pair) {
		p.Strength = 0.04
		p.Frequency++
	})
	if err != nil {
		t.Fatalf("UpdatePair: %v", err)
	}

	got, err := db.GetPair(ctx, "is_weather")
	if err != nil {
		t.Fatalf("GetPair: %v", err)
	}
	if got.Strength != 0.04 || got.Frequency != 2 {
		t.Errorf("UpdatePair result = %+v, want strength=0.04 frequency=2", got)
	}
}

func TestSearchPairsByWordExcludesDecay(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	live := newTestPair("is_weather", "is", "weather")
	live.Strength = 0.5
	live.Tier = aria.TierMedium
	db.InsertPair(ctx, live)

	dead := newTestPair("beautiful_weather", "beautiful", "weather")
	dead.Tier = aria.TierDecay
	dead.Strength = 0.001
	db.InsertPair(ctx, dead)

	results, err := db.SearchPairsByWord(ctx, "weather")
	if err != nil {
		t.Fatalf("SearchPairsByWord: %v", err)
	}
	if len(results) != 1 || results[0].PatternKey != "is_weather" {
		t.Errorf("SearchPairsByWord = %+v, want only the live pair", results)
	}
}

func TestTopPairsFilterByTier(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	short := newTestPair("a_b", "a", "b")
	db.InsertPair(ctx, short)

	long := newTestPair("c_d", "c", "d")
	long.Tier = aria.TierLong
	long.Strength = 0.9
	db.InsertPair(ctx, long)

	all, err := db.TopPairs(ctx, 10, nil)
	if err != nil {
		t.Fatalf("TopPairs: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("TopPairs(all) = %d pairs, want 2", len(all))
	}
	if all[0].PatternKey != "c_d" {
		t.Errorf("TopPairs(all)[0] = %q, want highest strength first (c_d)", all[0].PatternKey)
	}

	tier := aria.TierLong
	onlyLong, err := db.TopPairs(ctx, 10, &tier)
	if err != nil {
		t.Fatalf("TopPairs(long): %v", err)
	}
	if len(onlyLong) != 1 || onlyLong[0].PatternKey != "c_d" {
		t.Errorf("TopPairs(long) = %+v, want only c_d", onlyLong)
	}
}

func TestPairsDueForDecay(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	due := newTestPair("a_b", "a", "b")
	due.DecayAtMessage = 10
	db.InsertPair(ctx, due)

	notDue := newTestPair("c_d", "c", "d")
	notDue.DecayAtMessage = 1000
	db.InsertPair(ctx, notDue)

	results, err := db.PairsDueForDecay(ctx, 10)
	if err != nil {
		t.Fatalf("PairsDueForDecay: %v", err)
	}
	if len(results) != 1 || results[0].PatternKey != "a_b" {
		t.Errorf("PairsDueForDecay = %+v, want only a_b", results)
	}
}

func TestMovePairTierAndCount(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	p := newTestPair("a_b", "a", "b")
	db.InsertPair(ctx, p)

	if err := db.MovePairTier(ctx, "a_b", aria.TierDecay); err != nil {
		t.Fatalf("MovePairTier: %v", err)
	}

	count, err := db.CountPairsByTier(ctx, aria.TierDecay)
	if err != nil {
		t.Fatalf("CountPairsByTier: %v", err)
	}
	if count != 1 {
		t.Errorf("CountPairsByTier(decay) = %d, want 1", count)
	}
}
