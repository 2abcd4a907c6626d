package aria

import (
	"context"
	"strings"
	"testing"
)

func TestPostprocessDropsConsecutiveDuplicatesAndLowercases(t *testing.T) {
	got := postprocess([]string{"The", "the", "Quick", "fox"}, 150)
	if got != "the quick fox" {
		t.Fatalf("postprocess() = %q, want %q", got, "the quick fox")
	}
}

func TestPostprocessTruncatesAtWordBoundary(t *testing.T) {
	words := []string{"one", "two", "three", "four", "five", "six", "seven"}
	got := postprocess(words, 15)
	if len(got) > 15 {
		t.Fatalf("postprocess() length %d exceeds maxChars 15: %q", len(got), got)
	}
	if strings.HasSuffix(got, " ") {
		t.Fatalf("postprocess() = %q, should not end with trailing space", got)
	}
}

func TestPostprocessEmptyInput(t *testing.T) {
	if got := postprocess(nil, 150); got != "" {
		t.Fatalf("postprocess(nil) = %q, want empty", got)
	}
	if got := postprocess([]string{"  ", ""}, 150); got != "" {
		t.Fatalf("postprocess(blank words) = %q, want empty", got)
	}
}

func TestDiscoverChainsWalksAdjacentPairs(t *testing.T) {
	e, fs := newTestEngine()
	mustInsertPair(fs, "sun", "moon", 0.5, TierLong)
	mustInsertPair(fs, "moon", "star", 0.4, TierLong)

	chains, err := e.discoverChains(context.Background(), "sun")
	if err != nil {
		t.Fatalf("discoverChains: %v", err)
	}
	if len(chains) == 0 {
		t.Fatal("expected at least one chain from sun")
	}

	var found3 bool
	for _, c := range chains {
		if len(c.Tokens) == 3 && c.Tokens[0] == "sun" && c.Tokens[1] == "moon" && c.Tokens[2] == "star" {
			found3 = true
		}
	}
	if !found3 {
		t.Fatalf("expected chain [sun moon star] among %v", chains)
	}
}

func TestDiscoverChainsNeverRevisitsATokenWithinAChain(t *testing.T) {
	e, fs := newTestEngine()
	mustInsertPair(fs, "a", "b", 0.9, TierLong)
	mustInsertPair(fs, "b", "a", 0.9, TierLong) // same pattern key, overwritten

	chains, err := e.discoverChains(context.Background(), "a")
	if err != nil {
		t.Fatalf("discoverChains: %v", err)
	}
	for _, c := range chains {
		seen := make(map[string]bool)
		for _, tok := range c.Tokens {
			if seen[tok] {
				t.Fatalf("chain %v revisits token %q", c.Tokens, tok)
			}
			seen[tok] = true
		}
	}
}

func TestBuildPairGraphFiltersBelowStrengthThreshold(t *testing.T) {
	e, fs := newTestEngine()
	mustInsertPair(fs, "weak", "link", 0.001, TierShort) // below default threshold 0.01
	mustInsertPair(fs, "strong", "link", 0.5, TierLong)

	graph, err := e.buildPairGraph(context.Background(), []string{"weak", "strong", "link"}, 100)
	if err != nil {
		t.Fatalf("buildPairGraph: %v", err)
	}

	if _, ok := graph["weak"]; ok {
		t.Fatal("expected weak<->link edge to be filtered out by strength threshold entirely")
	}
	if n, ok := graph["strong"]; !ok || len(n.edges) == 0 {
		t.Fatal("expected strong<->link edge to survive the strength threshold")
	}
}

func TestBuildPairGraphExcludesDecayTierFromGlobalTopPairs(t *testing.T) {
	e, fs := newTestEngine()
	mustInsertPair(fs, "gone", "away", 0.5, TierDecay)

	graph, err := e.buildPairGraph(context.Background(), nil, 100)
	if err != nil {
		t.Fatalf("buildPairGraph: %v", err)
	}
	if _, ok := graph["gone"]; ok {
		t.Fatal("decay-tier pairs should not contribute to the global top-pairs graph source")
	}
}

func TestPickNextNodeRespectsThresholdAndVisited(t *testing.T) {
	e, _ := newTestEngine()
	graph := map[string]*graphNode{
		"hub": {
			token:    "hub",
			category: CategoryUnclassified,
			edges: []graphEdge{
				{token: "strong", weight: 0.9},
				{token: "weak", weight: 0.001},
			},
		},
		"strong": {token: "strong", category: CategoryUnclassified},
	}
	visited := map[string]bool{"hub": true}

	for i := 0; i < 20; i++ {
		next, ok := e.pickNextNode(graph, "hub", visited)
		if !ok {
			t.Fatal("expected a candidate above the strength threshold")
		}
		if next != "strong" {
			t.Fatalf("pickNextNode() = %q, want %q (only candidate above threshold)", next, "strong")
		}
	}

	visited["strong"] = true
	if _, ok := e.pickNextNode(graph, "hub", visited); ok {
		t.Fatal("expected no candidate once the only viable neighbor is visited")
	}
}

func TestPickNextNodeUnknownNodeReturnsFalse(t *testing.T) {
	e, _ := newTestEngine()
	if _, ok := e.pickNextNode(map[string]*graphNode{}, "nowhere", map[string]bool{}); ok {
		t.Fatal("expected ok=false for a node absent from the graph")
	}
}

func TestGenerateNeverErrorsAndFallsBackToEllipsis(t *testing.T) {
	e, _ := newTestEngine()
	out := e.GenerateResponse(context.Background(), "completely unseen vocabulary here", 150)
	if out == "" {
		t.Fatal("GenerateResponse() returned empty string, want at least \"...\"")
	}
}

func TestGenerateResponseZeroMaxLengthFallsBackToDefault(t *testing.T) {
	e, _ := newTestEngine()
	// maxLength <= 0 should fall back to the tuning default rather than
	// truncating everything to an empty string.
	out := e.GenerateResponse(context.Background(), "completely unseen vocabulary here", 0)
	if out == "" {
		t.Fatal("GenerateResponse() returned empty string, want at least \"...\"")
	}
}

func TestGenerateResponseRespectsMaxLength(t *testing.T) {
	e, fs := newTestEngine()
	mustInsertPair(fs, "sun", "moon", 0.5, TierLong)
	mustInsertPair(fs, "moon", "star", 0.4, TierLong)
	mustInsertPair(fs, "star", "sky", 0.3, TierLong)

	out := e.GenerateResponse(context.Background(), "sun", 10)
	if len(out) > 10 {
		t.Fatalf("GenerateResponse() = %q (len %d), exceeds maxLength 10", out, len(out))
	}
}

func mustInsertPair(fs *fakeStore, a, b string, strength float64, tier Tier) {
	key, tokA, tokB := PatternKeyOf(a, b)
	fs.pairs[key] = &Pair{
		PatternKey: key, TokenA: tokA, TokenB: tokB,
		Strength: strength, Tier: tier, Frequency: 1,
	}
}
