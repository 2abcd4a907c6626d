package aria

import (
	"context"
	"math/rand"
	"sort"
	"strings"
)

// graphEdge is one weighted, undirected connection out of a graph node.
type graphEdge struct {
	token  string
	weight float64
}

// graphNode is one token's view of the pair graph built for a query:
// its current category and its edges, sorted by weight descending.
type graphNode struct {
	token    string
	category Category
	edges    []graphEdge
}

// generate runs the §4.7 generator pipeline: G1 emergent phrases, then G2
// graph walk, then G3 category composition, then G4 raw-pair fallback,
// each accepted only if its output reaches min_words. The first stage to
// produce an acceptable output wins; its result is postprocessed to at
// most maxChars and returned.
func (e *Engine) generate(ctx context.Context, seed string, maxChars int) (string, error) {
	gen := e.tuning.Generator
	keywords := dedupeOrder(Tokenize(seed))

	if words, err := e.generateEmergentPhrase(ctx, keywords); err != nil {
		return "", err
	} else if len(words) >= gen.MinWords {
		return postprocess(words, maxChars), nil
	}

	if words, err := e.generateGraphWalk(ctx, keywords); err != nil {
		return "", err
	} else if len(words) >= gen.MinWords {
		return postprocess(words, maxChars), nil
	}

	if words, err := e.generateCategoryComposition(ctx, keywords); err != nil {
		return "", err
	} else if len(words) >= gen.MinWords {
		return postprocess(words, maxChars), nil
	}

	words, err := e.generateRawPairFallback(ctx, keywords)
	if err != nil {
		return "", err
	}
	return postprocess(words, maxChars), nil
}

// --- G1. Emergent phrase discovery -----------------------------------

// generateEmergentPhrase depth-first walks the pair graph from up to the
// first 5 input keywords, collecting chains of length 2..5 weighted by
// 1/len, then concatenates the top non-overlapping chains until
// max_words is reached.
func (e *Engine) generateEmergentPhrase(ctx context.Context, keywords []string) ([]string, error) {
	limit := minInt(5, len(keywords))
	var chains []Chain

	for _, kw := range keywords[:limit] {
		found, err := e.discoverChains(ctx, kw)
		if err != nil {
			return nil, err
		}
		chains = append(chains, found...)
	}

	if len(chains) == 0 {
		return nil, nil
	}

	sort.SliceStable(chains, func(i, j int) bool { return chains[i].Weight > chains[j].Weight })

	gen := e.tuning.Generator
	used := make(map[string]bool)
	var out []string

	for _, c := range chains {
		if len(out) >= gen.MaxWords {
			break
		}
		overlap := 0
		for _, tok := range c.Tokens {
			if used[tok] {
				overlap++
			}
		}
		if len(c.Tokens) > 0 && float64(overlap)/float64(len(c.Tokens)) > 0.5 {
			continue
		}
		for _, tok := range c.Tokens {
			if len(out) >= gen.MaxWords {
				break
			}
			out = append(out, tok)
			used[tok] = true
		}
	}

	return out, nil
}

// discoverChains performs the DFS described in G1 from a single seed
// token: visit each token at most once per chain, take up to 5 outgoing
// edges per node, collect every chain of length 2..5.
func (e *Engine) discoverChains(ctx context.Context, start string) ([]Chain, error) {
	const maxChainLen = 5
	const maxEdgesPerNode = 5

	edgeCache := make(map[string][]Pair)
	fetchEdges := func(tok string) ([]Pair, error) {
		if edges, ok := edgeCache[tok]; ok {
			return edges, nil
		}
		edges, err := e.store.SearchPairsByWord(ctx, tok)
		if err != nil {
			return nil, BackendError("generate.g1.search_pairs", err)
		}
		if len(edges) > maxEdgesPerNode {
			edges = edges[:maxEdgesPerNode]
		}
		edgeCache[tok] = edges
		return edges, nil
	}

	var chains []Chain
	var walk func(path []string, visited map[string]bool) error
	walk = func(path []string, visited map[string]bool) error {
		if len(path) >= 2 {
			chains = append(chains, Chain{
				Tokens: append([]string{}, path...),
				Weight: 1.0 / float64(len(path)),
			})
		}
		if len(path) >= maxChainLen {
			return nil
		}

		last := path[len(path)-1]
		edges, err := fetchEdges(last)
		if err != nil {
			return err
		}
		for _, p := range edges {
			next := p.TokenA
			if next == last {
				next = p.TokenB
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if err := walk(append(path, next), visited); err != nil {
				return err
			}
			delete(visited, next)
		}
		return nil
	}

	if err := walk([]string{start}, map[string]bool{start: true}); err != nil {
		return nil, err
	}
	return chains, nil
}

// --- G2. Graph walk ----------------------------------------------------

// generateGraphWalk implements the weighted undirected walk over a graph
// built from keyword pairs plus the top 100 global pairs.
func (e *Engine) generateGraphWalk(ctx context.Context, keywords []string) ([]string, error) {
	gen := e.tuning.Generator
	graph, err := e.buildPairGraph(ctx, keywords, 100)
	if err != nil {
		return nil, err
	}
	if len(graph) == 0 {
		return nil, nil
	}

	start := e.chooseStartNode(graph, keywords)
	if start == "" {
		return nil, nil
	}

	visited := map[string]bool{start: true}
	path := []string{start}
	retrySet := map[string]bool{start: true}

	current := start
	for len(path) < gen.MaxWords {
		next, ok := e.pickNextNode(graph, current, visited)
		if ok {
			visited[next] = true
			path = append(path, next)
			current = next
			continue
		}

		if len(path) >= gen.MinWords {
			break
		}

		alt := e.chooseRecoveryNode(graph, keywords, visited, retrySet)
		if alt == "" {
			break
		}
		retrySet[alt] = true
		visited[alt] = true
		path = append(path, alt)
		current = alt
	}

	return path, nil
}

// buildPairGraph collects pairs touching the first 10 keywords (any tier
// except decay) plus the globalLimit top pairs, dedups by pattern key,
// batch-fetches categories for every distinct token, and builds an
// undirected graph with edges filtered to strength >= threshold, sorted
// by weight descending.
func (e *Engine) buildPairGraph(ctx context.Context, keywords []string, globalLimit int) (map[string]*graphNode, error) {
	threshold := e.tuning.Generator.StrengthThreshold

	byKey := make(map[string]Pair)

	limit := minInt(10, len(keywords))
	for _, kw := range keywords[:limit] {
		pairs, err := e.store.SearchPairsByWord(ctx, kw)
		if err != nil {
			return nil, BackendError("generate.g2.search_pairs", err)
		}
		for _, p := range pairs {
			byKey[p.PatternKey] = p
		}
	}

	top, err := e.store.TopPairs(ctx, globalLimit, nil)
	if err != nil {
		return nil, BackendError("generate.g2.top_pairs", err)
	}
	for _, p := range top {
		if p.Tier == TierDecay {
			continue
		}
		byKey[p.PatternKey] = p
	}

	tokenSet := make(map[string]bool)
	for _, p := range byKey {
		tokenSet[p.TokenA] = true
		tokenSet[p.TokenB] = true
	}
	tokens := make([]string, 0, len(tokenSet))
	for tok := range tokenSet {
		tokens = append(tokens, tok)
	}

	categories, err := e.store.GetManyCategories(ctx, tokens)
	if err != nil {
		return nil, BackendError("generate.g2.get_many_categories", err)
	}

	graph := make(map[string]*graphNode, len(tokens))
	nodeOf := func(tok string) *graphNode {
		n, ok := graph[tok]
		if !ok {
			cat := categories[tok]
			if cat == "" {
				cat = CategoryUnclassified
			}
			n = &graphNode{token: tok, category: cat}
			graph[tok] = n
		}
		return n
	}

	for _, p := range byKey {
		if p.Strength < threshold {
			continue
		}
		a, b := nodeOf(p.TokenA), nodeOf(p.TokenB)
		a.edges = append(a.edges, graphEdge{token: b.token, weight: p.Strength})
		b.edges = append(b.edges, graphEdge{token: a.token, weight: p.Strength})
	}

	for _, n := range graph {
		sort.SliceStable(n.edges, func(i, j int) bool { return n.edges[i].weight > n.edges[j].weight })
	}

	return graph, nil
}

// chooseStartNode implements the §4.7 starting-node rule: among keywords
// present in the graph, argmax of
// start_weight[category] * (1 + min(1, degree/10)) * (1 + U(0,0.3));
// else the highest-degree stable node; else the highest-degree node
// overall.
func (e *Engine) chooseStartNode(graph map[string]*graphNode, keywords []string) string {
	startWeights := e.tuning.Generator.StartWeights

	best := ""
	bestScore := -1.0
	for _, kw := range keywords {
		n, ok := graph[kw]
		if !ok {
			continue
		}
		degree := float64(len(n.edges))
		score := startWeights[n.category] * (1 + minFloat(1, degree/10)) * (1 + rand.Float64()*0.3)
		if score > bestScore {
			bestScore = score
			best = n.token
		}
	}
	if best != "" {
		return best
	}

	best, bestDegree := "", -1
	for tok, n := range graph {
		if n.category == CategoryStable && len(n.edges) > bestDegree {
			best, bestDegree = tok, len(n.edges)
		}
	}
	if best != "" {
		return best
	}

	for tok, n := range graph {
		if len(n.edges) > bestDegree {
			best, bestDegree = tok, len(n.edges)
		}
	}
	return best
}

// pickNextNode scores current's unvisited neighbors per §4.7's walk rule
// and picks by index weighting (70/20/10 over the top three), returning
// ok=false when no unvisited neighbor clears the strength threshold.
func (e *Engine) pickNextNode(graph map[string]*graphNode, current string, visited map[string]bool) (string, bool) {
	node, ok := graph[current]
	if !ok {
		return "", false
	}
	transitions := e.tuning.Generator.Transitions[node.category]
	bridges := func(cat Category) bool {
		if node.category == CategoryUnclassified {
			return true
		}
		for _, c := range transitions {
			if c == cat {
				return true
			}
		}
		return false
	}

	threshold := e.tuning.Generator.StrengthThreshold
	randomness := e.tuning.Generator.Randomness

	type candidate struct {
		token string
		score float64
	}
	var candidates []candidate
	for _, edge := range node.edges {
		if visited[edge.token] || edge.weight < threshold {
			continue
		}
		neighbor := graph[edge.token]
		score := edge.weight * (1 + rand.Float64()*randomness)
		if neighbor != nil && bridges(neighbor.category) {
			score *= 1.5
		}
		candidates = append(candidates, candidate{edge.token, score})
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	weights := []float64{0.7, 0.2, 0.1}
	var total float64
	for i := range candidates {
		total += weights[i]
	}
	pick := rand.Float64() * total
	acc := 0.0
	for i, c := range candidates {
		acc += weights[i]
		if pick <= acc {
			return c.token, true
		}
	}
	return candidates[0].token, true
}

// chooseRecoveryNode implements dead-end recovery: another unvisited
// keyword-in-graph, else the highest-degree unvisited stable node, else
// the highest-degree unvisited node overall, excluding anything already
// in retrySet.
func (e *Engine) chooseRecoveryNode(graph map[string]*graphNode, keywords []string, visited, retrySet map[string]bool) string {
	for _, kw := range keywords {
		if visited[kw] || retrySet[kw] {
			continue
		}
		if _, ok := graph[kw]; ok {
			return kw
		}
	}

	best, bestDegree := "", -1
	for tok, n := range graph {
		if visited[tok] || retrySet[tok] || n.category != CategoryStable {
			continue
		}
		if len(n.edges) > bestDegree {
			best, bestDegree = tok, len(n.edges)
		}
	}
	if best != "" {
		return best
	}

	for tok, n := range graph {
		if visited[tok] || retrySet[tok] {
			continue
		}
		if len(n.edges) > bestDegree {
			best, bestDegree = tok, len(n.edges)
		}
	}
	return best
}

// --- G3. Category composition ------------------------------------------

// generateCategoryComposition assembles a short phrase around a stable
// base token: [modifier?] b [modifier?] [structural?] [transition?].
func (e *Engine) generateCategoryComposition(ctx context.Context, keywords []string) ([]string, error) {
	stable, err := e.store.TokensByCategory(ctx, CategoryStable, 50)
	if err != nil {
		return nil, BackendError("generate.g3.tokens_by_category", err)
	}
	if len(stable) == 0 {
		return nil, nil
	}

	keywordSet := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		keywordSet[kw] = true
	}
	sort.SliceStable(stable, func(i, j int) bool {
		iOverlap, jOverlap := keywordSet[stable[i].Token], keywordSet[stable[j].Token]
		if iOverlap != jOverlap {
			return iOverlap
		}
		return stable[i].Token < stable[j].Token
	})
	if len(stable) > 5 {
		stable = stable[:5]
	}
	base := stable[0].Token

	pairs, err := e.store.SearchPairsByWord(ctx, base)
	if err != nil {
		return nil, BackendError("generate.g3.search_pairs", err)
	}

	others := make([]string, 0, len(pairs))
	for _, p := range pairs {
		other := p.TokenA
		if other == base {
			other = p.TokenB
		}
		others = append(others, other)
	}
	categories, err := e.store.GetManyCategories(ctx, others)
	if err != nil {
		return nil, BackendError("generate.g3.get_many_categories", err)
	}

	var modifier, structural, transition string
	for _, p := range pairs {
		other := p.TokenA
		if other == base {
			other = p.TokenB
		}
		cat := categories[other]
		switch cat {
		case CategoryModifier:
			if modifier == "" {
				modifier = other
			}
		case CategoryStructural:
			if structural == "" {
				structural = other
			}
		case CategoryTransition:
			if transition == "" {
				transition = other
			}
		}
	}

	skipModifier := rand.Float64() < 0.30
	reverseModifier := rand.Float64() < 0.30
	insertStructural := rand.Float64() < 0.20

	var out []string
	if modifier != "" && !skipModifier && reverseModifier {
		out = append(out, modifier, base)
	} else {
		out = append(out, base)
		if modifier != "" && !skipModifier {
			out = append(out, modifier)
		}
	}
	if structural != "" && insertStructural {
		out = append(out, structural)
	}
	if transition != "" {
		out = append(out, transition)
	}

	return out, nil
}

// --- G4. Raw-pair fallback ---------------------------------------------

// generateRawPairFallback returns up to 3 top pairs, keyword-relevant
// first, rendered as "a b a b a b".
func (e *Engine) generateRawPairFallback(ctx context.Context, keywords []string) ([]string, error) {
	var pairs []Pair

	for _, kw := range keywords {
		found, err := e.store.SearchPairsByWord(ctx, kw)
		if err != nil {
			return nil, BackendError("generate.g4.search_pairs", err)
		}
		pairs = append(pairs, found...)
		if len(pairs) >= 3 {
			break
		}
	}

	if len(pairs) < 3 {
		global, err := e.store.TopPairs(ctx, 3, nil)
		if err != nil {
			return nil, BackendError("generate.g4.top_pairs", err)
		}
		pairs = append(pairs, global...)
	}

	if len(pairs) > 3 {
		pairs = pairs[:3]
	}

	var out []string
	for _, p := range pairs {
		out = append(out, p.TokenA, p.TokenB)
	}
	return out, nil
}

// --- postprocessing ------------------------------------------------------

// postprocess lowercases, drops consecutive duplicate words, joins with
// single spaces, and truncates to maxChars preferring the last space
// after 70% of the limit.
func postprocess(words []string, maxChars int) string {
	var deduped []string
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if len(deduped) > 0 && deduped[len(deduped)-1] == w {
			continue
		}
		deduped = append(deduped, w)
	}

	joined := strings.Join(deduped, " ")
	if joined == "" {
		return ""
	}
	if len(joined) <= maxChars {
		return joined
	}

	cut := joined[:maxChars]
	minCut := int(float64(maxChars) * 0.7)
	if idx := strings.LastIndex(cut, " "); idx >= minCut {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
