package aria

import "context"

// accumulate implements §4.3 Token Statistics Accumulator. It mutates the
// stats map in place (one entry per distinct token in tokens), appends a
// position sample per occurrence, and adds this message's totals to the
// global stats; it returns only an error. The "adjacent to stable" and
// bridge signals use a stableSet built from the categories snapshot the
// caller took before this message's mutations, per spec.md step 2.
func (e *Engine) accumulate(ctx context.Context, tokens []string, messageIndex uint64, standalone bool, stats map[string]*TokenStat, categories map[string]Category) error {
	n := len(tokens)

	stableSet := make(map[string]bool, len(categories))
	for tok, cat := range categories {
		if cat == CategoryStable {
			stableSet[tok] = true
		}
	}

	// adjSet accumulates, per token, the set of distinct tokens seen in its
	// +/-2 window across all occurrences in this message (for the
	// monotonic unique_adjacency_count high-water mark).
	adjSet := make(map[string]map[string]bool)

	touchedContext := make(map[string]bool, len(stats))
	touchedStandalone := make(map[string]bool, len(stats))
	touchedBridge := make(map[string]bool, len(stats))
	touchedTemporal := make(map[string]bool, len(stats))
	touchedAdjStable := make(map[string]bool, len(stats))
	touchedContrast := make(map[string]bool, len(stats))

	window := e.tuning.AdjacencyWindow

	for i := 0; i < n; i++ {
		tok := tokens[i]
		s := stats[tok]
		if s == nil {
			s = &TokenStat{Token: tok, Category: CategoryUnclassified}
			stats[tok] = s
		}

		if err := e.store.AppendTokenPosition(ctx, tok, uint32(i), messageIndex); err != nil {
			return BackendError("accumulate.append_position", err)
		}

		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > n-1 {
			hi = n - 1
		}

		set := adjSet[tok]
		if set == nil {
			set = make(map[string]bool)
			adjSet[tok] = set
		}

		hasStableNeighbor := false
		hasTemporalNeighbor := false
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			neighbor := tokens[j]
			set[neighbor] = true
			if stableSet[neighbor] {
				hasStableNeighbor = true
			}
			if TemporalMarkers[neighbor] {
				hasTemporalNeighbor = true
			}
		}

		// total_occurrences: +1 for every occurrence, uncapped.
		s.TotalOccurrences++

		// context_count: +1 iff last_message_index != messageIndex, at most
		// once per (token, messageIndex).
		if !touchedContext[tok] {
			if s.LastMessageIndex != messageIndex {
				s.ContextCount++
			}
			touchedContext[tok] = true
		}

		// bridge_count: +1 for every interior occurrence where both
		// neighbors are in stableSet.
		if i > 0 && i < n-1 && stableSet[tokens[i-1]] && stableSet[tokens[i+1]] {
			s.BridgeCount++
			touchedBridge[tok] = true
		}

		// temporal_adj_count: +1 if any neighbor is a temporal marker, at
		// most once per message.
		if hasTemporalNeighbor && !touchedTemporal[tok] {
			s.TemporalAdjCount++
			touchedTemporal[tok] = true
		}

		// adjacent_to_stable: +1 if any neighbor is in stableSet, at most
		// once per message.
		if hasStableNeighbor && !touchedAdjStable[tok] {
			s.AdjacentToStable++
			touchedAdjStable[tok] = true
		}

		// contrast_pair_count: +1 if tok has a known contrast partner and
		// that partner is present anywhere in this message's token set, at
		// most once per message.
		if !touchedContrast[tok] {
			if partner, ok := ContrastPartner[tok]; ok {
				if _, present := stats[partner]; present {
					s.ContrastPairCount++
					touchedContrast[tok] = true
				}
			}
		}

		// standalone_count: +1 if the whole message was standalone, at most
		// once per message.
		if standalone && !touchedStandalone[tok] {
			s.StandaloneCount++
			touchedStandalone[tok] = true
		}
	}

	// unique_adjacency_count: monotonic high-water mark over this message's
	// adjacency sets.
	for tok, set := range adjSet {
		s := stats[tok]
		if uint64(len(set)) > s.UniqueAdjacencyCount {
			s.UniqueAdjacencyCount = uint64(len(set))
		}
	}

	for tok := range stats {
		stats[tok].LastMessageIndex = messageIndex
	}

	var newMax *float64
	delta := GlobalStatsDelta{
		Contexts:   1,
		AdjWindows: uint64(maxInt(0, n-1)),
		TokensSeen: uint64(n),
		NewMaxVar:  newMax,
	}
	if err := e.store.UpdateGlobalStats(ctx, delta); err != nil {
		return BackendError("accumulate.update_global_stats", err)
	}

	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
