package aria

import (
	"context"
	"log"
	"strings"
)

// Engine is the core, storage-backed ARIA learning and generation engine.
// It holds no message text in memory between calls — every durable fact
// lives behind the Store.
type Engine struct {
	store  Store
	tuning Tuning
	clock  Clock
}

// New constructs an Engine. tuning should normally start from
// DefaultTuning() with selected overrides applied by internal/config.
func New(store Store, tuning Tuning) *Engine {
	return &Engine{
		store:  store,
		tuning: tuning,
		clock:  systemClock{},
	}
}

// ProcessMessage runs one full message tick through the pipeline:
// tokenize, advance the message counter, accumulate token statistics,
// score categories, reinforce adjacent pairs, and sweep decay. It never
// returns a partially-applied tick: on error, whatever Store writes
// already landed stay landed (§5 does not promise rollback across the
// pipeline), but the returned ProcessReport.Processed is false so callers
// know not to trust the counts. messageID and userID are not persisted by
// the core; messageID is accepted but unused, and a blank text or userID
// is rejected as invalid before the counter advances.
func (e *Engine) ProcessMessage(ctx context.Context, text, messageID, userID string) (ProcessReport, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(userID) == "" {
		return ProcessReport{Processed: false, Reason: "invalid"}, nil
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return ProcessReport{Processed: true, Reason: "no_tokens"}, nil
	}
	standalone := len(tokens) == 1

	messageIndex, err := e.store.NextMessageIndex(ctx)
	if err != nil {
		log.Printf("process: next_message_index: %v", err)
		return ProcessReport{}, BackendError("process.next_message_index", err)
	}

	tokenSet := dedupeOrder(tokens)

	stats := make(map[string]*TokenStat, len(tokenSet))
	for _, tok := range tokenSet {
		existing, err := e.store.GetTokenStat(ctx, tok)
		if err != nil {
			return ProcessReport{}, BackendError("process.get_token_stat", err)
		}
		if existing == nil {
			existing = &TokenStat{Token: tok, Category: CategoryUnclassified}
		}
		stats[tok] = existing
	}

	categories, err := e.store.GetManyCategories(ctx, tokenSet)
	if err != nil {
		return ProcessReport{}, BackendError("process.get_many_categories", err)
	}
	// Tokens seen for the first time this tick have no stored category yet;
	// treat them as unclassified rather than leaving a hole in the map that
	// later lookups would silently zero-value anyway.
	for _, tok := range tokenSet {
		if _, ok := categories[tok]; !ok {
			categories[tok] = CategoryUnclassified
		}
	}

	if err := e.accumulate(ctx, tokens, messageIndex, standalone, stats, categories); err != nil {
		log.Printf("process: accumulate: %v", err)
		return ProcessReport{}, err
	}

	categorized, err := e.score(ctx, tokens, stats)
	if err != nil {
		log.Printf("process: score: %v", err)
		return ProcessReport{}, err
	}

	for _, s := range stats {
		if err := e.store.UpsertTokenStat(ctx, s); err != nil {
			return ProcessReport{}, BackendError("process.upsert_token_stat", err)
		}
		categories[s.Token] = s.Category
	}

	pairResult, err := e.reinforcePairs(ctx, tokens, messageIndex, categories)
	if err != nil {
		log.Printf("process: reinforce_pairs: %v", err)
		return ProcessReport{}, err
	}

	decayResult, err := e.runDecay(ctx, messageIndex)
	if err != nil {
		log.Printf("process: decay: %v", err)
		return ProcessReport{}, err
	}

	return ProcessReport{
		Processed:       true,
		MessageIndex:    messageIndex,
		TokensProcessed: len(tokens),
		Categorized:     categorized,
		NewPairs:        pairResult.NewPairs,
		Reinforced:      pairResult.Reinforced,
		Promoted:        pairResult.Promoted,
		Decayed:         decayResult.Decayed,
		Removed:         decayResult.Removed,
	}, nil
}

// GenerateResponse runs the §4.7 generator pipeline and never surfaces an
// error to the caller — any failure collapses to "...", matching the
// spec's error-handling stance that generation is best-effort. maxLength
// caps the returned string's length in characters (§6's generate_response
// contract); <= 0 falls back to the tuning's default (150).
func (e *Engine) GenerateResponse(ctx context.Context, seed string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = e.tuning.Generator.MaxLengthChars
	}
	out, err := e.generate(ctx, seed, maxLength)
	if err != nil || strings.TrimSpace(out) == "" {
		return "..."
	}
	return out
}
