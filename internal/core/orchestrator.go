package core

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Orchestrator composes the two scoring stages: the local heuristic always
// runs; the external AI stage runs only for borderline results, gated by the
// assist cache and the daily usage limiter. The AI verdict, when obtained,
// takes precedence over the heuristic score.
type Orchestrator struct {
	heuristic *HeuristicScorer
	cache     *AssistCache
	limiter   *UsageLimiter

	mu        sync.RWMutex
	evaluator ResponseEvaluator // nil when no AI credential is configured
}

func NewOrchestrator(h *HeuristicScorer, eval ResponseEvaluator, cache *AssistCache, limiter *UsageLimiter) *Orchestrator {
	return &Orchestrator{heuristic: h, evaluator: eval, cache: cache, limiter: limiter}
}

// SetEvaluator swaps the AI stage at runtime. Used by the credential reload
// command; a nil evaluator disables escalation.
func (o *Orchestrator) SetEvaluator(eval ResponseEvaluator) {
	o.mu.Lock()
	o.evaluator = eval
	o.mu.Unlock()
}

func (o *Orchestrator) currentEvaluator() ResponseEvaluator {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.evaluator
}

// ScoreResponses produces the final verification score for a completed answer
// set. AI escalation happens only when the heuristic classified the case
// borderline, the cache has no entry for the input, and today's ceiling has
// not been reached. AI failure is never fatal: the heuristic score stands and
// the result is marked non-AI-assisted.
func (o *Orchestrator) ScoreResponses(ctx context.Context, answers AnswerSet, suspicion SuspicionResult) ScoreResult {
	local := o.heuristic.Score(answers, suspicion)
	result := ScoreResult{
		Score:      local.Score,
		Reasons:    local.Reasons,
		Tier:       local.Tier,
		AIAssisted: false,
	}

	evaluator := o.currentEvaluator()
	if local.Tier != TierBorderline || evaluator == nil {
		return result
	}

	key := answersCacheKey(answers)
	if cached, ok := o.cache.Get(key); ok {
		log.Printf("Using cached AI verdict for borderline case (heuristic %d -> %d)", local.Score, cached.Score)
		cached.Reasons = append(append([]string{}, local.Reasons...), cached.Reasons...)
		cached.Tier = TierBorderline
		return cached
	}

	if !o.limiter.Allow() {
		calls, limit := o.limiter.Usage()
		log.Printf("Daily AI limit reached (%d/%d) - keeping heuristic score", calls, limit)
		return result
	}

	verdict, err := evaluator.EvaluateResponses(ctx, answers, suspicion.Score)
	if err != nil {
		if errors.Is(err, ErrExternalService) {
			log.Printf("AI evaluation failed, degrading to heuristic score %d: %v", local.Score, err)
		} else {
			log.Printf("Unexpected AI evaluation error: %v", err)
		}
		return result
	}

	o.limiter.Record()

	refined := ScoreResult{
		Score:      verdict.Score,
		Reasons:    []string{"refined by AI evaluation"},
		Tier:       TierBorderline,
		AIAssisted: true,
		Reasoning:  verdict.Reasoning,
	}
	// Stored fragment carries only the AI contribution; heuristic reasons are
	// recomputed per request and prepended on the way out.
	o.cache.Put(key, refined)

	out := refined
	out.Reasons = append(append([]string{}, local.Reasons...), refined.Reasons...)
	log.Printf("AI refined borderline score: %d -> %d", local.Score, verdict.Score)
	return out
}

// ScoreProfile runs the profile suspicion stage. Exposed on the orchestrator
// so callers hold one scoring entry point.
func (o *Orchestrator) ScoreProfile(p ProfileSnapshot, scorer *SuspicionScorer) SuspicionResult {
	return scorer.Score(p)
}

// OrchestratorStats is a live snapshot of the shared scoring state, surfaced
// by the status endpoint.
type OrchestratorStats struct {
	AICallsToday int    `json:"ai_calls_today"`
	AIDailyLimit int    `json:"ai_daily_limit"`
	CacheSize    int    `json:"cache_size"`
	CacheHits    uint64 `json:"cache_hits"`
	CacheMisses  uint64 `json:"cache_misses"`
	AIConfigured bool   `json:"ai_configured"`
}

func (o *Orchestrator) Stats() OrchestratorStats {
	calls, limit := o.limiter.Usage()
	size, hits, misses := o.cache.Stats()
	return OrchestratorStats{
		AICallsToday: calls,
		AIDailyLimit: limit,
		CacheSize:    size,
		CacheHits:    hits,
		CacheMisses:  misses,
		AIConfigured: o.currentEvaluator() != nil,
	}
}

func answersCacheKey(answers AnswerSet) string {
	parts := make([]string, 0, len(answers)*2)
	for _, a := range answers {
		parts = append(parts, a.Question, a.Response)
	}
	return CacheKey(parts...)
}
