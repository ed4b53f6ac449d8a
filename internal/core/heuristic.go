package core

import "strings"

// Category keyword tables. Kept as data so weights and vocabulary can be tuned
// without touching the scoring logic.
var (
	humilityMarkers = []string{
		"learn", "don't know", "want to understand", "feel peace", "inspired",
		"humble", "humility", "mercy", "guidance", "surrender", "unqualified",
	}
	devotionalMarkers = []string{
		"krishna", "devotion", "devotional", "service", "serve", "chanting",
		"chant", "prayer", "temple", "devotees", "bhakti", "prabhupada",
	}
	seekingMarkers = []string{
		"spiritual", "connection", "divine", "peace", "grow", "journey", "seek",
	}
	impersonalistPhrases = []string{
		"all gods same", "we are all god", "i am god", "i am krishna",
		"we are all krishna", "all paths equal", "one consciousness",
	}
	mockeryMarkers = []string{
		"cult", "fake", "nonsense", "stupid", "bullshit", "cow worship",
		"mythology", "cringe",
	}
	argumentativePhrases = []string{
		"is krishna real though", "why would anyone believe", "prove it",
		"here to argue", "debate me",
	}
	egoPhrases = []string{
		"i am already spiritual", "i don't need", "i am enlightened",
		"transcended religion", "unlike others",
	}
	vulnerabilityMarkers = []string{"lost", "confused", "hurt", "struggling", "difficult"}
	hopeMarkers          = []string{"want", "hope", "help", "learn"}
)

const (
	heuristicBase  = 5
	minAnswerChars = 5
)

// ScoreBand is the tunable clear/borderline classification band. Scores at or
// below the (suspicion-adjusted) low bound, or at or above the high bound, are
// far enough from the role thresholds to trust the heuristic alone.
type ScoreBand struct {
	ClearLow  int
	ClearHigh int
}

// DefaultBand matches the role thresholds: >= 8 is a confident devotee,
// <= 2 a confident rejection.
var DefaultBand = ScoreBand{ClearLow: 2, ClearHigh: 8}

// HeuristicResult is the local, AI-free verification estimate.
type HeuristicResult struct {
	Score   int
	Tier    ScoreTier
	Reasons []string
}

// HeuristicScorer estimates spiritual sincerity from free-text answers using
// weighted keyword categories. Pure and deterministic.
type HeuristicScorer struct {
	band ScoreBand
}

func NewHeuristicScorer(band ScoreBand) *HeuristicScorer {
	if band.ClearHigh <= band.ClearLow {
		band = DefaultBand
	}
	return &HeuristicScorer{band: band}
}

// Score starts from a neutral 5 and applies one bounded delta per category
// over the whole answer set, clamping to [0,10]. Classification widens the
// borderline band as suspicion rises: a suspicious profile gets less benefit
// of the doubt on low scores.
func (h *HeuristicScorer) Score(answers AnswerSet, suspicion SuspicionResult) HeuristicResult {
	score := heuristicBase
	var reasons []string

	joined := make([]string, 0, len(answers))
	for _, a := range answers {
		joined = append(joined, strings.ToLower(NormalizeAnswer(a.Response)))
	}
	all := strings.Join(joined, "\n")

	apply := func(delta int, reason string) {
		score += delta
		reasons = append(reasons, reason)
	}

	if containsAny(all, devotionalMarkers) {
		apply(2, "mentions devotional concepts")
	}
	if containsAny(all, humilityMarkers) {
		apply(2, "shows spiritual humility")
	}
	if containsAny(all, seekingMarkers) {
		apply(1, "genuine seeking language")
	}
	if containsAny(all, vulnerabilityMarkers) && containsAny(all, hopeMarkers) {
		apply(1, "vulnerable but seeking heart")
	}
	if containsAny(all, impersonalistPhrases) {
		apply(-2, "contains impersonalist views")
	}
	if containsAny(all, mockeryMarkers) {
		apply(-3, "mocking or offensive language")
	}
	if containsAny(all, argumentativePhrases) {
		apply(-1, "challenging or testing attitude")
	}
	if containsAny(all, egoPhrases) {
		apply(-1, "spiritual pride")
	}

	if n := countLowEffort(answers); n > 0 {
		penalty := n
		if penalty > 2 {
			penalty = 2
		}
		apply(-penalty, "very short or single-word answers")
	}
	if countEchoed(answers) > 0 {
		apply(-4, "answer copied from the question")
	}

	final := clamp(score, 0, 10)
	return HeuristicResult{
		Score:   final,
		Tier:    h.classify(final, suspicion.Score),
		Reasons: reasons,
	}
}

func (h *HeuristicScorer) classify(score, suspicion int) ScoreTier {
	low := h.band.ClearLow - suspicion/2
	if low < 0 {
		low = 0
	}
	if score <= low || score >= h.band.ClearHigh {
		return TierClear
	}
	return TierBorderline
}

func countLowEffort(answers AnswerSet) int {
	n := 0
	for _, a := range answers {
		cleaned := NormalizeAnswer(a.Response)
		if len(cleaned) < minAnswerChars || len(strings.Fields(cleaned)) == 1 {
			n++
		}
	}
	return n
}

// countEchoed flags answers that were pasted back from the question itself.
func countEchoed(answers AnswerSet) int {
	n := 0
	for _, a := range answers {
		resp := strings.ToLower(strings.TrimSpace(a.Response))
		q := strings.ToLower(strings.TrimSpace(a.Question))
		if len(resp) > 10 && q != "" && (resp == q || strings.Contains(q, resp) || strings.Contains(resp, q)) {
			n++
		}
	}
	return n
}
