package core

import "testing"

func answersFor(responses ...string) AnswerSet {
	questions := []string{
		"What brings you to our community today?",
		"What does devotion mean to you personally?",
		"Describe a moment when you felt genuinely peaceful.",
		"What would you like to learn during your time here?",
	}
	set := make(AnswerSet, 0, len(responses))
	for i, r := range responses {
		set = append(set, Answer{
			QuestionID: questions[i%len(questions)][:2],
			Question:   questions[i%len(questions)],
			Response:   r,
		})
	}
	return set
}

func TestHeuristicScoreBounds(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	inputs := []AnswerSet{
		answersFor("", "", "", ""),
		answersFor("ok", "ok", "ok", "ok"),
		answersFor("this is a cult full of nonsense", "prove it", "i am god", "i am enlightened"),
		answersFor(
			"I want to learn about Krishna and devotional service",
			"Chanting brings me peace and humility",
			"Reading Prabhupada's books on my spiritual journey",
			"I hope to grow in bhakti with the devotees",
		),
	}
	for i, answers := range inputs {
		for suspicion := 0; suspicion <= 4; suspicion++ {
			got := scorer.Score(answers, SuspicionResult{Score: suspicion})
			if got.Score < 0 || got.Score > 10 {
				t.Errorf("input %d suspicion %d: score %d outside [0,10]", i, suspicion, got.Score)
			}
		}
	}
}

func TestHeuristicDeterministic(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	answers := answersFor("I want to learn about devotion", "ok", "peace", "nothing much")
	first := scorer.Score(answers, SuspicionResult{Score: 2})
	second := scorer.Score(answers, SuspicionResult{Score: 2})
	if first.Score != second.Score || first.Tier != second.Tier {
		t.Errorf("same input scored differently: %+v vs %+v", first, second)
	}
}

func TestHeuristicLowEffortAnswers(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	got := scorer.Score(answersFor("ok", "ok", "ok", "ok"), SuspicionResult{Score: 0})

	// Four low-effort answers, penalty capped at 2: 5 - 2 = 3.
	if got.Score != 3 {
		t.Errorf("all-minimal answers scored %d, want 3", got.Score)
	}
	if got.Tier != TierBorderline {
		t.Errorf("score 3 at suspicion 0 classified %s, want borderline", got.Tier)
	}
}

func TestHeuristicDevotionalAnswers(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	answers := answersFor(
		"I want to learn more about Krishna and grow in devotional service",
		"Chanting the holy names fills me with peace and humility",
		"Visiting the temple with devotees on my spiritual journey",
		"Reading Srila Prabhupada's books taught me the mood of surrender",
	)
	got := scorer.Score(answers, SuspicionResult{Score: 0})
	if got.Score < 8 {
		t.Errorf("devotional answers scored %d, want >= 8", got.Score)
	}
	if got.Tier != TierClear {
		t.Errorf("devotional answers classified %s, want clear", got.Tier)
	}
}

func TestHeuristicMockeryAndImpersonalism(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)

	tests := []struct {
		name     string
		answers  AnswerSet
		maxScore int
	}{
		{
			name:     "mockery",
			answers:  answersFor("this looks like a cult to me", "total nonsense honestly", "whatever", "no thanks"),
			maxScore: 2,
		},
		{
			name:     "impersonalism",
			answers:  answersFor("we are all god anyway", "all paths equal in the end", "one consciousness", "nothing more"),
			maxScore: 3,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scorer.Score(tc.answers, SuspicionResult{Score: 0})
			if got.Score > tc.maxScore {
				t.Errorf("scored %d, want <= %d", got.Score, tc.maxScore)
			}
		})
	}
}

func TestHeuristicEchoedAnswerPenalty(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	q := "What does devotion mean to you personally?"
	echoed := AnswerSet{
		{QuestionID: "R1", Question: q, Response: q},
		{QuestionID: "R2", Question: "Another question here", Response: "a sincere enough reply about my own life"},
	}
	honest := AnswerSet{
		{QuestionID: "R1", Question: q, Response: "something I cannot easily put into words"},
		{QuestionID: "R2", Question: "Another question here", Response: "a sincere enough reply about my own life"},
	}
	if e, h := scorer.Score(echoed, SuspicionResult{}), scorer.Score(honest, SuspicionResult{}); e.Score >= h.Score {
		t.Errorf("echoed answer scored %d, honest scored %d; echo must score lower", e.Score, h.Score)
	}
}

func TestHeuristicBorderlineBandNarrowsWithSuspicion(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	// Mockery alone lands on exactly 2: clear reject for a clean profile, but
	// a suspicious profile loses the benefit of the doubt and goes borderline.
	answers := answersFor("this is nonsense", "not even interesting", "who cares really", "done with this")

	low := scorer.Score(answers, SuspicionResult{Score: 0})
	if low.Score != 2 || low.Tier != TierClear {
		t.Errorf("suspicion 0: got score %d tier %s, want 2/clear", low.Score, low.Tier)
	}

	high := scorer.Score(answers, SuspicionResult{Score: 4})
	if high.Score != 2 || high.Tier != TierBorderline {
		t.Errorf("suspicion 4: got score %d tier %s, want 2/borderline", high.Score, high.Tier)
	}
}

func TestHeuristicNeutralAnswersAreBorderline(t *testing.T) {
	scorer := NewHeuristicScorer(DefaultBand)
	answers := answersFor(
		"I enjoy quiet evenings and reading books",
		"My friends told me about this place",
		"Mostly curious about the discussions",
		"Not sure yet, just looking around",
	)
	got := scorer.Score(answers, SuspicionResult{Score: 0})
	if got.Tier != TierBorderline {
		t.Errorf("neutral answers classified %s (score %d), want borderline", got.Tier, got.Score)
	}
}
