package core

import "time"

// ProfileSnapshot captures the account metadata used for suspicion scoring.
// It is built once per verification attempt from the platform's member object
// and never mutated afterwards.
type ProfileSnapshot struct {
	Username       string    `json:"username"`
	AccountCreated time.Time `json:"account_created"`
	HasAvatar      bool      `json:"has_avatar"`
	Subscriber     bool      `json:"subscriber"`
}

// SuspicionResult is the outcome of profile analysis: a 0-4 score plus the
// human-readable reasons that contributed to it, in firing order.
type SuspicionResult struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

// Answer is a single free-text response paired with the question it answers.
type Answer struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Response   string `json:"response"`
}

// AnswerSet holds the ordered responses collected during a session.
type AnswerSet []Answer

// ScoreTier classifies how much the heuristic result can be trusted on its own.
type ScoreTier string

const (
	TierClear      ScoreTier = "clear"
	TierBorderline ScoreTier = "borderline"
)

// ScoreResult is the final verification outcome for a completed answer set.
type ScoreResult struct {
	Score      int       `json:"score"` // 0-10
	Reasons    []string  `json:"reasons"`
	Tier       ScoreTier `json:"tier"`
	AIAssisted bool      `json:"ai_assisted"`
	Reasoning  string    `json:"reasoning,omitempty"` // AI free-text reasoning, when present
}

// RoleDecision is the access tier granted from a final score.
type RoleDecision string

const (
	RoleDevotee RoleDecision = "devotee"
	RoleSeeker  RoleDecision = "seeker"
	RoleNone    RoleDecision = "none"
)

// DecideRole maps a final verification score to a role using the fixed
// thresholds: 8-10 devotee, 5-7 seeker, 0-4 none.
func DecideRole(score int) RoleDecision {
	switch {
	case score >= 8:
		return RoleDevotee
	case score >= 5:
		return RoleSeeker
	default:
		return RoleNone
	}
}
