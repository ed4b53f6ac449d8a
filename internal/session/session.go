package session

import (
	"time"

	"github.com/bhu-goloka/gatekeeper/internal/core"
)

// State tracks where a verification session is in the questioning flow.
type State string

const (
	StateStarted               State = "started"
	StateAwaitingEntry         State = "awaiting_entry"
	StateAwaitingReflective1   State = "awaiting_reflective_1"
	StateAwaitingReflective2   State = "awaiting_reflective_2"
	StateAwaitingPsychological State = "awaiting_psychological"
	StateScoring               State = "scoring"
	StateCompleted             State = "completed"
	StateAbandoned             State = "abandoned"
)

// answerStates maps the index of the question currently awaiting an answer to
// the session state. One entry question, two reflective, one psychological.
var answerStates = []State{
	StateAwaitingEntry,
	StateAwaitingReflective1,
	StateAwaitingReflective2,
	StateAwaitingPsychological,
}

// Session is the per-user verification flow. All mutation happens through the
// Manager, which serializes access per user.
type Session struct {
	ID        string
	UserID    string
	Profile   core.ProfileSnapshot
	Suspicion core.SuspicionResult

	// Questions is the set selected from the pool snapshot active at session
	// start; reloads after that point do not affect it.
	Questions   []core.Question
	PoolVersion int

	Answers core.AnswerSet
	State   State
	Result  *core.ScoreResult
	Role    core.RoleDecision

	StartedAt time.Time

	timer *time.Timer
}

// Terminal reports whether the session has reached a final state.
func (s *Session) Terminal() bool {
	return s.State == StateCompleted || s.State == StateAbandoned
}

// currentQuestion returns the question awaiting an answer, if any.
func (s *Session) currentQuestion() (core.Question, int, bool) {
	idx := len(s.Answers)
	if idx >= len(s.Questions) {
		return core.Question{}, 0, false
	}
	return s.Questions[idx], idx, true
}
