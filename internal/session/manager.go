package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bhu-goloka/gatekeeper/internal/core"
)

// DefaultAnswerTimeout bounds how long a user may take per question.
const DefaultAnswerTimeout = 30 * time.Minute

// Messenger delivers questions and results to the user over the platform's
// direct-message channel.
type Messenger interface {
	SendWelcome(ctx context.Context, userID string) error
	SendQuestion(ctx context.Context, userID string, q core.Question, num, total int) error
	SendCompletion(ctx context.Context, userID string, role core.RoleDecision, score int) error
}

// RoleAssigner applies the decided access tier on the platform.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID string, role core.RoleDecision) error
}

// Notifier reports verification lifecycle events to the community's
// verification and admin channels.
type Notifier interface {
	VerificationStarted(ctx context.Context, userID string, suspicion core.SuspicionResult) error
	VerificationCompleted(ctx context.Context, userID string, result core.ScoreResult, role core.RoleDecision) error
	ManualReviewNeeded(ctx context.Context, userID string, result core.ScoreResult) error
	SessionAbandoned(ctx context.Context, userID string) error
}

// Manager drives the per-user verification state machines. Events for one user
// are strictly ordered; sessions for different users are independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	suspicion *core.SuspicionScorer
	bank      *core.QuestionBank
	orch      *core.Orchestrator

	messenger Messenger
	roles     RoleAssigner
	notifier  Notifier

	answerTimeout time.Duration

	completed int
	abandoned int
}

func NewManager(suspicion *core.SuspicionScorer, bank *core.QuestionBank, orch *core.Orchestrator,
	messenger Messenger, roles RoleAssigner, notifier Notifier, answerTimeout time.Duration) *Manager {
	if answerTimeout <= 0 {
		answerTimeout = DefaultAnswerTimeout
	}
	return &Manager{
		sessions:      make(map[string]*Session),
		suspicion:     suspicion,
		bank:          bank,
		orch:          orch,
		messenger:     messenger,
		roles:         roles,
		notifier:      notifier,
		answerTimeout: answerTimeout,
	}
}

// Start begins verification for a newly joined member: scores the profile,
// selects a question set sized to the suspicion tier, and sends the welcome
// plus first question. Fails if a non-terminal session already exists.
func (m *Manager) Start(ctx context.Context, userID string, profile core.ProfileSnapshot) (*Session, error) {
	suspicion := m.suspicion.Score(profile)

	snap := m.bank.Snapshot()
	questions, err := snap.Select(suspicion.Score)
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[userID]; ok && !existing.Terminal() {
		m.mu.Unlock()
		return nil, core.ErrSessionActive
	}
	sess := &Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		Profile:     profile,
		Suspicion:   suspicion,
		Questions:   questions,
		PoolVersion: snap.Version,
		State:       StateStarted,
		StartedAt:   time.Now(),
	}
	m.sessions[userID] = sess
	m.mu.Unlock()

	m.bank.MarkAsked(questions)
	log.Printf("Verification started for user %s (suspicion %d/4, session %s)", userID, suspicion.Score, sess.ID)

	if err := m.notifier.VerificationStarted(ctx, userID, suspicion); err != nil {
		log.Printf("Failed to announce verification start for %s: %v", userID, err)
	}
	if err := m.messenger.SendWelcome(ctx, userID); err != nil {
		m.abandon(userID)
		return nil, fmt.Errorf("failed to send welcome to %s: %w", userID, err)
	}
	if err := m.sendCurrentQuestion(ctx, sess); err != nil {
		m.abandon(userID)
		return nil, err
	}
	return sess, nil
}

// Restart discards any existing session for the user and begins a fresh one.
// Used by the admin re-verification command.
func (m *Manager) Restart(ctx context.Context, userID string, profile core.ProfileSnapshot) (*Session, error) {
	m.mu.Lock()
	if sess, ok := m.sessions[userID]; ok {
		stopTimer(sess)
		delete(m.sessions, userID)
	}
	m.mu.Unlock()
	return m.Start(ctx, userID, profile)
}

// HandleAnswer records a direct-message response for the user's pending
// question and advances the state machine, scoring once all questions are
// answered.
func (m *Manager) HandleAnswer(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if !ok || sess.Terminal() || sess.State == StateScoring {
		m.mu.Unlock()
		return core.ErrSessionNotFound
	}
	stopTimer(sess)

	q, idx, ok := sess.currentQuestion()
	if !ok {
		m.mu.Unlock()
		return core.ErrSessionNotFound
	}
	sess.Answers = append(sess.Answers, core.Answer{
		QuestionID: q.ID,
		Question:   q.Text,
		Response:   text,
	})
	log.Printf("Received answer %d/%d from user %s", idx+1, len(sess.Questions), userID)

	if len(sess.Answers) < len(sess.Questions) {
		m.mu.Unlock()
		return m.sendCurrentQuestion(ctx, sess)
	}

	sess.State = StateScoring
	answers := sess.Answers
	suspicion := sess.Suspicion
	m.mu.Unlock()

	return m.finish(ctx, sess, answers, suspicion)
}

func (m *Manager) finish(ctx context.Context, sess *Session, answers core.AnswerSet, suspicion core.SuspicionResult) error {
	result := m.orch.ScoreResponses(ctx, answers, suspicion)
	role := core.DecideRole(result.Score)

	m.mu.Lock()
	sess.Result = &result
	sess.Role = role
	sess.State = StateCompleted
	m.completed++
	m.mu.Unlock()

	log.Printf("Verification completed for user %s: score %d/10, role %s (ai_assisted=%v)",
		sess.UserID, result.Score, role, result.AIAssisted)

	if err := m.roles.AssignRole(ctx, sess.UserID, role); err != nil {
		log.Printf("Failed to assign role %s to user %s: %v", role, sess.UserID, err)
	}
	if err := m.messenger.SendCompletion(ctx, sess.UserID, role, result.Score); err != nil {
		log.Printf("Failed to send completion message to user %s: %v", sess.UserID, err)
	}
	if err := m.notifier.VerificationCompleted(ctx, sess.UserID, result, role); err != nil {
		log.Printf("Failed to announce verification completion for %s: %v", sess.UserID, err)
	}

	// A borderline score the AI never refined keeps its role but gets flagged
	// for a human second look.
	if result.Tier == core.TierBorderline && !result.AIAssisted {
		if err := m.notifier.ManualReviewNeeded(ctx, sess.UserID, result); err != nil {
			log.Printf("Failed to flag %s for manual review: %v", sess.UserID, err)
		}
	}
	return nil
}

func (m *Manager) sendCurrentQuestion(ctx context.Context, sess *Session) error {
	m.mu.Lock()
	q, idx, ok := sess.currentQuestion()
	if !ok {
		m.mu.Unlock()
		return core.ErrSessionNotFound
	}
	sess.State = answerStates[idx]
	m.armTimer(sess, idx)
	m.mu.Unlock()

	if err := m.messenger.SendQuestion(ctx, sess.UserID, q, idx+1, len(sess.Questions)); err != nil {
		m.abandon(sess.UserID)
		return fmt.Errorf("failed to send question %d to %s: %w", idx+1, sess.UserID, err)
	}
	return nil
}

// armTimer schedules abandonment if the current question is still unanswered
// when the per-question window elapses. Caller holds m.mu.
func (m *Manager) armTimer(sess *Session, questionIdx int) {
	stopTimer(sess)
	userID := sess.UserID
	sess.timer = time.AfterFunc(m.answerTimeout, func() {
		m.timeoutExpired(userID, questionIdx)
	})
}

func (m *Manager) timeoutExpired(userID string, questionIdx int) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	// The answer may have arrived between the timer firing and this lock.
	if !ok || sess.Terminal() || len(sess.Answers) != questionIdx {
		m.mu.Unlock()
		return
	}
	sess.State = StateAbandoned
	m.abandoned++
	m.mu.Unlock()

	log.Printf("Verification session for user %s abandoned: no answer within %s", userID, m.answerTimeout)
	if err := m.notifier.SessionAbandoned(context.Background(), userID); err != nil {
		log.Printf("Failed to notify admins of abandoned session for %s: %v", userID, err)
	}
}

func (m *Manager) abandon(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok || sess.Terminal() {
		return
	}
	stopTimer(sess)
	sess.State = StateAbandoned
	m.abandoned++
}

// Get returns the session for a user, if any.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return sess, ok
}

// Counts reports session totals for the status endpoint.
func (m *Manager) Counts() (active, completed, abandoned int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range m.sessions {
		if !sess.Terminal() {
			active++
		}
	}
	return active, m.completed, m.abandoned
}

func stopTimer(sess *Session) {
	if sess.timer != nil {
		sess.timer.Stop()
		sess.timer = nil
	}
}
