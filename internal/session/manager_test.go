package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bhu-goloka/gatekeeper/internal/core"
)

const testQuestionsJSON = `{
  "entry": [{"id": "E1", "question": "What brings you here?"}],
  "reflective": [
    {"id": "R1", "question": "What does devotion mean to you?"},
    {"id": "R2", "question": "Describe a peaceful moment."}
  ],
  "psychological": {
    "trusted": [{"id": "P1", "question": "What would you like to learn here?"}],
    "medium": [{"id": "P2", "question": "How do you handle disagreement?"}],
    "high": [{"id": "P3", "question": "Why should we trust you?"}]
  }
}`

// fakeTransport records every delivery and role change. Safe for the timeout
// goroutine.
type fakeTransport struct {
	mu            sync.Mutex
	welcomes      []string
	questions     []core.Question
	completions   []core.RoleDecision
	assignedRoles map[string]core.RoleDecision
	abandoned     []string
	reviews       []string
	started       []string
	sendErr       error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{assignedRoles: make(map[string]core.RoleDecision)}
}

func (f *fakeTransport) SendWelcome(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, userID)
	return f.sendErr
}

func (f *fakeTransport) SendQuestion(ctx context.Context, userID string, q core.Question, num, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, q)
	return f.sendErr
}

func (f *fakeTransport) SendCompletion(ctx context.Context, userID string, role core.RoleDecision, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completions = append(f.completions, role)
	return nil
}

func (f *fakeTransport) AssignRole(ctx context.Context, userID string, role core.RoleDecision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignedRoles[userID] = role
	return nil
}

func (f *fakeTransport) VerificationStarted(ctx context.Context, userID string, s core.SuspicionResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, userID)
	return nil
}

func (f *fakeTransport) VerificationCompleted(ctx context.Context, userID string, r core.ScoreResult, role core.RoleDecision) error {
	return nil
}

func (f *fakeTransport) ManualReviewNeeded(ctx context.Context, userID string, r core.ScoreResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, userID)
	return nil
}

func (f *fakeTransport) SessionAbandoned(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.abandoned = append(f.abandoned, userID)
	return nil
}

func (f *fakeTransport) abandonedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.abandoned)
}

func (f *fakeTransport) roleFor(userID string) (core.RoleDecision, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.assignedRoles[userID]
	return role, ok
}

func testBank(t *testing.T) *core.QuestionBank {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(testQuestionsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	bank := core.NewQuestionBank(path, nil)
	if err := bank.Load(); err != nil {
		t.Fatal(err)
	}
	return bank
}

func testManager(t *testing.T, transport *fakeTransport, timeout time.Duration) *Manager {
	t.Helper()
	orch := core.NewOrchestrator(
		core.NewHeuristicScorer(core.DefaultBand),
		nil,
		core.NewAssistCache(10),
		core.NewUsageLimiter(10),
	)
	return NewManager(core.NewSuspicionScorer(), testBank(t), orch,
		transport, transport, transport, timeout)
}

func establishedProfile() core.ProfileSnapshot {
	return core.ProfileSnapshot{
		Username:       "sincere_soul",
		AccountCreated: time.Now().Add(-2 * 365 * 24 * time.Hour),
		HasAvatar:      true,
	}
}

func TestManagerFullVerificationFlow(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, time.Minute)
	ctx := context.Background()

	sess, err := mgr.Start(ctx, "user-1", establishedProfile())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.State != StateAwaitingEntry {
		t.Fatalf("state after start = %s, want %s", sess.State, StateAwaitingEntry)
	}
	if len(transport.welcomes) != 1 || len(transport.questions) != 1 {
		t.Fatalf("welcome/question not delivered: %d welcomes, %d questions",
			len(transport.welcomes), len(transport.questions))
	}
	if len(sess.Questions) != 4 {
		t.Fatalf("selected %d questions, want 4", len(sess.Questions))
	}

	answers := []string{
		"I want to learn more about Krishna and devotional service",
		"Chanting gives me peace and a mood of humility",
		"Visiting the temple with devotees on my spiritual journey",
		"I hope to grow in bhakti and surrender",
	}
	for i, a := range answers {
		if err := mgr.HandleAnswer(ctx, "user-1", a); err != nil {
			t.Fatalf("HandleAnswer %d: %v", i+1, err)
		}
	}

	if sess.State != StateCompleted {
		t.Fatalf("state after all answers = %s, want %s", sess.State, StateCompleted)
	}
	if sess.Result == nil || sess.Result.Score < 8 {
		t.Fatalf("result = %+v, want score >= 8", sess.Result)
	}
	if sess.Role != core.RoleDevotee {
		t.Errorf("role = %s, want devotee", sess.Role)
	}
	if role, ok := transport.roleFor("user-1"); !ok || role != core.RoleDevotee {
		t.Errorf("assigned role = %s (ok=%v), want devotee", role, ok)
	}
	if len(transport.questions) != 4 {
		t.Errorf("delivered %d questions, want 4", len(transport.questions))
	}

	if _, completed, _ := mgr.Counts(); completed != 1 {
		t.Errorf("completed count = %d, want 1", completed)
	}
	if len(transport.reviews) != 0 {
		t.Errorf("clear result flagged for manual review %d times", len(transport.reviews))
	}
}

func TestManagerBorderlineWithoutAIFlagsReview(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, time.Minute)
	ctx := context.Background()

	if _, err := mgr.Start(ctx, "user-8", establishedProfile()); err != nil {
		t.Fatal(err)
	}
	// Neutral answers land borderline; with no AI configured the heuristic
	// stands and admins get a manual-review flag alongside the role.
	for i := 0; i < 4; i++ {
		if err := mgr.HandleAnswer(ctx, "user-8", "a reasonably thoughtful answer"); err != nil {
			t.Fatal(err)
		}
	}

	if len(transport.reviews) != 1 || transport.reviews[0] != "user-8" {
		t.Errorf("manual review flags = %v, want one for user-8", transport.reviews)
	}
	if role, ok := transport.roleFor("user-8"); !ok || role != core.RoleSeeker {
		t.Errorf("role = %s (ok=%v), want seeker assigned despite the flag", role, ok)
	}
}

func TestManagerIntermediateStates(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, time.Minute)
	ctx := context.Background()

	sess, err := mgr.Start(ctx, "user-2", establishedProfile())
	if err != nil {
		t.Fatal(err)
	}

	wantStates := []State{
		StateAwaitingReflective1,
		StateAwaitingReflective2,
		StateAwaitingPsychological,
	}
	for i, want := range wantStates {
		if err := mgr.HandleAnswer(ctx, "user-2", "a reasonably thoughtful answer"); err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
		if sess.State != want {
			t.Fatalf("after answer %d state = %s, want %s", i+1, sess.State, want)
		}
	}
}

func TestManagerRejectsDuplicateStart(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, time.Minute)
	ctx := context.Background()

	if _, err := mgr.Start(ctx, "user-3", establishedProfile()); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Start(ctx, "user-3", establishedProfile()); !errors.Is(err, core.ErrSessionActive) {
		t.Errorf("second Start err = %v, want ErrSessionActive", err)
	}
}

func TestManagerAnswerWithoutSession(t *testing.T) {
	mgr := testManager(t, newFakeTransport(), time.Minute)
	if err := mgr.HandleAnswer(context.Background(), "nobody", "hello"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerAnswerAfterCompletion(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, time.Minute)
	ctx := context.Background()

	if _, err := mgr.Start(ctx, "user-4", establishedProfile()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if err := mgr.HandleAnswer(ctx, "user-4", "a reasonably thoughtful answer"); err != nil {
			t.Fatal(err)
		}
	}
	if err := mgr.HandleAnswer(ctx, "user-4", "one more"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("answer after completion err = %v, want ErrSessionNotFound", err)
	}
}

func TestManagerTimeoutAbandonsSession(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, 20*time.Millisecond)
	ctx := context.Background()

	sess, err := mgr.Start(ctx, "user-5", establishedProfile())
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for transport.abandonedCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	mgr.mu.Lock()
	state := sess.State
	mgr.mu.Unlock()
	if state != StateAbandoned {
		t.Fatalf("state after timeout = %s, want %s", state, StateAbandoned)
	}
	if _, ok := transport.roleFor("user-5"); ok {
		t.Error("abandoned session must not assign a role")
	}
	if transport.abandonedCount() != 1 {
		t.Errorf("admin abandoned notifications = %d, want 1", transport.abandonedCount())
	}

	active, _, abandoned := mgr.Counts()
	if active != 0 || abandoned != 1 {
		t.Errorf("Counts() active=%d abandoned=%d, want 0/1", active, abandoned)
	}
}

func TestManagerAnswerBeatsTimeout(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, 500*time.Millisecond)
	ctx := context.Background()

	if _, err := mgr.Start(ctx, "user-6", establishedProfile()); err != nil {
		t.Fatal(err)
	}
	// Answer well within the window: the pending timer must not fire later.
	if err := mgr.HandleAnswer(ctx, "user-6", "a reasonably thoughtful answer"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	if n := transport.abandonedCount(); n != 0 {
		t.Errorf("session abandoned %d times despite a timely answer", n)
	}
}

func TestManagerRestart(t *testing.T) {
	transport := newFakeTransport()
	mgr := testManager(t, transport, time.Minute)
	ctx := context.Background()

	first, err := mgr.Start(ctx, "user-7", establishedProfile())
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.Restart(ctx, "user-7", establishedProfile())
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if second.ID == first.ID {
		t.Error("restart reused the previous session id")
	}
	if second.State != StateAwaitingEntry {
		t.Errorf("restarted session state = %s, want %s", second.State, StateAwaitingEntry)
	}
	if got, _ := mgr.Get("user-7"); got != second {
		t.Error("manager does not track the restarted session")
	}
}
