package gateway

import (
	"context"
	"log"

	"github.com/bhu-goloka/gatekeeper/internal/core"
)

// LogTransport satisfies the session manager's delivery interfaces with log
// output. It is the default wiring when no platform client is connected, so
// the scoring pipeline and HTTP surface run standalone; a real chat client
// replaces it by implementing the same three interfaces.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (t *LogTransport) SendWelcome(ctx context.Context, userID string) error {
	log.Printf("[dm -> %s] Welcome! A few questions before you join the community.", userID)
	return nil
}

func (t *LogTransport) SendQuestion(ctx context.Context, userID string, q core.Question, num, total int) error {
	log.Printf("[dm -> %s] Question %d/%d: %s", userID, num, total, q.Text)
	return nil
}

func (t *LogTransport) SendCompletion(ctx context.Context, userID string, role core.RoleDecision, score int) error {
	log.Printf("[dm -> %s] Verification complete: score %d/10, role %s", userID, score, role)
	return nil
}

func (t *LogTransport) AssignRole(ctx context.Context, userID string, role core.RoleDecision) error {
	log.Printf("[roles] %s -> %s", userID, role)
	return nil
}

func (t *LogTransport) VerificationStarted(ctx context.Context, userID string, suspicion core.SuspicionResult) error {
	log.Printf("[admin] Verification started for %s (suspicion %d/4)", userID, suspicion.Score)
	return nil
}

func (t *LogTransport) VerificationCompleted(ctx context.Context, userID string, result core.ScoreResult, role core.RoleDecision) error {
	log.Printf("[admin] Verification completed for %s: score %d/10, role %s", userID, result.Score, role)
	return nil
}

func (t *LogTransport) ManualReviewNeeded(ctx context.Context, userID string, result core.ScoreResult) error {
	log.Printf("[admin] %s scored %d/10 without AI confirmation, flagged for manual review", userID, result.Score)
	return nil
}

func (t *LogTransport) SessionAbandoned(ctx context.Context, userID string) error {
	log.Printf("[admin] Session for %s abandoned before completion", userID)
	return nil
}
