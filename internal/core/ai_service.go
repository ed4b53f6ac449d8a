package core

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultScoringModelName = "gemini-2.0-flash"

	scoringSystemInstruction = "You are a spiritually serious, Krishna-conscious assistant verifying members " +
		"entering a sacred community based on Srila Prabhupada's pure bhakti teachings. " +
		"Assess their responses by his standards: strict against impersonalism, sahajiya mood, disrespect, " +
		"or pride, and encouraging toward sincere seekers. Favor sincerity over scholarship; " +
		"ignore grammar and spelling unless deliberately mocking. " +
		"Scoring guide: strong humility and surrender mood +3; emotional connection to Krishna +2; " +
		"respect for Vaishnavas, guru, and bhakti +2; honest confusion with desire to learn +1; " +
		"proud, cold, or impersonal tone -1; clearly stated impersonalism -3; " +
		"ego or spiritual superiority -3; mocking or trolling -5. " +
		"You must respond in exactly this format:\n" +
		"SCORE: [0-10]\nROLE: [devotee/seeker/none]\nREASONING: [2-4 lines explaining your evaluation]"
)

// AIVerdict is the parsed result of an external AI evaluation.
type AIVerdict struct {
	Score     int
	Role      RoleDecision
	Reasoning string
}

// ResponseEvaluator is the external AI collaborator consulted for borderline
// cases. Implementations must be safe for concurrent use.
type ResponseEvaluator interface {
	EvaluateResponses(ctx context.Context, answers AnswerSet, suspicion int) (AIVerdict, error)
}

// GeminiEvaluator calls the Gemini completion endpoint with a fixed persona
// prompt. A backup credential, when configured, is tried once after any
// primary failure (timeout, auth, quota).
type GeminiEvaluator struct {
	primary *genai.Client
	backup  *genai.Client
	model   string
}

// NewGeminiEvaluator builds clients for the configured credentials. backupKey
// may be empty, in which case failures degrade straight to the caller.
func NewGeminiEvaluator(ctx context.Context, primaryKey, backupKey string) (*GeminiEvaluator, error) {
	if primaryKey == "" {
		return nil, fmt.Errorf("%w: missing primary AI credential", ErrConfiguration)
	}
	primary, err := genai.NewClient(ctx, option.WithAPIKey(primaryKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create primary GenAI client: %w", err)
	}
	e := &GeminiEvaluator{primary: primary, model: defaultScoringModelName}
	if backupKey != "" {
		backup, err := genai.NewClient(ctx, option.WithAPIKey(backupKey))
		if err != nil {
			primary.Close()
			return nil, fmt.Errorf("failed to create backup GenAI client: %w", err)
		}
		e.backup = backup
	}
	return e, nil
}

func (e *GeminiEvaluator) Close() {
	if e.primary != nil {
		if err := e.primary.Close(); err != nil {
			log.Printf("Error closing primary GenAI client: %v", err)
		}
	}
	if e.backup != nil {
		if err := e.backup.Close(); err != nil {
			log.Printf("Error closing backup GenAI client: %v", err)
		}
	}
}

func (e *GeminiEvaluator) EvaluateResponses(ctx context.Context, answers AnswerSet, suspicion int) (AIVerdict, error) {
	prompt := buildScoringPrompt(answers, suspicion)

	verdict, primaryErr := e.generate(ctx, e.primary, prompt)
	if primaryErr == nil {
		return verdict, nil
	}
	if e.backup == nil {
		return AIVerdict{}, fmt.Errorf("%w: %v", ErrExternalService, primaryErr)
	}

	log.Printf("Primary AI credential failed, retrying with backup: %v", primaryErr)
	verdict, backupErr := e.generate(ctx, e.backup, prompt)
	if backupErr != nil {
		return AIVerdict{}, fmt.Errorf("%w: primary: %v; backup: %v", ErrExternalService, primaryErr, backupErr)
	}
	return verdict, nil
}

func (e *GeminiEvaluator) generate(ctx context.Context, client *genai.Client, prompt string) (AIVerdict, error) {
	model := client.GenerativeModel(e.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(scoringSystemInstruction)},
	}

	temp := float32(0.2)
	model.GenerationConfig = genai.GenerationConfig{Temperature: &temp}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return AIVerdict{}, fmt.Errorf("gemini scoring request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return AIVerdict{}, fmt.Errorf("gemini returned an empty response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return AIVerdict{}, fmt.Errorf("gemini response contained no text parts")
	}
	return ParseVerdict(text.String()), nil
}

// buildScoringPrompt formats the answer set the way the evaluation persona
// expects, tagged with the profile suspicion for context.
func buildScoringPrompt(answers AnswerSet, suspicion int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This user has a suspicion score of %d/4.\n\n", suspicion)
	b.WriteString("=== USER VERIFICATION RESPONSES ===\n")
	for i, a := range answers {
		fmt.Fprintf(&b, "[QUESTION %d]\nQ: %s\nA: %s\n\n", i+1, a.Question, NormalizeAnswer(a.Response))
	}
	b.WriteString("=== END RESPONSES ===")
	return b.String()
}

var (
	scorePattern     = regexp.MustCompile(`(?i)(?:SCORE|FINAL\s*SCORE|OVERALL\s*SCORE):\s*(\d+)`)
	bareScorePattern = regexp.MustCompile(`(\d+)\s*(?:/10)?\s*$`)
	rolePattern      = regexp.MustCompile(`(?i)ROLE:\s*(devotee|seeker|none)`)
	reasoningPattern = regexp.MustCompile(`(?is)(?:REASON|REASONING|EXPLANATION|ANALYSIS):\s*(.+)`)
)

// ParseVerdict extracts score, role, and reasoning from the model's reply,
// tolerating format drift. An unparseable score defaults to a neutral 5.
func ParseVerdict(text string) AIVerdict {
	score := 5
	if m := scorePattern.FindStringSubmatch(text); m != nil {
		score, _ = strconv.Atoi(m[1])
	} else if m := bareScorePattern.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		score, _ = strconv.Atoi(m[1])
	}
	score = clamp(score, 0, 10)

	role := DecideRole(score)
	if m := rolePattern.FindStringSubmatch(text); m != nil {
		role = RoleDecision(strings.ToLower(m[1]))
	}

	reasoning := "No reasoning provided"
	if m := reasoningPattern.FindStringSubmatch(text); m != nil {
		reasoning = strings.TrimSpace(m[1])
		if len(reasoning) > 500 {
			reasoning = reasoning[:500]
		}
	}

	return AIVerdict{Score: score, Role: role, Reasoning: reasoning}
}
