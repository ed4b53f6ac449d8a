package core

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Keyword tables are data, not logic, so admins can tune them without touching
// the scoring rules.
var (
	highRiskUsernameWords   = []string{"discord", "nitro", "gift", "free", "hack", "bot", "raid"}
	mediumRiskUsernameWords = []string{"test", "fake", "temp", "alt"}

	longDigitRun  = regexp.MustCompile(`[0-9]{6,}`)
	shortDigitRun = regexp.MustCompile(`[0-9]{4,5}`)
	anyDigit      = regexp.MustCompile(`[0-9]`)
)

// SuspicionScorer derives a 0-4 suspicion score from profile metadata alone.
// Pure: identical snapshots always yield identical results.
type SuspicionScorer struct {
	now func() time.Time
}

func NewSuspicionScorer() *SuspicionScorer {
	return &SuspicionScorer{now: time.Now}
}

// Score applies the additive rules in fixed order (account age, avatar,
// username pattern, subscriber tier) and clamps the sum to [0,4]. The reasons
// list reflects raw contributions, not the clamped value.
func (s *SuspicionScorer) Score(p ProfileSnapshot) SuspicionResult {
	var score int
	var reasons []string

	ageDays := int(s.now().UTC().Sub(p.AccountCreated.UTC()).Hours() / 24)
	switch {
	case ageDays < 1:
		score += 3
		reasons = append(reasons, "brand new account (< 1 day)")
	case ageDays < 7:
		score += 2
		reasons = append(reasons, fmt.Sprintf("very new account (%d days)", ageDays))
	case ageDays < 30:
		score += 1
		reasons = append(reasons, fmt.Sprintf("recent account (%d days)", ageDays))
	case ageDays > 365:
		score -= 1
		reasons = append(reasons, fmt.Sprintf("well established account (%d days)", ageDays))
	}

	if !p.HasAvatar {
		score += 1
		reasons = append(reasons, "no custom avatar")
	} else {
		score -= 1
		reasons = append(reasons, "has custom avatar")
	}

	username := strings.ToLower(p.Username)
	switch {
	case longDigitRun.MatchString(username) || containsAny(username, highRiskUsernameWords):
		score += 2
		reasons = append(reasons, "high-risk username pattern")
	case shortDigitRun.MatchString(username) || containsAny(username, mediumRiskUsernameWords):
		score += 1
		reasons = append(reasons, "suspicious username pattern")
	case len(username) >= 8 && !anyDigit.MatchString(username):
		score -= 1
		reasons = append(reasons, "normal username")
	}

	if p.Subscriber {
		score -= 1
		reasons = append(reasons, "subscriber tier account")
	}

	return SuspicionResult{Score: clamp(score, 0, 4), Reasons: reasons}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
