package core

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
)

// Question is a single template from the question bank file.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"question"`
}

// questionFile mirrors the on-disk JSON layout.
type questionFile struct {
	Entry         []Question `json:"entry"`
	Reflective    []Question `json:"reflective"`
	Psychological struct {
		Trusted []Question `json:"trusted"`
		Medium  []Question `json:"medium"`
		High    []Question `json:"high"`
	} `json:"psychological"`
}

// PoolSnapshot is an immutable, versioned view of the loaded question pools.
// Sessions keep the snapshot they selected from, so a mid-session reload never
// changes an already-issued question set.
type PoolSnapshot struct {
	Version    int
	Entry      []Question
	Reflective []Question
	Trusted    []Question
	Medium     []Question
	High       []Question
}

// PoolCounts reports per-category pool sizes, used by the reload command and
// the stats endpoint.
type PoolCounts struct {
	Entry      int `json:"entry"`
	Reflective int `json:"reflective"`
	Trusted    int `json:"trusted"`
	Medium     int `json:"medium"`
	High       int `json:"high"`
}

// UsageRecorder persists per-question usage counts. Implemented by the store;
// nil disables persistence.
type UsageRecorder interface {
	IncrementQuestionUsage(questionID string) error
}

// QuestionBank loads categorized question templates from a JSON file and hands
// out immutable snapshots. Reload swaps the snapshot atomically and only on
// successful validation.
type QuestionBank struct {
	mu       sync.RWMutex
	path     string
	current  *PoolSnapshot
	usage    map[string]int
	recorder UsageRecorder
}

func NewQuestionBank(path string, recorder UsageRecorder) *QuestionBank {
	return &QuestionBank{path: path, usage: make(map[string]int), recorder: recorder}
}

// Load reads and validates the question file. On any error the previously
// loaded snapshot stays active.
func (b *QuestionBank) Load() error {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("%w: cannot read question file %s: %v", ErrConfiguration, b.path, err)
	}

	var file questionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: malformed question file %s: %v", ErrConfiguration, b.path, err)
	}

	if err := validatePools(file); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	version := 1
	if b.current != nil {
		version = b.current.Version + 1
	}
	b.current = &PoolSnapshot{
		Version:    version,
		Entry:      file.Entry,
		Reflective: file.Reflective,
		Trusted:    file.Psychological.Trusted,
		Medium:     file.Psychological.Medium,
		High:       file.Psychological.High,
	}
	log.Printf("Question bank loaded (version %d): %d entry, %d reflective, %d/%d/%d psychological",
		version, len(file.Entry), len(file.Reflective),
		len(file.Psychological.Trusted), len(file.Psychological.Medium), len(file.Psychological.High))
	return nil
}

func validatePools(file questionFile) error {
	if len(file.Entry) == 0 {
		return fmt.Errorf("%w: entry question pool is empty", ErrConfiguration)
	}
	if len(file.Reflective) < 2 {
		return fmt.Errorf("%w: reflective pool needs at least two questions", ErrConfiguration)
	}
	if len(file.Psychological.Trusted) == 0 {
		return fmt.Errorf("%w: psychological.trusted pool is empty", ErrConfiguration)
	}
	if len(file.Psychological.Medium) == 0 {
		return fmt.Errorf("%w: psychological.medium pool is empty", ErrConfiguration)
	}
	if len(file.Psychological.High) == 0 {
		return fmt.Errorf("%w: psychological.high pool is empty", ErrConfiguration)
	}
	return nil
}

// Snapshot returns the active pool snapshot, or nil before the first Load.
func (b *QuestionBank) Snapshot() *PoolSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.current
}

// Counts returns per-category sizes of the active snapshot.
func (b *QuestionBank) Counts() PoolCounts {
	snap := b.Snapshot()
	if snap == nil {
		return PoolCounts{}
	}
	return PoolCounts{
		Entry:      len(snap.Entry),
		Reflective: len(snap.Reflective),
		Trusted:    len(snap.Trusted),
		Medium:     len(snap.Medium),
		High:       len(snap.High),
	}
}

// MarkAsked bumps usage counters for the issued questions. Persistence errors
// are logged and ignored; in-memory stats still advance.
func (b *QuestionBank) MarkAsked(questions []Question) {
	b.mu.Lock()
	for _, q := range questions {
		b.usage[q.ID]++
	}
	b.mu.Unlock()

	if b.recorder == nil {
		return
	}
	for _, q := range questions {
		if err := b.recorder.IncrementQuestionUsage(q.ID); err != nil {
			log.Printf("Warning: failed to persist usage count for question %s: %v", q.ID, err)
		}
	}
}

// UsageCounts returns a copy of the in-memory per-question usage counters.
func (b *QuestionBank) UsageCounts() map[string]int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]int, len(b.usage))
	for id, n := range b.usage {
		out[id] = n
	}
	return out
}

// Select picks the session's question set from this snapshot: one entry
// question, two distinct reflective questions, and one psychological question
// from the pool matching the suspicion tier (trusted 0-1, medium 2-3, high 4).
func (s *PoolSnapshot) Select(suspicion int) ([]Question, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: question bank not loaded", ErrConfiguration)
	}

	psych := s.Trusted
	switch {
	case suspicion >= 4:
		psych = s.High
	case suspicion >= 2:
		psych = s.Medium
	}
	if len(s.Entry) == 0 || len(s.Reflective) < 2 || len(psych) == 0 {
		return nil, ErrEmptyQuestionSet
	}

	set := make([]Question, 0, 4)
	set = append(set, s.Entry[rand.Intn(len(s.Entry))])

	first := rand.Intn(len(s.Reflective))
	second := rand.Intn(len(s.Reflective) - 1)
	if second >= first {
		second++
	}
	set = append(set, s.Reflective[first], s.Reflective[second])

	set = append(set, psych[rand.Intn(len(psych))])
	return set, nil
}
