package core

import (
	"context"
	"fmt"
	"log"

	"github.com/bhu-goloka/gatekeeper/internal/store"
)

// ConfigStore is the slice of persistence the admin commands need.
type ConfigStore interface {
	GetGuildConfig(serverID string) (*store.GuildConfig, error)
	SaveGuildConfig(cfg *store.GuildConfig) error
	GetQuestionUsage() ([]store.QuestionUsage, error)
}

// AdminService backs the moderator-facing commands: setup, question reload,
// credential reload, and usage stats. Re-verification is handled by the
// session manager and wired at the transport layer.
type AdminService struct {
	store ConfigStore
	bank  *QuestionBank
	orch  *Orchestrator
}

// SetupRequest carries the role and channel wiring a moderator supplies when
// configuring the bot for a community.
type SetupRequest struct {
	ServerID              string
	DevoteeRoleID         string
	SeekerRoleID          string
	NoRoleID              string
	VerificationChannelID string
	AdminChannelID        string
	DMQuestionsChannelID  string
	LogChannelID          string
	WelcomeChannelID      string
	RequestedBy           string
}

func NewAdminService(s ConfigStore, bank *QuestionBank, orch *Orchestrator) *AdminService {
	return &AdminService{store: s, bank: bank, orch: orch}
}

// Setup validates and persists the community configuration. Required fields
// are the two role IDs and the verification and admin channels; the rest are
// optional.
func (a *AdminService) Setup(req SetupRequest) (*store.GuildConfig, error) {
	switch {
	case req.ServerID == "":
		return nil, fmt.Errorf("%w: server id is required", ErrConfiguration)
	case req.DevoteeRoleID == "" || req.SeekerRoleID == "":
		return nil, fmt.Errorf("%w: devotee and seeker role ids are required", ErrConfiguration)
	case req.VerificationChannelID == "" || req.AdminChannelID == "":
		return nil, fmt.Errorf("%w: verification and admin channel ids are required", ErrConfiguration)
	}
	if a.store == nil {
		return nil, fmt.Errorf("%w: configuration store unavailable", ErrPersistence)
	}

	cfg := &store.GuildConfig{
		ServerID:              req.ServerID,
		DevoteeRoleID:         req.DevoteeRoleID,
		SeekerRoleID:          req.SeekerRoleID,
		NoRoleID:              req.NoRoleID,
		VerificationChannelID: req.VerificationChannelID,
		AdminChannelID:        req.AdminChannelID,
		DMQuestionsChannelID:  req.DMQuestionsChannelID,
		LogChannelID:          req.LogChannelID,
		WelcomeChannelID:      req.WelcomeChannelID,
		IsConfigured:          true,
		ConfiguredBy:          req.RequestedBy,
	}
	if existing, err := a.store.GetGuildConfig(req.ServerID); err == nil && existing != nil {
		cfg.CreatedAt = existing.CreatedAt
	}
	if err := a.store.SaveGuildConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	log.Printf("Community %s configured by %s", req.ServerID, req.RequestedBy)
	return cfg, nil
}

// GuildConfig returns the persisted configuration for a server, or nil when
// setup has not been run.
func (a *AdminService) GuildConfig(serverID string) (*store.GuildConfig, error) {
	if a.store == nil {
		return nil, nil
	}
	return a.store.GetGuildConfig(serverID)
}

// ReloadQuestions re-reads the question file. On validation failure the
// previous pools stay active and the error is returned for the moderator.
func (a *AdminService) ReloadQuestions() (PoolCounts, error) {
	if err := a.bank.Load(); err != nil {
		return PoolCounts{}, err
	}
	return a.bank.Counts(), nil
}

// ReloadAICredentials rebuilds the AI evaluator from freshly supplied keys and
// swaps it into the scoring pipeline. An empty primary key disables AI
// escalation entirely.
func (a *AdminService) ReloadAICredentials(ctx context.Context, primaryKey, backupKey string) error {
	if primaryKey == "" {
		a.orch.SetEvaluator(nil)
		log.Printf("AI evaluation disabled: no primary key supplied")
		return nil
	}
	eval, err := NewGeminiEvaluator(ctx, primaryKey, backupKey)
	if err != nil {
		return err
	}
	a.orch.SetEvaluator(eval)
	log.Printf("AI credentials reloaded (backup configured: %v)", backupKey != "")
	return nil
}

// QuestionStats merges persisted and in-memory usage counters, preferring the
// persisted value when both exist.
func (a *AdminService) QuestionStats() ([]store.QuestionUsage, error) {
	memory := a.bank.UsageCounts()

	var persisted []store.QuestionUsage
	if a.store != nil {
		var err error
		persisted, err = a.store.GetQuestionUsage()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	seen := make(map[string]bool, len(persisted))
	for _, u := range persisted {
		seen[u.QuestionID] = true
	}
	for id, n := range memory {
		if !seen[id] {
			persisted = append(persisted, store.QuestionUsage{QuestionID: id, TimesAsked: n})
		}
	}
	return persisted, nil
}
