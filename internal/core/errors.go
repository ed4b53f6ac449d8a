package core

import "errors"

// Sentinel errors shared across the verification pipeline.
var (
	ErrConfiguration     = errors.New("invalid or missing configuration")
	ErrExternalService   = errors.New("external AI service failure")
	ErrDailyLimitReached = errors.New("daily AI usage ceiling reached")
	ErrRateLimited       = errors.New("platform connection rate limited")
	ErrSessionTimeout    = errors.New("verification session timed out")
	ErrPersistence       = errors.New("configuration store unreachable")
	ErrSessionNotFound   = errors.New("no active verification session")
	ErrSessionActive     = errors.New("verification session already in progress")
	ErrEmptyQuestionSet  = errors.New("question pool is empty")
)
