package store

import "time"

// GuildConfig is the persisted per-community configuration written by the
// setup command and read on startup and on each verification event.
type GuildConfig struct {
	ServerID string `json:"server_id"`

	DevoteeRoleID string `json:"devotee_role_id"`
	SeekerRoleID  string `json:"seeker_role_id"`
	NoRoleID      string `json:"no_role_id,omitempty"`

	VerificationChannelID string `json:"verification_channel_id"`
	AdminChannelID        string `json:"admin_channel_id"`
	DMQuestionsChannelID  string `json:"dm_questions_channel_id,omitempty"`
	LogChannelID          string `json:"log_channel_id,omitempty"`
	WelcomeChannelID      string `json:"welcome_channel_id,omitempty"`

	IsConfigured bool      `json:"is_configured"`
	ConfiguredBy string    `json:"configured_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// QuestionUsage counts how many times a question has been issued to sessions.
type QuestionUsage struct {
	QuestionID string `json:"question_id"`
	TimesAsked int    `json:"times_asked"`
}
