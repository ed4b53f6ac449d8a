package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS guild_configs (
        server_id TEXT PRIMARY KEY,
        devotee_role_id TEXT NOT NULL,
        seeker_role_id TEXT NOT NULL,
        no_role_id TEXT,
        verification_channel_id TEXT NOT NULL,
        admin_channel_id TEXT NOT NULL,
        dm_questions_channel_id TEXT,
        log_channel_id TEXT,
        welcome_channel_id TEXT,
        is_configured BOOLEAN DEFAULT FALSE,
        configured_by TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS question_usage (
        question_id TEXT PRIMARY KEY,
        times_asked INTEGER NOT NULL DEFAULT 0
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// GetGuildConfig loads the configuration row for a server. Returns nil when no
// setup has been run yet.
func (s *SQLiteStore) GetGuildConfig(serverID string) (*GuildConfig, error) {
	var cfg GuildConfig
	var noRole, dmChannel, logChannel, welcomeChannel, configuredBy sql.NullString
	err := s.db.QueryRow(`
        SELECT server_id, devotee_role_id, seeker_role_id, no_role_id,
               verification_channel_id, admin_channel_id, dm_questions_channel_id,
               log_channel_id, welcome_channel_id, is_configured, configured_by,
               created_at, updated_at
        FROM guild_configs WHERE server_id = ?`, serverID).Scan(
		&cfg.ServerID, &cfg.DevoteeRoleID, &cfg.SeekerRoleID, &noRole,
		&cfg.VerificationChannelID, &cfg.AdminChannelID, &dmChannel,
		&logChannel, &welcomeChannel, &cfg.IsConfigured, &configuredBy,
		&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query guild config: %w", err)
	}
	cfg.NoRoleID = noRole.String
	cfg.DMQuestionsChannelID = dmChannel.String
	cfg.LogChannelID = logChannel.String
	cfg.WelcomeChannelID = welcomeChannel.String
	cfg.ConfiguredBy = configuredBy.String
	return &cfg, nil
}

// SaveGuildConfig inserts or updates the configuration row for a server so it
// survives process restarts.
func (s *SQLiteStore) SaveGuildConfig(cfg *GuildConfig) error {
	now := time.Now()
	cfg.UpdatedAt = now
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}

	stmt, err := s.db.Prepare(`
        INSERT INTO guild_configs (
            server_id, devotee_role_id, seeker_role_id, no_role_id,
            verification_channel_id, admin_channel_id, dm_questions_channel_id,
            log_channel_id, welcome_channel_id, is_configured, configured_by,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(server_id) DO UPDATE SET
            devotee_role_id = excluded.devotee_role_id,
            seeker_role_id = excluded.seeker_role_id,
            no_role_id = excluded.no_role_id,
            verification_channel_id = excluded.verification_channel_id,
            admin_channel_id = excluded.admin_channel_id,
            dm_questions_channel_id = excluded.dm_questions_channel_id,
            log_channel_id = excluded.log_channel_id,
            welcome_channel_id = excluded.welcome_channel_id,
            is_configured = excluded.is_configured,
            configured_by = excluded.configured_by,
            updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare guild config upsert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		cfg.ServerID, cfg.DevoteeRoleID, cfg.SeekerRoleID, nullable(cfg.NoRoleID),
		cfg.VerificationChannelID, cfg.AdminChannelID, nullable(cfg.DMQuestionsChannelID),
		nullable(cfg.LogChannelID), nullable(cfg.WelcomeChannelID), cfg.IsConfigured,
		cfg.ConfiguredBy, cfg.CreatedAt, cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute guild config upsert: %w", err)
	}
	return nil
}

// IncrementQuestionUsage bumps the persisted asked-counter for a question.
func (s *SQLiteStore) IncrementQuestionUsage(questionID string) error {
	_, err := s.db.Exec(`
        INSERT INTO question_usage (question_id, times_asked) VALUES (?, 1)
        ON CONFLICT(question_id) DO UPDATE SET times_asked = times_asked + 1`, questionID)
	if err != nil {
		return fmt.Errorf("failed to increment question usage: %w", err)
	}
	return nil
}

// GetQuestionUsage returns all persisted usage counters, highest first.
func (s *SQLiteStore) GetQuestionUsage() ([]QuestionUsage, error) {
	rows, err := s.db.Query("SELECT question_id, times_asked FROM question_usage ORDER BY times_asked DESC, question_id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query question usage: %w", err)
	}
	defer rows.Close()

	var usage []QuestionUsage
	for rows.Next() {
		var u QuestionUsage
		if err := rows.Scan(&u.QuestionID, &u.TimesAsked); err != nil {
			return nil, fmt.Errorf("failed to scan question usage row: %w", err)
		}
		usage = append(usage, u)
	}
	return usage, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
