package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	ServerID string

	AIAPIKey    string
	AIBackupKey string
	DatabaseURL string
	HTTPPort    string
	LogLevel    string

	QuestionsFile       string
	StartupDelaySeconds int
	AnswerTimeoutMins   int
	AIDailyLimit        int
	ClearLow            int
	ClearHigh           int
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		BotToken: getEnv("BOT_TOKEN", ""),
		ServerID: getEnv("SERVER_ID", ""),

		AIAPIKey:    getEnv("AI_API_KEY", ""),
		AIBackupKey: getEnv("AI_BACKUP_KEY", ""),
		DatabaseURL: getEnv("DATABASE_URL", "gatekeeper.db"),
		HTTPPort:    getEnv("HTTP_PORT", "5000"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),

		QuestionsFile:       getEnv("QUESTIONS_FILE", "questions.json"),
		StartupDelaySeconds: getEnvAsInt("STARTUP_DELAY", 0),
		AnswerTimeoutMins:   getEnvAsInt("ANSWER_TIMEOUT_MINUTES", 30),
		AIDailyLimit:        getEnvAsInt("AI_DAILY_LIMIT", 1000),
		ClearLow:            getEnvAsInt("CLEAR_LOW", 2),
		ClearHigh:           getEnvAsInt("CLEAR_HIGH", 8),
	}

	if AppConfig.BotToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	if AppConfig.ServerID == "" {
		log.Fatal("SERVER_ID environment variable is required")
	}

	if AppConfig.AIAPIKey == "" {
		log.Println("AI_API_KEY not set: AI-assisted scoring disabled, heuristic only")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
