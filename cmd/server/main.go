package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhu-goloka/gatekeeper/internal/api"
	"github.com/bhu-goloka/gatekeeper/internal/config"
	"github.com/bhu-goloka/gatekeeper/internal/core"
	"github.com/bhu-goloka/gatekeeper/internal/gateway"
	"github.com/bhu-goloka/gatekeeper/internal/session"
	"github.com/bhu-goloka/gatekeeper/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Optional delay so platform-side restarts don't hammer external services
	if config.AppConfig.StartupDelaySeconds > 0 {
		log.Printf("Delaying startup by %d seconds", config.AppConfig.StartupDelaySeconds)
		time.Sleep(time.Duration(config.AppConfig.StartupDelaySeconds) * time.Second)
	}

	ctx := context.Background()

	// Initialize database store. Persistence failure degrades the bot rather
	// than stopping it: config and usage stats just won't survive restarts.
	var configStore core.ConfigStore
	var usageRecorder core.UsageRecorder
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Printf("Warning: failed to initialize database, running without persistence: %v", err)
	} else {
		defer dbStore.Close()
		configStore = dbStore
		usageRecorder = dbStore
	}

	// Load the question bank; a bot without questions cannot verify anyone.
	bank := core.NewQuestionBank(config.AppConfig.QuestionsFile, usageRecorder)
	if err := bank.Load(); err != nil {
		log.Fatalf("Failed to load question bank: %v", err)
	}

	// AI stage is optional: without a key the heuristic carries every case.
	var evaluator core.ResponseEvaluator
	if config.AppConfig.AIAPIKey != "" {
		gemini, err := core.NewGeminiEvaluator(ctx, config.AppConfig.AIAPIKey, config.AppConfig.AIBackupKey)
		if err != nil {
			log.Printf("Warning: failed to initialize AI evaluator, heuristic only: %v", err)
		} else {
			evaluator = gemini
		}
	}

	heuristic := core.NewHeuristicScorer(core.ScoreBand{
		ClearLow:  config.AppConfig.ClearLow,
		ClearHigh: config.AppConfig.ClearHigh,
	})
	cache := core.NewAssistCache(core.DefaultCacheCapacity)
	limiter := core.NewUsageLimiter(config.AppConfig.AIDailyLimit)
	orchestrator := core.NewOrchestrator(heuristic, evaluator, cache, limiter)

	adminService := core.NewAdminService(configStore, bank, orchestrator)

	// Session manager with the log transport; a live platform client plugs in
	// by implementing the session delivery interfaces.
	transport := gateway.NewLogTransport()
	answerTimeout := time.Duration(config.AppConfig.AnswerTimeoutMins) * time.Minute
	sessions := session.NewManager(core.NewSuspicionScorer(), bank, orchestrator,
		transport, transport, transport, answerTimeout)

	configured := func() bool {
		cfg, err := adminService.GuildConfig(config.AppConfig.ServerID)
		if err != nil {
			log.Printf("Error reading guild config: %v", err)
			return false
		}
		return cfg != nil && cfg.IsConfigured
	}

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(orchestrator, bank, sessions, config.AppConfig.ServerID, configured)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // AI calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
