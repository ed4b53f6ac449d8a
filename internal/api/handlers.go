package api

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/bhu-goloka/gatekeeper/internal/core"
	"github.com/bhu-goloka/gatekeeper/internal/session"
)

type APIHandler struct {
	orchestrator *core.Orchestrator
	bank         *core.QuestionBank
	sessions     *session.Manager
	serverID     string
	configured   func() bool
	startedAt    time.Time
}

func NewAPIHandler(orch *core.Orchestrator, bank *core.QuestionBank, sessions *session.Manager, serverID string, configured func() bool) *APIHandler {
	return &APIHandler{
		orchestrator: orch,
		bank:         bank,
		sessions:     sessions,
		serverID:     serverID,
		configured:   configured,
		startedAt:    time.Now(),
	}
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"pong": time.Now().UTC().Format(time.RFC3339),
	})
}

// StatusResponse is the live operational snapshot served at /status.
type StatusResponse struct {
	Status            string                 `json:"status"`
	ServerID          string                 `json:"server_id"`
	Configured        bool                   `json:"configured"`
	UptimeSeconds     int64                  `json:"uptime_seconds"`
	ActiveSessions    int                    `json:"active_sessions"`
	CompletedSessions int                    `json:"completed_sessions"`
	AbandonedSessions int                    `json:"abandoned_sessions"`
	Questions         core.PoolCounts        `json:"questions"`
	QuestionsVersion  int                    `json:"questions_version"`
	Scoring           core.OrchestratorStats `json:"scoring"`
}

func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	active, completed, abandoned := h.sessions.Counts()

	resp := StatusResponse{
		Status:            "running",
		ServerID:          h.serverID,
		Configured:        h.configured(),
		UptimeSeconds:     int64(time.Since(h.startedAt).Seconds()),
		ActiveSessions:    active,
		CompletedSessions: completed,
		AbandonedSessions: abandoned,
		Questions:         h.bank.Counts(),
		Scoring:           h.orchestrator.Stats(),
	}
	if snap := h.bank.Snapshot(); snap != nil {
		resp.QuestionsVersion = snap.Version
	}
	writeJSON(w, http.StatusOK, resp)
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Gatekeeper</title></head>
<body>
<h1>Gatekeeper verification bot</h1>
<p>Status: running, up {{.Uptime}}</p>
<ul>
<li>Active sessions: {{.Active}}</li>
<li>Completed: {{.Completed}}</li>
<li>Abandoned: {{.Abandoned}}</li>
<li>AI calls today: {{.Scoring.AICallsToday}}/{{.Scoring.AIDailyLimit}}</li>
<li>Cache: {{.Scoring.CacheSize}} entries ({{.Scoring.CacheHits}} hits / {{.Scoring.CacheMisses}} misses)</li>
</ul>
</body>
</html>
`))

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	active, completed, abandoned := h.sessions.Counts()
	data := struct {
		Uptime    string
		Active    int
		Completed int
		Abandoned int
		Scoring   core.OrchestratorStats
	}{
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Active:    active,
		Completed: completed,
		Abandoned: abandoned,
		Scoring:   h.orchestrator.Stats(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		log.Printf("Error rendering dashboard: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
