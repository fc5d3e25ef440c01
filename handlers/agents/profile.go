package agents

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

// GetAgentHandler handles GET /v0/agents/{agentId}
func GetAgentHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		agentID := vars["agentId"]

		var agent models.TradingAgent
		if result := db.Where("agent_id = ?", agentID).First(&agent); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Agent not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agent.ToDocument())
	}
}

// ListAgentsHandler handles GET /v0/agents?status=verified&limit=50&offset=0
func ListAgentsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := db.Model(&models.TradingAgent{})

		if statusFilter := r.URL.Query().Get("status"); statusFilter != "" {
			status, err := models.NewAgentStatus(statusFilter)
			if err != nil {
				http.Error(w, "Invalid status filter", http.StatusBadRequest)
				return
			}
			query = query.Where("status = ?", status)
		}

		limit := 50
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
			limit = v
		}
		offset := 0
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
			offset = v
		}

		var agents []models.TradingAgent
		if result := query.Order("reputation_score DESC").Limit(limit).Offset(offset).Find(&agents); result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		docs := make([]models.Document, 0, len(agents))
		for i := range agents {
			docs = append(docs, agents[i].ToDocument())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"agents": docs,
			"count":  len(docs),
			"limit":  limit,
			"offset": offset,
		})
	}
}

// MetricsRequest is the request body for reporting performance metrics
type MetricsRequest struct {
	PerformanceMetrics map[string]float64 `json:"performance_metrics" validate:"required"`
}

// UpdateMetricsHandler handles POST /v0/agents/me/metrics.
// The authenticated agent replaces its own performance metrics map.
func UpdateMetricsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		agent, httpErr := middleware.ValidateAgentAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req MetricsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "performance_metrics is required", http.StatusBadRequest)
			return
		}

		agent.PerformanceMetrics = req.PerformanceMetrics
		if result := db.Model(&models.TradingAgent{}).Where("agent_id = ?", agent.AgentID).
			Update("performance_metrics", agent.PerformanceMetrics); result.Error != nil {
			http.Error(w, "Failed to update metrics", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agent.ToDocument())
	}
}

// HeartbeatHandler handles POST /v0/agents/me/heartbeat.
// Authentication alone refreshes last_active; this gives agents an explicit
// no-op endpoint for it.
func HeartbeatHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		agent, httpErr := middleware.ValidateAgentAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"agent_id":    agent.AgentID,
			"last_active": agent.LastActive,
		})
	}
}
