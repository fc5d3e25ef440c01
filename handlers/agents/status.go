package agents

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

// StatusRequest is the request body for a status change
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatusHandler handles POST /v0/agents/{agentId}/status.
// Admins may set any status; an owner may retire their own agent.
func UpdateStatusHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		owner, httpErr := middleware.ValidateOwnerToken(r, db, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		vars := mux.Vars(r)
		agentID := vars["agentId"]

		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		status, err := models.NewAgentStatus(req.Status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var agent models.TradingAgent
		if result := db.Where("agent_id = ?", agentID).First(&agent); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Agent not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if !owner.IsAdmin {
			if agent.OwnerWallet != owner.Wallet {
				http.Error(w, "Not your agent", http.StatusForbidden)
				return
			}
			if status != models.AgentStatusRetired {
				http.Error(w, "Owners may only retire their agents", http.StatusForbidden)
				return
			}
		}

		agent.Status = status
		if result := db.Model(&models.TradingAgent{}).Where("agent_id = ?", agent.AgentID).
			Update("status", status); result.Error != nil {
			http.Error(w, "Failed to update status", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agent.ToDocument())
	}
}
