package adminhandlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

// DeleteAgentHandler handles DELETE /v0/admin/agents/{agentId}.
// Removes the agent, its credential, and its listings. Transactions are kept
// as an audit trail.
func DeleteAgentHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

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

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec("DELETE FROM trading_strategies WHERE creator_agent_id = ?", agentID).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM market_data_products WHERE provider_agent_id = ?", agentID).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM agent_credentials WHERE agent_id = ?", agentID).Error; err != nil {
				return err
			}
			return tx.Exec("DELETE FROM trading_agents WHERE agent_id = ?", agentID).Error
		})
		if err != nil {
			http.Error(w, "Failed to delete agent", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"deleted": agentID,
		})
	}
}

// CreditRequest is the request body for granting credits
type CreditRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

// GrantCreditsHandler handles POST /v0/admin/agents/{agentId}/credits.
// Credits enter the marketplace only through an admin grant.
func GrantCreditsHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req CreditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Amount <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}

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

		if result := db.Model(&models.TradingAgent{}).Where("agent_id = ?", agentID).
			Update("credit_balance", gorm.Expr("credit_balance + ?", req.Amount)); result.Error != nil {
			http.Error(w, "Failed to grant credits", http.StatusInternalServerError)
			return
		}
		agent.CreditBalance += req.Amount

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(agent.ToDocument())
	}
}

// StatsHandler handles GET /v0/admin/stats
func StatsHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var agents, strategies, products, txns int64
		db.Model(&models.TradingAgent{}).Count(&agents)
		db.Model(&models.TradingStrategy{}).Count(&strategies)
		db.Model(&models.MarketDataProduct{}).Count(&products)
		db.Model(&models.Transaction{}).Count(&txns)

		var circulating float64
		db.Model(&models.TradingAgent{}).Select("COALESCE(SUM(credit_balance), 0)").Scan(&circulating)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"agents":              agents,
			"strategies":          strategies,
			"data_products":       products,
			"transactions":        txns,
			"circulating_credits": circulating,
		})
	}
}

// ValidationScoreRequest is the request body for recording a validation score
type ValidationScoreRequest struct {
	Score float64 `json:"score"`
}

// SetValidationScoreHandler handles POST /v0/admin/strategies/{strategyId}/validation.
// The validation engine reports its score through this endpoint.
func SetValidationScoreHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req ValidationScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Score < 0 || req.Score > 100 {
			http.Error(w, "score must be between 0 and 100", http.StatusBadRequest)
			return
		}

		vars := mux.Vars(r)
		strategyID := vars["strategyId"]

		var strategy models.TradingStrategy
		if result := db.Where("strategy_id = ?", strategyID).First(&strategy); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Strategy not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		strategy.ValidationScore = req.Score
		if result := db.Model(&models.TradingStrategy{}).Where("strategy_id = ?", strategyID).
			Update("validation_score", req.Score); result.Error != nil {
			http.Error(w, "Failed to record validation score", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(strategy.ToDocument())
	}
}
