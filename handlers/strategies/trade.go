package strategies

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"agentbazaar/handlers/transactions"
	"agentbazaar/middleware"
	"agentbazaar/models"
)

// PurchaseHandler handles POST /v0/strategies/{strategyId}/purchase.
// Credits move from buyer to creator in one database transaction; the
// resulting Transaction row records the outcome.
func PurchaseHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		buyer, httpErr := middleware.ValidateVerifiedAgent(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
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

		if !strategy.IsActive {
			http.Error(w, "Strategy is not for sale", http.StatusConflict)
			return
		}
		if strategy.CreatorAgentID == buyer.AgentID {
			http.Error(w, "Cannot purchase your own strategy", http.StatusConflict)
			return
		}

		transactions.SettleCreditTransfer(db, w, buyer, strategy.CreatorAgentID,
			models.ItemTypeStrategy, strategy.StrategyID, strategy.Price,
			func(tx *gorm.DB) error {
				strategy.RecordSale()
				return tx.Model(&models.TradingStrategy{}).
					Where("strategy_id = ?", strategy.StrategyID).
					Updates(map[string]any{
						"total_sales": strategy.TotalSales,
						"updated_at":  strategy.UpdatedAt,
					}).Error
			})
	}
}

// RentRequest is the request body for an hourly rental
type RentRequest struct {
	Hours int `json:"hours"`
}

// RentHandler handles POST /v0/strategies/{strategyId}/rent
func RentHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		buyer, httpErr := middleware.ValidateVerifiedAgent(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req RentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Hours < 1 {
			http.Error(w, "hours must be a positive integer", http.StatusBadRequest)
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

		if !strategy.IsActive {
			http.Error(w, "Strategy is not for sale", http.StatusConflict)
			return
		}
		if strategy.RentalPricePerHour == nil {
			http.Error(w, "Strategy is not available for rental", http.StatusConflict)
			return
		}
		if strategy.CreatorAgentID == buyer.AgentID {
			http.Error(w, "Cannot rent your own strategy", http.StatusConflict)
			return
		}

		amount := *strategy.RentalPricePerHour * float64(req.Hours)
		transactions.SettleCreditTransfer(db, w, buyer, strategy.CreatorAgentID,
			models.ItemTypeRental, strategy.StrategyID, amount, nil)
	}
}

// RateRequest is the request body for rating a strategy
type RateRequest struct {
	Rating float64 `json:"rating" validate:"gte=1,lte=5"`
}

// RateHandler handles POST /v0/strategies/{strategyId}/rate.
// Only agents with a completed purchase or rental may rate.
func RateHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		agent, httpErr := middleware.ValidateVerifiedAgent(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var req RateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "rating must be between 1 and 5", http.StatusBadRequest)
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

		var purchases int64
		db.Model(&models.Transaction{}).
			Where("buyer_agent_id = ? AND item_id = ? AND status = ?",
				agent.AgentID, strategyID, models.TransactionStatusCompleted).
			Count(&purchases)
		if purchases == 0 {
			http.Error(w, "Only buyers can rate a strategy", http.StatusForbidden)
			return
		}

		var existing models.StrategyRating
		alreadyRated := db.Where("strategy_id = ? AND rater_agent_id = ?", strategyID, agent.AgentID).
			First(&existing).Error == nil
		if alreadyRated {
			http.Error(w, "Strategy already rated", http.StatusConflict)
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			rating := models.StrategyRating{
				StrategyID:   strategyID,
				RaterAgentID: agent.AgentID,
				Rating:       req.Rating,
				CreatedAt:    time.Now().UTC(),
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}

			var priorRatings int64
			if err := tx.Model(&models.StrategyRating{}).
				Where("strategy_id = ? AND rater_agent_id <> ?", strategyID, agent.AgentID).
				Count(&priorRatings).Error; err != nil {
				return err
			}
			strategy.RecordRating(req.Rating, priorRatings)
			return tx.Model(&models.TradingStrategy{}).
				Where("strategy_id = ?", strategyID).
				Updates(map[string]any{
					"average_rating": strategy.AverageRating,
					"updated_at":     strategy.UpdatedAt,
				}).Error
		})
		if err != nil {
			http.Error(w, "Failed to record rating", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(strategy.ToDocument())
	}
}
