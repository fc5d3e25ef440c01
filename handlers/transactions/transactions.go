package transactions

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

// GetTransactionHandler handles GET /v0/transactions/{transactionId}.
// Only the buyer, the seller, or an admin may view a transaction.
func GetTransactionHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		transactionID := vars["transactionId"]

		var txn models.Transaction
		if result := db.Where("transaction_id = ?", transactionID).First(&txn); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Transaction not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if agent, agentErr := middleware.ValidateAgentAPIKey(r, db); agentErr == nil {
			if agent.AgentID != txn.BuyerAgentID && agent.AgentID != txn.SellerAgentID {
				http.Error(w, "Not a party to this transaction", http.StatusForbidden)
				return
			}
		} else if _, adminErr := middleware.ValidateAdmin(r, db, jwtSecret); adminErr != nil {
			// A Bearer token that is not an agent key was an owner-session
			// attempt; report the admin failure rather than the agent one.
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") && !strings.HasPrefix(auth, "Bearer bazaar_sk_") {
				http.Error(w, adminErr.Message, adminErr.StatusCode)
				return
			}
			http.Error(w, agentErr.Message, agentErr.StatusCode)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(txn.ToDocument())
	}
}

// ListMyTransactionsHandler handles GET /v0/transactions?role=buyer
func ListMyTransactionsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agent, httpErr := middleware.ValidateAgentAPIKey(r, db)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		query := db.Model(&models.Transaction{})
		switch r.URL.Query().Get("role") {
		case "buyer":
			query = query.Where("buyer_agent_id = ?", agent.AgentID)
		case "seller":
			query = query.Where("seller_agent_id = ?", agent.AgentID)
		default:
			query = query.Where("buyer_agent_id = ? OR seller_agent_id = ?", agent.AgentID, agent.AgentID)
		}

		if statusFilter := r.URL.Query().Get("status"); statusFilter != "" {
			status, err := models.NewTransactionStatus(statusFilter)
			if err != nil {
				http.Error(w, "Invalid status filter", http.StatusBadRequest)
				return
			}
			query = query.Where("status = ?", status)
		}

		var txns []models.Transaction
		if result := query.Order("created_at DESC").Limit(100).Find(&txns); result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		docs := make([]models.Document, 0, len(txns))
		for i := range txns {
			docs = append(docs, txns[i].ToDocument())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"transactions": docs,
			"count":        len(docs),
		})
	}
}

// DisputeRequest is the request body for disputing a transaction
type DisputeRequest struct {
	Reason string `json:"reason"`
}

// DisputeHandler handles POST /v0/transactions/{transactionId}/dispute.
// The buyer flags a completed transaction for admin review.
func DisputeHandler(db *gorm.DB) http.HandlerFunc {
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

		vars := mux.Vars(r)
		transactionID := vars["transactionId"]

		var req DisputeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		var txn models.Transaction
		if result := db.Where("transaction_id = ?", transactionID).First(&txn); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Transaction not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if txn.BuyerAgentID != agent.AgentID {
			http.Error(w, "Only the buyer can dispute a transaction", http.StatusForbidden)
			return
		}
		if txn.Status != models.TransactionStatusCompleted {
			http.Error(w, "Only completed transactions can be disputed", http.StatusConflict)
			return
		}

		txn.SetStatus(models.TransactionStatusDisputed)
		if req.Reason != "" {
			if txn.Metadata == nil {
				txn.Metadata = map[string]any{}
			}
			txn.Metadata["dispute_reason"] = req.Reason
		}
		if result := db.Model(&models.Transaction{}).Where("transaction_id = ?", txn.TransactionID).
			Updates(map[string]any{
				"status":     txn.Status,
				"updated_at": txn.UpdatedAt,
				"metadata":   txn.Metadata,
			}); result.Error != nil {
			http.Error(w, "Failed to dispute transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(txn.ToDocument())
	}
}

// RefundHandler handles POST /v0/admin/transactions/{transactionId}/refund.
// An admin resolves a disputed transaction by moving the credits back.
func RefundHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		vars := mux.Vars(r)
		transactionID := vars["transactionId"]

		var txn models.Transaction
		if result := db.Where("transaction_id = ?", transactionID).First(&txn); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Transaction not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if txn.Status != models.TransactionStatusDisputed {
			http.Error(w, "Only disputed transactions can be refunded", http.StatusConflict)
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.TradingAgent{}).Where("agent_id = ?", txn.BuyerAgentID).
				Update("credit_balance", gorm.Expr("credit_balance + ?", txn.Amount)).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.TradingAgent{}).Where("agent_id = ?", txn.SellerAgentID).
				Update("credit_balance", gorm.Expr("credit_balance - ?", txn.Amount)).Error; err != nil {
				return err
			}
			txn.SetStatus(models.TransactionStatusRefunded)
			return tx.Model(&models.Transaction{}).Where("transaction_id = ?", txn.TransactionID).
				Updates(map[string]any{
					"status":     txn.Status,
					"updated_at": txn.UpdatedAt,
				}).Error
		})
		if err != nil {
			http.Error(w, "Failed to refund transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(txn.ToDocument())
	}
}
