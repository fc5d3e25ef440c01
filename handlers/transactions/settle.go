package transactions

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"agentbazaar/models"
)

// PurchaseResponse is returned after a purchase or rental attempt
type PurchaseResponse struct {
	Success     bool            `json:"success"`
	Transaction models.Document `json:"transaction"`
	Message     string          `json:"message"`
}

// SettleCreditTransfer debits the buyer, credits the seller, and records a
// Transaction, all atomically, then writes the HTTP response. Insufficient
// credits leave balances untouched and record a failed transaction. There is
// no escrow protocol behind this; the transfer either settles in one
// database transaction or it does not happen.
func SettleCreditTransfer(db *gorm.DB, w http.ResponseWriter, buyer *models.TradingAgent,
	sellerAgentID, itemType, itemID string, amount float64, onSettled func(tx *gorm.DB) error) {

	txn := models.NewTransaction(buyer.AgentID, sellerAgentID, itemType, itemID, amount)

	if buyer.CreditBalance < amount {
		txn.SetStatus(models.TransactionStatusFailed)
		txn.Metadata["failure_reason"] = "insufficient credits"
		db.Create(txn)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(PurchaseResponse{
			Success:     false,
			Transaction: txn.ToDocument(),
			Message:     "Insufficient credits",
		})
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TradingAgent{}).Where("agent_id = ?", buyer.AgentID).
			Update("credit_balance", gorm.Expr("credit_balance - ?", amount)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.TradingAgent{}).Where("agent_id = ?", sellerAgentID).
			Update("credit_balance", gorm.Expr("credit_balance + ?", amount)).Error; err != nil {
			return err
		}
		if onSettled != nil {
			if err := onSettled(tx); err != nil {
				return err
			}
		}
		txn.SetStatus(models.TransactionStatusCompleted)
		return tx.Create(txn).Error
	})
	if err != nil {
		http.Error(w, "Failed to settle purchase", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(PurchaseResponse{
		Success:     true,
		Transaction: txn.ToDocument(),
		Message:     "Purchase complete",
	})
}
