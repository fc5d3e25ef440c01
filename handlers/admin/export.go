package adminhandlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

// MarketplaceExport is the document-form dump of every collection.
type MarketplaceExport struct {
	Agents       []models.Document `json:"agents"`
	Strategies   []models.Document `json:"strategies"`
	DataProducts []models.Document `json:"data_products"`
	Transactions []models.Document `json:"transactions"`
}

// ExportHandler handles GET /v0/admin/export. Every entity is serialized to
// its document shape, suitable for loading into a document store or re-import.
func ExportHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var export MarketplaceExport

		var agents []models.TradingAgent
		if err := db.Find(&agents).Error; err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		for i := range agents {
			export.Agents = append(export.Agents, agents[i].ToDocument())
		}

		var strategies []models.TradingStrategy
		if err := db.Find(&strategies).Error; err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		for i := range strategies {
			export.Strategies = append(export.Strategies, strategies[i].ToDocument())
		}

		var products []models.MarketDataProduct
		if err := db.Find(&products).Error; err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		for i := range products {
			export.DataProducts = append(export.DataProducts, products[i].ToDocument())
		}

		var txns []models.Transaction
		if err := db.Find(&txns).Error; err != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		for i := range txns {
			export.Transactions = append(export.Transactions, txns[i].ToDocument())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(export)
	}
}

// ImportHandler handles POST /v0/admin/import. Documents are decoded back
// into entities and upserted; the first malformed document aborts the import.
func ImportHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, httpErr := middleware.ValidateAdmin(r, db, jwtSecret); httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var payload MarketplaceExport
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		imported := map[string]int{}
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, doc := range payload.Agents {
				agent, err := models.TradingAgentFromDocument(doc)
				if err != nil {
					return err
				}
				if err := tx.Save(agent).Error; err != nil {
					return err
				}
				imported["agents"]++
			}
			for _, doc := range payload.Strategies {
				strategy, err := models.TradingStrategyFromDocument(doc)
				if err != nil {
					return err
				}
				if err := tx.Save(strategy).Error; err != nil {
					return err
				}
				imported["strategies"]++
			}
			for _, doc := range payload.DataProducts {
				product, err := models.MarketDataProductFromDocument(doc)
				if err != nil {
					return err
				}
				if err := tx.Save(product).Error; err != nil {
					return err
				}
				imported["data_products"]++
			}
			for _, doc := range payload.Transactions {
				txn, err := models.TransactionFromDocument(doc)
				if err != nil {
					return err
				}
				if err := tx.Save(txn).Error; err != nil {
					return err
				}
				imported["transactions"]++
			}
			return nil
		})
		if err != nil {
			if verr, ok := err.(*models.ValidationError); ok {
				http.Error(w, verr.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Import failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"imported": imported,
		})
	}
}
