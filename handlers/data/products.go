package data

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"agentbazaar/handlers/transactions"
	"agentbazaar/middleware"
	"agentbazaar/models"
)

var (
	validate = validator.New()
	sanitize = bluemonday.StrictPolicy()
)

// PublishRequest is the request body for listing a market data product
type PublishRequest struct {
	Name              string   `json:"name" validate:"required,min=3,max=100"`
	Description       string   `json:"description" validate:"max=2000"`
	DataType          string   `json:"data_type" validate:"required"`
	Symbols           []string `json:"symbols" validate:"required,min=1,dive,min=1,max=30"`
	Timeframe         string   `json:"timeframe" validate:"required,max=10"`
	StartDate         string   `json:"start_date" validate:"required"`
	EndDate           string   `json:"end_date" validate:"required"`
	SizeBytes         int64    `json:"size_bytes" validate:"gte=0"`
	Price             float64  `json:"price" validate:"gte=0"`
	StoragePath       string   `json:"storage_path" validate:"required,max=500"`
	CompressionFormat string   `json:"compression_format" validate:"omitempty,oneof=gzip zstd lz4 none"`
}

// PublishHandler handles POST /v0/data
func PublishHandler(db *gorm.DB) http.HandlerFunc {
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

		var req PublishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.Name = sanitize.Sanitize(strings.TrimSpace(req.Name))
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "Invalid data listing: "+err.Error(), http.StatusBadRequest)
			return
		}

		dataType, err := models.NewDataType(req.DataType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		startDate, err := time.Parse(models.TimestampFormat, req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be RFC 3339", http.StatusBadRequest)
			return
		}
		endDate, err := time.Parse(models.TimestampFormat, req.EndDate)
		if err != nil {
			http.Error(w, "end_date must be RFC 3339", http.StatusBadRequest)
			return
		}
		if endDate.Before(startDate) {
			http.Error(w, "end_date before start_date", http.StatusBadRequest)
			return
		}

		product := models.NewMarketDataProduct(agent.AgentID, req.Name, req.Description,
			dataType, req.Symbols, req.Timeframe, startDate, endDate,
			req.SizeBytes, req.Price, req.StoragePath)
		if req.CompressionFormat != "" {
			product.CompressionFormat = req.CompressionFormat
		}

		if result := db.Create(product); result.Error != nil {
			http.Error(w, "Failed to create data product", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(product.ToDocument())
	}
}

// GetProductHandler handles GET /v0/data/{dataId}
func GetProductHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		dataID := vars["dataId"]

		var product models.MarketDataProduct
		if result := db.Where("data_id = ?", dataID).First(&product); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Data product not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(product.ToDocument())
	}
}

// ListProductsHandler handles GET /v0/data?type=ohlcv&symbol=BTC-PERP
func ListProductsHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := db.Model(&models.MarketDataProduct{})

		if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
			dataType, err := models.NewDataType(typeFilter)
			if err != nil {
				http.Error(w, "Invalid type filter", http.StatusBadRequest)
				return
			}
			query = query.Where("data_type = ?", dataType)
		}
		if provider := r.URL.Query().Get("provider"); provider != "" {
			query = query.Where("provider_agent_id = ?", provider)
		}

		var products []models.MarketDataProduct
		if result := query.Order("created_at DESC").Limit(100).Find(&products); result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		// Symbol filtering happens after load; symbols are stored as a JSON
		// array, not a relation.
		symbolFilter := r.URL.Query().Get("symbol")
		docs := make([]models.Document, 0, len(products))
		for i := range products {
			if symbolFilter != "" && !containsSymbol(products[i].Symbols, symbolFilter) {
				continue
			}
			docs = append(docs, products[i].ToDocument())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"products": docs,
			"count":    len(docs),
		})
	}
}

func containsSymbol(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if strings.EqualFold(s, symbol) {
			return true
		}
	}
	return false
}

// PurchaseHandler handles POST /v0/data/{dataId}/purchase
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
		dataID := vars["dataId"]

		var product models.MarketDataProduct
		if result := db.Where("data_id = ?", dataID).First(&product); result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				http.Error(w, "Data product not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		if product.ProviderAgentID == buyer.AgentID {
			http.Error(w, "Cannot purchase your own data product", http.StatusConflict)
			return
		}

		transactions.SettleCreditTransfer(db, w, buyer, product.ProviderAgentID,
			models.ItemTypeData, product.DataID, product.Price, nil)
	}
}
