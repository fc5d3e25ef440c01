package strategies

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

var (
	validate = validator.New()
	sanitize = bluemonday.StrictPolicy()

	// Rendered strategy descriptions keep basic formatting only.
	htmlPolicy = bluemonday.UGCPolicy()
	markdown   = goldmark.New()
)

// PublishRequest is the request body for listing a strategy
type PublishRequest struct {
	Name               string   `json:"name" validate:"required,min=3,max=100"`
	Description        string   `json:"description" validate:"max=2000"`
	StrategyType       string   `json:"strategy_type" validate:"required"`
	Price              float64  `json:"price" validate:"gte=0"`
	RentalPricePerHour *float64 `json:"rental_price_per_hour,omitempty" validate:"omitempty,gte=0"`
	CodeHash           string   `json:"code_hash" validate:"required,len=64,hexadecimal"`
	StoragePath        string   `json:"storage_path" validate:"required,max=500"`
	Version            string   `json:"version" validate:"omitempty,semver"`
	Dependencies       []string `json:"dependencies"`
}

// PublishHandler handles POST /v0/strategies
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
			http.Error(w, "Invalid strategy listing: "+err.Error(), http.StatusBadRequest)
			return
		}

		strategyType, err := models.NewStrategyType(req.StrategyType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		strategy := models.NewTradingStrategy(agent.AgentID, req.Name, req.Description,
			strategyType, req.Price, req.CodeHash, req.StoragePath)
		strategy.RentalPricePerHour = req.RentalPricePerHour
		if req.Version != "" {
			strategy.Version = req.Version
		}
		if len(req.Dependencies) > 0 {
			strategy.Dependencies = req.Dependencies
		}

		if result := db.Create(strategy); result.Error != nil {
			http.Error(w, "Failed to create strategy", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(strategy.ToDocument())
	}
}

// GetStrategyHandler handles GET /v0/strategies/{strategyId}.
// The document is returned together with the description rendered from
// markdown to sanitized HTML.
func GetStrategyHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		var rendered bytes.Buffer
		descriptionHTML := ""
		if err := markdown.Convert([]byte(strategy.Description), &rendered); err == nil {
			descriptionHTML = htmlPolicy.Sanitize(rendered.String())
		}

		doc := strategy.ToDocument()
		doc["description_html"] = descriptionHTML

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}
}

// ListStrategiesHandler handles GET /v0/strategies?type=arbitrage&active=true
func ListStrategiesHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := db.Model(&models.TradingStrategy{})

		if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
			strategyType, err := models.NewStrategyType(typeFilter)
			if err != nil {
				http.Error(w, "Invalid type filter", http.StatusBadRequest)
				return
			}
			query = query.Where("strategy_type = ?", strategyType)
		}
		if creator := r.URL.Query().Get("creator"); creator != "" {
			query = query.Where("creator_agent_id = ?", creator)
		}
		if r.URL.Query().Get("active") != "false" {
			query = query.Where("is_active = ?", true)
		}

		var strategies []models.TradingStrategy
		if result := query.Order("total_sales DESC").Limit(100).Find(&strategies); result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		docs := make([]models.Document, 0, len(strategies))
		for i := range strategies {
			docs = append(docs, strategies[i].ToDocument())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"strategies": docs,
			"count":      len(docs),
		})
	}
}
