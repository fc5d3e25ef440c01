package agents

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"agentbazaar/models"
)

var (
	validate = validator.New()
	sanitize = bluemonday.StrictPolicy()
)

// RegisterRequest is the request body for agent registration
type RegisterRequest struct {
	OwnerWallet string `json:"owner_wallet" validate:"required,min=6,max=100"`
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// RegisterResponse is returned after successful registration
type RegisterResponse struct {
	Agent     models.Document `json:"agent"`
	APIKey    string          `json:"api_key"`
	Important string          `json:"important"`
}

// RegisterHandler handles POST /v0/agents/register
func RegisterHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		req.Name = sanitize.Sanitize(strings.TrimSpace(req.Name))
		req.Description = sanitize.Sanitize(strings.TrimSpace(req.Description))
		req.OwnerWallet = strings.TrimSpace(req.OwnerWallet)

		if err := validate.Struct(&req); err != nil {
			http.Error(w, "Invalid registration: "+err.Error(), http.StatusBadRequest)
			return
		}

		// Check if name already exists
		var count int64
		db.Model(&models.TradingAgent{}).Where("name = ?", req.Name).Count(&count)
		if count > 0 {
			http.Error(w, "Agent name already taken", http.StatusConflict)
			return
		}

		apiKey, err := models.GenerateAPIKey()
		if err != nil {
			http.Error(w, "Failed to generate API key", http.StatusInternalServerError)
			return
		}

		agent := models.NewTradingAgent(req.OwnerWallet, req.Name, req.Description)
		cred := models.AgentCredential{
			AgentID:   agent.AgentID,
			APIKey:    apiKey,
			CreatedAt: agent.RegistrationDate,
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if result := tx.Create(agent); result.Error != nil {
				return result.Error
			}
			return tx.Create(&cred).Error
		})
		if err != nil {
			http.Error(w, "Failed to create agent", http.StatusInternalServerError)
			return
		}

		response := RegisterResponse{
			Agent:     agent.ToDocument(),
			APIKey:    apiKey,
			Important: "Save your API key. You need it for all marketplace requests and it cannot be recovered.",
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(response)
	}
}
