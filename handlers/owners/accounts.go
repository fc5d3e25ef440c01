package owners

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"agentbazaar/middleware"
	"agentbazaar/models"
)

var validate = validator.New()

const sessionTTL = 24 * time.Hour

// SignupRequest is the request body for owner signup
type SignupRequest struct {
	Wallet   string `json:"wallet" validate:"required,min=6,max=100"`
	Password string `json:"password" validate:"required,min=10,max=128"`
}

// LoginRequest is the request body for owner login
type LoginRequest struct {
	Wallet   string `json:"wallet" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse carries a signed owner session token
type SessionResponse struct {
	Token     string `json:"token"`
	Wallet    string `json:"wallet"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

// SignupHandler handles POST /v0/owners/signup
func SignupHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.Wallet = strings.TrimSpace(req.Wallet)
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "Invalid signup: "+err.Error(), http.StatusBadRequest)
			return
		}

		var count int64
		db.Model(&models.OwnerAccount{}).Where("wallet = ?", req.Wallet).Count(&count)
		if count > 0 {
			http.Error(w, "Wallet already registered", http.StatusConflict)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		owner := models.OwnerAccount{
			Wallet:       req.Wallet,
			PasswordHash: string(hash),
			CreatedAt:    time.Now().UTC(),
		}
		if result := db.Create(&owner); result.Error != nil {
			http.Error(w, "Failed to create owner account", http.StatusInternalServerError)
			return
		}

		token, err := middleware.IssueOwnerToken(&owner, jwtSecret, sessionTTL)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(SessionResponse{
			Token:     token,
			Wallet:    owner.Wallet,
			ExpiresIn: int64(sessionTTL.Seconds()),
		})
	}
}

// LoginHandler handles POST /v0/owners/login
func LoginHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "Wallet and password required", http.StatusBadRequest)
			return
		}

		var owner models.OwnerAccount
		if result := db.Where("wallet = ?", strings.TrimSpace(req.Wallet)).First(&owner); result.Error != nil {
			// Same response for unknown wallet and bad password.
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(owner.PasswordHash), []byte(req.Password)); err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := middleware.IssueOwnerToken(&owner, jwtSecret, sessionTTL)
		if err != nil {
			http.Error(w, "Failed to issue token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SessionResponse{
			Token:     token,
			Wallet:    owner.Wallet,
			ExpiresIn: int64(sessionTTL.Seconds()),
		})
	}
}

// MyAgentsHandler handles GET /v0/owners/me/agents
func MyAgentsHandler(db *gorm.DB, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, httpErr := middleware.ValidateOwnerToken(r, db, jwtSecret)
		if httpErr != nil {
			http.Error(w, httpErr.Message, httpErr.StatusCode)
			return
		}

		var agents []models.TradingAgent
		if result := db.Where("owner_wallet = ?", owner.Wallet).Find(&agents); result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}

		docs := make([]models.Document, 0, len(agents))
		for i := range agents {
			docs = append(docs, agents[i].ToDocument())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"wallet": owner.Wallet,
			"agents": docs,
		})
	}
}
