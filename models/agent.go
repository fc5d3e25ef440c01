package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// TradingAgent is an autonomous trading agent registered in the marketplace.
type TradingAgent struct {
	AgentID            string             `json:"agent_id" gorm:"primaryKey;size:40"`
	OwnerWallet        string             `json:"owner_wallet" gorm:"not null;index;size:100"`
	Name               string             `json:"name" gorm:"not null;size:100"`
	Description        string             `json:"description" gorm:"size:1000"`
	Status             AgentStatus        `json:"status" gorm:"not null;size:20;default:registered"`
	RegistrationDate   time.Time          `json:"registration_date" gorm:"not null"`
	LastActive         time.Time          `json:"last_active" gorm:"not null"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics" gorm:"serializer:json"`
	CreditBalance      float64            `json:"credit_balance" gorm:"default:0"`
	ReputationScore    float64            `json:"reputation_score" gorm:"default:100"`
	Metadata           map[string]any     `json:"metadata" gorm:"serializer:json"`
}

// NewTradingAgent creates an agent with a generated id, default reputation,
// and registration/last-active set to now.
func NewTradingAgent(ownerWallet, name, description string) *TradingAgent {
	now := timeNow()
	return &TradingAgent{
		AgentID:            newEntityID("agent"),
		OwnerWallet:        ownerWallet,
		Name:               name,
		Description:        description,
		Status:             AgentStatusRegistered,
		RegistrationDate:   now,
		LastActive:         now,
		PerformanceMetrics: map[string]float64{},
		CreditBalance:      0.0,
		ReputationScore:    100.0,
		Metadata:           map[string]any{},
	}
}

// ToDocument converts the agent to its document-store shape. Timestamps
// become RFC 3339 strings and the status becomes its string tag.
func (a *TradingAgent) ToDocument() Document {
	return Document{
		"agent_id":            a.AgentID,
		"owner_wallet":        a.OwnerWallet,
		"name":                a.Name,
		"description":         a.Description,
		"status":              a.Status.String(),
		"registration_date":   formatTime(a.RegistrationDate),
		"last_active":         formatTime(a.LastActive),
		"performance_metrics": a.PerformanceMetrics,
		"credit_balance":      a.CreditBalance,
		"reputation_score":    a.ReputationScore,
		"metadata":            a.Metadata,
	}
}

// TradingAgentFromDocument reconstructs an agent from its document shape.
func TradingAgentFromDocument(doc Document) (*TradingAgent, error) {
	status, err := NewAgentStatus(docString(doc, "status"))
	if err != nil {
		return nil, err
	}
	registered, err := parseDocTime(doc, "registration_date")
	if err != nil {
		return nil, err
	}
	lastActive, err := parseDocTime(doc, "last_active")
	if err != nil {
		return nil, err
	}
	return &TradingAgent{
		AgentID:            docString(doc, "agent_id"),
		OwnerWallet:        docString(doc, "owner_wallet"),
		Name:               docString(doc, "name"),
		Description:        docString(doc, "description"),
		Status:             status,
		RegistrationDate:   registered,
		LastActive:         lastActive,
		PerformanceMetrics: docFloatMap(doc, "performance_metrics"),
		CreditBalance:      docFloat(doc, "credit_balance"),
		ReputationScore:    docFloat(doc, "reputation_score"),
		Metadata:           docAnyMap(doc, "metadata"),
	}, nil
}

// Touch records activity on the agent.
func (a *TradingAgent) Touch() {
	a.LastActive = timeNow()
}

// AgentCredential stores the API key issued to an agent at registration.
// Kept out of TradingAgent so credentials never leak into exported documents.
type AgentCredential struct {
	AgentID   string    `json:"agent_id" gorm:"primaryKey;size:40"`
	APIKey    string    `json:"-" gorm:"uniqueIndex;not null;size:100"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerAccount is a human owner who can log in and manage their agents.
type OwnerAccount struct {
	Wallet       string    `json:"wallet" gorm:"primaryKey;size:100"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
}

// GenerateAPIKey creates a secure random API key for an agent.
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "bazaar_sk_" + hex.EncodeToString(bytes), nil
}
