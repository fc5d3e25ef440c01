package middleware

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"agentbazaar/models"
)

// HTTPError carries a status code alongside a client-safe message.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// ValidateAgentAPIKey validates an agent's API key and returns the agent.
func ValidateAgentAPIKey(r *http.Request, db *gorm.DB) (*models.TradingAgent, *HTTPError) {
	// Try X-Agent-API-Key header first
	apiKey := r.Header.Get("X-Agent-API-Key")

	// Fallback to Authorization header with "Agent" prefix
	if apiKey == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Agent ") {
			apiKey = strings.TrimPrefix(authHeader, "Agent ")
		} else if strings.HasPrefix(authHeader, "Bearer bazaar_sk_") {
			apiKey = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if apiKey == "" {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Agent API key required. Use X-Agent-API-Key header or 'Agent <key>' in Authorization header",
		}
	}

	if !strings.HasPrefix(apiKey, "bazaar_sk_") {
		return nil, &HTTPError{
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid API key format",
		}
	}

	var cred models.AgentCredential
	result := db.Where("api_key = ?", apiKey).First(&cred)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, &HTTPError{
				StatusCode: http.StatusUnauthorized,
				Message:    "Invalid agent API key",
			}
		}
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error validating agent",
		}
	}

	var agent models.TradingAgent
	if result := db.Where("agent_id = ?", cred.AgentID).First(&agent); result.Error != nil {
		return nil, &HTTPError{
			StatusCode: http.StatusInternalServerError,
			Message:    "Database error loading agent",
		}
	}

	switch agent.Status {
	case models.AgentStatusSuspended:
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Agent account is suspended",
		}
	case models.AgentStatusRetired:
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Agent account is retired",
		}
	}

	// Any authenticated call counts as activity.
	agent.Touch()
	db.Model(&models.TradingAgent{}).Where("agent_id = ?", agent.AgentID).
		Update("last_active", agent.LastActive)

	return &agent, nil
}

// ValidateVerifiedAgent validates that an agent is authenticated and has
// passed verification. Listing and purchasing require a verified agent.
func ValidateVerifiedAgent(r *http.Request, db *gorm.DB) (*models.TradingAgent, *HTTPError) {
	agent, httpErr := ValidateAgentAPIKey(r, db)
	if httpErr != nil {
		return nil, httpErr
	}

	if agent.Status != models.AgentStatusVerified {
		return nil, &HTTPError{
			StatusCode: http.StatusForbidden,
			Message:    "Agent must be verified before trading in the marketplace",
		}
	}

	return agent, nil
}
