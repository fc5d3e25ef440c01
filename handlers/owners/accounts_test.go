package owners

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agentbazaar/models"
)

const testSecret = "test-secret-please-rotate"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.OwnerAccount{},
		&models.TradingAgent{},
	))
	return db
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignupAndLogin(t *testing.T) {
	db := newTestDB(t)
	signup := SignupHandler(db, testSecret)
	login := LoginHandler(db, testSecret)

	rec := postJSON(t, signup, "/v0/owners/signup", SignupRequest{
		Wallet:   "0xabc123def456",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "0xabc123def456", session.Wallet)

	// Password hash is stored, never the password.
	var owner models.OwnerAccount
	require.NoError(t, db.Where("wallet = ?", "0xabc123def456").First(&owner).Error)
	assert.NotEqual(t, "correct horse battery", owner.PasswordHash)
	assert.NotEmpty(t, owner.PasswordHash)

	rec = postJSON(t, login, "/v0/owners/login", LoginRequest{
		Wallet:   "0xabc123def456",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Duplicate signup is rejected.
	rec = postJSON(t, signup, "/v0/owners/signup", SignupRequest{
		Wallet:   "0xabc123def456",
		Password: "another password!",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	signup := SignupHandler(db, testSecret)
	login := LoginHandler(db, testSecret)

	rec := postJSON(t, signup, "/v0/owners/signup", SignupRequest{
		Wallet:   "0xabc123def456",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Wrong password and unknown wallet yield the same status.
	rec = postJSON(t, login, "/v0/owners/login", LoginRequest{
		Wallet:   "0xabc123def456",
		Password: "wrong password!!",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, login, "/v0/owners/login", LoginRequest{
		Wallet:   "0xnobody",
		Password: "correct horse battery",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupValidation(t *testing.T) {
	db := newTestDB(t)
	signup := SignupHandler(db, testSecret)

	rec := postJSON(t, signup, "/v0/owners/signup", SignupRequest{
		Wallet:   "0xabc123def456",
		Password: "short", // under the 10 char minimum
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, signup, "/v0/owners/signup", SignupRequest{
		Password: "correct horse battery",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMyAgents(t *testing.T) {
	db := newTestDB(t)
	signup := SignupHandler(db, testSecret)

	rec := postJSON(t, signup, "/v0/owners/signup", SignupRequest{
		Wallet:   "0xabc123def456",
		Password: "correct horse battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var session SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	mine := models.NewTradingAgent("0xabc123def456", "my-bot", "")
	require.NoError(t, db.Create(mine).Error)
	other := models.NewTradingAgent("0xsomeoneelse1", "other-bot", "")
	require.NoError(t, db.Create(other).Error)

	req := httptest.NewRequest(http.MethodGet, "/v0/owners/me/agents", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	out := httptest.NewRecorder()
	MyAgentsHandler(db, testSecret)(out, req)
	require.Equal(t, http.StatusOK, out.Code, out.Body.String())

	var resp struct {
		Wallet string            `json:"wallet"`
		Agents []models.Document `json:"agents"`
	}
	require.NoError(t, json.Unmarshal(out.Body.Bytes(), &resp))
	assert.Equal(t, "0xabc123def456", resp.Wallet)
	require.Len(t, resp.Agents, 1)
	assert.Equal(t, mine.AgentID, resp.Agents[0]["agent_id"])

	// No token at all.
	req = httptest.NewRequest(http.MethodGet, "/v0/owners/me/agents", nil)
	out = httptest.NewRecorder()
	MyAgentsHandler(db, testSecret)(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}
