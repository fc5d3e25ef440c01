package strategies

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agentbazaar/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.TradingAgent{},
		&models.AgentCredential{},
		&models.TradingStrategy{},
		&models.StrategyRating{},
		&models.Transaction{},
	))
	return db
}

func newVerifiedAgent(t *testing.T, db *gorm.DB, name string, credits float64) (*models.TradingAgent, string) {
	t.Helper()
	agent := models.NewTradingAgent("0x"+name, name, "")
	agent.Status = models.AgentStatusVerified
	agent.CreditBalance = credits
	require.NoError(t, db.Create(agent).Error)

	apiKey, err := models.GenerateAPIKey()
	require.NoError(t, err)
	cred := models.AgentCredential{AgentID: agent.AgentID, APIKey: apiKey, CreatedAt: time.Now().UTC()}
	require.NoError(t, db.Create(&cred).Error)
	return agent, apiKey
}

func newRouter(db *gorm.DB) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v0/strategies", PublishHandler(db)).Methods("POST")
	r.HandleFunc("/v0/strategies", ListStrategiesHandler(db)).Methods("GET")
	r.HandleFunc("/v0/strategies/{strategyId}", GetStrategyHandler(db)).Methods("GET")
	r.HandleFunc("/v0/strategies/{strategyId}/purchase", PurchaseHandler(db)).Methods("POST")
	r.HandleFunc("/v0/strategies/{strategyId}/rent", RentHandler(db)).Methods("POST")
	r.HandleFunc("/v0/strategies/{strategyId}/rate", RateHandler(db)).Methods("POST")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path, apiKey string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if apiKey != "" {
		req.Header.Set("X-Agent-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const testCodeHash = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func TestPublishAndGetStrategy(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)
	_, apiKey := newVerifiedAgent(t, db, "creator", 0)

	rec := doJSON(t, router, http.MethodPost, "/v0/strategies", apiKey, PublishRequest{
		Name:         "funding-arb",
		Description:  "# Basis capture\n\nCollects funding.",
		StrategyType: "arbitrage",
		Price:        120,
		CodeHash:     testCodeHash,
		StoragePath:  "strategies/funding-arb.tar.gz",
		Version:      "1.2.0",
		Dependencies: []string{"ccxt"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "arbitrage", doc["strategy_type"])
	assert.Equal(t, "1.2.0", doc["version"])
	assert.Equal(t, true, doc["is_active"])

	strategyID := doc["strategy_id"].(string)
	rec = doJSON(t, router, http.MethodGet, "/v0/strategies/"+strategyID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Contains(t, detail["description_html"], "<h1>")
}

func TestPublishRejectsInvalidListing(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)
	_, apiKey := newVerifiedAgent(t, db, "creator", 0)

	// Unknown strategy type
	rec := doJSON(t, router, http.MethodPost, "/v0/strategies", apiKey, PublishRequest{
		Name: "bad", StrategyType: "astrology", CodeHash: testCodeHash, StoragePath: "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Bad code hash
	rec = doJSON(t, router, http.MethodPost, "/v0/strategies", apiKey, PublishRequest{
		Name: "bad-hash", StrategyType: "technical", CodeHash: "nope", StoragePath: "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unverified agents cannot publish
	db2 := newTestDB(t)
	router2 := newRouter(db2)
	agent := models.NewTradingAgent("0xunverified", "newbie", "")
	require.NoError(t, db2.Create(agent).Error)
	apiKey2, _ := models.GenerateAPIKey()
	require.NoError(t, db2.Create(&models.AgentCredential{
		AgentID: agent.AgentID, APIKey: apiKey2, CreatedAt: time.Now().UTC(),
	}).Error)

	rec = doJSON(t, router2, http.MethodPost, "/v0/strategies", apiKey2, PublishRequest{
		Name: "legit", StrategyType: "technical", CodeHash: testCodeHash, StoragePath: "x",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPurchaseMovesCredits(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)

	seller, _ := newVerifiedAgent(t, db, "seller", 10)
	buyer, buyerKey := newVerifiedAgent(t, db, "buyer", 500)

	strategy := models.NewTradingStrategy(seller.AgentID, "scalper", "", models.StrategyTypeMarketMaking, 120, testCodeHash, "strategies/scalper.tar.gz")
	require.NoError(t, db.Create(strategy).Error)

	rec := doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/purchase", buyerKey, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success     bool            `json:"success"`
		Transaction models.Document `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "completed", resp.Transaction["status"])

	txn, err := models.TransactionFromDocument(resp.Transaction)
	require.NoError(t, err)
	assert.Equal(t, buyer.AgentID, txn.BuyerAgentID)
	assert.Equal(t, seller.AgentID, txn.SellerAgentID)
	assert.NotNil(t, txn.CompletedAt)

	var buyerAfter, sellerAfter models.TradingAgent
	require.NoError(t, db.Where("agent_id = ?", buyer.AgentID).First(&buyerAfter).Error)
	require.NoError(t, db.Where("agent_id = ?", seller.AgentID).First(&sellerAfter).Error)
	assert.Equal(t, 380.0, buyerAfter.CreditBalance)
	assert.Equal(t, 130.0, sellerAfter.CreditBalance)

	var strategyAfter models.TradingStrategy
	require.NoError(t, db.Where("strategy_id = ?", strategy.StrategyID).First(&strategyAfter).Error)
	assert.Equal(t, int64(1), strategyAfter.TotalSales)
}

func TestPurchaseInsufficientCredits(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)

	seller, _ := newVerifiedAgent(t, db, "seller", 0)
	_, buyerKey := newVerifiedAgent(t, db, "buyer", 5)

	strategy := models.NewTradingStrategy(seller.AgentID, "scalper", "", models.StrategyTypeMarketMaking, 120, testCodeHash, "strategies/scalper.tar.gz")
	require.NoError(t, db.Create(strategy).Error)

	rec := doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/purchase", buyerKey, nil)
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	var resp struct {
		Success     bool            `json:"success"`
		Transaction models.Document `json:"transaction"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "failed", resp.Transaction["status"])

	// Balances untouched, failure recorded.
	var sellerAfter models.TradingAgent
	require.NoError(t, db.Where("agent_id = ?", seller.AgentID).First(&sellerAfter).Error)
	assert.Equal(t, 0.0, sellerAfter.CreditBalance)

	var failed int64
	db.Model(&models.Transaction{}).Where("status = ?", models.TransactionStatusFailed).Count(&failed)
	assert.Equal(t, int64(1), failed)
}

func TestPurchaseOwnStrategyRejected(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)

	creator, creatorKey := newVerifiedAgent(t, db, "creator", 500)
	strategy := models.NewTradingStrategy(creator.AgentID, "scalper", "", models.StrategyTypeTechnical, 10, testCodeHash, "x")
	require.NoError(t, db.Create(strategy).Error)

	rec := doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/purchase", creatorKey, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRentChargesHourly(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)

	seller, _ := newVerifiedAgent(t, db, "seller", 0)
	buyer, buyerKey := newVerifiedAgent(t, db, "buyer", 100)

	rental := 2.5
	strategy := models.NewTradingStrategy(seller.AgentID, "scalper", "", models.StrategyTypeMarketMaking, 120, testCodeHash, "x")
	strategy.RentalPricePerHour = &rental
	require.NoError(t, db.Create(strategy).Error)

	rec := doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/rent", buyerKey, RentRequest{Hours: 4})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var buyerAfter models.TradingAgent
	require.NoError(t, db.Where("agent_id = ?", buyer.AgentID).First(&buyerAfter).Error)
	assert.Equal(t, 90.0, buyerAfter.CreditBalance)

	// No rental price listed -> rental refused.
	noRental := models.NewTradingStrategy(seller.AgentID, "no-rent", "", models.StrategyTypeTechnical, 10, testCodeHash, "x")
	require.NoError(t, db.Create(noRental).Error)
	rec = doJSON(t, router, http.MethodPost, "/v0/strategies/"+noRental.StrategyID+"/rent", buyerKey, RentRequest{Hours: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRateRequiresPurchase(t *testing.T) {
	db := newTestDB(t)
	router := newRouter(db)

	seller, _ := newVerifiedAgent(t, db, "seller", 0)
	_, buyerKey := newVerifiedAgent(t, db, "buyer", 500)
	_, outsiderKey := newVerifiedAgent(t, db, "outsider", 500)

	strategy := models.NewTradingStrategy(seller.AgentID, "scalper", "", models.StrategyTypeMarketMaking, 100, testCodeHash, "x")
	require.NoError(t, db.Create(strategy).Error)

	rec := doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/purchase", buyerKey, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Non-buyer cannot rate.
	rec = doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/rate", outsiderKey, RateRequest{Rating: 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Buyer rates once.
	rec = doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/rate", buyerKey, RateRequest{Rating: 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var doc models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, 4.0, doc["average_rating"])

	// Rating twice is rejected.
	rec = doJSON(t, router, http.MethodPost, "/v0/strategies/"+strategy.StrategyID+"/rate", buyerKey, RateRequest{Rating: 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
