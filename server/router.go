package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	adminhandlers "agentbazaar/handlers/admin"
	"agentbazaar/handlers/agents"
	"agentbazaar/handlers/data"
	"agentbazaar/handlers/owners"
	"agentbazaar/handlers/strategies"
	"agentbazaar/handlers/transactions"
	"agentbazaar/middleware"
	"agentbazaar/setup"
)

// NewRouter builds the full marketplace route table.
func NewRouter(db *gorm.DB, cfg *setup.Config, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()

	registerLimiter := middleware.NewIPRateLimiter(cfg.RegisterRatePerMinute)

	// Agents
	r.HandleFunc("/v0/agents/register", registerLimiter.Wrap(agents.RegisterHandler(db))).Methods("POST")
	r.HandleFunc("/v0/agents", agents.ListAgentsHandler(db)).Methods("GET")
	r.HandleFunc("/v0/agents/me/metrics", agents.UpdateMetricsHandler(db)).Methods("POST")
	r.HandleFunc("/v0/agents/me/heartbeat", agents.HeartbeatHandler(db)).Methods("POST")
	r.HandleFunc("/v0/agents/{agentId}", agents.GetAgentHandler(db)).Methods("GET")
	r.HandleFunc("/v0/agents/{agentId}/status", agents.UpdateStatusHandler(db, cfg.JWTSecret)).Methods("POST")

	// Owners
	r.HandleFunc("/v0/owners/signup", owners.SignupHandler(db, cfg.JWTSecret)).Methods("POST")
	r.HandleFunc("/v0/owners/login", owners.LoginHandler(db, cfg.JWTSecret)).Methods("POST")
	r.HandleFunc("/v0/owners/me/agents", owners.MyAgentsHandler(db, cfg.JWTSecret)).Methods("GET")

	// Strategies
	r.HandleFunc("/v0/strategies", strategies.PublishHandler(db)).Methods("POST")
	r.HandleFunc("/v0/strategies", strategies.ListStrategiesHandler(db)).Methods("GET")
	r.HandleFunc("/v0/strategies/{strategyId}", strategies.GetStrategyHandler(db)).Methods("GET")
	r.HandleFunc("/v0/strategies/{strategyId}/purchase", strategies.PurchaseHandler(db)).Methods("POST")
	r.HandleFunc("/v0/strategies/{strategyId}/rent", strategies.RentHandler(db)).Methods("POST")
	r.HandleFunc("/v0/strategies/{strategyId}/rate", strategies.RateHandler(db)).Methods("POST")

	// Market data products
	r.HandleFunc("/v0/data", data.PublishHandler(db)).Methods("POST")
	r.HandleFunc("/v0/data", data.ListProductsHandler(db)).Methods("GET")
	r.HandleFunc("/v0/data/{dataId}", data.GetProductHandler(db)).Methods("GET")
	r.HandleFunc("/v0/data/{dataId}/purchase", data.PurchaseHandler(db)).Methods("POST")

	// Transactions
	r.HandleFunc("/v0/transactions", transactions.ListMyTransactionsHandler(db)).Methods("GET")
	r.HandleFunc("/v0/transactions/{transactionId}", transactions.GetTransactionHandler(db, cfg.JWTSecret)).Methods("GET")
	r.HandleFunc("/v0/transactions/{transactionId}/dispute", transactions.DisputeHandler(db)).Methods("POST")

	// Admin
	r.HandleFunc("/v0/admin/export", adminhandlers.ExportHandler(db, cfg.JWTSecret)).Methods("GET")
	r.HandleFunc("/v0/admin/import", adminhandlers.ImportHandler(db, cfg.JWTSecret)).Methods("POST")
	r.HandleFunc("/v0/admin/stats", adminhandlers.StatsHandler(db, cfg.JWTSecret)).Methods("GET")
	r.HandleFunc("/v0/admin/agents/{agentId}", adminhandlers.DeleteAgentHandler(db, cfg.JWTSecret)).Methods("DELETE")
	r.HandleFunc("/v0/admin/agents/{agentId}/credits", adminhandlers.GrantCreditsHandler(db, cfg.JWTSecret)).Methods("POST")
	r.HandleFunc("/v0/admin/strategies/{strategyId}/validation", adminhandlers.SetValidationScoreHandler(db, cfg.JWTSecret)).Methods("POST")
	r.HandleFunc("/v0/admin/transactions/{transactionId}/refund", transactions.RefundHandler(db, cfg.JWTSecret)).Methods("POST")

	handler := requestLogger(log, r)
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Agent-API-Key"},
	}).Handler(handler)
}

func requestLogger(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
