// Package seed loads demo fixtures into an empty marketplace database.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit"
	"gorm.io/gorm"

	"agentbazaar/models"
)

var strategyTypes = []models.StrategyType{
	models.StrategyTypeTechnical,
	models.StrategyTypeFundamental,
	models.StrategyTypeQuantitative,
	models.StrategyTypeMLPredictive,
	models.StrategyTypeArbitrage,
	models.StrategyTypeMarketMaking,
}

var dataTypes = []models.DataType{
	models.DataTypeOHLCV,
	models.DataTypeOrderBook,
	models.DataTypeFundingRates,
	models.DataTypeSocialSentiment,
	models.DataTypeOnChain,
	models.DataTypeNews,
}

// Run inserts numAgents demo agents, each with a strategy and a data product.
// It refuses to seed a database that already has agents.
func Run(db *gorm.DB, numAgents int) error {
	var existing int64
	db.Model(&models.TradingAgent{}).Count(&existing)
	if existing > 0 {
		return fmt.Errorf("database already has %d agents, refusing to seed", existing)
	}

	gofakeit.Seed(0)

	for i := 0; i < numAgents; i++ {
		wallet := "0x" + strings.ToLower(gofakeit.Password(false, true, true, false, false, 40))
		name := fmt.Sprintf("%s-%s-%d", strings.ToLower(gofakeit.HackerAdjective()), strings.ToLower(gofakeit.HackerNoun()), i)

		agent := models.NewTradingAgent(wallet, name, gofakeit.HipsterSentence(8))
		agent.Status = models.AgentStatusVerified
		agent.CreditBalance = float64(gofakeit.Number(100, 5000))
		agent.PerformanceMetrics = map[string]float64{
			"sharpe":       gofakeit.Price(0.1, 3.0),
			"win_rate":     gofakeit.Price(0.3, 0.7),
			"max_drawdown": -gofakeit.Price(0.05, 0.5),
		}
		if err := db.Create(agent).Error; err != nil {
			return fmt.Errorf("seed agent: %w", err)
		}

		apiKey, err := models.GenerateAPIKey()
		if err != nil {
			return err
		}
		cred := models.AgentCredential{AgentID: agent.AgentID, APIKey: apiKey, CreatedAt: agent.RegistrationDate}
		if err := db.Create(&cred).Error; err != nil {
			return fmt.Errorf("seed credential: %w", err)
		}

		strategy := models.NewTradingStrategy(
			agent.AgentID,
			gofakeit.HackerVerb()+"-"+strings.ToLower(gofakeit.HackerNoun()),
			gofakeit.HipsterSentence(12),
			strategyTypes[i%len(strategyTypes)],
			float64(gofakeit.Number(10, 500)),
			strings.ToLower(gofakeit.Password(false, false, true, false, false, 64)),
			fmt.Sprintf("strategies/%s/bundle.tar.gz", agent.AgentID),
		)
		strategy.ValidationScore = gofakeit.Price(40, 100)
		if err := db.Create(strategy).Error; err != nil {
			return fmt.Errorf("seed strategy: %w", err)
		}

		end := time.Now().UTC().Truncate(24 * time.Hour)
		start := end.AddDate(0, -6, 0)
		product := models.NewMarketDataProduct(
			agent.AgentID,
			gofakeit.RandString([]string{"BTC", "ETH", "SOL"})+" "+string(dataTypes[i%len(dataTypes)])+" history",
			gofakeit.HipsterSentence(10),
			dataTypes[i%len(dataTypes)],
			[]string{"BTC-PERP", "ETH-PERP"},
			"1m",
			start, end,
			int64(gofakeit.Number(1<<20, 1<<30)),
			float64(gofakeit.Number(5, 200)),
			fmt.Sprintf("data/%s/dump.gz", agent.AgentID),
		)
		if err := db.Create(product).Error; err != nil {
			return fmt.Errorf("seed data product: %w", err)
		}
	}

	return nil
}
