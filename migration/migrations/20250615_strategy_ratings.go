package migrations

import (
	"log"

	"gorm.io/gorm"

	"agentbazaar/migration"
	"agentbazaar/models"
)

func init() {
	if err := migration.Register("20250615_strategy_ratings", migrateStrategyRatings); err != nil {
		log.Fatalf("Failed to register migration 20250615_strategy_ratings: %v", err)
	}
}

// migrateStrategyRatings adds the per-buyer rating table backing
// TradingStrategy.average_rating.
func migrateStrategyRatings(db *gorm.DB) error {
	return db.AutoMigrate(&models.StrategyRating{})
}
