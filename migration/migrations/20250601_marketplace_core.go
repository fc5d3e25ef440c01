package migrations

import (
	"log"

	"gorm.io/gorm"

	"agentbazaar/migration"
	"agentbazaar/models"
)

func init() {
	if err := migration.Register("20250601_marketplace_core", migrateMarketplaceCore); err != nil {
		log.Fatalf("Failed to register migration 20250601_marketplace_core: %v", err)
	}
}

// migrateMarketplaceCore creates the baseline marketplace tables.
func migrateMarketplaceCore(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.TradingAgent{},
		&models.AgentCredential{},
		&models.OwnerAccount{},
		&models.TradingStrategy{},
		&models.MarketDataProduct{},
		&models.Transaction{},
	); err != nil {
		return err
	}

	// Composite lookup indices that AutoMigrate does not derive from tags.
	db.Exec("CREATE INDEX IF NOT EXISTS idx_strategies_type_active ON trading_strategies(strategy_type, is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_transactions_item ON transactions(item_type, item_id)")

	return nil
}
