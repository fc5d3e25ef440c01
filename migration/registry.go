package migration

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
)

// MigrationFunc applies one named schema change.
type MigrationFunc func(db *gorm.DB) error

// AppliedMigration records a migration that has already run.
type AppliedMigration struct {
	Name      string    `gorm:"primaryKey;size:100"`
	AppliedAt time.Time `gorm:"not null"`
}

func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

var registry = map[string]MigrationFunc{}

// Register adds a migration under a unique name. Migrations run in
// lexicographic name order, so names start with a date stamp.
func Register(name string, fn MigrationFunc) error {
	if _, dup := registry[name]; dup {
		return fmt.Errorf("migration %q registered twice", name)
	}
	registry[name] = fn
	return nil
}

// RunAll applies every registered migration that has not run yet.
func RunAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&AppliedMigration{}); err != nil {
		return fmt.Errorf("migrate schema_migrations: %w", err)
	}

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		var applied AppliedMigration
		err := db.Where("name = ?", name).First(&applied).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if err := registry[name](db); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		record := AppliedMigration{Name: name, AppliedAt: time.Now().UTC()}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}
