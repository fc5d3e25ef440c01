package models

import "time"

// TradingStrategy is a strategy listed for purchase or hourly rental.
type TradingStrategy struct {
	StrategyID         string               `json:"strategy_id" gorm:"primaryKey;size:40"`
	CreatorAgentID     string               `json:"creator_agent_id" gorm:"not null;index;size:40"`
	Name               string               `json:"name" gorm:"not null;size:100"`
	Description        string               `json:"description" gorm:"size:2000"`
	StrategyType       StrategyType         `json:"strategy_type" gorm:"not null;size:20"`
	Price              float64              `json:"price" gorm:"not null"`
	RentalPricePerHour *float64             `json:"rental_price_per_hour,omitempty"`
	CodeHash           string               `json:"code_hash" gorm:"size:64"`
	StoragePath        string               `json:"storage_path" gorm:"size:500"`
	CreatedAt          time.Time            `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time            `json:"updated_at" gorm:"not null"`
	Version            string               `json:"version" gorm:"size:20;default:1.0.0"`
	Dependencies       []string             `json:"dependencies" gorm:"serializer:json"`
	PerformanceHistory []map[string]float64 `json:"performance_history" gorm:"serializer:json"`
	TotalSales         int64                `json:"total_sales" gorm:"default:0"`
	AverageRating      float64              `json:"average_rating" gorm:"default:0"`
	IsActive           bool                 `json:"is_active" gorm:"default:true"`
	ValidationScore    float64              `json:"validation_score" gorm:"default:0"`
}

// NewTradingStrategy creates a strategy with a generated id, version "1.0.0",
// and created/updated set to now. The code hash should be the SHA-256 of the
// artifact at storagePath.
func NewTradingStrategy(creatorAgentID, name, description string, strategyType StrategyType, price float64, codeHash, storagePath string) *TradingStrategy {
	now := timeNow()
	return &TradingStrategy{
		StrategyID:         newEntityID("strategy"),
		CreatorAgentID:     creatorAgentID,
		Name:               name,
		Description:        description,
		StrategyType:       strategyType,
		Price:              price,
		CodeHash:           codeHash,
		StoragePath:        storagePath,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            "1.0.0",
		Dependencies:       []string{},
		PerformanceHistory: []map[string]float64{},
		IsActive:           true,
	}
}

// ToDocument converts the strategy to its document-store shape.
func (s *TradingStrategy) ToDocument() Document {
	doc := Document{
		"strategy_id":         s.StrategyID,
		"creator_agent_id":    s.CreatorAgentID,
		"name":                s.Name,
		"description":         s.Description,
		"strategy_type":       s.StrategyType.String(),
		"price":               s.Price,
		"rental_price_per_hour": nil,
		"code_hash":           s.CodeHash,
		"storage_path":        s.StoragePath,
		"created_at":          formatTime(s.CreatedAt),
		"updated_at":          formatTime(s.UpdatedAt),
		"version":             s.Version,
		"dependencies":        s.Dependencies,
		"performance_history": s.PerformanceHistory,
		"total_sales":         s.TotalSales,
		"average_rating":      s.AverageRating,
		"is_active":           s.IsActive,
		"validation_score":    s.ValidationScore,
	}
	if s.RentalPricePerHour != nil {
		doc["rental_price_per_hour"] = *s.RentalPricePerHour
	}
	return doc
}

// TradingStrategyFromDocument reconstructs a strategy from its document shape.
func TradingStrategyFromDocument(doc Document) (*TradingStrategy, error) {
	strategyType, err := NewStrategyType(docString(doc, "strategy_type"))
	if err != nil {
		return nil, err
	}
	created, err := parseDocTime(doc, "created_at")
	if err != nil {
		return nil, err
	}
	updated, err := parseDocTime(doc, "updated_at")
	if err != nil {
		return nil, err
	}
	return &TradingStrategy{
		StrategyID:         docString(doc, "strategy_id"),
		CreatorAgentID:     docString(doc, "creator_agent_id"),
		Name:               docString(doc, "name"),
		Description:        docString(doc, "description"),
		StrategyType:       strategyType,
		Price:              docFloat(doc, "price"),
		RentalPricePerHour: docFloatPtr(doc, "rental_price_per_hour"),
		CodeHash:           docString(doc, "code_hash"),
		StoragePath:        docString(doc, "storage_path"),
		CreatedAt:          created,
		UpdatedAt:          updated,
		Version:            docString(doc, "version"),
		Dependencies:       docStringSlice(doc, "dependencies"),
		PerformanceHistory: docFloatMapSlice(doc, "performance_history"),
		TotalSales:         docInt(doc, "total_sales"),
		AverageRating:      docFloat(doc, "average_rating"),
		IsActive:           docBool(doc, "is_active"),
		ValidationScore:    docFloat(doc, "validation_score"),
	}, nil
}

// StrategyRating is one buyer's rating of a strategy; average_rating on the
// strategy is derived from these rows.
type StrategyRating struct {
	StrategyID   string    `json:"strategy_id" gorm:"primaryKey;size:40"`
	RaterAgentID string    `json:"rater_agent_id" gorm:"primaryKey;size:40"`
	Rating       float64   `json:"rating" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null"`
}

// RecordSale bumps the sales counter and refreshes updated_at.
func (s *TradingStrategy) RecordSale() {
	s.TotalSales++
	s.UpdatedAt = timeNow()
}

// RecordRating folds a new rating into the running average.
func (s *TradingStrategy) RecordRating(rating float64, priorRatings int64) {
	if priorRatings <= 0 {
		s.AverageRating = rating
	} else {
		s.AverageRating = (s.AverageRating*float64(priorRatings) + rating) / float64(priorRatings+1)
	}
	s.UpdatedAt = timeNow()
}
