package models

import "time"

// MarketDataProduct is a historical market data set listed for purchase.
type MarketDataProduct struct {
	DataID            string    `json:"data_id" gorm:"primaryKey;size:40"`
	ProviderAgentID   string    `json:"provider_agent_id" gorm:"not null;index;size:40"`
	Name              string    `json:"name" gorm:"not null;size:100"`
	Description       string    `json:"description" gorm:"size:2000"`
	DataType          DataType  `json:"data_type" gorm:"not null;size:20;index"`
	Symbols           []string  `json:"symbols" gorm:"serializer:json"`
	Timeframe         string    `json:"timeframe" gorm:"size:10"` // "1m", "1h", "1d"
	StartDate         time.Time `json:"start_date" gorm:"not null"`
	EndDate           time.Time `json:"end_date" gorm:"not null"`
	SizeBytes         int64     `json:"size_bytes"`
	Price             float64   `json:"price" gorm:"not null"`
	StoragePath       string    `json:"storage_path" gorm:"size:500"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null"`
	CompressionFormat string    `json:"compression_format" gorm:"size:20;default:gzip"`
}

// NewMarketDataProduct creates a data product with a generated id, created_at
// set to now, and gzip as the default compression format.
func NewMarketDataProduct(providerAgentID, name, description string, dataType DataType, symbols []string, timeframe string, startDate, endDate time.Time, sizeBytes int64, price float64, storagePath string) *MarketDataProduct {
	return &MarketDataProduct{
		DataID:            newEntityID("data"),
		ProviderAgentID:   providerAgentID,
		Name:              name,
		Description:       description,
		DataType:          dataType,
		Symbols:           symbols,
		Timeframe:         timeframe,
		StartDate:         startDate,
		EndDate:           endDate,
		SizeBytes:         sizeBytes,
		Price:             price,
		StoragePath:       storagePath,
		CreatedAt:         timeNow(),
		CompressionFormat: "gzip",
	}
}

// ToDocument converts the data product to its document-store shape.
func (d *MarketDataProduct) ToDocument() Document {
	return Document{
		"data_id":            d.DataID,
		"provider_agent_id":  d.ProviderAgentID,
		"name":               d.Name,
		"description":        d.Description,
		"data_type":          d.DataType.String(),
		"symbols":            d.Symbols,
		"timeframe":          d.Timeframe,
		"start_date":         formatTime(d.StartDate),
		"end_date":           formatTime(d.EndDate),
		"size_bytes":         d.SizeBytes,
		"price":              d.Price,
		"storage_path":       d.StoragePath,
		"created_at":         formatTime(d.CreatedAt),
		"compression_format": d.CompressionFormat,
	}
}

// MarketDataProductFromDocument reconstructs a data product from its
// document shape.
func MarketDataProductFromDocument(doc Document) (*MarketDataProduct, error) {
	dataType, err := NewDataType(docString(doc, "data_type"))
	if err != nil {
		return nil, err
	}
	start, err := parseDocTime(doc, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseDocTime(doc, "end_date")
	if err != nil {
		return nil, err
	}
	created, err := parseDocTime(doc, "created_at")
	if err != nil {
		return nil, err
	}
	return &MarketDataProduct{
		DataID:            docString(doc, "data_id"),
		ProviderAgentID:   docString(doc, "provider_agent_id"),
		Name:              docString(doc, "name"),
		Description:       docString(doc, "description"),
		DataType:          dataType,
		Symbols:           docStringSlice(doc, "symbols"),
		Timeframe:         docString(doc, "timeframe"),
		StartDate:         start,
		EndDate:           end,
		SizeBytes:         docInt(doc, "size_bytes"),
		Price:             docFloat(doc, "price"),
		StoragePath:       docString(doc, "storage_path"),
		CreatedAt:         created,
		CompressionFormat: docString(doc, "compression_format"),
	}, nil
}
