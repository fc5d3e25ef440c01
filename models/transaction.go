package models

import "time"

// Item kinds a transaction can reference.
const (
	ItemTypeStrategy = "strategy"
	ItemTypeRental   = "rental"
	ItemTypeData     = "data"
)

// Transaction records a credit transfer between two agents for a strategy,
// a strategy rental, or a market data product. It is a record of what
// happened, not a settlement protocol: purchases move credits in a single
// database transaction and the status field tracks the outcome.
type Transaction struct {
	TransactionID string            `json:"transaction_id" gorm:"primaryKey;size:40"`
	BuyerAgentID  string            `json:"buyer_agent_id" gorm:"not null;index;size:40"`
	SellerAgentID string            `json:"seller_agent_id" gorm:"not null;index;size:40"`
	ItemType      string            `json:"item_type" gorm:"not null;size:20"`
	ItemID        string            `json:"item_id" gorm:"not null;index;size:40"`
	Amount        float64           `json:"amount" gorm:"not null"`
	Status        TransactionStatus `json:"status" gorm:"not null;size:20;default:pending"`
	CreatedAt     time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time         `json:"updated_at" gorm:"not null"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	Metadata      map[string]any    `json:"metadata" gorm:"serializer:json"`
}

// NewTransaction creates a pending transaction with a generated id.
func NewTransaction(buyerAgentID, sellerAgentID, itemType, itemID string, amount float64) *Transaction {
	now := timeNow()
	return &Transaction{
		TransactionID: newEntityID("txn"),
		BuyerAgentID:  buyerAgentID,
		SellerAgentID: sellerAgentID,
		ItemType:      itemType,
		ItemID:        itemID,
		Amount:        amount,
		Status:        TransactionStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		Metadata:      map[string]any{},
	}
}

// SetStatus moves the transaction to a new status, stamping completed_at
// when it reaches a terminal completed state.
func (t *Transaction) SetStatus(status TransactionStatus) {
	t.Status = status
	t.UpdatedAt = timeNow()
	if status == TransactionStatusCompleted {
		now := timeNow()
		t.CompletedAt = &now
	}
}

// ToDocument converts the transaction to its document-store shape.
func (t *Transaction) ToDocument() Document {
	doc := Document{
		"transaction_id":  t.TransactionID,
		"buyer_agent_id":  t.BuyerAgentID,
		"seller_agent_id": t.SellerAgentID,
		"item_type":       t.ItemType,
		"item_id":         t.ItemID,
		"amount":          t.Amount,
		"status":          t.Status.String(),
		"created_at":      formatTime(t.CreatedAt),
		"updated_at":      formatTime(t.UpdatedAt),
		"completed_at":    nil,
		"metadata":        t.Metadata,
	}
	if t.CompletedAt != nil {
		doc["completed_at"] = formatTime(*t.CompletedAt)
	}
	return doc
}

// TransactionFromDocument reconstructs a transaction from its document shape.
func TransactionFromDocument(doc Document) (*Transaction, error) {
	status, err := NewTransactionStatus(docString(doc, "status"))
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
	completed, err := parseDocTimePtr(doc, "completed_at")
	if err != nil {
		return nil, err
	}
	return &Transaction{
		TransactionID: docString(doc, "transaction_id"),
		BuyerAgentID:  docString(doc, "buyer_agent_id"),
		SellerAgentID: docString(doc, "seller_agent_id"),
		ItemType:      docString(doc, "item_type"),
		ItemID:        docString(doc, "item_id"),
		Amount:        docFloat(doc, "amount"),
		Status:        status,
		CreatedAt:     created,
		UpdatedAt:     updated,
		CompletedAt:   completed,
		Metadata:      docAnyMap(doc, "metadata"),
	}, nil
}
