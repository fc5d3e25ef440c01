package models

import "strconv"

// AgentStatus is the lifecycle status of a trading agent.
type AgentStatus string

const (
	AgentStatusRegistered AgentStatus = "registered"
	AgentStatusVerified   AgentStatus = "verified"
	AgentStatusSuspended  AgentStatus = "suspended"
	AgentStatusRetired    AgentStatus = "retired"
)

func (s AgentStatus) String() string {
	return string(s)
}

func (s AgentStatus) IsValid() bool {
	switch s {
	case AgentStatusRegistered, AgentStatusVerified, AgentStatusSuspended, AgentStatusRetired:
		return true
	default:
		return false
	}
}

// NewAgentStatus parses a stored status tag.
func NewAgentStatus(s string) (AgentStatus, error) {
	st := AgentStatus(s)
	if !st.IsValid() {
		return "", &ValidationError{Field: "status", Reason: "unknown agent status " + strconv.Quote(s)}
	}
	return st, nil
}

// StrategyType categorizes trading strategies offered in the marketplace.
type StrategyType string

const (
	StrategyTypeTechnical    StrategyType = "technical"
	StrategyTypeFundamental  StrategyType = "fundamental"
	StrategyTypeQuantitative StrategyType = "quantitative"
	StrategyTypeMLPredictive StrategyType = "ml_predictive"
	StrategyTypeArbitrage    StrategyType = "arbitrage"
	StrategyTypeMarketMaking StrategyType = "market_making"
)

func (t StrategyType) String() string {
	return string(t)
}

func (t StrategyType) IsValid() bool {
	switch t {
	case StrategyTypeTechnical, StrategyTypeFundamental, StrategyTypeQuantitative,
		StrategyTypeMLPredictive, StrategyTypeArbitrage, StrategyTypeMarketMaking:
		return true
	default:
		return false
	}
}

// NewStrategyType parses a stored strategy type tag.
func NewStrategyType(s string) (StrategyType, error) {
	st := StrategyType(s)
	if !st.IsValid() {
		return "", &ValidationError{Field: "strategy_type", Reason: "unknown strategy type " + strconv.Quote(s)}
	}
	return st, nil
}

// DataType categorizes market data products.
type DataType string

const (
	DataTypeOHLCV           DataType = "ohlcv"
	DataTypeOrderBook       DataType = "order_book"
	DataTypeFundingRates    DataType = "funding_rates"
	DataTypeSocialSentiment DataType = "social_sentiment"
	DataTypeOnChain         DataType = "on_chain"
	DataTypeNews            DataType = "news"
)

func (t DataType) String() string {
	return string(t)
}

func (t DataType) IsValid() bool {
	switch t {
	case DataTypeOHLCV, DataTypeOrderBook, DataTypeFundingRates,
		DataTypeSocialSentiment, DataTypeOnChain, DataTypeNews:
		return true
	default:
		return false
	}
}

// NewDataType parses a stored data type tag.
func NewDataType(s string) (DataType, error) {
	dt := DataType(s)
	if !dt.IsValid() {
		return "", &ValidationError{Field: "data_type", Reason: "unknown data type " + strconv.Quote(s)}
	}
	return dt, nil
}

// TransactionStatus is the lifecycle status of a marketplace transaction.
type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusEscrowHold TransactionStatus = "escrow_hold"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
	TransactionStatusDisputed   TransactionStatus = "disputed"
	TransactionStatusRefunded   TransactionStatus = "refunded"
)

func (s TransactionStatus) String() string {
	return string(s)
}

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusEscrowHold, TransactionStatusCompleted,
		TransactionStatusFailed, TransactionStatusDisputed, TransactionStatusRefunded:
		return true
	default:
		return false
	}
}

// NewTransactionStatus parses a stored transaction status tag.
func NewTransactionStatus(s string) (TransactionStatus, error) {
	st := TransactionStatus(s)
	if !st.IsValid() {
		return "", &ValidationError{Field: "status", Reason: "unknown transaction status " + strconv.Quote(s)}
	}
	return st, nil
}
