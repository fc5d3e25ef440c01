package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumParsers(t *testing.T) {
	t.Run("AgentStatus", func(t *testing.T) {
		for _, tag := range []string{"registered", "verified", "suspended", "retired"} {
			st, err := NewAgentStatus(tag)
			require.NoError(t, err)
			assert.Equal(t, tag, st.String())
		}
		_, err := NewAgentStatus("frozen")
		assert.Error(t, err)
	})

	t.Run("StrategyType", func(t *testing.T) {
		for _, tag := range []string{"technical", "fundamental", "quantitative", "ml_predictive", "arbitrage", "market_making"} {
			st, err := NewStrategyType(tag)
			require.NoError(t, err)
			assert.Equal(t, tag, st.String())
		}
		_, err := NewStrategyType("vibes")
		assert.Error(t, err)
	})

	t.Run("DataType", func(t *testing.T) {
		for _, tag := range []string{"ohlcv", "order_book", "funding_rates", "social_sentiment", "on_chain", "news"} {
			dt, err := NewDataType(tag)
			require.NoError(t, err)
			assert.Equal(t, tag, dt.String())
		}
		_, err := NewDataType("OHLCV") // tags are case sensitive
		assert.Error(t, err)
	})

	t.Run("TransactionStatus", func(t *testing.T) {
		for _, tag := range []string{"pending", "escrow_hold", "completed", "failed", "disputed", "refunded"} {
			st, err := NewTransactionStatus(tag)
			require.NoError(t, err)
			assert.Equal(t, tag, st.String())
		}
		_, err := NewTransactionStatus("")
		assert.Error(t, err)
	})
}

func TestGenerateAPIKey(t *testing.T) {
	k1, err := GenerateAPIKey()
	require.NoError(t, err)
	k2, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.Contains(t, k1, "bazaar_sk_")
	assert.NotEqual(t, k1, k2)
	assert.Len(t, k1, len("bazaar_sk_")+64)
}
