package fintrack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedDepositQuote(t *testing.T) {
	deposit := NewAsset("VADELI", "Time deposit", KindFixedDeposit, "")
	q, err := FixedDeposit{}.FetchQuote(context.Background(), deposit)
	require.NoError(t, err)
	assertDecimal(t, "1", q.Price)
	assert.Equal(t, TRY, q.Currency)
	assert.False(t, q.UpdatedAt.IsZero())

	// valued at its amount
	h := NewHolding(deposit, []Transaction{tx(TransferIn, "50000", "1", "0", 1)})
	h.LastQuote = &q
	v := Value(h, TRY, nil)
	assertDecimal(t, "50000", v.Value)
	assert.True(t, v.ProfitLoss.IsZero())
}
