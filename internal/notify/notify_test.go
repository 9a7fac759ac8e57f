package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.PublishJSON(context.Background(), KeyApplicationSubmitted, struct{}{}))
}

func TestApplicationDecidedPayload(t *testing.T) {
	t.Run("rejected omits allocation fields", func(t *testing.T) {
		b, err := json.Marshal(ApplicationDecided{
			ApplicationID: "a1",
			StudentID:     "s1",
			Status:        "REJECTED",
			Remarks:       "incomplete documents",
		})
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, "REJECTED", got["status"])
		assert.NotContains(t, got, "allocation_id")
		assert.NotContains(t, got, "payment_amount")
	})

	t.Run("approved carries allocation", func(t *testing.T) {
		amount := decimal.NewFromInt(45000)
		b, err := json.Marshal(ApplicationDecided{
			ApplicationID: "a1",
			Status:        "APPROVED",
			AllocationID:  "al1",
			HostelID:      "H1",
			RoomNumber:    "101",
			PaymentAmount: &amount,
		})
		require.NoError(t, err)

		var got ApplicationDecided
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, "101", got.RoomNumber)
		require.NotNil(t, got.PaymentAmount)
		assert.True(t, got.PaymentAmount.Equal(amount))
	})
}
