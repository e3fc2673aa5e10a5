package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func encode(t *testing.T, o Obligation) map[string]any {
	t.Helper()
	b, err := json.Marshal(o)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	return fields
}

func TestObligation_JSONColumnNames(t *testing.T) {
	paidOn := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
	row := Obligation{
		ID:              "m-1",
		Description:     "Rent",
		Amount:          decimal.RequireFromString("1200.00"),
		AnchorDate:      time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		OriginalFixedID: strPtr("tpl-1"),
		Settled:         true,
		SettledDate:     &paidOn,
	}

	t.Run("payable", func(t *testing.T) {
		row := row
		row.Kind = KindPayable
		fields := encode(t, row)

		assert.Equal(t, "2024-02-29", fields["due_date"])
		assert.Equal(t, true, fields["paid"])
		assert.Equal(t, "2024-02-28", fields["paid_date"])
		assert.Equal(t, "tpl-1", fields["original_fixed_account_id"])
		assert.NotContains(t, fields, "received")
		assert.NotContains(t, fields, "anchor_date")
	})

	t.Run("receivable", func(t *testing.T) {
		row := row
		row.Kind = KindReceivable
		fields := encode(t, row)

		assert.Equal(t, "2024-02-29", fields["receive_date"])
		assert.Equal(t, true, fields["received"])
		assert.Equal(t, "2024-02-28", fields["received_date"])
		assert.Equal(t, "tpl-1", fields["original_fixed_account_id"])
		assert.NotContains(t, fields, "paid")
		assert.NotContains(t, fields, "due_date")
	})

	t.Run("card transaction", func(t *testing.T) {
		row := row
		row.Kind = KindCardTransaction
		row.Settled = false
		row.SettledDate = nil
		row.LinkedPayableID = strPtr("bill-1")
		fields := encode(t, row)

		assert.Equal(t, "2024-02-29", fields["purchase_date"])
		assert.Equal(t, "tpl-1", fields["original_fixed_transaction_id"])
		assert.Equal(t, "bill-1", fields["account_payable_id"])
		assert.NotContains(t, fields, "paid")
		assert.NotContains(t, fields, "original_fixed_account_id")
	})

	t.Run("unpaid bill reports paid false", func(t *testing.T) {
		fields := encode(t, Obligation{Kind: KindPayable, AnchorDate: row.AnchorDate})
		assert.Equal(t, false, fields["paid"])
		assert.NotContains(t, fields, "paid_date")
	})
}

func TestObligation_JSONRoundTrip(t *testing.T) {
	paidOn := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	in := Obligation{
		ID:                 "r-1",
		Kind:               KindReceivable,
		UserID:             "user-1",
		Description:        "Salary",
		Amount:             decimal.RequireFromString("5000.50"),
		AnchorDate:         time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Installments:       1,
		CurrentInstallment: 1,
		Settled:            true,
		SettledDate:        &paidOn,
		PayerID:            strPtr("acme"),
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Obligation
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.True(t, in.Amount.Equal(out.Amount))
	assert.True(t, in.AnchorDate.Equal(out.AnchorDate))
	require.NotNil(t, out.SettledDate)
	assert.True(t, paidOn.Equal(*out.SettledDate))
	assert.True(t, out.Settled)
	assert.Equal(t, "acme", *out.PayerID)

	var bad Obligation
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"payable","due_date":"29/02/2024"}`), &bad))
}
