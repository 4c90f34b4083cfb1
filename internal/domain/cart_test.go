package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_UnmarshalJSON_ProductIDShapes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantID    string
		wantProd  string
		wantQty   int
		wantPrice float64
	}{
		{
			name:      "top-level productId",
			input:     `{"id":"1","productId":5,"name":"Milk","price":10,"qty":2}`,
			wantID:    "1",
			wantProd:  "5",
			wantQty:   2,
			wantPrice: 10,
		},
		{
			name:      "nested product id",
			input:     `{"id":"1","product":{"id":"7"},"price":2.5,"qty":1}`,
			wantID:    "1",
			wantProd:  "7",
			wantQty:   1,
			wantPrice: 2.5,
		},
		{
			name:      "line id only",
			input:     `{"id":"65","price":3.5,"qty":1}`,
			wantID:    "65",
			wantProd:  "65",
			wantQty:   1,
			wantPrice: 3.5,
		},
		{
			name:      "non-numeric productId falls through to nested id",
			input:     `{"id":"x","productId":"abc","product":{"id":12},"qty":4}`,
			wantID:    "x",
			wantProd:  "12",
			wantQty:   4,
		},
		{
			name:      "no numeric candidate keeps first non-empty",
			input:     `{"id":"line-a","productId":"sku-a","qty":1}`,
			wantID:    "line-a",
			wantProd:  "sku-a",
			wantQty:   1,
		},
		{
			name:      "null productId",
			input:     `{"id":3,"productId":null,"qty":1}`,
			wantID:    "3",
			wantProd:  "3",
			wantQty:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item CartItem
			require.NoError(t, json.Unmarshal([]byte(tt.input), &item))

			assert.Equal(t, tt.wantID, item.ID)
			assert.Equal(t, tt.wantProd, item.ProductID)
			assert.Equal(t, tt.wantQty, item.Qty)
			assert.InDelta(t, tt.wantPrice, item.Price, 0.0001)
		})
	}
}

func TestCartItem_UnmarshalJSON_RejectsObjectID(t *testing.T) {
	var item CartItem
	err := json.Unmarshal([]byte(`{"id":{"nested":true},"qty":1}`), &item)
	assert.Error(t, err)
}

func TestCartItem_RoundTripKeepsCanonicalFields(t *testing.T) {
	in := CartItem{ID: "1", ProductID: "5", Name: "Milk", Price: 1.25, Qty: 3, Brand: "Acme", ImageURL: "http://img/1"}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out CartItem
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCartDTO_BackendTotals(t *testing.T) {
	t.Run("total falls back to subtotal", func(t *testing.T) {
		var dto CartDTO
		require.NoError(t, json.Unmarshal([]byte(`{"items":[],"subtotal":12.5}`), &dto))

		got := dto.BackendTotals()
		assert.Equal(t, BackendTotals{Subtotal: 12.5, Total: 12.5}, got)
	})

	t.Run("everything missing", func(t *testing.T) {
		var dto CartDTO
		require.NoError(t, json.Unmarshal([]byte(`{}`), &dto))

		assert.Equal(t, BackendTotals{}, dto.BackendTotals())
		assert.Nil(t, dto.Items)
	})

	t.Run("all fields present", func(t *testing.T) {
		var dto CartDTO
		raw := `{"items":[],"subtotal":20,"total":25,"weight":12.4,"under_twenty_lbs":true}`
		require.NoError(t, json.Unmarshal([]byte(raw), &dto))

		assert.Equal(t, BackendTotals{Subtotal: 20, Total: 25, Weight: 12.4, UnderTwentyLbs: true}, dto.BackendTotals())
	})

	t.Run("explicit zero total is kept", func(t *testing.T) {
		var dto CartDTO
		require.NoError(t, json.Unmarshal([]byte(`{"subtotal":20,"total":0}`), &dto))

		assert.Equal(t, 0.0, dto.BackendTotals().Total)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.3, Round2(0.1+0.2))
	assert.Equal(t, 20.0, Round2(23.5-3.5))
	assert.Equal(t, 1.01, Round2(1.005+0.001))
	assert.Equal(t, -2.35, Round2(-2.345-0.001))
}

func TestSameID(t *testing.T) {
	assert.True(t, SameID("5", "5"))
	assert.True(t, SameID("5", "5.0"))
	assert.False(t, SameID("5", "6"))
	assert.True(t, SameID("sku-a", "sku-a"))
	assert.False(t, SameID("sku-a", "5"))
	assert.False(t, SameID("", "5"))
}

func TestCheckoutSession_Succeeded(t *testing.T) {
	assert.True(t, (&CheckoutSession{Status: "SUCCESS", SessionURL: "https://pay/1"}).Succeeded())
	assert.False(t, (&CheckoutSession{Status: "SUCCESS"}).Succeeded())
	assert.False(t, (&CheckoutSession{Status: "FAILED", Message: "out of stock"}).Succeeded())
}
