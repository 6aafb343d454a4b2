package shop

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotal_LenientPrices(t *testing.T) {
	var c Cart
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"price":10},{"id":2,"price":"bad"}]`), &c))

	assert.Equal(t, Price(10), c.Total())
	assert.Equal(t, ID("1"), c[0].ID)
	assert.Equal(t, ID("2"), c[1].ID)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want Price
	}{
		{`10`, 10},
		{`"12.5"`, 12.5},
		{`" 7 "`, 7},
		{`"bad"`, 0},
		{`null`, 0},
		{`true`, 0},
		{`{}`, 0},
		{`""`, 0},
		{`"NaN"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice([]byte(tt.raw)))
		})
	}
}

func TestProductDecode_MissingPriceIsZero(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","title":"Lamp"}`), &p))
	assert.Equal(t, Price(0), p.Price)
}

func TestPriceString(t *testing.T) {
	assert.Equal(t, "$10", Price(10).String())
	assert.Equal(t, "$0", Price(0).String())
	assert.Equal(t, "$10.5", Price(10.5).String())
	assert.Equal(t, "$1,250", Price(1250).String())
	assert.Equal(t, "$11", Price(10.5).Rounded())
}

func TestNewCartItem_RejectsEmptyID(t *testing.T) {
	_, err := NewCartItem(Product{Title: "No id"})
	assert.ErrorIs(t, err, ErrMissingID)

	item, err := NewCartItem(Product{ID: "3", Title: "Chair", Price: 40, Image: "c.png", Type: "Furniture"})
	require.NoError(t, err)
	assert.Equal(t, CartItem{ID: "3", Title: "Chair", Price: 40, Image: "c.png"}, item)
}

func TestCartWith_KeepsIDsUnique(t *testing.T) {
	c := Cart{}
	c, added := c.With(CartItem{ID: "1"})
	require.True(t, added)
	c, added = c.With(CartItem{ID: "1"})
	assert.False(t, added)
	assert.Len(t, c, 1)

	c, _ = c.With(CartItem{ID: "2"})
	assert.Equal(t, Cart{{ID: "2"}}, c.Without("1"))
	assert.Len(t, c, 2, "Without must not mutate the receiver")
}

func TestNewOrder(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	items := Cart{{ID: "1", Price: 40}, {ID: "2", Price: 2}}

	_, err := NewOrder(at, nil, UserProfile{Name: "a", Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = NewOrder(at, items, UserProfile{Name: "a"})
	assert.ErrorIs(t, err, ErrIncompleteCustomer)

	o, err := NewOrder(at, items, UserProfile{Name: " Ann ", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ORD--"+"1772600767000", o.ID)
	assert.Equal(t, Price(42), o.Amount())
	assert.Equal(t, Customer{Name: "Ann", Email: "ann@example.com"}, o.Customer)

	items[0].Price = 1
	assert.Equal(t, Price(40), o.Items[0].Price, "order must snapshot items")
}

func TestOrderAmount_FallsBackToItemSum(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","items":[{"id":1,"price":"5"},{"id":2,"price":6}]}`), &o))
	assert.Nil(t, o.Total)
	assert.Equal(t, Price(11), o.Amount())
}

func TestHistoryPrepend_UniqueIDs(t *testing.T) {
	h := History{{ID: "ORD--1"}}
	h = h.Prepend(Order{ID: "ORD--1"})
	h = h.Prepend(Order{ID: "ORD--1"})

	require.Len(t, h, 3)
	assert.Equal(t, "ORD--1-3", h[0].ID)
	assert.Equal(t, "ORD--1-2", h[1].ID)
	assert.Equal(t, "ORD--1", h[2].ID)
}

func TestHistorySorted_DateDescInvalidLast(t *testing.T) {
	h := History{
		{ID: "old", Date: "2025-01-01T00:00:00Z"},
		{ID: "broken", Date: "yesterday"},
		{ID: "new", Date: "2026-01-01T00:00:00.000Z"},
	}

	sorted := h.Sorted()

	ids := []string{sorted[0].ID, sorted[1].ID, sorted[2].ID}
	assert.Equal(t, []string{"new", "old", "broken"}, ids)
	assert.Equal(t, "old", h[0].ID, "Sorted must not reorder the receiver")
	assert.Equal(t, "Invalid date", h[1].DisplayDate())
}

func TestHistoryPurchasedIDs(t *testing.T) {
	h := History{
		{Items: Cart{{ID: "1"}, {ID: "2"}}},
		{Items: Cart{{ID: "2"}, {ID: "5"}}},
	}
	ids := h.PurchasedIDs()
	assert.Len(t, ids, 3)
	assert.Contains(t, ids, ID("5"))
}
