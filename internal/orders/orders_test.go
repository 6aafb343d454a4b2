package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/shop"
)

var customer = shop.UserProfile{Name: "Ann", Email: "ann@example.com"}

func order(t *testing.T, at time.Time, ids ...string) shop.Order {
	t.Helper()
	var items shop.Cart
	for _, id := range ids {
		items = append(items, shop.CartItem{ID: shop.ID(id), Price: 1})
	}
	o, err := shop.NewOrder(at, items, customer)
	require.NoError(t, err)
	return o
}

func TestPrepend_NewestFirstAndPublishes(t *testing.T) {
	b := bus.New()
	svc := NewService(kv.NewStore(kv.NewMemory()), b, nil)
	var published shop.History
	bus.Subscribe(b, shop.OrdersChanged, func(h shop.History) { published = h })

	first := order(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "1")
	second := order(t, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), "2")
	_, err := svc.Prepend(first)
	require.NoError(t, err)
	_, err = svc.Prepend(second)
	require.NoError(t, err)

	got := svc.List()
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, got, published)
}

func TestPrepend_CollidingIDGetsSuffix(t *testing.T) {
	svc := NewService(kv.NewStore(kv.NewMemory()), bus.New(), nil)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Prepend(order(t, at, "1"))
	require.NoError(t, err)
	stored, err := svc.Prepend(order(t, at, "2"))
	require.NoError(t, err)

	assert.Equal(t, shop.NewOrderID(at)+"-2", stored.ID)
}

func TestSorted_ByDateNotInsertion(t *testing.T) {
	mem := kv.NewMemory()
	mem.SetRaw(shop.KeyOrderHistory, []byte(`[
		{"id":"A","date":"2025-05-01T10:00:00.000Z","items":[]},
		{"id":"B","date":"2026-02-01T10:00:00.000Z","items":[]}
	]`))
	svc := NewService(kv.NewStore(mem), bus.New(), nil)

	sorted := svc.Sorted()
	assert.Equal(t, "B", sorted[0].ID)
	assert.Equal(t, "A", svc.List()[0].ID)
}

func TestPurchased(t *testing.T) {
	svc := NewService(kv.NewStore(kv.NewMemory()), bus.New(), nil)
	assert.False(t, svc.Purchased("1"))

	_, err := svc.Prepend(order(t, time.Now(), "1", "3"))
	require.NoError(t, err)

	assert.True(t, svc.Purchased("1"))
	assert.True(t, svc.Purchased("3"))
	assert.False(t, svc.Purchased("2"))
}

func TestList_CorruptHistoryIsEmpty(t *testing.T) {
	mem := kv.NewMemory()
	mem.SetRaw(shop.KeyOrderHistory, []byte(`{oops`))
	svc := NewService(kv.NewStore(mem), bus.New(), nil)
	assert.Empty(t, svc.List())
}
