// Package orders reads and appends to the order history.
//
// History is append-only: Prepend is the only write, and stored orders are
// never edited in place.
package orders

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/shop"
)

// EmptyMessage is shown when there are no orders.
const EmptyMessage = "Order history is empty"

// Service owns shop.KeyOrderHistory.
type Service struct {
	store  *kv.Store
	bus    *bus.Bus
	logger *slog.Logger
}

// NewService returns an order history service. logger may be nil.
func NewService(store *kv.Store, b *bus.Bus, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, bus: b, logger: logger}
}

// List returns orders newest first by insertion.
func (s *Service) List() shop.History {
	return kv.Get(s.store, shop.KeyOrderHistory, shop.History{})
}

// Sorted returns orders by date, newest first, for display.
func (s *Service) Sorted() shop.History {
	return s.List().Sorted()
}

// Prepend stores o at the head of the history and publishes
// orders-changed. It returns the order as stored, whose id may carry a
// suffix when it collided with an existing one.
func (s *Service) Prepend(o shop.Order) (shop.Order, error) {
	next := s.List().Prepend(o)
	if err := s.store.Save(shop.KeyOrderHistory, next); err != nil {
		s.logger.Error("order history save failed", "order_id", o.ID, "error", err)
		return shop.Order{}, fmt.Errorf("save order history: %w", err)
	}
	s.logger.Info("order recorded", "order_id", next[0].ID, "items", len(next[0].Items), "total", float64(next[0].Amount()))
	bus.Publish(s.bus, shop.OrdersChanged, next)
	return next[0], nil
}

// PurchasedIDs returns the ids of every product that appears in an order.
func (s *Service) PurchasedIDs() map[shop.ID]struct{} {
	return s.List().PurchasedIDs()
}

// Purchased reports whether id was bought before.
func (s *Service) Purchased(id shop.ID) bool {
	_, ok := s.PurchasedIDs()[id]
	return ok
}
