// Package cart owns every mutation of the shopping cart and the add/remove
// toggle shown in the product detail modal.
//
// Each Service method re-reads the cart from the store, computes the new
// value and writes the whole list back before publishing cart-changed, so a
// subscriber that re-reads on the event always sees the new state.
package cart

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/five82/shopfront/internal/bus"
	"github.com/five82/shopfront/internal/kv"
	"github.com/five82/shopfront/internal/metrics"
	"github.com/five82/shopfront/internal/shop"
)

// Service mutates the cart stored under shop.KeyCart.
type Service struct {
	store   *kv.Store
	bus     *bus.Bus
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService returns a cart service. logger and m may be nil.
func NewService(store *kv.Store, b *bus.Bus, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{store: store, bus: b, logger: logger, metrics: m}
}

// List returns the stored cart, empty when absent or unreadable.
func (s *Service) List() shop.Cart {
	return kv.Get(s.store, shop.KeyCart, shop.Cart{})
}

// Count returns the number of items in the cart.
func (s *Service) Count() int {
	return len(s.List())
}

// Total sums the prices of the current items.
func (s *Service) Total() shop.Price {
	return s.List().Total()
}

// Contains reports whether id is in the cart.
func (s *Service) Contains(id shop.ID) bool {
	return s.List().Contains(id)
}

// Add appends p unless an item with the same id is already present, in
// which case nothing is written or published.
func (s *Service) Add(p shop.Product) error {
	item, err := shop.NewCartItem(p)
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	next, added := s.List().With(item)
	if !added {
		return nil
	}
	return s.commit(next, item.ID, shop.ActionAdd)
}

// Remove drops id from the cart. It always writes and publishes, even when
// id was not present.
func (s *Service) Remove(id shop.ID) error {
	return s.commit(s.List().Without(id), id, shop.ActionRemove)
}

// Clear empties the cart.
func (s *Service) Clear() error {
	return s.commit(shop.Cart{}, "", shop.ActionNone)
}

func (s *Service) commit(next shop.Cart, id shop.ID, action shop.CartAction) error {
	label := string(action)
	if label == "" {
		label = "clear"
	}
	if err := s.store.Save(shop.KeyCart, next); err != nil {
		s.logger.Warn("cart save failed", "action", label, "product_id", id, "error", err)
		s.metrics.CartMutation(label, err)
		return fmt.Errorf("save cart: %w", err)
	}
	s.metrics.CartMutation(label, nil)
	s.logger.Debug("cart saved", "action", label, "product_id", id, "count", len(next))
	bus.Publish(s.bus, shop.CartChanged, shop.CartChange{
		Cart:      next.Clone(),
		Count:     len(next),
		ProductID: id,
		Action:    action,
	})
	return nil
}
