package shop

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Product is a catalog entry.
type Product struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Price       Price  `json:"price"`
	Image       string `json:"image"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Category returns the lower-cased product type used for filtering.
func (p Product) Category() string {
	return strings.ToLower(strings.TrimSpace(p.Type))
}

// CartItem is the cart-relevant part of a product.
type CartItem struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
	Price Price  `json:"price"`
	Image string `json:"image"`
}

// ErrMissingID is returned when a record has no identity.
var ErrMissingID = errors.New("missing id")

// NewCartItem copies the cart fields of p.
func NewCartItem(p Product) (CartItem, error) {
	if strings.TrimSpace(string(p.ID)) == "" {
		return CartItem{}, fmt.Errorf("new cart item %q: %w", p.Title, ErrMissingID)
	}
	return CartItem{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image}, nil
}

// Cart is the ordered list of items in display order.
type Cart []CartItem

// Index returns the position of id or -1.
func (c Cart) Index(id ID) int {
	return slices.IndexFunc(c, func(it CartItem) bool { return it.ID == id })
}

// Contains reports whether id is in the cart.
func (c Cart) Contains(id ID) bool {
	return c.Index(id) >= 0
}

// With returns a new cart with item appended, or c itself when the id is
// already present.
func (c Cart) With(item CartItem) (Cart, bool) {
	if c.Contains(item.ID) {
		return c, false
	}
	next := make(Cart, 0, len(c)+1)
	next = append(next, c...)
	return append(next, item), true
}

// Without returns a new cart with every item matching id removed.
func (c Cart) Without(id ID) Cart {
	next := make(Cart, 0, len(c))
	for _, it := range c {
		if it.ID != id {
			next = append(next, it)
		}
	}
	return next
}

// Total sums item prices.
func (c Cart) Total() Price {
	var total Price
	for _, it := range c {
		total += it.Price
	}
	return total
}

// Clone returns an independent copy that is never nil.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// UserProfile is the locally saved customer identity.
type UserProfile struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Notifications bool   `json:"notifications"`
}

// Complete reports whether the profile can place an order.
func (p UserProfile) Complete() bool {
	return strings.TrimSpace(p.Name) != "" && strings.TrimSpace(p.Email) != ""
}

// Customer is the profile snapshot stored on an order.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Order is an immutable record of one completed checkout.
type Order struct {
	ID       string   `json:"id"`
	Date     string   `json:"date"`
	Items    Cart     `json:"items"`
	Total    *Price   `json:"total,omitempty"`
	Customer Customer `json:"customer"`
}

// Errors returned by NewOrder.
var (
	ErrEmptyOrder         = errors.New("order has no items")
	ErrIncompleteCustomer = errors.New("customer name and email are required")
)

// NewOrderID derives an order id from the wall clock.
func NewOrderID(at time.Time) string {
	return fmt.Sprintf("ORD--%d", at.UnixMilli())
}

// NewOrder snapshots items into an order placed at the given time.
func NewOrder(at time.Time, items Cart, profile UserProfile) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if !profile.Complete() {
		return Order{}, ErrIncompleteCustomer
	}
	snapshot := items.Clone()
	total := snapshot.Total()
	return Order{
		ID:    NewOrderID(at),
		Date:  at.UTC().Format(time.RFC3339Nano),
		Items: snapshot,
		Total: &total,
		Customer: Customer{
			Name:  strings.TrimSpace(profile.Name),
			Email: strings.TrimSpace(profile.Email),
		},
	}, nil
}

// Amount returns the stored total, falling back to the item sum for orders
// written without one.
func (o Order) Amount() Price {
	if o.Total != nil {
		return *o.Total
	}
	return o.Items.Total()
}

// PlacedAt parses the order date. ok is false for unparsable dates.
func (o Order) PlacedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, o.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DisplayDate formats the order date as dd.mm.yyyy in the local zone.
func (o Order) DisplayDate() string {
	t, ok := o.PlacedAt()
	if !ok {
		return "Invalid date"
	}
	return t.Local().Format("02.01.2006")
}

// History is the order list, newest first by insertion.
type History []Order

// Prepend returns a new history with o in front. A colliding id gets a -N
// suffix.
func (h History) Prepend(o Order) History {
	o.ID = h.uniqueID(o.ID)
	next := make(History, 0, len(h)+1)
	next = append(next, o)
	return append(next, h...)
}

func (h History) uniqueID(id string) string {
	taken := make(map[string]struct{}, len(h))
	for _, o := range h {
		taken[o.ID] = struct{}{}
	}
	if _, ok := taken[id]; !ok {
		return id
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Sorted returns a copy ordered by date descending. Orders with unparsable
// dates sort last, keeping their relative order.
func (h History) Sorted() History {
	out := make(History, len(h))
	copy(out, h)
	slices.SortStableFunc(out, func(a, b Order) int {
		ta, okA := a.PlacedAt()
		tb, okB := b.PlacedAt()
		switch {
		case okA && okB:
			return tb.Compare(ta)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return 0
		}
	})
	return out
}

// PurchasedIDs collects every item id that appears in an order.
func (h History) PurchasedIDs() map[ID]struct{} {
	ids := make(map[ID]struct{})
	for _, o := range h {
		for _, it := range o.Items {
			ids[it.ID] = struct{}{}
		}
	}
	return ids
}
