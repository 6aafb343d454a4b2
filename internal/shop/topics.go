package shop

import "github.com/five82/shopfront/internal/bus"

// Store keys shared by every shopfront process.
const (
	KeyCart         = "cart"
	KeyUserProfile  = "userProfile"
	KeyOrderHistory = "orderHistory"
	KeyProducts     = "products"
	KeyTheme        = "theme"
)

// CartAction says which mutation produced a CartChange.
type CartAction string

const (
	ActionNone   CartAction = ""
	ActionAdd    CartAction = "add"
	ActionRemove CartAction = "remove"
)

// CartChange is the cart-changed payload. ProductID and Action are empty for
// clears and for changes observed from another process.
type CartChange struct {
	Cart      Cart       `json:"cart"`
	Count     int        `json:"count"`
	ProductID ID         `json:"productId,omitempty"`
	Action    CartAction `json:"action,omitempty"`
}

// Topics.
var (
	CartChanged       = bus.NewTopic[CartChange]("cart-changed")
	OpenProductDetail = bus.NewTopic[Product]("open-product-detail")
	ProfileUpdated    = bus.NewTopic[UserProfile]("profile-updated")
	OrdersChanged     = bus.NewTopic[History]("orders-changed")
	ThemeChanged      = bus.NewTopic[string]("theme-changed")
)
