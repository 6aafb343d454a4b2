// Package shop defines the storefront's record types, the store keys they
// live under and the bus topics that announce changes to them.
//
// Records
//
// Product is a catalog entry. CartItem is the cart-relevant subset of a
// Product and is identified by ID. Cart is an ordered slice of CartItem in
// display order with unique IDs; the helpers on Cart never introduce a
// duplicate. Order is an immutable snapshot of a cart taken at checkout, and
// History is the newest-first list of orders.
//
// Constructors enforce required fields: NewCartItem rejects a product without
// an id and NewOrder rejects an empty cart or an incomplete customer.
//
// Lenient decoding
//
// Stored values may have been written by older builds or edited by hand, so
// the scalar types decode leniently:
//
//   - ID accepts JSON strings and numbers, so 1 and "1" name the same item.
//   - Price accepts numbers and numeric strings. Anything else (null, "bad",
//     booleans, objects) decodes as 0 and never fails the surrounding value.
//
// Keys and topics
//
// Key* constants name the store entries shared by every process. The topic
// variables are the bus.Topic values services publish after a successful
// write:
//
//	CartChanged       cart-changed         CartChange
//	OpenProductDetail open-product-detail  Product
//	ProfileUpdated    profile-updated      UserProfile
//	OrdersChanged     orders-changed       History
//	ThemeChanged      theme-changed        string
//
// Price formatting follows en-US currency conventions through
// golang.org/x/text/message: whole dollars print without a fraction ("$10"),
// others with up to two digits ("$10.5").
package shop
