// Package commerce declares the contracts the tracking core consumes from
// the host commerce platform. The platform's own entity modeling stays on
// the other side of these interfaces; only the accessors the analytics
// mapping needs are declared here.
package commerce

import (
	"github.com/shopspring/decimal"
)

// Price is a money amount in a single currency.
type Price struct {
	Number       decimal.Decimal
	CurrencyCode string
}

// NewPrice builds a Price from a decimal string such as "11.99". Invalid
// strings yield a zero price.
func NewPrice(number, currencyCode string) Price {
	d, err := decimal.NewFromString(number)
	if err != nil {
		d = decimal.Zero
	}
	return Price{Number: d, CurrencyCode: currencyCode}
}

// Adjustment is a priced modifier attached to an order, such as a tax or
// a discount. SourceID identifies the configuration that produced it; tax
// adjustments without a source are synthetic and excluded from reporting.
type Adjustment struct {
	Type     string
	SourceID string
	Amount   Price
}

// Shipment carries the shipping cost of one shipment of an order.
type Shipment struct {
	Amount Price
}

// Coupon is a promotion code applied to an order.
type Coupon struct {
	Code string
}

// Store identifies the shop an order was placed against.
type Store interface {
	Name() string
}

// Account identifies the acting customer.
type Account interface {
	ID() string
}

// CurrentStore resolves the store for the active request.
type CurrentStore interface {
	Store() Store
}

// Context carries the ambient commerce state a price resolution runs
// against. It is passed explicitly rather than read from globals.
type Context struct {
	Account Account
	Store   Store
}

// PurchasedEntity is the concrete sellable thing behind an order item.
// It may or may not be a ProductVariation.
type PurchasedEntity interface {
	ID() string
}

// Product is the parent of a set of variations.
type Product interface {
	ID() string
	Title() string
}

// ProductVariation is a sellable variation of a product.
type ProductVariation interface {
	PurchasedEntity
	Product() Product
	Title() string
}

// OrderItem is one line of an order.
type OrderItem interface {
	PurchasedEntity() PurchasedEntity
	PurchasedEntityID() string
	Title() string
	Quantity() int
	TotalPrice() Price
	UnitPrice() Price
}

// Order is a cart or a completed order.
type Order interface {
	OrderNumber() string
	Items() []OrderItem
	TotalPrice() Price
	Store() Store
	Adjustments() []Adjustment
	// Shipments returns nil when the order carries no shipments field.
	Shipments() []Shipment
	Coupons() []Coupon
}
