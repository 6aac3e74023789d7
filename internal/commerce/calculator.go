package commerce

import (
	"context"
)

// PriceCalculator resolves the display price of a product variation for a
// given quantity and commerce context. A nil price with a nil error means
// no resolver produced a price; callers treat that as "price absent"
// rather than as a failure.
type PriceCalculator interface {
	Calculate(ctx context.Context, variation ProductVariation, quantity int, cctx Context) (*Price, error)
}

// PricedVariation is implemented by variations that carry their own
// resolved price, typically ones hydrated from an API payload.
type PricedVariation interface {
	CalculatedPrice() *Price
}

// ListPriceCalculator resolves against the price the variation itself
// carries. It is the default, resolver-of-last-resort calculator.
type ListPriceCalculator struct{}

func NewListPriceCalculator() *ListPriceCalculator {
	return &ListPriceCalculator{}
}

func (c *ListPriceCalculator) Calculate(_ context.Context, variation ProductVariation, _ int, _ Context) (*Price, error) {
	priced, ok := variation.(PricedVariation)
	if !ok {
		return nil, nil
	}
	return priced.CalculatedPrice(), nil
}
