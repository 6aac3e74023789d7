package tracking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomtag/internal/commerce"
	"ecomtag/internal/logger"
)

type capturedSink struct {
	events []*Event
}

func (s *capturedSink) AddEvent(event *Event) {
	s.events = append(s.events, event)
}

type stubCalculator struct {
	price        *commerce.Price
	err          error
	calls        int
	lastQuantity int
	lastContext  commerce.Context
}

func (c *stubCalculator) Calculate(_ context.Context, _ commerce.ProductVariation, quantity int, cctx commerce.Context) (*commerce.Price, error) {
	c.calls++
	c.lastQuantity = quantity
	c.lastContext = cctx
	return c.price, c.err
}

type testProduct struct {
	id    string
	title string
}

func (p *testProduct) ID() string    { return p.id }
func (p *testProduct) Title() string { return p.title }

type testVariation struct {
	id           string
	title        string
	productID    string
	productTitle string
}

func (v *testVariation) ID() string    { return v.id }
func (v *testVariation) Title() string { return v.title }

func (v *testVariation) Product() commerce.Product {
	return &testProduct{id: v.productID, title: v.productTitle}
}

type testEntity struct {
	id string
}

func (e *testEntity) ID() string { return e.id }

type testOrderItem struct {
	purchased   commerce.PurchasedEntity
	purchasedID string
	title       string
	quantity    int
	total       commerce.Price
	unit        commerce.Price
}

func (i *testOrderItem) PurchasedEntity() commerce.PurchasedEntity { return i.purchased }
func (i *testOrderItem) PurchasedEntityID() string                 { return i.purchasedID }
func (i *testOrderItem) Title() string                             { return i.title }
func (i *testOrderItem) Quantity() int                             { return i.quantity }
func (i *testOrderItem) TotalPrice() commerce.Price                { return i.total }
func (i *testOrderItem) UnitPrice() commerce.Price                 { return i.unit }

type testOrder struct {
	number      string
	items       []commerce.OrderItem
	total       commerce.Price
	store       commerce.Store
	adjustments []commerce.Adjustment
	shipments   []commerce.Shipment
	coupons     []commerce.Coupon
}

func (o *testOrder) OrderNumber() string                { return o.number }
func (o *testOrder) Items() []commerce.OrderItem        { return o.items }
func (o *testOrder) TotalPrice() commerce.Price         { return o.total }
func (o *testOrder) Store() commerce.Store              { return o.store }
func (o *testOrder) Adjustments() []commerce.Adjustment { return o.adjustments }
func (o *testOrder) Shipments() []commerce.Shipment     { return o.shipments }
func (o *testOrder) Coupons() []commerce.Coupon         { return o.coupons }

func newTestTracker(sink Sink, hooks *Hooks, calculator commerce.PriceCalculator) *Tracker {
	return NewTracker(
		sink,
		hooks,
		commerce.StaticStore("Main Store"),
		commerce.AnonymousAccount{},
		calculator,
		logger.NopLogger(),
	)
}

func blueSweatshirt() *testVariation {
	return &testVariation{
		id:           "101",
		title:        "Blue, L",
		productID:    "42",
		productTitle: "Sweatshirt",
	}
}

func variationOrderItem(quantity int) *testOrderItem {
	return &testOrderItem{
		purchased:   blueSweatshirt(),
		purchasedID: "101",
		title:       "Sweatshirt",
		quantity:    quantity,
		total:       commerce.NewPrice("59.98", "USD"),
		unit:        commerce.NewPrice("29.99", "USD"),
	}
}

func TestProductImpressions(t *testing.T) {
	sink := &capturedSink{}
	price := commerce.NewPrice("11.999", "USD")
	calculator := &stubCalculator{price: &price}
	tracker := newTestTracker(sink, nil, calculator)

	tracker.ProductImpressions(context.Background(), []commerce.ProductVariation{
		blueSweatshirt(),
		&testVariation{id: "102", title: "Red, M", productID: "42", productTitle: "Sweatshirt"},
	}, "Featured")

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, EventProductImpressions, event.Name)
	require.Len(t, event.Ecommerce.Items, 2)

	for _, item := range event.Ecommerce.Items {
		list, ok := item.Get("item_list_name")
		require.True(t, ok)
		assert.Equal(t, "Featured", list)

		priceValue, ok := item.Get("price")
		require.True(t, ok)
		assert.Equal(t, "11.99", priceValue)
		currency, _ := item.Get("currency")
		assert.Equal(t, "USD", currency)
	}

	name, _ := event.Ecommerce.Items[0].Get("item_name")
	assert.Equal(t, "Sweatshirt", name)
	id, _ := event.Ecommerce.Items[0].Get("item_id")
	assert.Equal(t, "42", id)
	variant, _ := event.Ecommerce.Items[0].Get("item_variant")
	assert.Equal(t, "Blue, L", variant)

	assert.Equal(t, 2, calculator.calls)
	assert.Equal(t, 1, calculator.lastQuantity)
	assert.Equal(t, "Main Store", calculator.lastContext.Store.Name())
}

func TestProductImpressionsMissingPrice(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	tracker.ProductImpressions(context.Background(), []commerce.ProductVariation{blueSweatshirt()}, "Featured")

	require.Len(t, sink.events, 1)
	item := sink.events[0].Ecommerce.Items[0]

	assert.False(t, item.Has("price"))
	currency, ok := item.Get("currency")
	require.True(t, ok)
	assert.Equal(t, "", currency)
}

func TestProductImpressionsCalculatorErrorStillEmits(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{err: assert.AnError})

	tracker.ProductImpressions(context.Background(), []commerce.ProductVariation{blueSweatshirt()}, "Featured")

	require.Len(t, sink.events, 1)
	assert.False(t, sink.events[0].Ecommerce.Items[0].Has("price"))
}

func TestProductDetailViews(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	tracker.ProductDetailViews(context.Background(), []commerce.ProductVariation{blueSweatshirt()}, "Related")

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventProductDetailViews, sink.events[0].Name)
	list, ok := sink.events[0].Ecommerce.Items[0].Get("item_list_name")
	require.True(t, ok)
	assert.Equal(t, "Related", list)
}

func TestProductClick(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	tracker.ProductClick(context.Background(), []commerce.ProductVariation{blueSweatshirt()}, "Search")

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventProductClick, sink.events[0].Name)
}

func TestAddToCartVariationPath(t *testing.T) {
	sink := &capturedSink{}
	price := commerce.NewPrice("29.99", "USD")
	calculator := &stubCalculator{price: &price}
	tracker := newTestTracker(sink, nil, calculator)

	tracker.AddToCart(context.Background(), variationOrderItem(2), 2)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, EventAddCart, event.Name)
	require.Len(t, event.Ecommerce.Items, 1)

	item := event.Ecommerce.Items[0]
	quantity, ok := item.Get("quantity")
	require.True(t, ok)
	assert.Equal(t, 2, quantity)
	name, _ := item.Get("item_name")
	assert.Equal(t, "Sweatshirt", name)
	assert.Equal(t, 1, calculator.calls)
}

func TestAddToCartNonVariationFallback(t *testing.T) {
	sink := &capturedSink{}
	calculator := &stubCalculator{}
	tracker := newTestTracker(sink, nil, calculator)

	item := &testOrderItem{
		purchased:   &testEntity{id: "99"},
		purchasedID: "99",
		title:       "Gift card",
		quantity:    1,
		total:       commerce.NewPrice("24.999", "USD"),
		unit:        commerce.NewPrice("24.999", "USD"),
	}

	tracker.AddToCart(context.Background(), item, 1)

	require.Len(t, sink.events, 1)
	flat := sink.events[0].Ecommerce.Items[0]

	name, _ := flat.Get("item_name")
	assert.Equal(t, "Gift card", name)
	id, _ := flat.Get("item_id")
	assert.Equal(t, "99", id)
	price, _ := flat.Get("price")
	assert.Equal(t, "24.99", price)
	currency, _ := flat.Get("currency")
	assert.Equal(t, "USD", currency)

	// The degraded path never consults the price calculator.
	assert.Equal(t, 0, calculator.calls)
}

func TestRemoveFromCart(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	tracker.RemoveFromCart(context.Background(), variationOrderItem(1), 1)

	require.Len(t, sink.events, 1)
	assert.Equal(t, EventRemoveCart, sink.events[0].Name)
}

func TestCheckoutStepSuppressedWithoutHook(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	order := &testOrder{
		number: "123",
		items:  []commerce.OrderItem{variationOrderItem(1)},
		total:  commerce.NewPrice("29.99", "USD"),
	}

	tracker.CheckoutStep(context.Background(), 1, order)

	assert.Empty(t, sink.events)
}

func TestCheckoutStepEmittedWhenHookSetsEventName(t *testing.T) {
	sink := &capturedSink{}
	hooks := NewHooks().OnCheckoutStep(func(step int, _ commerce.Order, event *Event) {
		if step == 1 {
			event.Name = "checkout_progress"
		}
	})
	tracker := newTestTracker(sink, hooks, &stubCalculator{})

	order := &testOrder{
		number: "123",
		items:  []commerce.OrderItem{variationOrderItem(2), variationOrderItem(1)},
		total:  commerce.NewPrice("89.97", "USD"),
	}

	tracker.CheckoutStep(context.Background(), 1, order)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, "checkout_progress", event.Name)
	require.Len(t, event.Ecommerce.Items, 2)

	quantity, ok := event.Ecommerce.Items[0].Get("quantity")
	require.True(t, ok)
	assert.Equal(t, 2, quantity)
}

func TestCheckoutStepHookOnlyMatchesItsStep(t *testing.T) {
	sink := &capturedSink{}
	hooks := NewHooks().OnCheckoutStep(func(step int, _ commerce.Order, event *Event) {
		if step == 1 {
			event.Name = EventBeginCheckout
		}
	})
	tracker := newTestTracker(sink, hooks, &stubCalculator{})

	order := &testOrder{
		number: "123",
		items:  []commerce.OrderItem{variationOrderItem(1)},
		total:  commerce.NewPrice("29.99", "USD"),
	}

	tracker.CheckoutStep(context.Background(), 2, order)
	assert.Empty(t, sink.events)

	tracker.CheckoutStep(context.Background(), 1, order)
	require.Len(t, sink.events, 1)
	assert.Equal(t, EventBeginCheckout, sink.events[0].Name)
}

func TestPurchase(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	order := &testOrder{
		number: "123",
		items:  []commerce.OrderItem{variationOrderItem(2)},
		total:  commerce.NewPrice("63.98", "USD"),
		store:  commerce.StaticStore("Acme Shop"),
		adjustments: []commerce.Adjustment{
			{Type: "tax", SourceID: "vat|standard", Amount: commerce.NewPrice("1.50", "USD")},
			{Type: "tax", SourceID: "vat|reduced", Amount: commerce.NewPrice("2.25", "USD")},
			{Type: "promotion", SourceID: "promo-1", Amount: commerce.NewPrice("5.00", "USD")},
			// Tax without a source id is synthetic and not reported.
			{Type: "tax", Amount: commerce.NewPrice("9.99", "USD")},
		},
		shipments: []commerce.Shipment{
			{Amount: commerce.NewPrice("4.005", "USD")},
		},
		coupons: []commerce.Coupon{{Code: "SUMMER"}},
	}

	tracker.Purchase(context.Background(), order)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, EventPurchase, event.Name)

	ecommerce := event.Ecommerce
	require.NotNil(t, ecommerce.TransactionID)
	assert.Equal(t, int64(123), *ecommerce.TransactionID)
	assert.Equal(t, "Acme Shop", ecommerce.Affiliation)
	assert.Equal(t, "63.98", ecommerce.Value)
	assert.Equal(t, "3.75", ecommerce.Tax)
	assert.Equal(t, "4.00", ecommerce.Shipping)
	assert.Equal(t, "USD", ecommerce.Currency)
	require.NotNil(t, ecommerce.Coupon)
	assert.Equal(t, "SUMMER", *ecommerce.Coupon)
	require.Len(t, ecommerce.Items, 1)

	quantity, ok := ecommerce.Items[0].Get("quantity")
	require.True(t, ok)
	assert.Equal(t, 2, quantity)
}

func TestPurchaseWithoutShipmentsOrCoupons(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	order := &testOrder{
		number: "456",
		items:  []commerce.OrderItem{variationOrderItem(1)},
		total:  commerce.NewPrice("29.99", "USD"),
	}

	tracker.Purchase(context.Background(), order)

	require.Len(t, sink.events, 1)
	ecommerce := sink.events[0].Ecommerce
	assert.Equal(t, "0", ecommerce.Shipping)
	assert.Equal(t, "0", ecommerce.Tax)
	require.NotNil(t, ecommerce.Coupon)
	assert.Equal(t, "", *ecommerce.Coupon)
	// The order carries no store, so the affiliation falls back to the
	// current store.
	assert.Equal(t, "Main Store", ecommerce.Affiliation)
}

func TestPurchaseCouponJoining(t *testing.T) {
	tests := []struct {
		name    string
		coupons []commerce.Coupon
		want    string
	}{
		{
			name: "none",
			want: "",
		},
		{
			name:    "single coupon stays bare",
			coupons: []commerce.Coupon{{Code: "A"}},
			want:    "A",
		},
		{
			name:    "two coupons joined with comma and space",
			coupons: []commerce.Coupon{{Code: "A"}, {Code: "B"}},
			want:    "A, B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &capturedSink{}
			tracker := newTestTracker(sink, nil, &stubCalculator{})

			tracker.Purchase(context.Background(), &testOrder{
				number:  "1",
				total:   commerce.NewPrice("10.00", "USD"),
				coupons: tt.coupons,
			})

			require.Len(t, sink.events, 1)
			require.NotNil(t, sink.events[0].Ecommerce.Coupon)
			assert.Equal(t, tt.want, *sink.events[0].Ecommerce.Coupon)
		})
	}
}

func TestPurchaseNonNumericOrderNumber(t *testing.T) {
	sink := &capturedSink{}
	tracker := newTestTracker(sink, nil, &stubCalculator{})

	tracker.Purchase(context.Background(), &testOrder{
		number: "ORD-9",
		total:  commerce.NewPrice("10.00", "USD"),
	})

	require.Len(t, sink.events, 1)
	require.NotNil(t, sink.events[0].Ecommerce.TransactionID)
	assert.Equal(t, int64(0), *sink.events[0].Ecommerce.TransactionID)
}

func TestPurchasedEntityHookSeesOrderItem(t *testing.T) {
	sink := &capturedSink{}
	var gotPurchased commerce.PurchasedEntity
	hooks := NewHooks().OnPurchasedEntity(func(product *Product, item commerce.OrderItem, purchased commerce.PurchasedEntity) {
		gotPurchased = purchased
		product.SetBrand("Acme")
	})
	tracker := newTestTracker(sink, hooks, &stubCalculator{})

	tracker.AddToCart(context.Background(), variationOrderItem(1), 1)

	require.Len(t, sink.events, 1)
	brand, ok := sink.events[0].Ecommerce.Items[0].Get("item_brand")
	require.True(t, ok)
	assert.Equal(t, "Acme", brand)

	variation, ok := gotPurchased.(commerce.ProductVariation)
	require.True(t, ok)
	assert.Equal(t, "101", variation.ID())
}

func TestEventDataHookWiring(t *testing.T) {
	sink := &capturedSink{}
	calls := 0
	hooks := NewHooks().OnEventData(func(_ *Event) {
		calls++
	})
	tracker := newTestTracker(sink, hooks, &stubCalculator{})

	// Cart changes do not run the generic event-data chain.
	tracker.AddToCart(context.Background(), variationOrderItem(1), 1)
	assert.Equal(t, 0, calls)

	tracker.ProductImpressions(context.Background(), []commerce.ProductVariation{blueSweatshirt()}, "")
	assert.Equal(t, 1, calls)

	tracker.Purchase(context.Background(), &testOrder{
		number: "1",
		total:  commerce.NewPrice("10.00", "USD"),
	})
	assert.Equal(t, 2, calls)
}
