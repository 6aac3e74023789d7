package tracking

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecomtag/internal/commerce"
	"ecomtag/internal/constants"
	"ecomtag/internal/logger"
	"ecomtag/pkg/metrics"
)

// Tracker assembles Enhanced Ecommerce event payloads from commerce
// domain objects and appends the finished payloads to the sink. Every
// build runs synchronously within the triggering request and constructs
// fresh Product and Event values; the sink is the only shared resource.
type Tracker struct {
	sink         Sink
	hooks        *Hooks
	currentStore commerce.CurrentStore
	currentUser  commerce.Account
	calculator   commerce.PriceCalculator
	logger       logger.Logger
}

func NewTracker(
	sink Sink,
	hooks *Hooks,
	currentStore commerce.CurrentStore,
	currentUser commerce.Account,
	calculator commerce.PriceCalculator,
	log logger.Logger,
) *Tracker {
	if hooks == nil {
		hooks = NewHooks()
	}
	return &Tracker{
		sink:         sink,
		hooks:        hooks,
		currentStore: currentStore,
		currentUser:  currentUser,
		calculator:   calculator,
		logger:       log,
	}
}

// ProductImpressions tracks a list of product variations being shown,
// e.g. on a catalog or search page.
func (t *Tracker) ProductImpressions(ctx context.Context, variations []commerce.ProductVariation, list string) {
	defer observe(EventProductImpressions, time.Now())

	event := &Event{
		Name: EventProductImpressions,
		Ecommerce: Ecommerce{
			Items: t.buildListItems(ctx, variations, list),
		},
	}

	t.hooks.alterEventData(event)
	t.queue(ctx, event)
}

// ProductDetailViews tracks one or more variations being viewed in
// detail. The list name is attached per item.
func (t *Tracker) ProductDetailViews(ctx context.Context, variations []commerce.ProductVariation, list string) {
	defer observe(EventProductDetailViews, time.Now())

	event := &Event{
		Name: EventProductDetailViews,
		Ecommerce: Ecommerce{
			Items: t.buildListItems(ctx, variations, list),
		},
	}

	t.hooks.alterEventData(event)
	t.queue(ctx, event)
}

// ProductClick tracks a click on a product inside a list.
func (t *Tracker) ProductClick(ctx context.Context, variations []commerce.ProductVariation, list string) {
	defer observe(EventProductClick, time.Now())

	event := &Event{
		Name: EventProductClick,
		Ecommerce: Ecommerce{
			Items: t.buildListItems(ctx, variations, list),
		},
	}

	t.hooks.alterEventData(event)
	t.queue(ctx, event)
}

// AddToCart tracks an order item being added to the cart.
func (t *Tracker) AddToCart(ctx context.Context, item commerce.OrderItem, quantity int) {
	defer observe(EventAddCart, time.Now())
	t.trackCartChange(ctx, EventAddCart, item, quantity)
}

// RemoveFromCart tracks an order item being removed from the cart.
func (t *Tracker) RemoveFromCart(ctx context.Context, item commerce.OrderItem, quantity int) {
	defer observe(EventRemoveCart, time.Now())
	t.trackCartChange(ctx, EventRemoveCart, item, quantity)
}

func (t *Tracker) trackCartChange(ctx context.Context, name string, item commerce.OrderItem, quantity int) {
	flat := t.buildProductFromOrderItem(ctx, item).ToFlatItem()
	flat.Set("quantity", quantity)

	t.queue(ctx, &Event{
		Name: name,
		Ecommerce: Ecommerce{
			Items: []*FlatItem{flat},
		},
	})
}

// CheckoutStep tracks one checkout step (1-based). The payload is built
// without an event name; only a registered checkout-step hook can supply
// one, and without a name the payload is dropped. This is the sole
// mechanism that activates checkout tracking per step.
func (t *Tracker) CheckoutStep(ctx context.Context, step int, order commerce.Order) {
	defer observe("checkout_step", time.Now())

	event := &Event{
		Ecommerce: Ecommerce{
			Items: t.buildOrderItems(ctx, order.Items()),
		},
	}

	t.hooks.alterCheckoutStep(step, order, event)

	if event.Name == "" {
		metrics.TrackingEventsTotal.WithLabelValues("checkout_step", "suppressed").Inc()
		t.logger.DebugwCtx(ctx, "Checkout step not tracked, no hook set an event name",
			"step", step,
			"order_number", order.OrderNumber(),
		)
		return
	}

	t.queue(ctx, event)
}

// Purchase tracks a completed order with its transaction-level
// aggregates.
func (t *Tracker) Purchase(ctx context.Context, order commerce.Order) {
	defer observe(EventPurchase, time.Now())

	transactionID := parseOrderNumber(order.OrderNumber())
	coupon := couponCode(order)

	event := &Event{
		Name: EventPurchase,
		Ecommerce: Ecommerce{
			TransactionID: &transactionID,
			Affiliation:   t.affiliation(order),
			Value:         FormatDecimal(order.TotalPrice().Number),
			Tax:           FormatDecimal(taxTotal(order)),
			Shipping:      FormatDecimal(shippingTotal(order)),
			Currency:      order.TotalPrice().CurrencyCode,
			Coupon:        &coupon,
			Items:         t.buildOrderItems(ctx, order.Items()),
		},
	}

	t.hooks.alterEventData(event)
	t.queue(ctx, event)
}

func (t *Tracker) queue(ctx context.Context, event *Event) {
	metrics.TrackingEventsTotal.WithLabelValues(event.Name, "queued").Inc()
	t.logger.DebugwCtx(ctx, "Event queued",
		"event", event.Name,
		"items", len(event.Ecommerce.Items),
	)
	t.sink.AddEvent(event)
}

func (t *Tracker) buildListItems(ctx context.Context, variations []commerce.ProductVariation, list string) []*FlatItem {
	items := make([]*FlatItem, 0, len(variations))
	for _, variation := range variations {
		flat := t.buildProductFromVariation(ctx, variation).ToFlatItem()
		flat.Set("item_list_name", list)
		items = append(items, flat)
	}
	return items
}

func (t *Tracker) buildOrderItems(ctx context.Context, orderItems []commerce.OrderItem) []*FlatItem {
	items := make([]*FlatItem, 0, len(orderItems))
	for _, orderItem := range orderItems {
		flat := t.buildProductFromOrderItem(ctx, orderItem).ToFlatItem()
		flat.Set("quantity", orderItem.Quantity())
		items = append(items, flat)
	}
	return items
}

func (t *Tracker) buildProductFromVariation(ctx context.Context, variation commerce.ProductVariation) *Product {
	product := NewProduct().
		SetName(variation.Product().Title()).
		SetID(variation.Product().ID()).
		SetVariant(variation.Title())

	cctx := commerce.Context{
		Account: t.currentUser,
		Store:   t.currentStore.Store(),
	}

	price, err := t.calculator.Calculate(ctx, variation, constants.DefaultVariationQuantity, cctx)
	switch {
	case err != nil:
		// A failed calculation degrades to a price-less record; the
		// event is still emitted.
		metrics.PriceCalculationsTotal.WithLabelValues("error").Inc()
		t.logger.WarnwCtx(ctx, "Price calculation failed",
			"variation_id", variation.ID(),
			"error", err,
		)
	case price == nil:
		metrics.PriceCalculationsTotal.WithLabelValues("missing").Inc()
		t.logger.DebugwCtx(ctx, "No price resolved for variation",
			"variation_id", variation.ID(),
		)
	default:
		metrics.PriceCalculationsTotal.WithLabelValues("calculated").Inc()
		product.
			SetPrice(FormatDecimal(price.Number)).
			SetCurrency(price.CurrencyCode)
	}

	t.hooks.alterProduct(product, variation)

	return product
}

func (t *Tracker) buildProductFromOrderItem(ctx context.Context, item commerce.OrderItem) *Product {
	purchased := item.PurchasedEntity()

	var product *Product
	if variation, ok := purchased.(commerce.ProductVariation); ok {
		product = t.buildProductFromVariation(ctx, variation)
	} else {
		// The purchased entity is not a product variation, e.g. a custom
		// line item. Fall back to the order item's own data.
		product = NewProduct().
			SetName(item.Title()).
			SetID(item.PurchasedEntityID()).
			SetPrice(FormatDecimal(item.TotalPrice().Number)).
			SetCurrency(item.UnitPrice().CurrencyCode)
	}

	t.hooks.alterPurchasedEntity(product, item, purchased)

	return product
}

func (t *Tracker) affiliation(order commerce.Order) string {
	if store := order.Store(); store != nil {
		return store.Name()
	}
	if store := t.currentStore.Store(); store != nil {
		return store.Name()
	}
	return ""
}

// taxTotal sums the adjustments of type "tax" that carry a source id.
func taxTotal(order commerce.Order) decimal.Decimal {
	total := decimal.Zero
	for _, adjustment := range order.Adjustments() {
		if adjustment.Type != "tax" || adjustment.SourceID == "" {
			continue
		}
		total = total.Add(adjustment.Amount.Number)
	}
	return total
}

// shippingTotal sums the shipment amounts, or zero when the order has no
// shipments.
func shippingTotal(order commerce.Order) decimal.Decimal {
	total := decimal.Zero
	for _, shipment := range order.Shipments() {
		total = total.Add(shipment.Amount.Number)
	}
	return total
}

// couponCode joins the applied coupon codes: "" for none, the bare code
// for one, "A, B" for several.
func couponCode(order commerce.Order) string {
	coupons := order.Coupons()
	if len(coupons) == 0 {
		return ""
	}

	codes := make([]string, 0, len(coupons))
	for _, coupon := range coupons {
		codes = append(codes, coupon.Code)
	}

	if len(codes) == 1 {
		return codes[0]
	}
	return strings.Join(codes, ", ")
}

// parseOrderNumber keeps only the numeric form of the order number; a
// non-numeric order number reports as 0, matching the schema's numeric
// transaction_id contract.
func parseOrderNumber(orderNumber string) int64 {
	n, err := strconv.ParseInt(orderNumber, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func observe(event string, start time.Time) {
	metrics.TrackingBuildDuration.WithLabelValues(event).Observe(float64(time.Since(start).Milliseconds()))
}
