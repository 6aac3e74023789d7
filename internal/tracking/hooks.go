package tracking

import (
	"ecomtag/internal/commerce"
)

// ProductHook runs after a Product was built from a product variation and
// may mutate it in place.
type ProductHook func(product *Product, variation commerce.ProductVariation)

// PurchasedEntityHook runs after a Product was built from an order item's
// purchased entity, which may or may not be a product variation.
type PurchasedEntityHook func(product *Product, item commerce.OrderItem, purchased commerce.PurchasedEntity)

// EventDataHook may rewrite an assembled payload before it is queued.
type EventDataHook func(event *Event)

// CheckoutStepHook runs for every tracked checkout step. It is the only
// place that may set the payload's event name; a checkout-step payload
// whose name is still empty after the chain is silently dropped.
type CheckoutStepHook func(step int, order commerce.Order, event *Event)

// Hooks holds the ordered interceptor chains. Registration happens at
// wiring time; dispatch is synchronous, strictly in registration order,
// with no isolation between interceptors. A later hook sees, and can
// undo, everything an earlier one did.
type Hooks struct {
	product         []ProductHook
	purchasedEntity []PurchasedEntityHook
	eventData       []EventDataHook
	checkoutStep    []CheckoutStepHook
}

func NewHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) OnProduct(hook ProductHook) *Hooks {
	h.product = append(h.product, hook)
	return h
}

func (h *Hooks) OnPurchasedEntity(hook PurchasedEntityHook) *Hooks {
	h.purchasedEntity = append(h.purchasedEntity, hook)
	return h
}

func (h *Hooks) OnEventData(hook EventDataHook) *Hooks {
	h.eventData = append(h.eventData, hook)
	return h
}

func (h *Hooks) OnCheckoutStep(hook CheckoutStepHook) *Hooks {
	h.checkoutStep = append(h.checkoutStep, hook)
	return h
}

func (h *Hooks) alterProduct(product *Product, variation commerce.ProductVariation) {
	for _, hook := range h.product {
		hook(product, variation)
	}
}

func (h *Hooks) alterPurchasedEntity(product *Product, item commerce.OrderItem, purchased commerce.PurchasedEntity) {
	for _, hook := range h.purchasedEntity {
		hook(product, item, purchased)
	}
}

func (h *Hooks) alterEventData(event *Event) {
	for _, hook := range h.eventData {
		hook(event)
	}
}

func (h *Hooks) alterCheckoutStep(step int, order commerce.Order, event *Event) {
	for _, hook := range h.checkoutStep {
		hook(step, order, event)
	}
}
