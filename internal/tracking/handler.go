package tracking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecomtag/internal/commerce"
	"ecomtag/internal/logger"
	"ecomtag/pkg/errors"
)

// DrainableSink is the sink flavor the HTTP surface needs: the data
// layer endpoint drains queued events in one call.
type DrainableSink interface {
	Sink
	Flush() []*Event
}

// Handler exposes the tracking operations to the storefront and the
// queued events to the client-side data layer. Every tracking call runs
// behind the Shield boundary: a tracking failure is logged and answered
// with 202 all the same, because tracking must never break the commerce
// action that triggered it.
type Handler struct {
	tracker         *Tracker
	queue           DrainableSink
	logger          logger.Logger
	defaultListName string
}

func NewHandler(tracker *Tracker, queue DrainableSink, defaultListName string, log logger.Logger) *Handler {
	return &Handler{
		tracker:         tracker,
		queue:           queue,
		logger:          log,
		defaultListName: defaultListName,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		track := v1.Group("/track")
		{
			track.POST("/view-item-list", h.ViewItemList)
			track.POST("/view-item", h.ViewItem)
			track.POST("/select-item", h.SelectItem)
			track.POST("/add-to-cart", h.AddToCart)
			track.POST("/remove-from-cart", h.RemoveFromCart)
			track.POST("/checkout-step", h.CheckoutStep)
			track.POST("/purchase", h.Purchase)
		}

		v1.GET("/events", h.DrainEvents)
	}
}

type PricePayload struct {
	Number       string `json:"number" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required"`
}

func (p *PricePayload) toPrice() commerce.Price {
	return commerce.NewPrice(p.Number, p.CurrencyCode)
}

// VariationPayload is a product variation as reported by the
// storefront. It satisfies the commerce contracts so the tracker can
// consume it directly; a price, when present, is picked up by the list
// price calculator.
type VariationPayload struct {
	VariationID    string        `json:"variation_id" binding:"required"`
	VariationTitle string        `json:"variation_title"`
	ProductID      string        `json:"product_id" binding:"required"`
	ProductTitle   string        `json:"product_title" binding:"required"`
	Price          *PricePayload `json:"price"`
}

func (v *VariationPayload) ID() string                { return v.VariationID }
func (v *VariationPayload) Title() string             { return v.VariationTitle }
func (v *VariationPayload) Product() commerce.Product { return &productPayload{v.ProductID, v.ProductTitle} }

func (v *VariationPayload) CalculatedPrice() *commerce.Price {
	if v.Price == nil {
		return nil
	}
	price := v.Price.toPrice()
	return &price
}

type productPayload struct {
	id    string
	title string
}

func (p *productPayload) ID() string    { return p.id }
func (p *productPayload) Title() string { return p.title }

// OrderItemPayload is one order line as reported by the storefront. A
// missing variation marks a non-variation purchasable and sends the
// tracker down the degraded construction path.
type OrderItemPayload struct {
	ItemTitle      string            `json:"title"`
	ItemQuantity   int               `json:"quantity" binding:"required"`
	PurchasedID    string            `json:"purchased_entity_id"`
	Variation      *VariationPayload `json:"variation"`
	ItemTotalPrice PricePayload      `json:"total_price" binding:"required"`
	ItemUnitPrice  PricePayload      `json:"unit_price" binding:"required"`
}

func (o *OrderItemPayload) PurchasedEntity() commerce.PurchasedEntity {
	if o.Variation != nil {
		return o.Variation
	}
	return &plainEntity{o.PurchasedEntityID()}
}

func (o *OrderItemPayload) PurchasedEntityID() string {
	if o.PurchasedID != "" {
		return o.PurchasedID
	}
	if o.Variation != nil {
		return o.Variation.VariationID
	}
	return ""
}

func (o *OrderItemPayload) Title() string              { return o.ItemTitle }
func (o *OrderItemPayload) Quantity() int              { return o.ItemQuantity }
func (o *OrderItemPayload) TotalPrice() commerce.Price { return o.ItemTotalPrice.toPrice() }
func (o *OrderItemPayload) UnitPrice() commerce.Price  { return o.ItemUnitPrice.toPrice() }

type plainEntity struct {
	id string
}

func (e *plainEntity) ID() string { return e.id }

type AdjustmentPayload struct {
	Type     string       `json:"type" binding:"required"`
	SourceID string       `json:"source_id"`
	Amount   PricePayload `json:"amount" binding:"required"`
}

type ShipmentPayload struct {
	Amount PricePayload `json:"amount" binding:"required"`
}

// OrderPayload is an order (cart or completed) as reported by the
// storefront.
type OrderPayload struct {
	Number      string              `json:"order_number" binding:"required"`
	StoreName   string              `json:"store_name"`
	Total       PricePayload        `json:"total_price" binding:"required"`
	OrderItems  []*OrderItemPayload `json:"items" binding:"required"`
	Adjusts     []AdjustmentPayload `json:"adjustments"`
	ShipmentsIn []ShipmentPayload   `json:"shipments"`
	CouponCodes []string            `json:"coupons"`
}

func (o *OrderPayload) OrderNumber() string        { return o.Number }
func (o *OrderPayload) TotalPrice() commerce.Price { return o.Total.toPrice() }

func (o *OrderPayload) Store() commerce.Store {
	if o.StoreName == "" {
		return nil
	}
	return &storePayload{o.StoreName}
}

func (o *OrderPayload) Items() []commerce.OrderItem {
	items := make([]commerce.OrderItem, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		items = append(items, item)
	}
	return items
}

func (o *OrderPayload) Adjustments() []commerce.Adjustment {
	adjustments := make([]commerce.Adjustment, 0, len(o.Adjusts))
	for _, a := range o.Adjusts {
		adjustments = append(adjustments, commerce.Adjustment{
			Type:     a.Type,
			SourceID: a.SourceID,
			Amount:   a.Amount.toPrice(),
		})
	}
	return adjustments
}

func (o *OrderPayload) Shipments() []commerce.Shipment {
	if o.ShipmentsIn == nil {
		return nil
	}
	shipments := make([]commerce.Shipment, 0, len(o.ShipmentsIn))
	for _, s := range o.ShipmentsIn {
		shipments = append(shipments, commerce.Shipment{Amount: s.Amount.toPrice()})
	}
	return shipments
}

func (o *OrderPayload) Coupons() []commerce.Coupon {
	coupons := make([]commerce.Coupon, 0, len(o.CouponCodes))
	for _, code := range o.CouponCodes {
		coupons = append(coupons, commerce.Coupon{Code: code})
	}
	return coupons
}

type storePayload struct {
	name string
}

func (s *storePayload) Name() string { return s.name }

type listRequest struct {
	List  string              `json:"list"`
	Items []*VariationPayload `json:"items" binding:"required"`
}

func (r *listRequest) variations() []commerce.ProductVariation {
	variations := make([]commerce.ProductVariation, 0, len(r.Items))
	for _, item := range r.Items {
		variations = append(variations, item)
	}
	return variations
}

type cartRequest struct {
	Item     *OrderItemPayload `json:"item" binding:"required"`
	Quantity int               `json:"quantity" binding:"required"`
}

type checkoutStepRequest struct {
	Step  int           `json:"step" binding:"required"`
	Order *OrderPayload `json:"order" binding:"required"`
}

type purchaseRequest struct {
	Order *OrderPayload `json:"order" binding:"required"`
}

func (h *Handler) ViewItemList(c *gin.Context) {
	h.trackList(c, h.tracker.ProductImpressions)
}

func (h *Handler) ViewItem(c *gin.Context) {
	h.trackList(c, h.tracker.ProductDetailViews)
}

func (h *Handler) SelectItem(c *gin.Context) {
	h.trackList(c, h.tracker.ProductClick)
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	h.shielded(c, func() {
		h.tracker.AddToCart(c.Request.Context(), req.Item, req.Quantity)
	})
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req cartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	h.shielded(c, func() {
		h.tracker.RemoveFromCart(c.Request.Context(), req.Item, req.Quantity)
	})
}

func (h *Handler) CheckoutStep(c *gin.Context) {
	var req checkoutStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	h.shielded(c, func() {
		h.tracker.CheckoutStep(c.Request.Context(), req.Step, req.Order)
	})
}

func (h *Handler) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	h.shielded(c, func() {
		h.tracker.Purchase(c.Request.Context(), req.Order)
	})
}

// DrainEvents hands the queued events to the client-side data layer and
// empties the queue.
func (h *Handler) DrainEvents(c *gin.Context) {
	events := h.queue.Flush()
	if events == nil {
		events = []*Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) trackList(c *gin.Context, track func(ctx context.Context, variations []commerce.ProductVariation, list string)) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	list := req.List
	if list == "" {
		list = h.defaultListName
	}

	h.shielded(c, func() {
		track(c.Request.Context(), req.variations(), list)
	})
}

func (h *Handler) shielded(c *gin.Context, fn func()) {
	if err := errors.Shield(func() error {
		fn()
		return nil
	}); err != nil {
		h.logger.ErrorwCtx(c.Request.Context(), "Tracking call failed",
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.Status(http.StatusAccepted)
}
