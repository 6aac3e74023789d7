package tracking

import (
	"bytes"
	"encoding/json"
)

// Event names from the Enhanced Ecommerce vocabulary.
const (
	EventProductImpressions = "view_item_list"
	EventProductDetailViews = "view_item"
	EventProductClick       = "select_item"
	EventAddCart            = "add_to_cart"
	EventRemoveCart         = "remove_from_cart"
	EventBeginCheckout      = "begin_checkout"
	EventAddShippingInfo    = "add_shipping_info"
	EventAddPaymentInfo     = "add_payment_info"
	EventPurchase           = "purchase"
)

// Event is one payload pushed to the client-side data layer. Name stays
// empty on a checkout-step payload until an alteration hook supplies it;
// payloads without a name are never queued.
type Event struct {
	Name      string    `json:"event,omitempty"`
	Ecommerce Ecommerce `json:"ecommerce"`
}

// Ecommerce holds the per-event item list plus, for purchases, the
// transaction-level aggregates. Money fields are fixed 2-decimal strings
// produced by FormatPrice.
type Ecommerce struct {
	TransactionID *int64      `json:"transaction_id,omitempty"`
	Affiliation   string      `json:"affiliation,omitempty"`
	Value         string      `json:"value,omitempty"`
	Tax           string      `json:"tax,omitempty"`
	Shipping      string      `json:"shipping,omitempty"`
	Currency      string      `json:"currency,omitempty"`
	Coupon        *string     `json:"coupon,omitempty"`
	Items         []*FlatItem `json:"items"`
}

// Sink accumulates finalized events for later delivery to the data layer.
// AddEvent is fire-and-forget: calls are appended in order within one
// request and no acknowledgment is returned.
type Sink interface {
	AddEvent(event *Event)
}

// FlatItem is the flattened, key-suffixed form of one item. It preserves
// insertion order, which the wire format requires, so it marshals itself
// instead of relying on a Go map.
type FlatItem struct {
	keys   []string
	values map[string]interface{}
}

func NewFlatItem() *FlatItem {
	return &FlatItem{
		values: make(map[string]interface{}),
	}
}

// Set adds or replaces a key. A new key keeps its insertion position.
func (f *FlatItem) Set(key string, value interface{}) *FlatItem {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

func (f *FlatItem) Get(key string) (interface{}, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *FlatItem) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *FlatItem) Len() int {
	return len(f.keys)
}

// Keys returns the keys in insertion order.
func (f *FlatItem) Keys() []string {
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

func (f *FlatItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range f.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(f.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
