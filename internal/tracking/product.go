package tracking

import (
	"fmt"
)

// Product is the analytics-side representation of one line item. It is
// built fresh for every event, mutated only through its setters, and
// treated as read-only once handed over for flattening.
type Product struct {
	name       string
	id         string
	price      *string
	currency   *string
	brand      *string
	categories []string
	variant    *string
	dimensions []string
	metrics    []string
}

func NewProduct() *Product {
	return &Product{}
}

func (p *Product) Name() string { return p.name }

func (p *Product) SetName(name string) *Product {
	p.name = name
	return p
}

func (p *Product) ID() string { return p.id }

func (p *Product) SetID(id string) *Product {
	p.id = id
	return p
}

// Price returns the formatted price, or "" when no price was resolved.
func (p *Product) Price() string {
	if p.price == nil {
		return ""
	}
	return *p.price
}

// SetPrice stores an already formatted price string (see FormatPrice).
func (p *Product) SetPrice(price string) *Product {
	p.price = &price
	return p
}

// Currency defaults to the empty string rather than being unset.
func (p *Product) Currency() string {
	if p.currency == nil {
		return ""
	}
	return *p.currency
}

func (p *Product) SetCurrency(currency string) *Product {
	p.currency = &currency
	return p
}

func (p *Product) Brand() string {
	if p.brand == nil {
		return ""
	}
	return *p.brand
}

func (p *Product) SetBrand(brand string) *Product {
	p.brand = &brand
	return p
}

func (p *Product) Categories() []string { return p.categories }

func (p *Product) AddCategory(category string) *Product {
	p.categories = append(p.categories, category)
	return p
}

func (p *Product) Variant() string {
	if p.variant == nil {
		return ""
	}
	return *p.variant
}

func (p *Product) SetVariant(variant string) *Product {
	p.variant = &variant
	return p
}

func (p *Product) Dimensions() []string { return p.dimensions }

func (p *Product) SetDimensions(dimensions []string) *Product {
	p.dimensions = dimensions
	return p
}

func (p *Product) AddDimension(dimension string) *Product {
	p.dimensions = append(p.dimensions, dimension)
	return p
}

func (p *Product) Metrics() []string { return p.metrics }

func (p *Product) SetMetrics(metrics []string) *Product {
	p.metrics = metrics
	return p
}

func (p *Product) AddMetric(metric string) *Product {
	p.metrics = append(p.metrics, metric)
	return p
}

// ToFlatItem flattens the product into the suffixed key-value form the
// wire format expects. Fields are walked in declaration order; element
// order is preserved within each sequence. Flattening never mutates the
// product, so repeated calls yield identical output.
func (p *Product) ToFlatItem() *FlatItem {
	item := NewFlatItem()
	for _, field := range productFields {
		field.flatten(p, item)
	}
	return item
}

const itemPrefix = "item_"

// fieldDescriptor fixes, per product field, the output key (rename and
// prefix already applied) and how its value lands in the flat map. The
// slice order is the output order.
type fieldDescriptor struct {
	source  string
	flatten func(p *Product, item *FlatItem)
}

var productFields = []fieldDescriptor{
	requiredScalar("name", itemPrefix+"name", func(p *Product) string { return p.name }),
	requiredScalar("id", itemPrefix+"id", func(p *Product) string { return p.id }),
	optionalScalar("price", "price", func(p *Product) *string { return p.price }),
	// Currency is the one optional field that defaults to "" instead of
	// being omitted.
	requiredScalar("currency", "currency", func(p *Product) string { return p.Currency() }),
	optionalScalar("brand", itemPrefix+"brand", func(p *Product) *string { return p.brand }),
	// "categories" renames to the singular "category" on the wire.
	categorySequence("categories", itemPrefix+"category", func(p *Product) []string { return p.categories }),
	optionalScalar("variant", itemPrefix+"variant", func(p *Product) *string { return p.variant }),
	indexedSequence("dimensions", itemPrefix+"dimension", func(p *Product) []string { return p.dimensions }),
	indexedSequence("metrics", itemPrefix+"metric", func(p *Product) []string { return p.metrics }),
}

func requiredScalar(source, key string, get func(p *Product) string) fieldDescriptor {
	return fieldDescriptor{
		source: source,
		flatten: func(p *Product, item *FlatItem) {
			item.Set(key, get(p))
		},
	}
}

func optionalScalar(source, key string, get func(p *Product) *string) fieldDescriptor {
	return fieldDescriptor{
		source: source,
		flatten: func(p *Product, item *FlatItem) {
			if v := get(p); v != nil {
				item.Set(key, *v)
			}
		},
	}
}

// categorySequence drops empty elements and renumbers the survivors
// consecutively: the first goes out unsuffixed (item_category), the rest
// as item_category2, item_category3, and so on.
func categorySequence(source, key string, get func(p *Product) []string) fieldDescriptor {
	return fieldDescriptor{
		source: source,
		flatten: func(p *Product, item *FlatItem) {
			n := 0
			for _, v := range get(p) {
				if v == "" {
					continue
				}
				n++
				if n == 1 {
					item.Set(key, v)
				} else {
					item.Set(fmt.Sprintf("%s%d", key, n), v)
				}
			}
		},
	}
}

// indexedSequence emits every element, empty or not, as key_N with a
// 1-based index.
func indexedSequence(source, key string, get func(p *Product) []string) fieldDescriptor {
	return fieldDescriptor{
		source: source,
		flatten: func(p *Product, item *FlatItem) {
			for i, v := range get(p) {
				item.Set(fmt.Sprintf("%s_%d", key, i+1), v)
			}
		},
	}
}
