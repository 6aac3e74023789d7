package tracking

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFlatItemFieldOrder(t *testing.T) {
	product := NewProduct().
		SetName("Sweatshirt").
		SetID("42").
		SetPrice("29.99").
		SetCurrency("EUR").
		SetBrand("Acme").
		AddCategory("Clothing").
		AddCategory("Tops").
		SetVariant("Blue, L").
		SetDimensions([]string{"d1", "d2"}).
		SetMetrics([]string{"m1"})

	flat := product.ToFlatItem()

	assert.Equal(t, []string{
		"item_name",
		"item_id",
		"price",
		"currency",
		"item_brand",
		"item_category",
		"item_category2",
		"item_variant",
		"item_dimension_1",
		"item_dimension_2",
		"item_metric_1",
	}, flat.Keys())
}

func TestToFlatItemScalars(t *testing.T) {
	flat := NewProduct().
		SetName("Sweatshirt").
		SetID("42").
		SetPrice("29.99").
		SetCurrency("EUR").
		ToFlatItem()

	name, _ := flat.Get("item_name")
	assert.Equal(t, "Sweatshirt", name)
	id, _ := flat.Get("item_id")
	assert.Equal(t, "42", id)
	price, _ := flat.Get("price")
	assert.Equal(t, "29.99", price)
	currency, _ := flat.Get("currency")
	assert.Equal(t, "EUR", currency)
}

func TestToFlatItemOmitsUnsetOptionalFields(t *testing.T) {
	flat := NewProduct().
		SetName("Sweatshirt").
		SetID("42").
		SetPrice("29.99").
		ToFlatItem()

	assert.False(t, flat.Has("item_brand"))
	assert.False(t, flat.Has("item_variant"))
	assert.False(t, flat.Has("item_category"))
	assert.False(t, flat.Has("item_dimension_1"))
	assert.False(t, flat.Has("item_metric_1"))
}

func TestToFlatItemOmitsUnsetPrice(t *testing.T) {
	flat := NewProduct().
		SetName("Sweatshirt").
		SetID("42").
		ToFlatItem()

	assert.False(t, flat.Has("price"))
}

func TestToFlatItemCurrencyDefaultsToEmptyString(t *testing.T) {
	flat := NewProduct().
		SetName("Sweatshirt").
		SetID("42").
		ToFlatItem()

	currency, ok := flat.Get("currency")
	require.True(t, ok)
	assert.Equal(t, "", currency)
}

func TestToFlatItemCategoryNumbering(t *testing.T) {
	// Survivors are renumbered consecutively: first unsuffixed, then
	// item_category2, item_category3, ... A legacy scheme suffixed from
	// the second original index instead (item_category3 for "B" below);
	// these fixtures pin the consecutive convention so a regression to
	// either scheme is caught.
	tests := []struct {
		name       string
		categories []string
		want       map[string]string
		absent     []string
	}{
		{
			name:       "empty element is skipped",
			categories: []string{"A", "", "B"},
			want: map[string]string{
				"item_category":  "A",
				"item_category2": "B",
			},
			absent: []string{"item_category3"},
		},
		{
			name:       "leading empty element",
			categories: []string{"", "A"},
			want: map[string]string{
				"item_category": "A",
			},
			absent: []string{"item_category2"},
		},
		{
			name:       "all empty",
			categories: []string{"", ""},
			want:       map[string]string{},
			absent:     []string{"item_category", "item_category2"},
		},
		{
			name:       "five categories",
			categories: []string{"A", "B", "C", "D", "E"},
			want: map[string]string{
				"item_category":  "A",
				"item_category2": "B",
				"item_category3": "C",
				"item_category4": "D",
				"item_category5": "E",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := NewProduct().SetName("P").SetID("1")
			for _, c := range tt.categories {
				product.AddCategory(c)
			}

			flat := product.ToFlatItem()

			for key, want := range tt.want {
				got, ok := flat.Get(key)
				require.True(t, ok, "expected key %s", key)
				assert.Equal(t, want, got)
			}
			for _, key := range tt.absent {
				assert.False(t, flat.Has(key), "unexpected key %s", key)
			}
		})
	}
}

func TestToFlatItemDimensionsAndMetricsKeepEmptyElements(t *testing.T) {
	flat := NewProduct().
		SetName("P").
		SetID("1").
		SetDimensions([]string{"d1", "", "d3"}).
		SetMetrics([]string{"", "m2"}).
		ToFlatItem()

	d1, _ := flat.Get("item_dimension_1")
	assert.Equal(t, "d1", d1)
	d2, ok := flat.Get("item_dimension_2")
	require.True(t, ok)
	assert.Equal(t, "", d2)
	d3, _ := flat.Get("item_dimension_3")
	assert.Equal(t, "d3", d3)

	m1, ok := flat.Get("item_metric_1")
	require.True(t, ok)
	assert.Equal(t, "", m1)
	m2, _ := flat.Get("item_metric_2")
	assert.Equal(t, "m2", m2)
}

func TestToFlatItemIsIdempotent(t *testing.T) {
	product := NewProduct().
		SetName("Sweatshirt").
		SetID("42").
		SetPrice("29.99").
		SetCurrency("EUR").
		AddCategory("Clothing").
		AddCategory("").
		AddCategory("Tops").
		SetDimensions([]string{"d1"})

	first, err := json.Marshal(product.ToFlatItem())
	require.NoError(t, err)
	second, err := json.Marshal(product.ToFlatItem())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFlatItemMarshalPreservesInsertionOrder(t *testing.T) {
	item := NewFlatItem().
		Set("b", "1").
		Set("a", 2).
		Set("c", "3")

	body, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":2,"c":"3"}`, string(body))
}

func TestFlatItemSetKeepsPositionOnOverwrite(t *testing.T) {
	item := NewFlatItem().
		Set("a", "1").
		Set("b", "2").
		Set("a", "3")

	assert.Equal(t, []string{"a", "b"}, item.Keys())
	v, _ := item.Get("a")
	assert.Equal(t, "3", v)
}
