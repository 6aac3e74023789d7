package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomtag/internal/tracking"
)

func cartEvent(name string, itemID string) *tracking.Event {
	item := tracking.NewFlatItem().
		Set("item_name", "Sweatshirt").
		Set("item_id", itemID).
		Set("quantity", 1)

	return &tracking.Event{
		Name: name,
		Ecommerce: tracking.Ecommerce{
			Items: []*tracking.FlatItem{item},
		},
	}
}

func TestMemoryPreservesAppendOrder(t *testing.T) {
	queue := NewMemory()

	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))
	queue.AddEvent(cartEvent(tracking.EventRemoveCart, "1"))
	queue.AddEvent(cartEvent(tracking.EventAddCart, "2"))

	events := queue.Events()
	require.Len(t, events, 3)
	assert.Equal(t, tracking.EventAddCart, events[0].Name)
	assert.Equal(t, tracking.EventRemoveCart, events[1].Name)
	assert.Equal(t, tracking.EventAddCart, events[2].Name)
}

func TestMemorySuppressesDuplicatePayloads(t *testing.T) {
	queue := NewMemory()

	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))
	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))

	assert.Equal(t, 1, queue.Len())
}

func TestMemoryKeepsDistinctPayloads(t *testing.T) {
	queue := NewMemory()

	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))
	queue.AddEvent(cartEvent(tracking.EventAddCart, "2"))

	assert.Equal(t, 2, queue.Len())
}

func TestMemoryFlushDrainsAndResetsDeduplication(t *testing.T) {
	queue := NewMemory()
	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))

	drained := queue.Flush()
	require.Len(t, drained, 1)
	assert.Equal(t, 0, queue.Len())

	// After a flush the same payload is a fresh storefront action.
	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))
	assert.Equal(t, 1, queue.Len())
}

func TestMemoryEventsReturnsSnapshot(t *testing.T) {
	queue := NewMemory()
	queue.AddEvent(cartEvent(tracking.EventAddCart, "1"))

	snapshot := queue.Events()
	queue.AddEvent(cartEvent(tracking.EventAddCart, "2"))

	assert.Len(t, snapshot, 1)
	assert.Equal(t, 2, queue.Len())
}
