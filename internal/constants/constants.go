package constants

import "time"

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultServerPort   = 8080
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second
)

const (
	// DefaultVariationQuantity is the quantity used when resolving a
	// product variation price outside of a cart context.
	DefaultVariationQuantity = 1
)

const (
	DefaultEventQueueCapacity = 256
)
