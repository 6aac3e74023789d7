package commerce

import (
	"context"

	"github.com/sony/gobreaker"

	"ecomtag/internal/config"
)

// CalculatorBreaker wraps a PriceCalculator with a circuit breaker. When
// the circuit is open the calculator reports an absent price instead of
// an error, so event assembly degrades to price-less records rather than
// failing the tracked commerce action.
type CalculatorBreaker struct {
	inner   PriceCalculator
	breaker *gobreaker.CircuitBreaker
}

func WrapWithCircuitBreaker(inner PriceCalculator, name string, cfg config.CircuitBreakerConfig) *CalculatorBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
	}

	return &CalculatorBreaker{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *CalculatorBreaker) Calculate(ctx context.Context, variation ProductVariation, quantity int, cctx Context) (*Price, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.inner.Calculate(ctx, variation, quantity, cctx)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	price, _ := result.(*Price)
	return price, nil
}
