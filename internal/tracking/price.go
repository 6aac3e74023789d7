package tracking

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ecomtag/pkg/errors"
)

// FormatPrice renders a price the way the analytics schema expects:
// truncated (never rounded) to two decimals, dot-separated, no grouping,
// with an exact zero rendered as "0". 11.999 becomes "11.99".
//
// Accepted inputs are Go numeric types, decimal.Decimal, and numeric
// strings. Anything else fails with an INVALID_INPUT error.
//
// Truncation runs on exact decimals so values like 10.005 cannot pick up
// a binary-float cent.
func FormatPrice(price interface{}) (string, error) {
	d, err := toDecimal(price)
	if err != nil {
		return "", err
	}
	return FormatDecimal(d), nil
}

// FormatDecimal is FormatPrice for values that are already decimal.
func FormatDecimal(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	return d.Truncate(2).StringFixed(2)
}

func toDecimal(price interface{}) (decimal.Decimal, error) {
	switch v := price.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, errors.ErrInvalidInput.
				WithMessage("price must be numeric").
				WithCause(err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, errors.ErrInvalidInput.
			WithMessage("price must be numeric").
			WithDetail("type", fmt.Sprintf("%T", price))
	}
}
