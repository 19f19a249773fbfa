package settings

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotIntegral = errors.New("value is not a whole number")

// Coerce converts a raw persisted value to kind.
// Errors are *TypeConversionError without a key.
func Coerce(raw any, kind Kind) (any, error) {
	v, err := coerce(raw, kind)
	if err != nil {
		return nil, &TypeConversionError{Value: raw, Kind: kind, Err: err}
	}
	return v, nil
}

func coerce(raw any, kind Kind) (any, error) {
	switch kind {
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
		return strings.EqualFold(Text(raw), "true"), nil
	case KindInt:
		switch x := raw.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			if x != math.Trunc(x) || x < math.MinInt || x > math.MaxInt {
				return nil, errNotIntegral
			}
			return int(x), nil
		}
		return strconv.Atoi(strings.TrimSpace(Text(raw)))
	case KindFloat:
		switch x := raw.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		}
		return strconv.ParseFloat(strings.TrimSpace(Text(raw)), 64)
	case KindString:
		return Text(raw), nil
	}
	return nil, fmt.Errorf("unsupported kind %s", kind)
}

// Text renders a raw value the way it is compared and displayed.
func Text(raw any) string {
	switch x := raw.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(raw)
}
