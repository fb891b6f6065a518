package normalize

import (
	"math"
	"strconv"
	"strings"
)

// coerceString accepts string-coercible scalars only.
func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false
		}
		return s, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// coerceFloat accepts numeric values and numeric strings; NaN is rejected.
func coerceFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(t)
		// tolerate "$1,234.56" style formatting the model sometimes leaks
		s = strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// boolean string tokens the model is known to emit
var (
	trueTokens  = map[string]struct{}{"yes": {}, "true": {}, "1": {}, "on": {}}
	falseTokens = map[string]struct{}{"no": {}, "false": {}, "0": {}, "off": {}, "none": {}}
)

// coerceBool accepts native booleans and the token sets above. Anything else
// means "absent", not an error.
func coerceBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if _, ok := trueTokens[s]; ok {
			return true, true
		}
		if _, ok := falseTokens[s]; ok {
			return false, true
		}
		return false, false
	default:
		return false, false
	}
}
