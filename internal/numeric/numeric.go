// Package numeric turns loosely formatted spreadsheet and chat values into
// non-negative integers.
package numeric

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseQuantityOrPrice never fails: absent, blank, unparseable, negative or
// out-of-range input yields 0. Thousands separators are dropped and only the
// leading integer part of a string is used, so "1,250" is 1250 and "12.7ea"
// is 12.
func ParseQuantityOrPrice(raw any) int64 {
	var n int64
	switch v := raw.(type) {
	case nil:
		return 0
	case int:
		n = int64(v)
	case int64:
		n = v
	case int32:
		n = int64(v)
	case int16:
		n = int64(v)
	case int8:
		n = int64(v)
	case uint:
		n = fromUint(uint64(v))
	case uint64:
		n = fromUint(v)
	case uint32:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint8:
		n = int64(v)
	case float64:
		n = fromFloat(v)
	case float32:
		n = fromFloat(float64(v))
	case string:
		n = fromString(v)
	case []byte:
		n = fromString(string(v))
	case fmt.Stringer:
		n = fromString(v.String())
	default:
		n = fromString(fmt.Sprintf("%v", v))
	}
	if n < 0 {
		return 0
	}
	return n
}

func fromUint(v uint64) int64 {
	if v > math.MaxInt64 {
		return 0
	}
	return int64(v)
}

func fromFloat(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v <= math.MinInt64 {
		return 0
	}
	return int64(v)
}

func fromString(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	end := 0
	if s[0] == '-' || s[0] == '+' {
		end = 1
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
