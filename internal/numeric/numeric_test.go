package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantityOrPrice(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int64
	}{
		{"thousands separator", "1,250", 1250},
		{"empty", "", 0},
		{"letters", "abc", 0},
		{"nil", nil, 0},
		{"spaces", "  42 ", 42},
		{"decimal string truncates", "12.7", 12},
		{"unit suffix", "15ea", 15},
		{"negative string", "-5", 0},
		{"plus sign", "+7", 7},
		{"int", 3, 3},
		{"float", 9.99, 9},
		{"negative float", -1.5, 0},
		{"nan", math.NaN(), 0},
		{"huge float", 1e300, 0},
		{"overflow string", "99999999999999999999", 0},
		{"bytes", []byte("2,000"), 2000},
		{"uint64 overflow", uint64(math.MaxUint64), 0},
		{"bool", true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseQuantityOrPrice(tc.in))
		})
	}
}
