package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 7, 7},
		{"float", 12.0, 12},
		{"json number", json.Number("42"), 42},
		{"numeric string", " 105 ", 105},
		{"float string", "3.0", 3},
		{"garbage", "abc", 0},
		{"true", true, 1},
		{"nil", nil, 0},
		{"nan string", "NaN", 0},
		{"inf string", "+Inf", 0},
		{"negative inf", math.Inf(-1), 0},
		{"nan float", math.NaN(), 0},
		{"out of range", 1e300, 0},
		{"out of range string", "-1e30", 0},
		{"rounded float", 2.6, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("TRUE"))
	assert.True(t, ToBool("1"))
	assert.True(t, ToBool(1.0))
	assert.False(t, ToBool("0"))
	assert.False(t, ToBool(0))
	assert.False(t, ToBool(nil))
}
