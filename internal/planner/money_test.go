package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1303.3333, "$1,303.33"},
		{354.166666, "$354.17"},
		{25200, "$25,200.00"},
		{5123750.4, "$5,123,750.40"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "5%", FormatPercent(0.05))
	assert.Equal(t, "4.5%", FormatPercent(0.045))
}
