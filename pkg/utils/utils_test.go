package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    uint64
		wantErr bool
	}{
		{name: "whole tokens", amount: "5", want: 5_000_000_000},
		{name: "fractional", amount: "1.5", want: 1_500_000_000},
		{name: "smallest unit", amount: "0.000000001", want: 1},
		{name: "zero", amount: "0", want: 0},
		{name: "negative", amount: "-1", wantErr: true},
		{name: "too precise", amount: "0.0000000001", wantErr: true},
		{name: "overflows uint64", amount: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "1.5", FromBaseUnits(1_500_000_000).String())
	assert.Equal(t, "0.000000001", FromBaseUnits(1).String())
	assert.Equal(t, "0", FromBaseUnits(0).String())
}

func TestParseBaseUnits(t *testing.T) {
	got, err := ParseBaseUnits("2.25")
	require.NoError(t, err)
	assert.Equal(t, uint64(2_250_000_000), got)

	_, err = ParseBaseUnits("not a number")
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	const base = uint64(1_234_567_891)
	back, err := ToBaseUnits(FromBaseUnits(base))
	require.NoError(t, err)
	assert.Equal(t, base, back)
}
