package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1", 1_000_000},
		{"1.5", 1_500_000},
		{" 25.000001 ", 25_000_001},
		{"0.0000015", 2},
		{"0.0000014", 1},
		{"1e2", 100_000_000},
		{".5", 500_000},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input, 6)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}

	for _, input := range []string{"", "abc", "0", "-1", "-0.5", "NaN", "Inf", "0.0000001", "1.2.3"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := ParseAmount(input, 6)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestParseUnits(t *testing.T) {
	got, err := ParseUnits("123.456", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12346), got.Int64())

	got, err = ParseUnits("-1.25", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(-1_250_000), got.Int64())

	got, err = ParseUnits("7", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Int64())

	got, err = ParseUnits("1", 18)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", got.String())

	_, err = ParseUnits("1e5", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.5", FormatUnits(big.NewInt(1_500_000), 6))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "42", FormatUnits(big.NewInt(42_000_000), 6))
	assert.Equal(t, "-0.25", FormatUnits(big.NewInt(-250_000), 6))
	assert.Equal(t, "0", FormatUnits(big.NewInt(0), 6))
	assert.Equal(t, "0", FormatUnits(nil, 6))
	assert.Equal(t, "17", FormatUnits(big.NewInt(17), 0))
}

func TestParseAmount_ZeroDecimals(t *testing.T) {
	amount, err := ParseAmount("3", 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), amount)

	amount, err = ParseAmount("2.5", 0)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), amount)

	_, err = ParseAmount("0.4", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, "7", FormatUnits(big.NewInt(7), 0))
}
