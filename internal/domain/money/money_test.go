package money

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_ValidInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "prefixed with separators", input: "Rp400.000", want: 400000},
		{name: "millions", input: "Rp1.000.000", want: 1000000},
		{name: "no prefix", input: "400.000", want: 400000},
		{name: "plain digits", input: "500000", want: 500000},
		{name: "prefixed plain digits", input: "Rp750", want: 750},
		{name: "zero", input: "Rp0", want: 0},
		{name: "surrounding spaces", input: "  Rp 12.500  ", want: 12500},
		{name: "max int64", input: "9223372036854775807", want: math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParse_InvalidInputs(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "prefix only", input: "Rp"},
		{name: "negative", input: "-400"},
		{name: "decimal comma", input: "Rp400,50"},
		{name: "letters", input: "Rp4OO.000"},
		{name: "short group", input: "Rp1.00.000"},
		{name: "long leading group", input: "1000.000"},
		{name: "trailing separator", input: "Rp400."},
		{name: "leading separator", input: ".400"},
		{name: "overflow", input: "9223372036854775808"},
		{name: "other currency", input: "$400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestFormat(t *testing.T) {
	require.Equal(t, "Rp0", Format(0))
	require.Equal(t, "Rp999", Format(999))
	require.Equal(t, "Rp1.000", Format(1000))
	require.Equal(t, "Rp400.000", Format(400000))
	require.Equal(t, "Rp1.000.000", Format(1000000))
	require.Equal(t, "Rp12.345.678", Format(12345678))
	require.Equal(t, "-Rp1.500", Format(-1500))
	require.Equal(t, "-Rp9.223.372.036.854.775.808", Format(math.MinInt64))
}

func TestFormatParse_RoundTrip(t *testing.T) {
	values := []int64{0, 1, 9, 10, 99, 100, 999, 1000, 1001, 99999, 100000, 400000, 500000, math.MaxInt64}
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 500; i++ {
		values = append(values, rng.Int64N(math.MaxInt64))
	}

	for _, n := range values {
		got, err := Parse(Format(n))
		require.NoError(t, err, "value %d", n)
		require.Equal(t, n, got)
	}
}

func TestMultiply(t *testing.T) {
	got, err := Multiply(150000, 3)
	require.NoError(t, err)
	require.Equal(t, int64(450000), got)

	got, err = Multiply(150000, 0)
	require.NoError(t, err)
	require.Equal(t, int64(0), got)

	_, err = Multiply(math.MaxInt64, 2)
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Multiply(-1, 2)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAdd(t *testing.T) {
	got, err := Add(400000, 100000)
	require.NoError(t, err)
	require.Equal(t, int64(500000), got)

	_, err = Add(math.MaxInt64, 1)
	require.ErrorIs(t, err, ErrInvalidAmount)
}
