package parquet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrips(t *testing.T) {
	dates := []int32{19723, 19724, 19725}
	columns := []Column{
		{Name: "close", Values: []float64{100.5, math.NaN(), 102.25}},
		{Name: "volume", Values: []float64{1000, 1100, 1200}},
	}

	raw, err := Encode(dates, columns)
	require.NoError(t, err)

	gotDates, gotColumns, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, dates, gotDates)
	require.Len(t, gotColumns, 2)
	assert.Equal(t, "close", gotColumns[0].Name)
	assert.Equal(t, 100.5, gotColumns[0].Values[0])
	assert.True(t, math.IsNaN(gotColumns[0].Values[1]))
	assert.Equal(t, "volume", gotColumns[1].Name)
	assert.Equal(t, []float64{1000, 1100, 1200}, gotColumns[1].Values)
}

func TestEncodeRejectsMismatchedColumnLength(t *testing.T) {
	_, err := Encode([]int32{1, 2}, []Column{{Name: "close", Values: []float64{1}}})
	assert.Error(t, err)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, _, err := Decode([]byte("not a parquet file"))
	assert.Error(t, err)
}
