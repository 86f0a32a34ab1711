package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	t.Run("HeaderFromData", func(t *testing.T) {
		data := []byte("\xEF\xBB\xBFAccount, Symbol ,Qty\nU1,AAPL,10\nU2,\"MSFT, INC\",5\n")
		rows, err := ReadCSV(data, 0, nil)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "U1", rows[0]["Account"])
		assert.Equal(t, "AAPL", rows[0]["Symbol"])
		assert.Equal(t, "MSFT, INC", rows[1]["Symbol"])
	})

	t.Run("SkipPreamble", func(t *testing.T) {
		data := []byte("\"BOF\",\"F5678557\",\"Position\"\nType,AccountID\nD,U1\n")
		rows, err := ReadCSV(data, 1, nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "D", rows[0]["Type"])
	})

	t.Run("FixedHeaderAndShortRecords", func(t *testing.T) {
		data := []byte("P,1,2\n\nP\n")
		rows, err := ReadCSV(data, 0, []string{"code", "a", "b"})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2", rows[0]["b"])
		assert.Equal(t, "", rows[1]["b"])
	})

	t.Run("Empty", func(t *testing.T) {
		rows, err := ReadCSV(nil, 0, nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice("")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(p))

	p, err = ParsePrice("78.25")
	require.NoError(t, err)
	assert.Equal(t, 78.25, p)

	_, err = ParsePrice("abc")
	assert.Error(t, err)
}
