package table

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetColumnReplaceMovesToEnd(t *testing.T) {
	tbl := New([]int64{1, 2})
	tbl.SetColumn("title", map[int64]Cell{1: String("Heat"), 2: String("Big")})
	tbl.SetColumn("genres", map[int64]Cell{1: String("Crime")})

	tbl.SetColumn("title", map[int64]Cell{1: String("Heat"), 2: String("Big")})
	assert.Equal(t, []string{"genres", "title"}, tbl.Columns())
}

func TestSetColumnNeverChangesRowSet(t *testing.T) {
	tbl := New([]int64{1, 2, 3})
	before := tbl.Len()

	// Cells for id 99 belong to no row and must be dropped silently.
	tbl.SetColumn("genres", map[int64]Cell{1: String("Drama"), 99: String("Noise")})

	assert.Equal(t, before, tbl.Len())
	assert.Equal(t, []int64{1, 2, 3}, tbl.IDs())
	assert.True(t, tbl.Cell(99, "genres").IsNull())
}

func TestCellMissingIsNull(t *testing.T) {
	tbl := New([]int64{1, 2})
	tbl.SetColumn("plot", map[int64]Cell{1: String("A heist goes wrong.")})

	assert.False(t, tbl.Cell(1, "plot").IsNull())
	assert.True(t, tbl.Cell(2, "plot").IsNull())
	assert.True(t, tbl.Cell(1, "missing_column").IsNull())
}

func TestCellFloat(t *testing.T) {
	c := Float(2.5)
	f, ok := c.Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	_, ok = Null().Float()
	assert.False(t, ok)

	_, ok = String("not a number").Float()
	assert.False(t, ok)
}

func TestSnapshotRoundTripByteIdentical(t *testing.T) {
	tbl := New([]int64{10, 42})
	tbl.SetColumn("title", map[int64]Cell{10: String("Heat"), 42: String("Big, Bigger")})
	tbl.SetColumn("production_year", map[int64]Cell{10: Int(1995), 42: Int(1988)})
	tbl.SetColumn("roi", map[int64]Cell{10: Float(2.5)})
	tbl.SetColumn("plot", map[int64]Cell{42: String("A boy wakes up\ngrown.")})

	var first bytes.Buffer
	require.NoError(t, Write(&first, tbl))

	parsed, err := Read(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, Write(&second, parsed))
	assert.Equal(t, first.String(), second.String())

	// Null round-trips as null.
	assert.True(t, parsed.Cell(42, "roi").IsNull())
	f, ok := parsed.Cell(10, "roi").Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)
}

func TestSnapshotRejectsBadHeader(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("title,year\nHeat,1995\n")))
	assert.Error(t, err)
}
