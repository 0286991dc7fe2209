package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollama/opexec/ml"
)

func TestTableRegister(t *testing.T) {
	noop := func(*Request) (Result, error) { return Result{}, nil }

	table := NewTable()
	require.NoError(t, table.Register(FamilySort, ml.DTypeInt8, noop))
	require.NoError(t, table.Register(FamilyRavel, ml.DTypeInt32, noop))

	assert.ErrorIs(t, table.Register(FamilySort, ml.DTypeInt8, noop), ErrDuplicateKernel)
	assert.ErrorIs(t, table.Register(Family(-1), ml.DTypeInt8, noop), ErrUnknownFamily)
	assert.Error(t, table.Register(FamilySort, ml.DTypeInt16, nil))

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []Key{{FamilySort, ml.DTypeInt8}, {FamilyRavel, ml.DTypeInt32}}, table.Keys())

	_, ok := table.Lookup(FamilySort, ml.DTypeInt16)
	assert.False(t, ok)
	_, ok = table.Lookup(FamilyRavel, ml.DTypeInt32)
	assert.True(t, ok)
}

func TestParseFamily(t *testing.T) {
	for _, f := range Families() {
		got, err := ParseFamily(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFamily("sortt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "sort"`)

	_, err = ParseFamily("transpose")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")

	assert.Equal(t, "sort_tad[float32]", Key{FamilySortTAD, ml.DTypeFloat32}.String())
	assert.Equal(t, "Family(42)", Family(42).String())
}
