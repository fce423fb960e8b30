package simio_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/simio"
	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/selection"
	"github.com/fieldline/simio/stream"
)

func TestNewHandler(t *testing.T) {
	ds, err := stream.NewDataset()
	require.NoError(t, err)

	g := ds.AddGrid(0, [3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	f := field.Field{Type: "gas", Name: "density"}
	vals := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	require.NoError(t, g.SetFluidField(f, vals))

	h, err := simio.NewHandler(stream.DatasetType, ds)
	require.NoError(t, err)

	rv, err := h.ReadFluidSelection([]*chunk.Chunk{chunk.New(g)},
		selection.NewAllData(), []field.Field{f}, g.NumCells())
	require.NoError(t, err)
	require.Equal(t, vals, rv[f].Data)
}

func TestNewHandlerUnknownFormat(t *testing.T) {
	_, err := simio.NewHandler("no-such-format", nil)
	require.ErrorIs(t, err, errs.ErrHandlerNotFound)
}

func TestRegisteredFormats(t *testing.T) {
	require.Contains(t, simio.RegisteredFormats(), stream.DatasetType)
}

func TestFieldID(t *testing.T) {
	require.Equal(t, simio.FieldID("gas", "density"), simio.FieldID("gas", "density"))
	require.NotEqual(t, simio.FieldID("gas", "density"), simio.FieldID("dm", "density"))
	// The separator keeps (ab, c) and (a, bc) apart.
	require.NotEqual(t, simio.FieldID("ab", "c"), simio.FieldID("a", "bc"))
}
