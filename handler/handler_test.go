package handler_test

import (
	"path/filepath"
	"testing"

	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/stretchr/testify/require"

	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/handler"
	"github.com/fieldline/simio/overlay"
	"github.com/fieldline/simio/stream"
)

var density = field.Field{Type: "gas", Name: "density"}

// newGridFixture builds a stream dataset with one 2x2x2 grid whose density
// values are the flat cell indices, plus its handler.
func newGridFixture(t *testing.T, opts ...handler.Option) (*stream.Dataset, *stream.Grid, *handler.Handler) {
	t.Helper()

	ds, err := stream.NewDataset()
	require.NoError(t, err)

	g := ds.AddGrid(1, [3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	vals := make([]float64, g.NumCells())
	for i := range vals {
		vals[i] = float64(i)
	}
	require.NoError(t, g.SetFluidField(density, vals))

	h, err := handler.Create(stream.DatasetType, ds, opts...)
	require.NoError(t, err)

	return ds, g, h
}

func writeBackup(t *testing.T, path string, index int64, name string, vals []float64) {
	t.Helper()

	f, err := hdf5.Create(path)
	require.NoError(t, err)
	data, err := f.Root().CreateGroup("data")
	require.NoError(t, err)
	grp, err := data.CreateGroup(overlay.GroupName(index))
	require.NoError(t, err)
	_, err = grp.CreateDataset(name, vals)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestReadSingle(t *testing.T) {
	_, g, h := newGridFixture(t)

	arr, err := h.ReadSingle(g, density)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 2}, arr.Dims())
	require.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, arr.Data)
}

func TestReadSingleBackupOverride(t *testing.T) {
	_, g, h := newGridFixture(t)

	path := filepath.Join(t.TempDir(), "backup.h5")
	override := []float64{9, 9, 9, 9, 9, 9, 9, 9}
	writeBackup(t, path, g.ID(), "density", override)
	g.SetBackupPath(path)

	t.Run("archived field overrides the primitive read", func(t *testing.T) {
		arr, err := h.ReadSingle(g, density)
		require.NoError(t, err)
		require.Equal(t, override, arr.Data)
	})

	t.Run("unarchived field falls back", func(t *testing.T) {
		f := field.Field{Type: "gas", Name: "pressure"}
		require.NoError(t, g.SetFluidField(f, make([]float64, 8)))

		arr, err := h.ReadSingle(g, f)
		require.NoError(t, err)
		require.Equal(t, make([]float64, 8), arr.Data)
	})
}

func TestReadSingleBackupIndexOffset(t *testing.T) {
	_, g, h := newGridFixture(t)
	g.SetIDOffset(1)

	// With offset 1, grid id 1 maps to archive group index 0.
	path := filepath.Join(t.TempDir(), "backup.h5")
	writeBackup(t, path, 0, "density", []float64{5})
	g.SetBackupPath(path)

	arr, err := h.ReadSingle(g, density)
	require.NoError(t, err)
	require.Equal(t, []float64{5}, arr.Data)
}

func TestReadSingleCaching(t *testing.T) {
	_, g, h := newGridFixture(t, handler.WithCacheCapacity(8))

	first, err := h.ReadSingle(g, density)
	require.NoError(t, err)

	second, err := h.ReadSingle(g, density)
	require.NoError(t, err)
	require.Same(t, first, second)

	require.Equal(t, int64(1), h.Cache().Hits())
	require.Equal(t, int64(1), h.Cache().Misses())

	t.Run("disabled by default", func(t *testing.T) {
		_, g, h := newGridFixture(t)
		require.Nil(t, h.Cache())

		first, err := h.ReadSingle(g, density)
		require.NoError(t, err)
		second, err := h.ReadSingle(g, density)
		require.NoError(t, err)
		require.NotSame(t, first, second)
	})
}

func TestReadSlice(t *testing.T) {
	_, g, h := newGridFixture(t)

	t.Run("axis 0", func(t *testing.T) {
		arr, err := h.ReadSlice(g, density, 0, 1)
		require.NoError(t, err)
		require.Equal(t, []int{1, 2, 2}, arr.Dims())
		require.Equal(t, []float64{4, 5, 6, 7}, arr.Data)
	})

	t.Run("axis 2", func(t *testing.T) {
		arr, err := h.ReadSlice(g, density, 2, 0)
		require.NoError(t, err)
		require.Equal(t, []int{2, 2, 1}, arr.Dims())
		require.Equal(t, []float64{0, 2, 4, 6}, arr.Data)
	})

	t.Run("invalid axis", func(t *testing.T) {
		_, err := h.ReadSlice(g, density, 3, 0)
		require.ErrorIs(t, err, errs.ErrInvalidAxis)
	})

	t.Run("coordinate out of range", func(t *testing.T) {
		_, err := h.ReadSlice(g, density, 0, 2)
		require.ErrorIs(t, err, errs.ErrInvalidCoord)
	})
}

func TestPushPeek(t *testing.T) {
	_, g, h := newGridFixture(t)

	val := field.FromSlice([]float64{1, 2, 3})
	require.NoError(t, h.Push(g, density, val))

	t.Run("peek returns the pushed value", func(t *testing.T) {
		got, ok := h.Peek(g, density)
		require.True(t, ok)
		require.Same(t, val, got)
	})

	t.Run("duplicate push fails and keeps the original", func(t *testing.T) {
		err := h.Push(g, density, field.FromSlice([]float64{9}))
		require.ErrorIs(t, err, errs.ErrDuplicateQueueEntry)

		got, ok := h.Peek(g, density)
		require.True(t, ok)
		require.Same(t, val, got)
	})

	t.Run("peek on an empty pair is not an error", func(t *testing.T) {
		_, ok := h.Peek(g, field.Field{Type: "gas", Name: "pressure"})
		require.False(t, ok)
	})
}

func TestPreload(t *testing.T) {
	_, g, h := newGridFixture(t)

	ph, release, err := h.Preload(chunk.New(g), []field.Field{density}, 1<<20)
	require.NoError(t, err)
	require.Same(t, h, ph)
	require.NotNil(t, release)
	release()
}

func TestUnimplementedCapabilities(t *testing.T) {
	ds, err := stream.NewDataset()
	require.NoError(t, err)
	g := ds.AddGrid(1, [3]int{1, 1, 1}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})

	// A format with no capabilities at all.
	h, err := handler.New(ds, struct{}{})
	require.NoError(t, err)

	_, err = h.ReadSingle(g, density)
	require.ErrorIs(t, err, errs.ErrUnimplementedReadPrimitive)

	_, err = h.ReadFluidSelection(nil, region(), []field.Field{density}, 0)
	require.ErrorIs(t, err, errs.ErrUnimplementedIOIter)

	_, err = h.ReadParticleSelection(nil, region(), []field.Field{{Type: "dm", Name: "mass"}})
	require.ErrorIs(t, err, errs.ErrUnimplementedReadParticleCoords)
}

func TestRegistry(t *testing.T) {
	t.Run("stream registers itself", func(t *testing.T) {
		_, ok := handler.Lookup(stream.DatasetType)
		require.True(t, ok)
		require.Contains(t, handler.RegisteredTypes(), stream.DatasetType)
	})

	t.Run("last registration wins", func(t *testing.T) {
		which := 0
		factory := func(n int) handler.Factory {
			return func(ds handler.Dataset, opts ...handler.Option) (*handler.Handler, error) {
				which = n

				return handler.New(ds, struct{}{}, opts...)
			}
		}

		handler.Register("registry-test", factory(1))
		handler.Register("registry-test", factory(2))

		_, err := handler.Create("registry-test", nil)
		require.NoError(t, err)
		require.Equal(t, 2, which)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := handler.Create("registry-test-missing", nil)
		require.ErrorIs(t, err, errs.ErrHandlerNotFound)
	})
}
