package stream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/compress"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/handler"
	"github.com/fieldline/simio/selection"
)

func newTestDataset(t *testing.T, opts ...Option) *Dataset {
	t.Helper()

	ds, err := NewDataset(opts...)
	require.NoError(t, err)

	return ds
}

// unitGrid builds a 2x2x2 grid over the unit cube with a density field
// holding the flat cell index.
func unitGrid(t *testing.T, ds *Dataset, id int64) *Grid {
	t.Helper()

	g := ds.AddGrid(id, [3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})

	vals := make([]float64, g.NumCells())
	for i := range vals {
		vals[i] = float64(i)
	}
	require.NoError(t, g.SetFluidField(field.Field{Type: "gas", Name: "density"}, vals))

	return g
}

func TestGridReadPrimitive(t *testing.T) {
	ds := newTestDataset(t)
	g := unitGrid(t, ds, 1)
	io := NewIO(ds)

	t.Run("cell centered rank 3", func(t *testing.T) {
		arr, err := io.ReadPrimitive(g, field.Field{Type: "gas", Name: "density"})
		require.NoError(t, err)
		require.Equal(t, []int{2, 2, 2}, arr.Dims())
		require.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, arr.Data)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := io.ReadPrimitive(g, field.Field{Type: "gas", Name: "missing"})
		require.ErrorIs(t, err, errs.ErrUnknownField)
	})

	t.Run("nodal shape", func(t *testing.T) {
		f := field.Field{Type: "gas", Name: "potential"}
		ds.SetFieldInfo(f, field.Info{NodalFlags: [3]bool{true, false, false}})

		vals := make([]float64, g.NumCells()*2)
		for i := range vals {
			vals[i] = float64(i)
		}
		require.NoError(t, g.SetFluidField(f, vals))

		arr, err := io.ReadPrimitive(g, f)
		require.NoError(t, err)
		require.Equal(t, []int{8, 2}, arr.Dims())
	})
}

func TestGridReadPrimitiveCompressed(t *testing.T) {
	for _, ct := range []compress.Type{compress.TypeZstd, compress.TypeS2, compress.TypeLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			ds := newTestDataset(t, WithCompression(ct))
			g := unitGrid(t, ds, 1)

			arr, err := NewIO(ds).ReadPrimitive(g, field.Field{Type: "gas", Name: "density"})
			require.NoError(t, err)
			require.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, arr.Data)
		})
	}
}

func TestGridFloat32Storage(t *testing.T) {
	ds := newTestDataset(t, WithFloat32Storage())
	g := unitGrid(t, ds, 1)

	arr, err := NewIO(ds).ReadPrimitive(g, field.Field{Type: "gas", Name: "density"})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, arr.Data)
}

func TestGridSetFluidFieldSizeMismatch(t *testing.T) {
	ds := newTestDataset(t)
	g := ds.AddGrid(1, [3]int{2, 2, 2}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})

	err := g.SetFluidField(field.Field{Type: "gas", Name: "density"}, []float64{1, 2, 3})
	require.Error(t, err)
}

func TestGridSelect(t *testing.T) {
	ds := newTestDataset(t)
	g := unitGrid(t, ds, 1)
	io := NewIO(ds)

	src, err := io.ReadPrimitive(g, field.Field{Type: "gas", Name: "density"})
	require.NoError(t, err)
	flat := field.FromSlice(src.Data)

	t.Run("all data", func(t *testing.T) {
		dst := field.NewArray(g.NumCells())
		n := g.Select(selection.NewAllData(), flat, dst, 0)
		require.Equal(t, 8, n)
		require.Equal(t, flat.Data, dst.Data)
	})

	t.Run("region keeps the low x half", func(t *testing.T) {
		sel := selection.NewRegion([3]float64{0, 0, 0}, [3]float64{0.5, 1, 1})
		require.Equal(t, 4, g.CountSelectedCells(sel))

		dst := field.NewArray(4)
		n := g.Select(sel, flat, dst, 0)
		require.Equal(t, 4, n)
		// Cells with i=0 come first in C order: flat indices 0..3.
		require.Equal(t, []float64{0, 1, 2, 3}, dst.Data)
	})

	t.Run("empty region", func(t *testing.T) {
		sel := selection.NewRegion([3]float64{2, 2, 2}, [3]float64{3, 3, 3})
		require.Equal(t, 0, g.CountSelectedCells(sel))
	})
}

func TestFluidIterSkipsMissingFields(t *testing.T) {
	ds := newTestDataset(t)
	g1 := unitGrid(t, ds, 1)
	g2 := ds.AddGrid(2, [3]int{2, 2, 2}, [3]float64{1, 0, 0}, [3]float64{2, 1, 1})

	c := chunk.New(g1, g2)
	f := field.Field{Type: "gas", Name: "density"}

	var withData, without int
	for item, err := range NewIO(ds).IOIter([]*chunk.Chunk{c}, []field.Field{f}) {
		require.NoError(t, err)
		if item.Data != nil {
			withData++
		} else {
			without++
		}
	}
	require.Equal(t, 1, withData)
	require.Equal(t, 1, without)
}

func addParticleFixture(t *testing.T, ds *Dataset) *ParticleFile {
	t.Helper()

	pf := ds.AddParticleFile("part.0", 0)
	require.NoError(t, pf.AddParticles("dm",
		[]float64{0.1, 0.6, 0.9},
		[]float64{0.1, 0.6, 0.9},
		[]float64{0.1, 0.6, 0.9},
		nil,
	))
	require.NoError(t, pf.SetParticleField("dm", "mass", []float64{10, 20, 30}, 1))

	return pf
}

func TestParticleFileBuilders(t *testing.T) {
	ds := newTestDataset(t)
	pf := addParticleFixture(t, ds)

	require.Equal(t, int64(3), pf.DataFile().TotalParticles["dm"])

	t.Run("mismatched coordinate lengths", func(t *testing.T) {
		err := pf.AddParticles("star", []float64{1}, []float64{1, 2}, []float64{1}, nil)
		require.Error(t, err)
	})

	t.Run("duplicate type", func(t *testing.T) {
		err := pf.AddParticles("dm", []float64{1}, []float64{1}, []float64{1}, nil)
		require.Error(t, err)
	})

	t.Run("field for unknown type", func(t *testing.T) {
		err := pf.SetParticleField("star", "mass", []float64{1}, 1)
		require.Error(t, err)
	})

	t.Run("field value count mismatch", func(t *testing.T) {
		err := pf.SetParticleField("dm", "velocity", []float64{1, 2, 3}, 3)
		require.Error(t, err)
	})
}

func TestReadParticleCoords(t *testing.T) {
	ds := newTestDataset(t)
	pf := addParticleFixture(t, ds)

	g := unitGrid(t, ds, 1)
	g.AttachParticleFile(pf)
	c := chunk.New(g)

	ptf := handler.FieldTypeMap{"dm": {"mass"}}

	var seen int
	for pc, err := range NewIO(ds).ReadParticleCoords([]*chunk.Chunk{c}, ptf) {
		require.NoError(t, err)
		require.Equal(t, "dm", pc.Type)
		require.Equal(t, []float64{0.1, 0.6, 0.9}, pc.X)
		require.Nil(t, pc.Smoothing)
		seen++
	}
	require.Equal(t, 1, seen)
}

func TestReadParticleDataFile(t *testing.T) {
	ds := newTestDataset(t)
	pf := addParticleFixture(t, ds)
	ptf := handler.FieldTypeMap{"dm": {"mass"}}

	t.Run("all data", func(t *testing.T) {
		for pv, err := range NewIO(ds).ReadParticleDataFile(pf.DataFile(), ptf, selection.NewAllData()) {
			require.NoError(t, err)
			require.Equal(t, field.Field{Type: "dm", Name: "mass"}, pv.Field)
			require.Equal(t, []float64{10, 20, 30}, pv.Values.Data)
		}
	})

	t.Run("region masks the middle particle", func(t *testing.T) {
		sel := selection.NewRegion([3]float64{0.5, 0.5, 0.5}, [3]float64{0.8, 0.8, 0.8})
		for pv, err := range NewIO(ds).ReadParticleDataFile(pf.DataFile(), ptf, sel) {
			require.NoError(t, err)
			require.Equal(t, []float64{20}, pv.Values.Data)
		}
	})

	t.Run("unknown data file", func(t *testing.T) {
		stray := &chunk.DataFile{Filename: "stray", TotalParticles: map[string]int64{}}
		for _, err := range NewIO(ds).ReadParticleDataFile(stray, ptf, selection.NewAllData()) {
			require.ErrorIs(t, err, errs.ErrUnknownDataFile)
		}
	})
}

func TestSmoothedSelectionPadsConsistently(t *testing.T) {
	ds := newTestDataset(t)
	pf := ds.AddParticleFile("part.0", 0)

	// The second particle sits outside the region but its smoothing radius
	// reaches in. Count and fill must agree on including it.
	require.NoError(t, pf.AddParticles("gas",
		[]float64{0.2, 0.6},
		[]float64{0.2, 0.2},
		[]float64{0.2, 0.2},
		[]float64{0.01, 0.2},
	))
	require.NoError(t, pf.SetParticleField("gas", "mass", []float64{1, 2}, 1))

	sel := selection.NewRegion([3]float64{0, 0, 0}, [3]float64{0.5, 0.5, 0.5})
	ptf := handler.FieldTypeMap{"gas": {"mass"}}
	io := NewIO(ds)

	g := ds.AddGrid(1, [3]int{1, 1, 1}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	g.AttachParticleFile(pf)
	c := chunk.New(g)

	counted := 0
	for pc, err := range io.ReadParticleCoords([]*chunk.Chunk{c}, ptf) {
		require.NoError(t, err)
		counted += sel.CountPoints(pc.X, pc.Y, pc.Z, pc.Smoothing)
	}
	require.Equal(t, 2, counted)

	for pv, err := range io.ReadParticleDataFile(pf.DataFile(), ptf, sel) {
		require.NoError(t, err)
		require.Equal(t, counted, pv.Values.Len())
	}
}

func TestRegistryFactory(t *testing.T) {
	ds := newTestDataset(t)

	h, err := handler.Create(DatasetType, ds)
	require.NoError(t, err)
	require.Same(t, any(ds), any(h.Dataset()))

	_, err = handler.Create("no-such-format", ds)
	require.ErrorIs(t, err, errs.ErrHandlerNotFound)
}
