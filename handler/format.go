package handler

import (
	"iter"
	"slices"

	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/selection"
)

// Dataset is the collaborator contract the handler consumes from the
// higher-level object model.
type Dataset interface {
	// FieldInfo returns the metadata for a known field. The second return
	// is false when the dataset has no metadata for it; such fields are
	// treated as cell-centered scalars.
	FieldInfo(f field.Field) (field.Info, bool)

	// ParticleUnions returns the particle-type union table, mapping one
	// logical particle type to its underlying concrete types.
	ParticleUnions() map[string][]string
}

// FieldTypeMap maps a concrete particle type to the field names requested
// for it. It is built during union resolution and handed to the format's
// particle primitives.
type FieldTypeMap map[string][]string

// SortedTypes returns the particle types in sorted order. Formats iterate
// the map through this helper so their yield order is deterministic.
func (m FieldTypeMap) SortedTypes() []string {
	types := make([]string, 0, len(m))
	for ptype := range m {
		types = append(types, ptype)
	}
	slices.Sort(types)

	return types
}

// FluidItem is one (field, object, raw buffer) triple streamed by a
// format's fluid iterator. A nil Data marks an object with no values for
// the field and is skipped.
//
// Raw buffers are cell-major: a flat (ncells,) array for cell-centered
// fields or (ncells, nnodes) for nodal fields.
type FluidItem struct {
	Field field.Field
	Obj   chunk.Object
	Data  *field.Array
}

// ParticleCoord is one per-type coordinate block streamed during the
// counting phase. Smoothing is nil when the format has no smoothing length.
//
// The slices are only valid until the next iteration step; formats may back
// them with pooled scratch buffers.
type ParticleCoord struct {
	Type      string
	X, Y, Z   []float64
	Smoothing []float64
}

// ParticleValues is one (concrete field, values) pair read from a data
// file during the fill phase.
type ParticleValues struct {
	Field  field.Field
	Values *field.Array
}

// PrimitiveReader reads the full value block of one field on one object.
// Required for ReadSingle and ReadSlice.
type PrimitiveReader interface {
	ReadPrimitive(obj chunk.Object, f field.Field) (*field.Array, error)
}

// FluidIterator streams (field, object, raw buffer) triples for a fluid
// selection read. Required for ReadFluidSelection; this is the mandatory
// extension point for grid formats.
type FluidIterator interface {
	IOIter(chunks []*chunk.Chunk, fields []field.Field) iter.Seq2[FluidItem, error]
}

// ParticleCoordReader streams per-chunk particle coordinates by type.
// Required for selector-based particle counting.
type ParticleCoordReader interface {
	ReadParticleCoords(chunks []*chunk.Chunk, ptf FieldTypeMap) iter.Seq2[ParticleCoord, error]
}

// ParticleFileReader reads the selected particle values of one data file.
// Required for ReadParticleSelection. Implementations must yield pairs in a
// deterministic order (sorted type, then sorted name) and must apply the
// selector consistently with the counting phase.
type ParticleFileReader interface {
	ReadParticleDataFile(df *chunk.DataFile, ptf FieldTypeMap, sel selection.Selector) iter.Seq2[ParticleValues, error]
}

// Preloader is an optional capability: formats that can batch I/O for an
// upcoming bulk read implement it. The returned release function is called
// when the caller is done with the preloaded data.
type Preloader interface {
	Preload(c *chunk.Chunk, fields []field.Field, maxSize int64) (func(), error)
}
