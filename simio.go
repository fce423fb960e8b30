// Package simio provides the I/O layer for reading field data out of
// simulation datasets.
//
// Simio separates WHAT to read (fields, spatial selections, chunks of
// objects) from HOW bytes come off the storage format. A Handler fronts one
// dataset and drives the read pipelines; concrete formats plug in through
// small capability interfaces and a registry keyed by dataset-type tag.
//
// # Core Features
//
//   - Fluid selection reads with exact preallocation and mask-compaction
//   - Particle selection reads with count-then-fill sizing and
//     particle-type-union fan-out
//   - Transparent per-object backup archives (HDF5) overriding primary data
//   - Optional LRU memoization of single-object reads
//   - A manual push/peek queue for precomputed values
//   - An in-memory "stream" format exercising every capability
//
// # Basic Usage
//
// Assembling a stream dataset and reading a field under a selection:
//
//	import (
//	    "github.com/fieldline/simio"
//	    "github.com/fieldline/simio/chunk"
//	    "github.com/fieldline/simio/field"
//	    "github.com/fieldline/simio/selection"
//	    "github.com/fieldline/simio/stream"
//	)
//
//	ds, _ := stream.NewDataset()
//	g := ds.AddGrid(0, [3]int{16, 16, 16}, [3]float64{0, 0, 0}, [3]float64{1, 1, 1})
//	g.SetFluidField(field.Field{Type: "gas", Name: "density"}, values)
//
//	h, _ := simio.NewHandler(stream.DatasetType, ds)
//
//	sel := selection.NewRegion([3]float64{0, 0, 0}, [3]float64{0.5, 0.5, 0.5})
//	size := g.CountSelectedCells(sel)
//	rv, _ := h.ReadFluidSelection([]*chunk.Chunk{chunk.New(g)}, sel,
//	    []field.Field{{Type: "gas", Name: "density"}}, size)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the handler
// package, simplifying the most common use cases. For fine-grained control,
// use the handler, chunk, selection, and field packages directly.
package simio

import (
	"github.com/fieldline/simio/handler"
	"github.com/fieldline/simio/internal/hash"

	// Register the stream format.
	_ "github.com/fieldline/simio/stream"
)

// NewHandler creates an I/O handler for the dataset using the format
// registered under datasetType.
//
// Parameters:
//   - datasetType: The registry tag of the dataset's format
//   - ds: The dataset the handler is bound to
//   - opts: Optional configuration functions (see handler.Option)
//
// Returns:
//   - *handler.Handler: The created handler.
//   - error: errs.ErrHandlerNotFound if no format is registered under the
//     tag, or an error from the format's factory.
//
// Available options:
//   - handler.WithCacheCapacity(n) / handler.WithCachePolicy(p)
//   - handler.WithVectorFields(widths) / handler.WithVectorFieldNames(names...)
//   - handler.WithArrayFields(dims)
//
// Example:
//
//	h, err := simio.NewHandler(stream.DatasetType, ds,
//	    handler.WithCacheCapacity(64),
//	    handler.WithVectorFieldNames("velocity"),
//	)
func NewHandler(datasetType string, ds handler.Dataset, opts ...handler.Option) (*handler.Handler, error) {
	return handler.Create(datasetType, ds, opts...)
}

// RegisteredFormats returns the dataset-type tags with a registered format,
// in sorted order.
func RegisteredFormats() []string {
	return handler.RegisteredTypes()
}

// FieldID converts a (field type, field name) pair to its 64-bit hash
// identifier.
//
// Simio uses xxHash64 to give fields fixed-size IDs for fast cache-key
// lookups. The hash is deterministic, so the same pair always maps to the
// same ID across processes.
//
// Example:
//
//	id := simio.FieldID("gas", "density")
func FieldID(fieldType, fieldName string) uint64 {
	return hash.FieldID(fieldType, fieldName)
}
