// Package chunk defines the selection-scoped groupings a read request
// operates on: objects, the data files backing them, and chunks.
//
// Chunks are transient: the index layer constructs them fresh per query.
// Data files are the unit of deterministic iteration — both the counting
// and the fill phase of a particle read visit them in the same stable
// (filename, start offset) order, which makes repeated reads reproducible.
package chunk

import (
	"cmp"
	"slices"

	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/selection"
)

// DataFile is a physical storage unit referenced by one or more objects.
type DataFile struct {
	// Filename is the on-disk path of the file. Together with Start it
	// forms the stable sort key for multi-file iteration.
	Filename string

	// Start is the offset of this file's slice within a split dataset.
	// Formats that store one file per output leave it zero.
	Start int64

	// TotalParticles holds the precomputed per-particle-type counts for
	// this file. The counting phase reads these directly when the selector
	// covers the entire dataset.
	TotalParticles map[string]int64
}

// Object is a grid or particle-source unit inside a chunk.
//
// Implementations are supplied by the concrete format. Mask-compaction
// lives on the object rather than the selector because only the object
// knows the positions of its elements.
type Object interface {
	// ID returns the stable object identifier within its dataset.
	ID() int64

	// IDOffset returns the offset subtracted from ID when naming the
	// object's group in a backup archive. Usually 0 or 1 depending on the
	// format's numbering convention.
	IDOffset() int64

	// BackupPath returns the path of the object's backup archive, or ""
	// when the object has none.
	BackupPath() string

	// DataFiles returns the physical files backing this object. Grid
	// formats without split particle storage return nil.
	DataFiles() []*DataFile

	// Select mask-compacts the selected elements of src into dst starting
	// at element index start, returning the number of elements written.
	Select(sel selection.Selector, src, dst *field.Array, start int) int
}

// Chunk groups the objects of one read request.
type Chunk struct {
	Objs []Object
}

// New returns a chunk over the given objects.
func New(objs ...Object) *Chunk {
	return &Chunk{Objs: objs}
}

// SortedDataFiles collects the distinct data files referenced by the given
// chunks and returns them sorted by (filename, start offset).
//
// The sort order is the ordering contract for particle reads: every phase
// that walks data files must use this function so that output population
// order is identical across phases and across runs.
func SortedDataFiles(chunks []*Chunk) []*DataFile {
	seen := make(map[*DataFile]struct{})
	var files []*DataFile

	for _, c := range chunks {
		for _, obj := range c.Objs {
			for _, df := range obj.DataFiles() {
				if _, ok := seen[df]; ok {
					continue
				}
				seen[df] = struct{}{}
				files = append(files, df)
			}
		}
	}

	slices.SortStableFunc(files, func(a, b *DataFile) int {
		if c := cmp.Compare(a.Filename, b.Filename); c != 0 {
			return c
		}

		return cmp.Compare(a.Start, b.Start)
	})

	return files
}
