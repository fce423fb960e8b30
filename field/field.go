package field

import (
	"fmt"

	"github.com/fieldline/simio/internal/hash"
)

// Field identifies a logical quantity as a (type, name) pair.
//
// The type tag names a fluid type or particle type ("gas", "PartType0") or
// a particle-type union ("all"). The name tag names the quantity within
// that type. Field is an immutable value object and is usable as a map key.
type Field struct {
	Type string
	Name string
}

// ID returns the xxHash64 identifier of the field.
//
// IDs are stable across processes and unique per (type, name) pair, which
// makes them suitable as compact cache keys.
func (f Field) ID() uint64 {
	return hash.FieldID(f.Type, f.Name)
}

// String returns the field in "(type, name)" form.
func (f Field) String() string {
	return fmt.Sprintf("(%s, %s)", f.Type, f.Name)
}

// Info carries per-field metadata supplied by the dataset collaborator.
//
// NodalFlags marks, per spatial dimension, whether the field is defined at
// sub-cell node positions instead of cell centers. A field with k flags set
// has 2^k values per cell.
type Info struct {
	NodalFlags [3]bool
}

// Nodal reports whether any nodal flag is set.
func (i Info) Nodal() bool {
	return i.NodalFlags[0] || i.NodalFlags[1] || i.NodalFlags[2]
}

// NumNodes returns the number of per-cell node values, 2^k for k set flags.
// A cell-centered field has exactly one value per cell.
func (i Info) NumNodes() int {
	n := 1
	for _, flag := range i.NodalFlags {
		if flag {
			n *= 2
		}
	}

	return n
}
