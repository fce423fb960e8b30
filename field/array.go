package field

import (
	"slices"

	"github.com/fieldline/simio/errs"
)

// Array is a shaped float64 buffer in row-major (C) order.
//
// The first dimension is the element count; any further dimensions describe
// the per-element layout (vector width, nodal values, declared array dims).
// Values are always float64: formats decoding 32-bit payloads promote them
// during decode.
//
// Note: Array is NOT safe for concurrent mutation. Read pipelines construct
// arrays fresh per request.
type Array struct {
	Data []float64

	dims []int
}

// NewArray allocates a zeroed array of n elements with the given
// per-element dimensions. NewArray(5) is a flat scalar array of length 5;
// NewArray(5, 3) holds 5 three-vectors.
func NewArray(n int, elemDims ...int) *Array {
	dims := append([]int{n}, elemDims...)

	size := 1
	for _, d := range dims {
		size *= d
	}

	return &Array{Data: make([]float64, size), dims: dims}
}

// NewGridArray allocates a zeroed rank-3 array of nx*ny*nz values, the
// layout returned by single-object grid reads.
func NewGridArray(nx, ny, nz int) *Array {
	return &Array{Data: make([]float64, nx*ny*nz), dims: []int{nx, ny, nz}}
}

// FromSlice wraps vals as a flat scalar array without copying.
func FromSlice(vals []float64) *Array {
	return &Array{Data: vals, dims: []int{len(vals)}}
}

// FromSliceShape wraps vals with the given dimensions without copying.
// The product of dims must equal len(vals).
func FromSliceShape(vals []float64, dims ...int) (*Array, error) {
	if len(dims) == 0 {
		return nil, errs.ErrInvalidShape
	}

	size := 1
	for _, d := range dims {
		if d < 0 {
			return nil, errs.ErrInvalidShape
		}
		size *= d
	}
	if size != len(vals) {
		return nil, errs.ErrShapeMismatch
	}

	return &Array{Data: vals, dims: slices.Clone(dims)}, nil
}

// Dims returns a copy of the array dimensions.
func (a *Array) Dims() []int {
	return slices.Clone(a.dims)
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.dims)
}

// Len returns the element count, the size of the first dimension.
func (a *Array) Len() int {
	if len(a.dims) == 0 {
		return 0
	}

	return a.dims[0]
}

// ElemSize returns the number of values per element, the product of all
// dimensions after the first.
func (a *Array) ElemSize() int {
	size := 1
	for _, d := range a.dims[1:] {
		size *= d
	}

	return size
}

// Row returns the i-th element's values as a shared sub-slice.
func (a *Array) Row(i int) []float64 {
	es := a.ElemSize()

	return a.Data[i*es : (i+1)*es]
}

// SetRow copies vals into the i-th element.
func (a *Array) SetRow(i int, vals []float64) {
	copy(a.Row(i), vals)
}

// CopyRowsFrom copies all elements of src into a starting at element row
// start, returning the number of elements copied. The per-element sizes of
// the two arrays must match, and src must fit.
func (a *Array) CopyRowsFrom(start int, src *Array) (int, error) {
	es := a.ElemSize()
	if es != src.ElemSize() {
		return 0, errs.ErrShapeMismatch
	}
	if start < 0 || start+src.Len() > a.Len() {
		return 0, errs.ErrRowOutOfRange
	}

	copy(a.Data[start*es:], src.Data[:src.Len()*es])

	return src.Len(), nil
}

// Trim shrinks the array to its first n elements in place. Upper-bound
// allocation plus union fan-out can overestimate, so pipelines trim each
// output array to the actually-filled length before returning it.
func (a *Array) Trim(n int) error {
	if n < 0 || n > a.Len() {
		return errs.ErrTrimOutOfRange
	}

	a.Data = a.Data[:n*a.ElemSize()]
	a.dims[0] = n

	return nil
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	return &Array{Data: slices.Clone(a.Data), dims: slices.Clone(a.dims)}
}

// Equal reports whether the two arrays have identical dimensions and values.
func (a *Array) Equal(b *Array) bool {
	return slices.Equal(a.dims, b.dims) && slices.Equal(a.Data, b.Data)
}

// SliceAxis extracts a one-element-thick slice along axis at the given
// coordinate from a rank-3 grid array. The result keeps rank 3 with the
// sliced axis collapsed to size 1.
func (a *Array) SliceAxis(axis, coord int) (*Array, error) {
	if len(a.dims) != 3 {
		return nil, errs.ErrNotGridded
	}
	if axis < 0 || axis > 2 {
		return nil, errs.ErrInvalidAxis
	}
	if coord < 0 || coord >= a.dims[axis] {
		return nil, errs.ErrInvalidCoord
	}

	outDims := slices.Clone(a.dims)
	outDims[axis] = 1

	out := &Array{
		Data: make([]float64, outDims[0]*outDims[1]*outDims[2]),
		dims: outDims,
	}

	nx, ny, nz := a.dims[0], a.dims[1], a.dims[2]
	pos := 0
	for i := range nx {
		if axis == 0 && i != coord {
			continue
		}
		for j := range ny {
			if axis == 1 && j != coord {
				continue
			}
			for k := range nz {
				if axis == 2 && k != coord {
					continue
				}
				out.Data[pos] = a.Data[(i*ny+j)*nz+k]
				pos++
			}
		}
	}

	return out, nil
}
