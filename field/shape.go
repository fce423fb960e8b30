package field

import (
	"fmt"
	"strings"
)

// DefaultVectorWidth is the per-element width assumed for vector fields
// declared without an explicit width.
const DefaultVectorWidth = 3

// ShapeKind tags the per-element layout variant of a field.
type ShapeKind uint8

const (
	ShapeScalar ShapeKind = 0x1 // ShapeScalar represents one value per element.
	ShapeVector ShapeKind = 0x2 // ShapeVector represents a fixed-width vector per element.
	ShapeArray  ShapeKind = 0x3 // ShapeArray represents declared extra dimensions per element.
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeScalar:
		return "Scalar"
	case ShapeVector:
		return "Vector"
	case ShapeArray:
		return "Array"
	default:
		return "Unknown"
	}
}

// Shape is the tagged per-element layout of a field, resolved once per
// field per read request.
type Shape struct {
	Kind  ShapeKind
	Width int   // vector width, valid when Kind == ShapeVector
	Dims  []int // declared extra dimensions, valid when Kind == ShapeArray
}

// Scalar returns the scalar shape.
func Scalar() Shape {
	return Shape{Kind: ShapeScalar}
}

// Vector returns a vector shape with the given width.
// A width of zero or less selects DefaultVectorWidth.
func Vector(width int) Shape {
	if width <= 0 {
		width = DefaultVectorWidth
	}

	return Shape{Kind: ShapeVector, Width: width}
}

// ArrayOf returns an array shape with the given declared extra dimensions.
func ArrayOf(dims ...int) Shape {
	return Shape{Kind: ShapeArray, Dims: dims}
}

// ElemSize returns the number of values per element: 1 for scalars, the
// width for vectors, and the product of the declared dimensions for arrays.
func (s Shape) ElemSize() int {
	switch s.Kind {
	case ShapeVector:
		return s.Width
	case ShapeArray:
		size := 1
		for _, d := range s.Dims {
			size *= d
		}

		return size
	default:
		return 1
	}
}

// Alloc allocates an output array holding n elements of this shape.
func (s Shape) Alloc(n int) *Array {
	switch s.Kind {
	case ShapeVector:
		return NewArray(n, s.Width)
	case ShapeArray:
		return NewArray(n, s.Dims...)
	default:
		return NewArray(n)
	}
}

func (s Shape) String() string {
	switch s.Kind {
	case ShapeVector:
		return fmt.Sprintf("Vector(%d)", s.Width)
	case ShapeArray:
		parts := make([]string, len(s.Dims))
		for i, d := range s.Dims {
			parts[i] = fmt.Sprintf("%d", d)
		}

		return fmt.Sprintf("Array(%s)", strings.Join(parts, ", "))
	default:
		return s.Kind.String()
	}
}
