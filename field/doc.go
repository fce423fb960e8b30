// Package field defines the field identity and array types shared by all
// simio read paths.
//
// A Field is an immutable (type, name) identifier for a physical quantity,
// such as ("gas", "density") or ("PartType0", "particle_mass"). Its numeric
// ID is an xxHash64 of both tags and is used for cache keys.
//
// A Shape describes the per-element layout of a field's values as a tagged
// variant: scalar, vector with a declared width (default 3), or an array
// with arbitrary declared dimensions. Shapes are resolved once per field
// per request by the read pipelines.
//
// An Array is a shaped float64 buffer in row-major order. Read pipelines
// allocate arrays at an upper-bound length, fill them at a running row
// index, and trim them to the filled length.
package field
