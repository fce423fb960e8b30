// Package hash provides xxHash64-based identifiers for field names.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// FieldID computes the xxHash64 of a (type, name) field identifier pair.
//
// The two tags are joined with a NUL separator so that ("ab", "c") and
// ("a", "bc") produce different identifiers.
func FieldID(ftype, fname string) uint64 {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(ftype)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(fname)

	return d.Sum64()
}
