// Package stream implements the "stream" dataset type, a concrete format
// backed by in-memory encoded payloads.
//
// Stream datasets are assembled programmatically: grids carry fluid field
// payloads, particle files carry per-type coordinate and field payloads.
// Payloads are fixed-width little-endian float blocks, optionally
// compressed (see the compress package), so the stream format exercises
// the full decode path without an on-disk format definition.
//
// The package registers itself with the handler registry at init time
// under DatasetType and implements every handler capability interface,
// which also makes it the reference implementation of the format contract.
package stream
