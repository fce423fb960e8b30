// Package handler implements the I/O façade of the simio toolkit.
//
// A Handler composes the read paths of one dataset: single-object reads
// with transparent backup-archive override, bulk fluid and particle
// selection reads, an optional memoizing cache, and a manual per-object
// field queue. The actual byte-level decoding is delegated to a concrete
// format, which supplies its read primitives by implementing the capability
// interfaces in this package (PrimitiveReader, FluidIterator,
// ParticleCoordReader, ParticleFileReader). A read that needs a primitive
// the format does not implement fails with the matching errs sentinel;
// that is an integration defect, not a data condition.
//
// Handlers are registered process-wide per dataset-type tag with Register,
// typically from a format package's init function, and instantiated with
// Create. A Handler is bound to one dataset for its lifetime.
//
// # Concurrency
//
// The model is single-threaded, synchronous and blocking. A Handler is not
// safe for concurrent use: callers needing parallelism must use per-thread
// handlers or lock around the shared queue and cache themselves. Preload
// is purely a hint and performs no background work by default.
package handler
