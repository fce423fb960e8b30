package handler

import (
	"github.com/fieldline/simio/cache"
	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/internal/options"
	"github.com/fieldline/simio/overlay"
)

// Handler is the I/O façade for one dataset.
//
// Note: Handler is NOT safe for concurrent use. See the package doc.
type Handler struct {
	ds     Dataset
	format any

	queue map[int64]map[field.Field]*field.Array
	cache *cache.Cache

	// Per-name particle shape declarations. A name present in
	// vectorFields reads as (n, width); one present in arrayFields reads
	// as (n, dims...); everything else is scalar.
	vectorFields map[string]int
	arrayFields  map[string][]int

	cacheCapacity int
	cachePolicy   cache.Policy
}

// Option configures a Handler.
type Option = options.Option[*Handler]

// WithVectorFields declares vector particle fields and their widths.
// A width of zero or less selects field.DefaultVectorWidth.
func WithVectorFields(widths map[string]int) Option {
	return options.NoError(func(h *Handler) {
		for name, width := range widths {
			if width <= 0 {
				width = field.DefaultVectorWidth
			}
			h.vectorFields[name] = width
		}
	})
}

// WithVectorFieldNames declares vector particle fields with the default
// width.
func WithVectorFieldNames(names ...string) Option {
	return options.NoError(func(h *Handler) {
		for _, name := range names {
			h.vectorFields[name] = field.DefaultVectorWidth
		}
	})
}

// WithArrayFields declares particle fields carrying extra per-element
// dimensions.
func WithArrayFields(dims map[string][]int) Option {
	return options.NoError(func(h *Handler) {
		for name, d := range dims {
			h.arrayFields[name] = d
		}
	})
}

// WithCacheCapacity bounds the single-object read cache. Capacity 0, the
// default, disables caching.
func WithCacheCapacity(capacity int) Option {
	return options.NoError(func(h *Handler) {
		h.cacheCapacity = capacity
	})
}

// WithCachePolicy replaces the cache's default LRU eviction policy.
func WithCachePolicy(p cache.Policy) Option {
	return options.NoError(func(h *Handler) {
		h.cachePolicy = p
	})
}

// New creates a handler bound to the dataset, delegating byte-level reads
// to the given concrete format.
func New(ds Dataset, format any, opts ...Option) (*Handler, error) {
	h := &Handler{
		ds:           ds,
		format:       format,
		queue:        make(map[int64]map[field.Field]*field.Array),
		vectorFields: make(map[string]int),
		arrayFields:  make(map[string][]int),
	}

	if err := options.Apply(h, opts...); err != nil {
		return nil, err
	}

	var cacheOpts []cache.Option
	if h.cachePolicy != nil {
		cacheOpts = append(cacheOpts, cache.WithPolicy(h.cachePolicy))
	}
	c, err := cache.New(h.cacheCapacity, cacheOpts...)
	if err != nil {
		return nil, err
	}
	h.cache = c

	return h, nil
}

// Dataset returns the dataset this handler is bound to.
func (h *Handler) Dataset() Dataset {
	return h.ds
}

// Cache returns the handler's read cache, nil when caching is disabled.
func (h *Handler) Cache() *cache.Cache {
	return h.cache
}

// fieldShape resolves the declared per-element shape for a particle field
// name. Resolution happens once per field per request.
func (h *Handler) fieldShape(name string) field.Shape {
	if width, ok := h.vectorFields[name]; ok {
		return field.Vector(width)
	}
	if dims, ok := h.arrayFields[name]; ok {
		return field.ArrayOf(dims...)
	}

	return field.Scalar()
}

// ReadSingle reads the full value block of one field on one object.
//
// The object's backup archive, when present, transparently overrides the
// primary value; a missing archive or entry silently falls back to the
// format's primitive read. The primitive path is memoized when the handler
// was built with a cache capacity.
func (h *Handler) ReadSingle(obj chunk.Object, f field.Field) (*field.Array, error) {
	if path := obj.BackupPath(); path != "" {
		arr, ok, err := overlay.Read(path, obj.ID()-obj.IDOffset(), f.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			return arr, nil
		}
	}

	pr, ok := h.format.(PrimitiveReader)
	if !ok {
		return nil, errs.ErrUnimplementedReadPrimitive
	}

	key := cache.Key{ObjectID: obj.ID(), FieldID: f.ID()}

	return h.cache.GetOrLoad(key, func() (*field.Array, error) {
		return pr.ReadPrimitive(obj, f)
	})
}

// ReadSlice reads a one-cell-thick slice along axis at the given coordinate
// from the full single-object read. The full read must be rank-3 grid data.
// Values are always float64; formats promote 32-bit payloads during decode.
func (h *Handler) ReadSlice(obj chunk.Object, f field.Field, axis, coord int) (*field.Array, error) {
	arr, err := h.ReadSingle(obj, f)
	if err != nil {
		return nil, err
	}

	return arr.SliceAxis(axis, coord)
}

// Preload hints that the given fields of a chunk are about to be read in
// bulk. Formats implementing Preloader may batch I/O; the default is a
// no-op. The returned release function must be called (typically with
// defer) on all exit paths.
func (h *Handler) Preload(c *chunk.Chunk, fields []field.Field, maxSize int64) (*Handler, func(), error) {
	if p, ok := h.format.(Preloader); ok {
		release, err := p.Preload(c, fields, maxSize)
		if err != nil {
			return nil, nil, err
		}
		if release == nil {
			release = func() {}
		}

		return h, release, nil
	}

	return h, func() {}, nil
}

// Push stores a precomputed value for (object, field) in the manual queue.
// Pushing a pair that already has an entry fails with
// errs.ErrDuplicateQueueEntry and leaves the existing value untouched.
func (h *Handler) Push(obj chunk.Object, f field.Field, data *field.Array) error {
	q, ok := h.queue[obj.ID()]
	if !ok {
		q = make(map[field.Field]*field.Array)
		h.queue[obj.ID()] = q
	}

	if _, exists := q[f]; exists {
		return errs.ErrDuplicateQueueEntry
	}
	q[f] = data

	return nil
}

// Peek returns the queued value for (object, field). The second return is
// false when nothing was pushed for the pair; that is not an error.
func (h *Handler) Peek(obj chunk.Object, f field.Field) (*field.Array, bool) {
	data, ok := h.queue[obj.ID()][f]

	return data, ok
}

// checkUniqueFields enforces the per-request invariant that field
// identifiers are unique.
func checkUniqueFields(fields []field.Field) error {
	seen := make(map[field.Field]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			return errs.ErrDuplicateField
		}
		seen[f] = struct{}{}
	}

	return nil
}
