package compress

// ZstdCompressor provides Zstandard compression for payload blocks.
//
// Zstd favors compression ratio over speed, making it the right choice for
// archived simulation outputs that are written once and read occasionally.
//
// Two implementations exist behind build tags: the default pure Go
// implementation (klauspost/compress/zstd) and a cgo implementation
// (valyala/gozstd) selected with the gozstd build tag.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
