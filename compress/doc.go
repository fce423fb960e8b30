// Package compress provides compression and decompression codecs for
// on-disk simulation payload blocks.
//
// Field payloads written by the stream format are encoded first (fixed-width
// little-endian floats) and optionally compressed afterwards. This package
// implements the compression stage with multiple algorithms:
//
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Codecs are selected by Type, either per call via GetCodec or once per
// dataset via CreateCodec.
package compress
