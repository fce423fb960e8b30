package stream

import (
	"math"

	"github.com/fieldline/simio/compress"
	"github.com/fieldline/simio/endian"
	"github.com/fieldline/simio/errs"
)

// Payload layout: a 5-byte header of element type tag (1 byte) and value
// count (uint32, little-endian), followed by the codec-compressed block of
// fixed-width little-endian values.
const payloadHeaderSize = 5

// Element type tags.
const (
	dtypeFloat64 byte = 0x1
	dtypeFloat32 byte = 0x2
)

func dtypeWidth(dtype byte) (int, error) {
	switch dtype {
	case dtypeFloat64:
		return 8, nil
	case dtypeFloat32:
		return 4, nil
	default:
		return 0, errs.ErrInvalidPayloadDtype
	}
}

// encodePayload encodes vals as a payload with the given element type.
// Encoding as float32 narrows the stored values; decoding promotes them
// back to float64.
func encodePayload(engine endian.EndianEngine, codec compress.Codec, dtype byte, vals []float64) ([]byte, error) {
	width, err := dtypeWidth(dtype)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 0, len(vals)*width)
	for _, v := range vals {
		if dtype == dtypeFloat32 {
			raw = engine.AppendUint32(raw, math.Float32bits(float32(v)))
		} else {
			raw = engine.AppendUint64(raw, math.Float64bits(v))
		}
	}

	body, err := codec.Compress(raw)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, payloadHeaderSize+len(body))
	out = append(out, dtype)
	out = engine.AppendUint32(out, uint32(len(vals)))
	out = append(out, body...)

	return out, nil
}

// payloadCount returns the number of values stored in a payload without
// decoding it.
func payloadCount(engine endian.EndianEngine, data []byte) (int, error) {
	if len(data) < payloadHeaderSize {
		return 0, errs.ErrInvalidPayloadHeader
	}
	if _, err := dtypeWidth(data[0]); err != nil {
		return 0, err
	}

	return int(engine.Uint32(data[1:payloadHeaderSize])), nil
}

// decodePayloadInto decodes a payload into dst, which must have length
// equal to the payload's value count. 32-bit values are promoted to
// float64.
func decodePayloadInto(engine endian.EndianEngine, codec compress.Codec, data []byte, dst []float64) error {
	if len(data) < payloadHeaderSize {
		return errs.ErrInvalidPayloadHeader
	}

	dtype := data[0]
	width, err := dtypeWidth(dtype)
	if err != nil {
		return err
	}

	count := int(engine.Uint32(data[1:payloadHeaderSize]))
	if count != len(dst) {
		return errs.ErrShapeMismatch
	}

	raw, err := codec.Decompress(data[payloadHeaderSize:])
	if err != nil {
		return err
	}
	if len(raw) < count*width {
		return errs.ErrTruncatedPayload
	}

	for i := range count {
		off := i * width
		if dtype == dtypeFloat32 {
			dst[i] = float64(math.Float32frombits(engine.Uint32(raw[off : off+4])))
		} else {
			dst[i] = math.Float64frombits(engine.Uint64(raw[off : off+8]))
		}
	}

	return nil
}

// decodePayload decodes a payload into a freshly allocated slice.
func decodePayload(engine endian.EndianEngine, codec compress.Codec, data []byte) ([]float64, error) {
	count, err := payloadCount(engine, data)
	if err != nil {
		return nil, err
	}

	dst := make([]float64, count)
	if err := decodePayloadInto(engine, codec, data, dst); err != nil {
		return nil, err
	}

	return dst, nil
}
