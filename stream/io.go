package stream

import (
	"fmt"
	"iter"
	"slices"

	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/handler"
	"github.com/fieldline/simio/internal/pool"
	"github.com/fieldline/simio/selection"
)

// DatasetType is the registry name of the stream format.
const DatasetType = "stream"

func init() {
	handler.Register(DatasetType, func(ds handler.Dataset, opts ...handler.Option) (*handler.Handler, error) {
		sds, ok := ds.(*Dataset)
		if !ok {
			return nil, fmt.Errorf("stream: dataset is %T, want *stream.Dataset", ds)
		}

		return handler.New(sds, NewIO(sds), opts...)
	})
}

// IO reads encoded stream payloads. It implements every handler capability
// interface.
type IO struct {
	ds *Dataset
}

var (
	_ handler.PrimitiveReader     = (*IO)(nil)
	_ handler.FluidIterator       = (*IO)(nil)
	_ handler.ParticleCoordReader = (*IO)(nil)
	_ handler.ParticleFileReader  = (*IO)(nil)
	_ handler.Preloader           = (*IO)(nil)
)

// NewIO creates the I/O backend for a stream dataset.
func NewIO(ds *Dataset) *IO {
	return &IO{ds: ds}
}

// ReadPrimitive decodes the full value block of one field on one grid.
// Cell-centered fields come back as rank-3 grid arrays; nodal fields as
// (ncells, nnodes).
func (s *IO) ReadPrimitive(obj chunk.Object, f field.Field) (*field.Array, error) {
	g, ok := obj.(*Grid)
	if !ok {
		return nil, errs.ErrUnknownObject
	}

	payload, ok := g.fluid[f]
	if !ok {
		return nil, errs.ErrUnknownField
	}

	vals, err := decodePayload(s.ds.engine, s.ds.codec, payload)
	if err != nil {
		return nil, err
	}

	info, _ := s.ds.FieldInfo(f)
	if info.Nodal() {
		return field.FromSliceShape(vals, g.NumCells(), info.NumNodes())
	}

	return field.FromSliceShape(vals, g.dims[0], g.dims[1], g.dims[2])
}

// IOIter streams the raw fluid buffers of every (field, grid) pair, fields
// outermost. Grids without a payload for a field yield a nil buffer.
func (s *IO) IOIter(chunks []*chunk.Chunk, fields []field.Field) iter.Seq2[handler.FluidItem, error] {
	return func(yield func(handler.FluidItem, error) bool) {
		for _, f := range fields {
			for _, c := range chunks {
				for _, obj := range c.Objs {
					g, ok := obj.(*Grid)
					if !ok {
						yield(handler.FluidItem{}, errs.ErrUnknownObject)

						return
					}

					item := handler.FluidItem{Field: f, Obj: g}

					if payload, ok := g.fluid[f]; ok {
						vals, err := decodePayload(s.ds.engine, s.ds.codec, payload)
						if err != nil {
							yield(handler.FluidItem{}, err)

							return
						}

						info, _ := s.ds.FieldInfo(f)
						if info.Nodal() {
							arr, err := field.FromSliceShape(vals, g.NumCells(), info.NumNodes())
							if err != nil {
								yield(handler.FluidItem{}, err)

								return
							}
							item.Data = arr
						} else {
							item.Data = field.FromSlice(vals)
						}
					}

					if !yield(item, nil) {
						return
					}
				}
			}
		}
	}
}

// ReadParticleCoords streams per-type particle coordinates across the
// chunks' data files in sorted (filename, start) order. Coordinate slices
// are pooled scratch, valid only until the next iteration step.
func (s *IO) ReadParticleCoords(chunks []*chunk.Chunk, ptf handler.FieldTypeMap) iter.Seq2[handler.ParticleCoord, error] {
	return func(yield func(handler.ParticleCoord, error) bool) {
		types := ptf.SortedTypes()

		for _, df := range chunk.SortedDataFiles(chunks) {
			pf, ok := s.ds.particleFiles[df]
			if !ok {
				yield(handler.ParticleCoord{}, errs.ErrUnknownDataFile)

				return
			}

			for _, ptype := range types {
				block, ok := pf.blocks[ptype]
				if !ok {
					continue
				}

				pc, release, err := s.decodeCoords(ptype, block)
				if err != nil {
					yield(handler.ParticleCoord{}, err)

					return
				}

				more := yield(pc, nil)
				release()
				if !more {
					return
				}
			}
		}
	}
}

// decodeCoords decodes one particle block's coordinates into pooled scratch.
func (s *IO) decodeCoords(ptype string, block *particleBlock) (handler.ParticleCoord, func(), error) {
	scratch, cleanup := pool.GetFloat64Slice(block.count * 4)
	x := scratch[:block.count]
	y := scratch[block.count : 2*block.count]
	z := scratch[2*block.count : 3*block.count]

	fail := func(err error) (handler.ParticleCoord, func(), error) {
		cleanup()

		return handler.ParticleCoord{}, nil, err
	}

	if err := decodePayloadInto(s.ds.engine, s.ds.codec, block.x, x); err != nil {
		return fail(err)
	}
	if err := decodePayloadInto(s.ds.engine, s.ds.codec, block.y, y); err != nil {
		return fail(err)
	}
	if err := decodePayloadInto(s.ds.engine, s.ds.codec, block.z, z); err != nil {
		return fail(err)
	}

	pc := handler.ParticleCoord{Type: ptype, X: x, Y: y, Z: z}

	if block.smoothing != nil {
		hsml := scratch[3*block.count : 4*block.count]
		if err := decodePayloadInto(s.ds.engine, s.ds.codec, block.smoothing, hsml); err != nil {
			return fail(err)
		}
		pc.Smoothing = hsml
	}

	return pc, cleanup, nil
}

// ReadParticleDataFile reads the selected particle values of one data file,
// yielding (concrete field, values) pairs in sorted (type, name) order. The
// selection mask pads by the smoothing radius when the type carries one, so
// fill counts match the counting phase.
func (s *IO) ReadParticleDataFile(df *chunk.DataFile, ptf handler.FieldTypeMap, sel selection.Selector) iter.Seq2[handler.ParticleValues, error] {
	return func(yield func(handler.ParticleValues, error) bool) {
		pf, ok := s.ds.particleFiles[df]
		if !ok {
			yield(handler.ParticleValues{}, errs.ErrUnknownDataFile)

			return
		}

		for _, ptype := range ptf.SortedTypes() {
			block, ok := pf.blocks[ptype]
			if !ok {
				continue
			}

			mask, nsel, err := s.selectionMask(ptype, block, sel)
			if err != nil {
				yield(handler.ParticleValues{}, err)

				return
			}
			if nsel == 0 {
				continue
			}

			names := slices.Clone(ptf[ptype])
			slices.Sort(names)

			for _, name := range names {
				pfield, ok := block.fields[name]
				if !ok {
					continue
				}

				vals, err := decodePayload(s.ds.engine, s.ds.codec, pfield.payload)
				if err != nil {
					yield(handler.ParticleValues{}, err)

					return
				}

				full, err := field.FromSliceShape(vals, block.count, pfield.elemSize)
				if err != nil {
					yield(handler.ParticleValues{}, err)

					return
				}

				out := field.NewArray(nsel, pfield.elemSize)
				pos := 0
				for i := range block.count {
					if mask == nil || mask[i] {
						out.SetRow(pos, full.Row(i))
						pos++
					}
				}

				pv := handler.ParticleValues{
					Field:  field.Field{Type: ptype, Name: name},
					Values: out,
				}
				if !yield(pv, nil) {
					return
				}
			}
		}
	}
}

// selectionMask evaluates the selector against one particle block. A nil
// mask means every particle is selected.
func (s *IO) selectionMask(ptype string, block *particleBlock, sel selection.Selector) ([]bool, int, error) {
	if sel.IsAllData() {
		return nil, block.count, nil
	}

	ps, ok := sel.(selection.PointSelector)
	if !ok {
		return nil, 0, nil
	}

	pc, release, err := s.decodeCoords(ptype, block)
	if err != nil {
		return nil, 0, err
	}
	defer release()

	pps, padded := sel.(selection.PaddedPointSelector)

	mask := make([]bool, block.count)
	nsel := 0
	for i := range block.count {
		var hit bool
		if padded && pc.Smoothing != nil {
			hit = pps.SelectPaddedPoint(pc.X[i], pc.Y[i], pc.Z[i], pc.Smoothing[i])
		} else {
			hit = ps.SelectPoint(pc.X[i], pc.Y[i], pc.Z[i])
		}
		if hit {
			mask[i] = true
			nsel++
		}
	}

	return mask, nsel, nil
}

// Preload is accepted as a hint. Stream payloads already live in memory, so
// there is nothing to batch.
func (s *IO) Preload(_ *chunk.Chunk, _ []field.Field, _ int64) (func(), error) {
	return func() {}, nil
}
