package handler

import (
	"slices"

	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/selection"
)

// ReadParticleSelection reads particle-based field data under a selection.
//
// The read runs in phases:
//
//  1. Union resolution: a field whose type names a particle-type union
//     fans out to every underlying concrete type; a reverse map records
//     which logical fields each concrete (type, name) feeds.
//  2. Counting: the exact number of selected particles per concrete type,
//     either from per-file totals (selector covers everything) or by
//     evaluating the selector against particle coordinates.
//  3. Allocation: per logical field, an upper-bound array sized by the sum
//     of its contributing concrete-type counts, shaped by the field's
//     declared shape.
//  4. Fill: data files visited in sorted (filename, start) order; every
//     (concrete field, values) block is copied into each mapped logical
//     array at its running index.
//  5. Trim: each logical array shrinks to its actually-filled length.
//
// Counting and filling walk data files in the same stable order, so
// repeated reads with identical inputs produce identical output.
func (h *Handler) ReadParticleSelection(chunks []*chunk.Chunk, sel selection.Selector, fields []field.Field) (map[field.Field]*field.Array, error) {
	if err := checkUniqueFields(fields); err != nil {
		return nil, err
	}

	unions := h.ds.ParticleUnions()

	// Phase 1: union resolution.
	ptf := make(FieldTypeMap)
	fieldMaps := make(map[field.Field][]field.Field)

	addRequest := func(ptype, name string, logical field.Field) {
		if !slices.Contains(ptf[ptype], name) {
			ptf[ptype] = append(ptf[ptype], name)
		}
		concrete := field.Field{Type: ptype, Name: name}
		fieldMaps[concrete] = append(fieldMaps[concrete], logical)
	}

	for _, f := range fields {
		if members, ok := unions[f.Type]; ok {
			for _, pt := range members {
				addRequest(pt, f.Name, f)
			}
		} else {
			addRequest(f.Type, f.Name, f)
		}
	}

	// Phase 2: counting.
	psize, err := h.countParticles(chunks, ptf, sel)
	if err != nil {
		return nil, err
	}

	// Phase 3: allocation at the upper bound.
	rv := make(map[field.Field]*field.Array, len(fields))
	ind := make(map[field.Field]int, len(fields))

	for _, f := range fields {
		total := 0
		if members, ok := unions[f.Type]; ok {
			for _, pt := range members {
				total += psize[pt]
			}
		} else {
			total = psize[f.Type]
		}

		rv[f] = h.fieldShape(f.Name).Alloc(total)
		ind[f] = 0
	}

	// Phase 4: read and fan out.
	pfr, ok := h.format.(ParticleFileReader)
	if !ok {
		return nil, errs.ErrUnimplementedReadParticleDataFile
	}

	for _, df := range chunk.SortedDataFiles(chunks) {
		for pv, err := range pfr.ReadParticleDataFile(df, ptf, sel) {
			if err != nil {
				return nil, err
			}
			for _, logical := range fieldMaps[pv.Field] {
				n, err := rv[logical].CopyRowsFrom(ind[logical], pv.Values)
				if err != nil {
					return nil, err
				}
				ind[logical] += n
			}
		}
	}

	// Phase 5: trim to the filled length.
	for f, arr := range rv {
		if err := arr.Trim(ind[f]); err != nil {
			return nil, err
		}
	}

	return rv, nil
}

// countParticles determines the exact selected-particle count per concrete
// particle type across all chunks.
//
// When the selector covers the entire dataset and the chunks are backed by
// data files, counts come from the files' precomputed per-type totals,
// skipping per-particle evaluation. Otherwise the selector's point counting
// runs against the format's particle coordinates.
func (h *Handler) countParticles(chunks []*chunk.Chunk, ptf FieldTypeMap, sel selection.Selector) (map[string]int, error) {
	psize := make(map[string]int, len(ptf))

	if sel.IsAllData() {
		if files := chunk.SortedDataFiles(chunks); len(files) > 0 {
			for _, df := range files {
				for ptype := range ptf {
					psize[ptype] += int(df.TotalParticles[ptype])
				}
			}

			return psize, nil
		}
		// No data files to take totals from; count from coordinates.
	}

	pcr, ok := h.format.(ParticleCoordReader)
	if !ok {
		return nil, errs.ErrUnimplementedReadParticleCoords
	}

	for pc, err := range pcr.ReadParticleCoords(chunks, ptf) {
		if err != nil {
			return nil, err
		}
		psize[pc.Type] += sel.CountPoints(pc.X, pc.Y, pc.Z, pc.Smoothing)
	}

	return psize, nil
}
