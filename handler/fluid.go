package handler

import (
	"github.com/fieldline/simio/chunk"
	"github.com/fieldline/simio/errs"
	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/selection"
)

// ReadFluidSelection reads grid-based field data under a spatial selection.
//
// size is the caller-precomputed total number of selected cells and is
// assumed exact: the returned arrays are never trimmed. Cell-centered
// fields come back as (size,) arrays; a field with k nodal flags set comes
// back as (size, 2^k).
//
// When the selector covers the entire dataset, raw buffers of non-nodal
// fields are copied directly into the output, bypassing mask-compaction.
func (h *Handler) ReadFluidSelection(chunks []*chunk.Chunk, sel selection.Selector, fields []field.Field, size int) (map[field.Field]*field.Array, error) {
	if err := checkUniqueFields(fields); err != nil {
		return nil, err
	}

	it, ok := h.format.(FluidIterator)
	if !ok {
		return nil, errs.ErrUnimplementedIOIter
	}

	rv := make(map[field.Field]*field.Array, len(fields))
	nodal := make(map[field.Field]bool, len(fields))
	ind := make(map[field.Field]int, len(fields))

	for _, f := range fields {
		info, _ := h.ds.FieldInfo(f)
		if info.Nodal() {
			rv[f] = field.NewArray(size, info.NumNodes())
			nodal[f] = true
		} else {
			rv[f] = field.NewArray(size)
		}
		ind[f] = 0
	}

	for item, err := range it.IOIter(chunks, fields) {
		if err != nil {
			return nil, err
		}
		if item.Data == nil {
			continue
		}

		out := rv[item.Field]
		if out == nil {
			// The iterator yielded a field outside the request; a format
			// bug, but harmless to skip.
			continue
		}

		if sel.IsAllData() && !nodal[item.Field] {
			n, err := out.CopyRowsFrom(ind[item.Field], item.Data)
			if err != nil {
				return nil, err
			}
			ind[item.Field] += n
		} else {
			ind[item.Field] += item.Obj.Select(sel, item.Data, out, ind[item.Field])
		}
	}

	return rv, nil
}
