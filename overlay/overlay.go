// Package overlay implements the optional backup-archive lookup that can
// transparently override primary field values per object.
//
// A backup archive is an HDF5 file with one top-level group "data" holding
// one sub-group per object, named by a fixed-width zero-padded decimal
// index (object id minus the object's id offset). Each sub-group holds one
// dataset per overridden field.
//
// A missing archive file and a missing (object, field) entry are both
// non-errors: the caller silently falls back to the primary read path.
// Real I/O failures propagate unchanged. Archive handles are opened per
// lookup and closed before returning on every path.
package overlay

import (
	"errors"
	"fmt"
	"os"

	"github.com/robert-malhotra/go-hdf5/hdf5"

	"github.com/fieldline/simio/field"
)

// GroupName returns the archive group name for an object index,
// "grid_" followed by the ten-digit zero-padded index.
func GroupName(index int64) string {
	return fmt.Sprintf("grid_%010d", index)
}

// Read looks up the override value for (index, fieldName) in the archive at
// path.
//
// Returns (value, true, nil) when the archive defines the field for the
// object, (nil, false, nil) when the archive or the entry is absent, and a
// non-nil error only for real failures (corrupt archive, I/O error).
func Read(path string, index int64, fieldName string) (*field.Array, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}

		return nil, false, err
	}

	f, err := hdf5.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	grp, ok, err := openObjectGroup(f, index)
	if err != nil || !ok {
		return nil, false, err
	}

	ds, err := grp.OpenDataset(fieldName)
	if err != nil {
		if errors.Is(err, hdf5.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	vals, err := ds.ReadFloat64()
	if err != nil {
		return nil, false, err
	}

	arr, err := shapedArray(vals, ds.Shape())
	if err != nil {
		return nil, false, err
	}

	return arr, true, nil
}

// Contains reports whether the archive at path defines fieldName for the
// object index. Absent archives and absent entries report false with a nil
// error.
func Contains(path string, index int64, fieldName string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	f, err := hdf5.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	grp, ok, err := openObjectGroup(f, index)
	if err != nil || !ok {
		return false, err
	}

	if _, err := grp.OpenDataset(fieldName); err != nil {
		if errors.Is(err, hdf5.ErrNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// openObjectGroup opens /data/<GroupName(index)>. A missing "data" group or
// object sub-group is an absent entry, not an error.
func openObjectGroup(f *hdf5.File, index int64) (*hdf5.Group, bool, error) {
	data, err := f.Root().OpenGroup("data")
	if err != nil {
		if errors.Is(err, hdf5.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	grp, err := data.OpenGroup(GroupName(index))
	if err != nil {
		if errors.Is(err, hdf5.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return grp, true, nil
}

// shapedArray wraps the decoded values with the dataset's dimensions.
func shapedArray(vals []float64, hdims []uint64) (*field.Array, error) {
	if len(hdims) == 0 {
		// Scalar dataspace: a single value.
		return field.FromSlice(vals), nil
	}

	dims := make([]int, len(hdims))
	for i, d := range hdims {
		dims[i] = int(d)
	}

	return field.FromSliceShape(vals, dims...)
}
