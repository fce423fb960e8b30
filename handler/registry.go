package handler

import (
	"slices"

	"github.com/fieldline/simio/errs"
)

// Factory creates a handler bound to the given dataset.
type Factory func(ds Dataset, opts ...Option) (*Handler, error)

// registry maps a dataset-type tag to its handler factory. It is populated
// from format package init functions and read-only afterwards, so it is
// deliberately unsynchronized.
var registry = make(map[string]Factory)

// Register records the factory for a dataset-type tag. Registering the same
// tag again overwrites the earlier entry: the last registration wins.
func Register(datasetType string, factory Factory) {
	registry[datasetType] = factory
}

// Lookup returns the registered factory for a dataset-type tag.
func Lookup(datasetType string) (Factory, bool) {
	factory, ok := registry[datasetType]

	return factory, ok
}

// Create instantiates a handler for the dataset-type tag.
func Create(datasetType string, ds Dataset, opts ...Option) (*Handler, error) {
	factory, ok := registry[datasetType]
	if !ok {
		return nil, errs.ErrHandlerNotFound
	}

	return factory(ds, opts...)
}

// RegisteredTypes returns the registered dataset-type tags in sorted order.
func RegisteredTypes() []string {
	types := make([]string, 0, len(registry))
	for tag := range registry {
		types = append(types, tag)
	}
	slices.Sort(types)

	return types
}
