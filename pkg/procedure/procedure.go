// Package procedure is the thin stored-procedure glue described as "the
// hard part's surroundings": argument validation, property-name
// resolution, and result-row assembly around a vector index adapter. It
// mirrors the Go shape of the original graph engine's VectorSearch
// procedure, whose actual argument checks and property-resolution
// fallback this package's VectorSearch reproduces.
package procedure

import (
	"context"
	"errors"
	"fmt"

	"github.com/minigu-db/vectorindex/internal/vectorindex"
	"github.com/minigu-db/vectorindex/pkg/registry"
)

// ErrFilterNotSupported is returned by the production FilterCompiler
// whenever a non-empty filter condition is supplied: compiling a
// predicate string into a vectorindex.FilterMask is an external
// collaborator this repository declares but does not implement.
var ErrFilterNotSupported = errors.New("procedure: filter-condition compilation is not supported")

// PropertyNotFoundError reports that no vertex type in the resolved
// graph exposes the requested property, mirroring the original
// procedure's "Property '<name>' not found" message.
type PropertyNotFoundError struct {
	Name string
}

func (e *PropertyNotFoundError) Error() string {
	return fmt.Sprintf("procedure: property '%s' not found", e.Name)
}

// PropertyCatalog resolves a property name to the index registered for
// it. The real implementation lives in the graph-type catalog external
// to this repository; InMemoryCatalog below is a minimal stand-in for
// tests and examples.
type PropertyCatalog interface {
	// Resolve returns the registry key identifying which built index
	// backs propertyName, scanning vertex types the way the original
	// procedure scans `graph_type.vertex_type_keys()`.
	Resolve(propertyName string) (registry.Key, bool)
}

// FilterCompiler turns a filter-condition string into a FilterMask. The
// production implementation always fails with ErrFilterNotSupported.
// internal/filterlang has a toy compiler used by tests and the CLI's
// demo flag; its Compile also takes per-slot metadata, so it does not
// satisfy this interface.
type FilterCompiler interface {
	Compile(condition string) (vectorindex.FilterMask, error)
}

// NotSupportedFilterCompiler is the production FilterCompiler: it
// rejects every non-empty condition, surfacing the gap clearly rather
// than silently ignoring the filter.
type NotSupportedFilterCompiler struct{}

func (NotSupportedFilterCompiler) Compile(condition string) (vectorindex.FilterMask, error) {
	if condition == "" {
		return nil, nil
	}
	return nil, ErrFilterNotSupported
}

// InMemoryCatalog is a minimal PropertyCatalog backed by a static map,
// sufficient for tests and examples; production wiring resolves against
// the graph's own schema catalog.
type InMemoryCatalog struct {
	properties map[string]registry.Key
}

// NewInMemoryCatalog builds a catalog from a property-name -> registry
// key mapping.
func NewInMemoryCatalog(properties map[string]registry.Key) *InMemoryCatalog {
	return &InMemoryCatalog{properties: properties}
}

func (c *InMemoryCatalog) Resolve(propertyName string) (registry.Key, bool) {
	key, ok := c.properties[propertyName]
	return key, ok
}

// Request is the Go realization of the procedure's invocation surface.
type Request struct {
	PropertyName    string
	QueryVector     []float32
	K               uint32
	LValue          uint32
	FilterCondition string // empty means unfiltered
}

// VectorSearch validates req, resolves PropertyName to a registered
// index via catalog, optionally compiles FilterCondition via compiler,
// and returns the matching vertex ids. Validation order matches the
// original procedure: argument shape is checked before any catalog or
// index work happens.
func VectorSearch(ctx context.Context, req Request, catalog PropertyCatalog, compiler FilterCompiler, reg *registry.Registry) ([]vectorindex.NodeId, error) {
	if req.K == 0 {
		return nil, fmt.Errorf("procedure: k must be greater than 0")
	}
	if req.LValue == 0 {
		return nil, fmt.Errorf("procedure: l_value must be greater than 0")
	}
	if req.K > req.LValue {
		return nil, fmt.Errorf("procedure: k (%d) must not exceed l_value (%d)", req.K, req.LValue)
	}
	if len(req.QueryVector) == 0 {
		return nil, fmt.Errorf("procedure: query_vector must not be empty")
	}

	key, ok := catalog.Resolve(req.PropertyName)
	if !ok {
		return nil, &PropertyNotFoundError{Name: req.PropertyName}
	}

	adapter, ok := reg.Get(key)
	if !ok {
		return nil, fmt.Errorf("procedure: no index registered for %s", key)
	}

	var mask vectorindex.FilterMask
	if req.FilterCondition != "" {
		compiled, err := compiler.Compile(req.FilterCondition)
		if err != nil {
			return nil, err
		}
		mask = compiled
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return adapter.Search(req.QueryVector, int(req.K), int(req.LValue), mask)
}
