package vectorindex

import "fmt"

// Kind identifies the category of an Error. Callers should prefer
// errors.Is against the package-level sentinels (ErrIndexNotBuilt,
// ErrEmptyDataset, ...) over switching on Kind directly.
type Kind int

const (
	KindEmptyDataset Kind = iota
	KindIndexNotBuilt
	KindVertexIdOverflow
	KindDuplicateNodeId
	KindNodeIdNotFound
	KindVectorIdNotFound
	KindInvalidDimension
	KindBuildError
	KindSearchError
	KindNotSupported
	KindDiskANN
)

func (k Kind) String() string {
	switch k {
	case KindEmptyDataset:
		return "EmptyDataset"
	case KindIndexNotBuilt:
		return "IndexNotBuilt"
	case KindVertexIdOverflow:
		return "VertexIdOverflow"
	case KindDuplicateNodeId:
		return "DuplicateNodeId"
	case KindNodeIdNotFound:
		return "NodeIdNotFound"
	case KindVectorIdNotFound:
		return "VectorIdNotFound"
	case KindInvalidDimension:
		return "InvalidDimension"
	case KindBuildError:
		return "BuildError"
	case KindSearchError:
		return "SearchError"
	case KindNotSupported:
		return "NotSupported"
	case KindDiskANN:
		return "DiskANN"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type surfaced by this package. Every kind
// carries the fields relevant to it; unused fields stay zero. Comparison
// by errors.Is matches on Kind alone (see Is), so callers can test with
// a bare sentinel (e.g. errors.Is(err, ErrIndexNotBuilt)) without caring
// about the offending node/vector id.
type Error struct {
	Kind     Kind
	NodeID   uint64
	VertexID uint64
	VectorID uint32
	Expected int
	Actual   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyDataset:
		return "vectorindex: build called with no vectors"
	case KindIndexNotBuilt:
		return "vectorindex: operation requires a built index"
	case KindVertexIdOverflow:
		return fmt.Sprintf("vectorindex: vertex id %d exceeds 2^32-1", e.VertexID)
	case KindDuplicateNodeId:
		return fmt.Sprintf("vectorindex: duplicate node id %d", e.NodeID)
	case KindNodeIdNotFound:
		return fmt.Sprintf("vectorindex: node id %d not found", e.NodeID)
	case KindVectorIdNotFound:
		return fmt.Sprintf("vectorindex: vector id %d not found in id map (invariant violation)", e.VectorID)
	case KindInvalidDimension:
		return fmt.Sprintf("vectorindex: invalid dimension: expected %d, got %d", e.Expected, e.Actual)
	case KindBuildError:
		return fmt.Sprintf("vectorindex: build failed: %s", e.Message)
	case KindSearchError:
		return fmt.Sprintf("vectorindex: search failed: %s", e.Message)
	case KindNotSupported:
		return fmt.Sprintf("vectorindex: not supported: %s", e.Message)
	case KindDiskANN:
		return fmt.Sprintf("vectorindex: inner index error: %s", e.Err)
	default:
		return "vectorindex: unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match against a bare sentinel carrying only a Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is comparisons. Only Kind is populated; the
// structured fields live on the error instances actually returned.
var (
	ErrEmptyDataset      = &Error{Kind: KindEmptyDataset}
	ErrIndexNotBuilt     = &Error{Kind: KindIndexNotBuilt}
	ErrVertexIdOverflow  = &Error{Kind: KindVertexIdOverflow}
	ErrDuplicateNodeId   = &Error{Kind: KindDuplicateNodeId}
	ErrNodeIdNotFound    = &Error{Kind: KindNodeIdNotFound}
	ErrVectorIdNotFound  = &Error{Kind: KindVectorIdNotFound}
	ErrInvalidDimension  = &Error{Kind: KindInvalidDimension}
	ErrBuildError        = &Error{Kind: KindBuildError}
	ErrSearchError       = &Error{Kind: KindSearchError}
	ErrNotSupported      = &Error{Kind: KindNotSupported}
)

func errVertexIdOverflow(vertexID uint64) error {
	return &Error{Kind: KindVertexIdOverflow, VertexID: vertexID}
}

func errDuplicateNodeId(nodeID uint64) error {
	return &Error{Kind: KindDuplicateNodeId, NodeID: nodeID}
}

func errNodeIdNotFound(nodeID uint64) error {
	return &Error{Kind: KindNodeIdNotFound, NodeID: nodeID}
}

func errVectorIdNotFound(vectorID uint32) error {
	return &Error{Kind: KindVectorIdNotFound, VectorID: vectorID}
}

func errInvalidDimension(expected, actual int) error {
	return &Error{Kind: KindInvalidDimension, Expected: expected, Actual: actual}
}

func errBuild(cause error) error {
	return &Error{Kind: KindBuildError, Message: cause.Error(), Err: cause}
}

func errSearch(cause error) error {
	return &Error{Kind: KindSearchError, Message: cause.Error(), Err: cause}
}

func errNotSupported(what string) error {
	return &Error{Kind: KindNotSupported, Message: what}
}

func errDiskANN(cause error) error {
	return &Error{Kind: KindDiskANN, Err: cause}
}
