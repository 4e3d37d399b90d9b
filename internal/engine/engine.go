package engine

import (
	"context"
	"errors"

	"github.com/bazaarlabs/catalog-search/internal/domain"
)

// Sentinel errors classifying backend failures. Every engine error wraps
// exactly one of these so callers can distinguish failure modes without
// string matching.
var (
	// ErrConnection means the backend could not be reached or authenticated
	// against. Fatal at startup; not retried automatically.
	ErrConnection = errors.New("search backend connection failed")

	// ErrIndex means an index lifecycle operation (exists/delete/create)
	// failed, or an operation targeted an index that does not exist.
	ErrIndex = errors.New("index operation failed")

	// ErrLoad means a bulk write failed wholly or partially. The caller may
	// retry the whole rebuild; it is idempotent.
	ErrLoad = errors.New("bulk load failed")

	// ErrSearch means a query failed at the transport or backend level.
	ErrSearch = errors.New("search query failed")

	// ErrMalformedResponse means the backend answered but the response body
	// could not be decoded. Distinct from ErrSearch so callers can tell
	// "backend down" from "backend returned garbage".
	ErrMalformedResponse = errors.New("malformed search backend response")
)

// IndexState describes the observable lifecycle state of the index.
type IndexState string

const (
	// StateAbsent means the index does not exist. Searches fail closed.
	StateAbsent IndexState = "absent"
	// StateEmpty means the index exists with a schema but holds no
	// documents. Searches return empty results, not errors.
	StateEmpty IndexState = "empty"
	// StateReady means the index exists and is populated.
	StateReady IndexState = "ready"
)

// SearchEngine is the contract the catalog service consumes. Implementations
// must be safe for concurrent searches; rebuild serialization is the
// caller's responsibility.
type SearchEngine interface {
	// Ping verifies backend liveness.
	Ping(ctx context.Context) error

	// Rebuild deletes the index if it exists and recreates it with the
	// product schema, leaving it in StateEmpty. The sequence is not
	// transactional: a failure between delete and create leaves StateAbsent,
	// which is a valid degraded state.
	Rebuild(ctx context.Context) error

	// BulkIndex writes all documents as a single batch with immediate
	// refresh. Any per-item failure makes the whole call fail.
	BulkIndex(ctx context.Context, docs []domain.Document) error

	// Search runs a weighted fuzzy multi-field query and returns matching
	// documents in relevance order.
	Search(ctx context.Context, keyword string) ([]domain.Document, error)

	// State reports the current index lifecycle state and document count.
	State(ctx context.Context) (IndexState, int, error)
}
