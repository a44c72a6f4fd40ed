package cachefan

import (
	"fmt"
)

// PatternError records a scan-delete that failed mid-cursor. The batches
// already processed stayed deleted; the rest of the pattern was abandoned.
type PatternError struct {
	Pattern string
	Deleted int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalidate %q abandoned after %d deletions: %v", e.Pattern, e.Deleted, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// InvalidationResult is the advisory outcome of an Invalidate call. Write
// paths acknowledge and discard it; a non-nil Err never fails the request
// that triggered the invalidation.
type InvalidationResult struct {
	// Deleted is the total number of keys removed across all patterns.
	Deleted int

	// Skipped is true when the store was not ready and the whole call
	// degraded to a no-op.
	Skipped bool

	// Failed holds one entry per abandoned pattern.
	Failed []*PatternError
}

// Err folds the per-pattern failures into a single error, nil when every
// pattern completed.
func (r InvalidationResult) Err() error {
	switch len(r.Failed) {
	case 0:
		return nil
	case 1:
		return r.Failed[0]
	default:
		return &invalidationError{failed: r.Failed}
	}
}

type invalidationError struct {
	failed []*PatternError
}

func (e *invalidationError) Error() string {
	return fmt.Sprintf("invalidate: %d patterns abandoned (first: %v)", len(e.failed), e.failed[0])
}

func (e *invalidationError) Unwrap() []error {
	errs := make([]error, len(e.failed))
	for i, f := range e.failed {
		errs[i] = f
	}
	return errs
}
