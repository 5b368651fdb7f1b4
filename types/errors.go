package types

import "fmt"

// ConnectionError means the vector index was unreachable or could not be
// prepared. Fatal to the whole run; nothing is processed after it.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("vector index unreachable at %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ClearError means an explicitly requested index clear was rejected. Fatal:
// upserting after a failed clear would leave the index inconsistent.
type ClearError struct {
	Index string
	Err   error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("failed to clear index %s: %v", e.Index, e.Err)
}

func (e *ClearError) Unwrap() error { return e.Err }

// ExtractionError means an uploaded payload was not a parseable PDF. Recorded
// per file; the run continues with the next file.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// UpsertError means the remote store rejected one batch. Batch is the
// 0-indexed group number; earlier groups stay in the index (no rollback) and
// remaining groups for the file are abandoned.
type UpsertError struct {
	Batch int
	Err   error
}

func (e *UpsertError) Error() string {
	return fmt.Sprintf("upsert rejected at batch %d: %v", e.Batch, e.Err)
}

func (e *UpsertError) Unwrap() error { return e.Err }
