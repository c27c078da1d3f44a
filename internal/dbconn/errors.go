package dbconn

import "fmt"

// ConnectionError means no session could be established. It is fatal for
// the whole run: no report is produced without a live session.
type ConnectionError struct {
	Target   string
	Attempts int
	Err      error // last underlying cause
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s failed after %d attempt(s): %v", e.Target, e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError is a failure of one read-only statement. It is recoverable:
// the collector set records it and the run continues.
type QueryError struct {
	Stmt string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q failed: %v", e.Stmt, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }
