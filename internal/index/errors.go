package index

// Op constants name the upstream operation for error context.
const (
	OpQuery = "index.query"
	OpPing  = "index.ping"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
