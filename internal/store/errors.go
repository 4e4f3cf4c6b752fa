package store

// ValidationError reports an invalid record or configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// NotFoundError reports a missing run.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "run not found: " + e.ID
}
