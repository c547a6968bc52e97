package adjust

import "fmt"

// UpdateError reports a failed buffer update for one dataset.
type UpdateError struct {
	Dataset  string
	Strategy string
	Err      error
}

// NewUpdateError wraps err with the dataset and strategy it happened in.
func NewUpdateError(dataset, strategy string, err error) *UpdateError {
	return &UpdateError{Dataset: dataset, Strategy: strategy, Err: err}
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update dataset %q (%s): %v", e.Dataset, e.Strategy, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
