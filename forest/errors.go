package forest

import "fmt"

// Error is the type of the errors returned by the package.
type Error string

func (e Error) Error() string {
	return string(e)
}

// ErrNotTrained is returned when predicting with a forest that has not been
// trained.
const ErrNotTrained = Error("forest has not been trained")

/*
TaskError is returned by Train when growing one of the trees of the forest
fails. Index is the position of the tree in dispatch order and Err the
error returned (or the panic recovered) while growing it.
*/
type TaskError struct {
	Index int
	Err   error
}

func (te *TaskError) Error() string {
	return fmt.Sprintf("growing tree %d: %v", te.Index, te.Err)
}

// Unwrap returns the error that made the task fail.
func (te *TaskError) Unwrap() error {
	return te.Err
}
