package skeleton

import (
	"errors"
	"fmt"
)

// MaxTrees is the largest number of trees a tree label volume can hold
const MaxTrees = 255

// ErrCapacityExceeded is returned when a skeleton contains more trees than
// can be labeled. No partial result accompanies it.
var ErrCapacityExceeded = errors.New("too many skeletons")

// CapacityError reports the tree limit that was exceeded
type CapacityError struct {
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("more than %d skeletons in the image, can only process up to %d", e.Limit, e.Limit)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}
