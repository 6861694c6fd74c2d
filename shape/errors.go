package shape

import (
	"errors"
	"fmt"
)

var (
	// ErrRange marks out-of-bounds coordinate access in strict mode
	ErrRange = errors.New("coordinate out of range")

	// ErrKindMismatch marks an operation a shape kind cannot perform
	ErrKindMismatch = errors.New("shape kind mismatch")
)

// RangeError reports the offending coordinate and the shape bounds
type RangeError struct {
	X, Y          int
	Width, Height int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: (%d, %d) outside %dx%d", ErrRange, e.X, e.Y, e.Width, e.Height)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// KindMismatchError reports which capability a shape kind lacks
type KindMismatchError struct {
	Kind Kind
	Op   string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("%v: %s does not support %s", ErrKindMismatch, e.Kind, e.Op)
}

func (e *KindMismatchError) Is(target error) bool {
	return target == ErrKindMismatch
}
