package leafpack

import (
	"errors"
	"fmt"

	"github.com/hupe1980/leafpack/internal/alloc"
	"github.com/hupe1980/leafpack/internal/resource"
)

var (
	// ErrOutOfMemory is returned when the allocator cannot supply a region.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrDetached is returned by operations on an array without a region.
	ErrDetached = errors.New("array is detached")

	// ErrAttached is returned by Create and Encode when the target array
	// already owns a region.
	ErrAttached = errors.New("array is already attached")

	// ErrIndexOutOfRange is the sentinel behind IndexError.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// IndexError reports an element index outside an array.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, alloc.ErrOutOfMemory) || errors.Is(err, resource.ErrMemoryLimitExceeded) {
		if errors.Is(err, ErrOutOfMemory) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	if errors.Is(err, alloc.ErrInvalidRef) {
		return fmt.Errorf("%w: %w", ErrDetached, err)
	}

	return err
}
