package review

import (
	"errors"
	"fmt"
)

// ErrPersistence marks a failed write of an already-computed review
// result. The computation itself succeeded; the caller decides whether
// to retry the write or discard the result. Check with
// errors.Is(err, review.ErrPersistence).
var ErrPersistence = errors.New("persistence failure")

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}
