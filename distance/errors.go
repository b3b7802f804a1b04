// SPDX-License-Identifier: MIT

package distance

import (
	"errors"
	"fmt"
)

// ErrNotConvex is returned by ConvexDistance for an input that does not sum to 1.
var ErrNotConvex = errors.New("distance: vector is not convex")

// InvariantError reports broken input invariants that indicate a bug upstream
// (a block that should have been normalised, a partially defined block). It is
// never coerced away; callers tell it apart from ordinary input errors with
// errors.As.
type InvariantError struct {
	Op     string // operation that detected it
	Detail string // offending values
	Err    error  // sentinel
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s: %v", e.Op, e.Detail, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }

func distanceErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
