// SPDX-License-Identifier: MIT

package metric

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMetric is returned for unregistered names, including malformed
	// normalized{1,2}_l<p> names.
	ErrUnknownMetric = errors.New("metric: unknown metric")

	// ErrLengthMismatch indicates vectors (or parameter vectors) of different lengths.
	ErrLengthMismatch = errors.New("metric: length mismatch")

	// ErrEmptyVector indicates a zero-length input vector.
	ErrEmptyVector = errors.New("metric: empty vector")

	// ErrZeroMass indicates a row whose entries sum to 0, so it cannot be
	// turned into a distribution (hellinger, js_divergence).
	ErrZeroMass = errors.New("metric: row has zero mass")

	// ErrBadVariance indicates a negative, NaN or zero variance where a
	// coordinate still differs between the two vectors.
	ErrBadVariance = errors.New("metric: invalid variance")

	// ErrSingular indicates the covariance used by mahalanobis has no inverse.
	ErrSingular = errors.New("metric: singular covariance")

	// ErrBadLength indicates a non-positive dimensionality passed to a normalizer.
	ErrBadLength = errors.New("metric: length must be > 0")
)

// metricErrorf prefixes err with the operation name, keeping the sentinel.
func metricErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
