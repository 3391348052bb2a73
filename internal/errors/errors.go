// Package errors provides error handling for phenosim.
//
// It re-exports github.com/cockroachdb/errors and defines the four error
// kinds every phenosim operation reports:
//
//   - [ErrConfiguration]: inconsistent, missing or out-of-range parameters
//   - [ErrDimension]: mismatched matrix shapes
//   - [ErrSampling]: a sample larger than its population
//   - [ErrNumerical]: a factorisation or rescale that cannot be performed
//
// Kinds are checked with [Is]. Configuration errors also carry a
// [*ParamError] naming the offending parameter group:
//
//	var pe *errors.ParamError
//	if errors.As(err, &pe) {
//	    fmt.Println(pe.Group, pe.Params)
//	}
package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetailf  = crdb.WithDetailf
	Mark         = crdb.Mark
	Is           = crdb.Is
	As           = crdb.As
	FlattenHints = crdb.FlattenHints
)

var (
	// ErrConfiguration indicates inconsistent or missing variance proportions,
	// invalid counts, or fractions outside their range.
	ErrConfiguration = New("configuration error")

	// ErrDimension indicates mismatched matrix shapes.
	ErrDimension = New("dimension mismatch")

	// ErrSampling indicates a requested sample exceeds the available population.
	ErrSampling = New("sampling error")

	// ErrNumerical indicates a matrix that is not positive definite where a
	// Cholesky factor is required, or a degenerate component.
	ErrNumerical = New("numerical error")
)

// ParamError names the parameter group and parameters a configuration
// error is about.
type ParamError struct {
	Group  string
	Params []string
	Reason string
}

func (e *ParamError) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("%s: %s", e.Group, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", e.Group, strings.Join(e.Params, ", "), e.Reason)
}

// Configuration returns an ErrConfiguration-kind error about the given
// parameter group.
func Configuration(group string, params []string, format string, args ...any) error {
	pe := &ParamError{Group: group, Params: params, Reason: fmt.Sprintf(format, args...)}
	return Mark(WithStack(pe), ErrConfiguration)
}

// Dimensionf returns an ErrDimension-kind error.
func Dimensionf(format string, args ...any) error {
	return Wrapf(ErrDimension, format, args...)
}

// Samplingf returns an ErrSampling-kind error.
func Samplingf(format string, args ...any) error {
	return Wrapf(ErrSampling, format, args...)
}

// Numericalf returns an ErrNumerical-kind error.
func Numericalf(format string, args ...any) error {
	return Wrapf(ErrNumerical, format, args...)
}

// IsConfiguration reports whether err is or wraps ErrConfiguration.
func IsConfiguration(err error) bool { return err != nil && Is(err, ErrConfiguration) }

// IsDimension reports whether err is or wraps ErrDimension.
func IsDimension(err error) bool { return err != nil && Is(err, ErrDimension) }

// IsSampling reports whether err is or wraps ErrSampling.
func IsSampling(err error) bool { return err != nil && Is(err, ErrSampling) }

// IsNumerical reports whether err is or wraps ErrNumerical.
func IsNumerical(err error) bool { return err != nil && Is(err, ErrNumerical) }

// Kind returns a short name for the error kind of err, or "" if it has none.
func Kind(err error) string {
	switch {
	case IsConfiguration(err):
		return "configuration"
	case IsDimension(err):
		return "dimension"
	case IsSampling(err):
		return "sampling"
	case IsNumerical(err):
		return "numerical"
	}
	return ""
}
