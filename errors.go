package symcalc

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrDenominator = errors.New("rational denominator must be positive")
	ErrDimension   = errors.New("dimensions are 1-indexed")
	ErrInfinity    = errors.New("division by zero: infinities are not supported")
	ErrLogarithm   = errors.New("integral of x^-1 needs a logarithm, which is not supported")
	ErrReciprocal  = errors.New("integral of a quotient whose divisor depends on the integration variable is not supported")
	ErrBranchSpec  = errors.New("branched expects alternating pieces and cut points, starting and ending with a piece")
	ErrScale       = errors.New("cut points can only be scaled by a positive factor")
	ErrNotNumeric  = errors.New("expression is not numeric")
)

// ContractError is the panic value raised when an expression is built in a
// way that can never be valid, such as a zero denominator.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string { return fmt.Sprintf("symcalc: %s: %v", e.Op, e.Err) }
func (e *ContractError) Unwrap() error { return e.Err }
func (e *ContractError) Cause() error  { return e.Err }

func contractPanic(fn string, err error) {
	panic(&ContractError{Op: fn, Err: err})
}

// Recover calls fn and returns a *ContractError raised inside it as an
// ordinary error. Other panics propagate.
func Recover(fn func() (Expr, error)) (result Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			result, err = nil, ce
		}
	}()
	return fn()
}
