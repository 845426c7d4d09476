package symcalc

import (
	"math"
	"math/big"
)

// fastpow raises base to n by repeated squaring.
func fastpow(base Result, n Index) Result {
	if n < 0 {
		return 1 / fastpow(base, -n)
	}
	result := Result(1)
	for n > 0 {
		if n&1 == 1 {
			result *= base
		}
		base *= base
		n >>= 1
	}
	return result
}

// ipow returns base^n for n >= 0. ok is false when the result does not fit
// in an Index.
func ipow(base, n Index) (result Index, ok bool) {
	result = 1
	for {
		if n&1 == 1 {
			if result, ok = mulIndex(result, base); !ok {
				return 0, false
			}
		}
		n >>= 1
		if n == 0 {
			return result, true
		}
		if base, ok = mulIndex(base, base); !ok {
			return 0, false
		}
	}
}

func mulIndex(a, b Index) (Index, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func addIndex(a, b Index) (Index, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func gcd(a, b Index) Index {
	x, y := absIndex(a), absIndex(b)
	for y != 0 {
		x, y = y, x%y
	}
	return Index(x)
}

// absIndex is |n| as a uint64, which holds |MinInt64| too.
func absIndex(n Index) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

// ============================================================
// Wide fallback for exact arithmetic
// ============================================================

func bigRat(num, den Index) *big.Rat { return big.NewRat(num, den) }

// fromBig returns r as a Rational when numerator and denominator fit in
// an Index after reduction, and as a Constant otherwise.
func fromBig(r *big.Rat) Expr {
	if r.Num().IsInt64() && r.Denom().IsInt64() {
		return R(r.Num().Int64(), r.Denom().Int64())
	}
	f, _ := r.Float64()
	return C(f)
}
