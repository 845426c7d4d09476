package symcalc

import (
	"github.com/pkg/errors"
)

// ============================================================
// Definite integration
// ============================================================

// Bounds is one integration axis with its limits. Start and End may
// depend on variables integrated later.
type Bounds struct {
	Var        Var
	Start, End Expr
}

func Over(v Var, start, end Expr) Bounds { return Bounds{Var: v, Start: start, End: end} }

// Integrate returns the integral of f over x_v from start to end. When f
// does not depend on x_v the result is f*(end-start); otherwise it is
// P(end) - P(start) for the primitive P along x_v.
func Integrate(f Expr, v Var, start, end Expr) (Expr, error) {
	d := v.Dim
	if !f.HasDimension(d) {
		return MulOf(f, SubOf(end, start)), nil
	}
	prim, err := f.Primitive(d)
	if err != nil {
		return nil, errors.Wrapf(err, "integrating %s over x%d", f, d)
	}
	return SubOf(prim.EvaluateAlongDim(d, end), prim.EvaluateAlongDim(d, start)), nil
}

// IntegrateN integrates over each axis in turn, innermost first.
func IntegrateN(f Expr, bounds ...Bounds) (Expr, error) {
	result := f
	for _, b := range bounds {
		var err error
		if result, err = Integrate(result, b.Var, b.Start, b.End); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// NumericIntegrate approximates the integral of f over x_v from a to b with
// 10-point Gauss–Legendre quadrature. f must be numeric once x_v is bound.
func NumericIntegrate(f Expr, v Var, a, b Result) (Result, error) {
	nodes := []Result{
		-0.9739065285, -0.8650633667, -0.6794095683,
		-0.4333953941, -0.1488743390, 0.1488743390,
		0.4333953941, 0.6794095683, 0.8650633667, 0.9739065285,
	}
	weights := []Result{
		0.0666713443, 0.1494513492, 0.2190863625,
		0.2692667193, 0.2955242247, 0.2955242247,
		0.2692667193, 0.2190863625, 0.1494513492, 0.0666713443,
	}
	sum := 0.0
	mid := (a + b) / 2
	half := (b - a) / 2
	for i, t := range nodes {
		xi := mid + half*t
		y, ok := f.EvaluateAlongDim(v.Dim, C(xi)).Numeric()
		if !ok {
			return 0, errors.Wrapf(ErrNotNumeric, "%s at x%d = %g", f, v.Dim, xi)
		}
		sum += weights[i] * y
	}
	return half * sum, nil
}
