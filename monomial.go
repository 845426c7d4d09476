package symcalc

import (
	"fmt"

	"github.com/pkg/errors"
)

// ============================================================
// Var: free variable tag
// ============================================================

// Var names the free variable x_Dim. It is used to pick the integration
// axis and converts to and from Monomial{1, Dim}.
type Var struct{ Dim Index }

// V returns the variable x_dim. It panics if dim < 1.
func V(dim Index) Var {
	checkDim("V", dim)
	return Var{Dim: dim}
}

func (v Var) Monomial() Monomial { return Monomial{Order: 1, Dim: v.Dim} }
func (v Var) String() string     { return fmt.Sprintf("x%d", v.Dim) }

// VarOf returns the variable of a first order monomial.
func VarOf(m Monomial) (Var, bool) { return Var{Dim: m.Dim}, m.Order == 1 }

// ============================================================
// Monomial: x_Dim ^ Order
// ============================================================

type Monomial struct{ Order, Dim Index }

// X returns x_dim. It panics if dim < 1.
func X(dim Index) Monomial {
	checkDim("X", dim)
	return Monomial{Order: 1, Dim: dim}
}

// Mono returns x_dim^order, or One for order 0.
func Mono(order, dim Index) Expr {
	checkDim("Mono", dim)
	if order == 0 {
		return One{}
	}
	return Monomial{Order: order, Dim: dim}
}

func (m Monomial) HasDimension(d Index) bool { return d == m.Dim }
func (m Monomial) IsConstant() bool          { return m.Order == 0 }
func (m Monomial) MinDimension() Index       { return m.Dim }
func (m Monomial) MaxDimension() Index       { return m.Dim }
func (Monomial) IsContinuous(Index) bool     { return true }
func (m Monomial) Distribute(int) Expr       { return m }
func (m Monomial) Simplify() Expr            { return Mono(m.Order, m.Dim) }
func (Monomial) exprType() string            { return "monomial" }

func (m Monomial) IntegralComplexity(d Index) Index {
	if d == m.Dim && m.Order == -1 {
		return unbounded
	}
	return 1
}

func (m Monomial) Primitive(d Index) (Expr, error) {
	if d != m.Dim {
		return MulOf(X(d), m), nil
	}
	if m.Order == -1 {
		return nil, errors.Wrapf(ErrLogarithm, "primitive of %s along x%d", m, d)
	}
	return MulOf(frac(1, m.Order+1), Mono(m.Order+1, m.Dim)), nil
}

func (m Monomial) Derivative(d Index) Expr {
	switch {
	case d != m.Dim || m.Order == 0:
		return Zero{}
	case m.Order == 1:
		return One{}
	}
	return MulOf(I(m.Order), Mono(m.Order-1, m.Dim))
}

func (m Monomial) evaluate(val Expr) Expr { return PowOf(val, m.Order) }

func (m Monomial) EvaluateAlongDim(d Index, val Expr) Expr {
	if d != m.Dim {
		return m
	}
	return m.evaluate(val)
}

func (m Monomial) Eval(args ...Expr) Expr {
	if int(m.Dim) > len(args) || args[m.Dim-1] == nil {
		return m
	}
	return m.evaluate(args[m.Dim-1])
}

func (m Monomial) EvalStore(s Store, args ...Expr) Expr {
	r := m.Eval(args...)
	if _, same := r.(Monomial); same {
		return r
	}
	return r.EvalStore(s)
}

func (m Monomial) ChangeDim(from, to Index) Expr {
	if m.Dim != from {
		return m
	}
	return Mono(m.Order, to)
}

func (m Monomial) Offset(d Index, off Expr) Expr {
	if d != m.Dim {
		return m
	}
	return PowOf(AddOf(X(m.Dim), off), m.Order)
}

func (m Monomial) Reverse(d Index) Expr {
	if d != m.Dim || m.Order%2 == 0 {
		return m
	}
	return Neg(m)
}

func (m Monomial) Deform(d Index, fact Expr) Expr {
	if d != m.Dim {
		return m
	}
	return MulOf(PowOf(fact, m.Order), m)
}

func (m Monomial) Numeric() (Result, bool) {
	if m.Order == 0 {
		return 1, true
	}
	return 0, false
}

func (m Monomial) Equal(other Expr) bool {
	o, ok := other.(Monomial)
	return ok && o == m
}

func (m Monomial) String() string {
	if m.Order == 1 {
		return fmt.Sprintf("x%d", m.Dim)
	}
	return fmt.Sprintf("x%d^%d", m.Dim, m.Order)
}

func (m Monomial) LaTeX() string {
	if m.Order == 1 {
		return fmt.Sprintf("x_{%d}", m.Dim)
	}
	return fmt.Sprintf("x_{%d}^{%d}", m.Dim, m.Order)
}

func (m Monomial) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "monomial", "order": m.Order, "dim": m.Dim}
}
