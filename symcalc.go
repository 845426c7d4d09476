// Package symcalc is a symbolic algebra engine for piecewise polynomial
// expressions over numbered dimensions.
//
// Expressions are immutable trees built from exact numbers (Zero, One,
// Rational), opaque numeric constants (Constant), store-backed placeholders
// (Stored), monomials of a single variable (Monomial), binary operator nodes
// (Add, Sub, Mul, Div) and piecewise functions along one dimension (Branch,
// Interval). Every expression can be differentiated, integrated (Primitive,
// Integrate), evaluated and transformed (ChangeDim, Offset, Reverse, Deform,
// Distribute).
//
// Dimensions are 1-indexed: x_1 is the first free variable.
//
// Arithmetic is done through the simplifying constructors AddOf, SubOf,
// MulOf, DivOf and PowOf, which fold exact numbers, merge monomials and
// refine piecewise functions instead of building degenerate nodes.
package symcalc

import "math"

// Result is the numeric type expressions evaluate to.
type Result = float64

// Index is the integer type used for dimensions, monomial orders and
// rational numerators and denominators.
type Index = int64

// ============================================================
// Core Expression Interface
// ============================================================

// Expr is a symbolic expression node.
type Expr interface {
	// HasDimension reports whether the expression depends on x_d.
	HasDimension(d Index) bool
	// IsConstant reports whether the expression depends on no dimension.
	IsConstant() bool
	// MinDimension and MaxDimension bound the dimensions the expression
	// depends on. Both are 0 for constants.
	MinDimension() Index
	MaxDimension() Index
	// IntegralComplexity is a cost estimate for integrating along x_d.
	IntegralComplexity(d Index) Index
	// IsContinuous reports whether the expression is continuous along x_d.
	IsContinuous(d Index) bool

	Primitive(d Index) (Expr, error)
	Derivative(d Index) Expr
	EvaluateAlongDim(d Index, val Expr) Expr
	// Eval binds args positionally: args[0] is x_1, args[1] is x_2 and so
	// on. Missing or nil arguments leave their dimension free.
	Eval(args ...Expr) Expr
	// EvalStore is Eval with Stored placeholders resolved from s.
	EvalStore(s Store, args ...Expr) Expr

	ChangeDim(from, to Index) Expr
	Offset(d Index, off Expr) Expr
	Reverse(d Index) Expr
	Deform(d Index, fact Expr) Expr
	Distribute(n int) Expr

	Simplify() Expr
	// Numeric converts a fully numeric expression to a Result.
	Numeric() (Result, bool)
	Equal(other Expr) bool
	String() string
	LaTeX() string

	exprType() string
	toJSON() map[string]interface{}
}

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

// ============================================================
// Operators
// ============================================================

type op byte

const (
	opAdd op = iota
	opSub
	opMul
	opDiv
)

func (o op) symbol() string {
	switch o {
	case opAdd:
		return "+"
	case opSub:
		return "-"
	case opMul:
		return "*"
	}
	return "/"
}

func (o op) name() string {
	switch o {
	case opAdd:
		return "add"
	case opSub:
		return "sub"
	case opMul:
		return "mul"
	}
	return "div"
}

// apply combines a and b with the simplifying constructor for o.
func apply(o op, a, b Expr) Expr {
	switch o {
	case opAdd:
		return AddOf(a, b)
	case opSub:
		return SubOf(a, b)
	case opMul:
		return MulOf(a, b)
	}
	return DivOf(a, b)
}

func applyNumeric(o op, x, y Result) Result {
	switch o {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	case opMul:
		return x * y
	}
	return x / y
}

// ============================================================
// Dimension bookkeeping
// ============================================================

// unbounded is the integral complexity of expressions that cannot be
// integrated along a dimension.
const unbounded Index = math.MaxInt64

func addComplexity(a, b Index) Index {
	if a > unbounded-b {
		return unbounded
	}
	return a + b
}

func scaleComplexity(c Index) Index {
	if c > unbounded/4 {
		return unbounded
	}
	return 4 * c
}

func maxIndex(a, b Index) Index {
	if a > b {
		return a
	}
	return b
}

// minDim ignores 0, which constants report.
func minDim(a, b Index) Index {
	switch {
	case a == 0:
		return b
	case b == 0:
		return a
	case a < b:
		return a
	}
	return b
}

func checkDim(fn string, d Index) {
	if d < 1 {
		contractPanic(fn, ErrDimension)
	}
}
