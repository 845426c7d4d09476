package symcalc

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ============================================================
// Zero: additive identity
// ============================================================

type Zero struct{}

func (Zero) HasDimension(Index) bool              { return false }
func (Zero) IsConstant() bool                     { return true }
func (Zero) MinDimension() Index                  { return 0 }
func (Zero) MaxDimension() Index                  { return 0 }
func (Zero) IntegralComplexity(Index) Index       { return 0 }
func (Zero) IsContinuous(Index) bool              { return true }
func (Zero) Primitive(Index) (Expr, error)        { return Zero{}, nil }
func (Zero) Derivative(Index) Expr                { return Zero{} }
func (z Zero) EvaluateAlongDim(Index, Expr) Expr  { return z }
func (z Zero) Eval(...Expr) Expr                  { return z }
func (z Zero) EvalStore(Store, ...Expr) Expr      { return z }
func (z Zero) ChangeDim(_, _ Index) Expr          { return z }
func (z Zero) Offset(Index, Expr) Expr            { return z }
func (z Zero) Reverse(Index) Expr                 { return z }
func (z Zero) Deform(Index, Expr) Expr            { return z }
func (z Zero) Distribute(int) Expr                { return z }
func (z Zero) Simplify() Expr                     { return z }
func (Zero) Numeric() (Result, bool)              { return 0, true }
func (Zero) Equal(other Expr) bool                { _, ok := other.(Zero); return ok }
func (Zero) String() string                       { return "0" }
func (Zero) LaTeX() string                        { return "0" }
func (Zero) exprType() string                     { return "zero" }
func (Zero) toJSON() map[string]interface{}       { return map[string]interface{}{"type": "zero"} }

// ============================================================
// One: multiplicative identity
// ============================================================

type One struct{}

func (One) HasDimension(Index) bool             { return false }
func (One) IsConstant() bool                    { return true }
func (One) MinDimension() Index                 { return 0 }
func (One) MaxDimension() Index                 { return 0 }
func (One) IntegralComplexity(Index) Index      { return 0 }
func (One) IsContinuous(Index) bool             { return true }
func (One) Primitive(d Index) (Expr, error)     { return X(d), nil }
func (One) Derivative(Index) Expr               { return Zero{} }
func (o One) EvaluateAlongDim(Index, Expr) Expr { return o }
func (o One) Eval(...Expr) Expr                 { return o }
func (o One) EvalStore(Store, ...Expr) Expr     { return o }
func (o One) ChangeDim(_, _ Index) Expr         { return o }
func (o One) Offset(Index, Expr) Expr           { return o }
func (o One) Reverse(Index) Expr                { return o }
func (o One) Deform(Index, Expr) Expr           { return o }
func (o One) Distribute(int) Expr               { return o }
func (o One) Simplify() Expr                    { return o }
func (One) Numeric() (Result, bool)             { return 1, true }
func (One) Equal(other Expr) bool               { _, ok := other.(One); return ok }
func (One) String() string                      { return "1" }
func (One) LaTeX() string                       { return "1" }
func (One) exprType() string                    { return "one" }
func (One) toJSON() map[string]interface{}      { return map[string]interface{}{"type": "one"} }

// ============================================================
// Rational: exact fraction Num/Den with Den > 0
// ============================================================

type Rational struct{ Num, Den Index }

// R returns n/d in lowest terms, collapsing to Zero or One where it can.
// It panics if d is not positive.
func R(n, d Index) Expr {
	if d <= 0 {
		contractPanic("R", ErrDenominator)
	}
	if n == 0 {
		return Zero{}
	}
	g := gcd(n, d)
	n, d = n/g, d/g
	if n == 1 && d == 1 {
		return One{}
	}
	return Rational{Num: n, Den: d}
}

// I returns the integer n as an exact number.
func I(n Index) Expr { return R(n, 1) }

// frac is R with the sign moved to the numerator.
func frac(n, d Index) Expr {
	if d == 0 {
		contractPanic("frac", ErrInfinity)
	}
	if d < 0 {
		if n == math.MinInt64 || d == math.MinInt64 {
			return fromBig(new(big.Rat).SetFrac(big.NewInt(n), big.NewInt(d)))
		}
		n, d = -n, -d
	}
	return R(n, d)
}

func (Rational) HasDimension(Index) bool             { return false }
func (Rational) IsConstant() bool                    { return true }
func (Rational) MinDimension() Index                 { return 0 }
func (Rational) MaxDimension() Index                 { return 0 }
func (Rational) IntegralComplexity(Index) Index      { return 0 }
func (Rational) IsContinuous(Index) bool             { return true }
func (r Rational) Primitive(d Index) (Expr, error)   { return MulOf(r, X(d)), nil }
func (Rational) Derivative(Index) Expr               { return Zero{} }
func (r Rational) EvaluateAlongDim(Index, Expr) Expr { return r }
func (r Rational) Eval(...Expr) Expr                 { return r }
func (r Rational) EvalStore(Store, ...Expr) Expr     { return r }
func (r Rational) ChangeDim(_, _ Index) Expr         { return r }
func (r Rational) Offset(Index, Expr) Expr           { return r }
func (r Rational) Reverse(Index) Expr                { return r }
func (r Rational) Deform(Index, Expr) Expr           { return r }
func (r Rational) Distribute(int) Expr               { return r }
func (r Rational) Simplify() Expr                    { return R(r.Num, r.Den) }
func (r Rational) Numeric() (Result, bool)           { return Result(r.Num) / Result(r.Den), true }
func (Rational) exprType() string                    { return "rational" }

func (r Rational) Equal(other Expr) bool {
	o, ok := other.(Rational)
	return ok && o == r
}

func (r Rational) String() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

func (r Rational) LaTeX() string {
	if r.Den == 1 {
		return strconv.FormatInt(r.Num, 10)
	}
	if r.Num < 0 {
		return fmt.Sprintf("-\\frac{%d}{%d}", -r.Num, r.Den)
	}
	return fmt.Sprintf("\\frac{%d}{%d}", r.Num, r.Den)
}

func (r Rational) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "rational", "num": r.Num, "den": r.Den}
}

// ============================================================
// Constant: inexact numeric value
// ============================================================

type Constant struct{ Val Result }

func C(v Result) Constant { return Constant{Val: v} }

func (Constant) HasDimension(Index) bool             { return false }
func (Constant) IsConstant() bool                    { return true }
func (Constant) MinDimension() Index                 { return 0 }
func (Constant) MaxDimension() Index                 { return 0 }
func (Constant) IntegralComplexity(Index) Index      { return 0 }
func (Constant) IsContinuous(Index) bool             { return true }
func (c Constant) Primitive(d Index) (Expr, error)   { return MulOf(c, X(d)), nil }
func (Constant) Derivative(Index) Expr               { return Zero{} }
func (c Constant) EvaluateAlongDim(Index, Expr) Expr { return c }
func (c Constant) Eval(...Expr) Expr                 { return c }
func (c Constant) EvalStore(Store, ...Expr) Expr     { return c }
func (c Constant) ChangeDim(_, _ Index) Expr         { return c }
func (c Constant) Offset(Index, Expr) Expr           { return c }
func (c Constant) Reverse(Index) Expr                { return c }
func (c Constant) Deform(Index, Expr) Expr           { return c }
func (c Constant) Distribute(int) Expr               { return c }
func (c Constant) Simplify() Expr                    { return c }
func (c Constant) Numeric() (Result, bool)           { return c.Val, true }
func (c Constant) String() string                    { return strconv.FormatFloat(c.Val, 'g', -1, 64) }
func (c Constant) LaTeX() string                     { return c.String() }
func (Constant) exprType() string                    { return "constant" }

func (c Constant) Equal(other Expr) bool {
	o, ok := other.(Constant)
	return ok && o.Val == c.Val
}

func (c Constant) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "constant", "value": c.Val}
}

// ============================================================
// Exactness and comparison
// ============================================================

// IsExact reports whether e is Zero, One or a Rational.
func IsExact(e Expr) bool {
	_, _, ok := ratOf(e)
	return ok
}

// IsNumeric reports whether e is an exact number or a Constant.
func IsNumeric(e Expr) bool {
	if _, ok := e.(Constant); ok {
		return true
	}
	return IsExact(e)
}

func ratOf(e Expr) (num, den Index, ok bool) {
	switch v := e.(type) {
	case Zero:
		return 0, 1, true
	case One:
		return 1, 1, true
	case Rational:
		return v.Num, v.Den, true
	}
	return 0, 0, false
}

func isZero(e Expr) bool {
	n, _, ok := ratOf(e)
	return ok && n == 0
}

func isOne(e Expr) bool {
	n, d, ok := ratOf(e)
	return ok && n == d
}

// Compare returns -1, 0 or 1 as a is less than, equal to or greater than
// b. Exact operands are compared by cross multiplication; anything else
// numeric is compared as a Result. Compare panics if either operand is not
// numeric.
func Compare(a, b Expr) int {
	an, ad, aok := ratOf(a)
	bn, bd, bok := ratOf(b)
	if aok && bok {
		l, lok := mulIndex(an, bd)
		r, rok := mulIndex(bn, ad)
		if !lok || !rok {
			return bigRat(an, ad).Cmp(bigRat(bn, bd))
		}
		switch {
		case l < r:
			return -1
		case l > r:
			return 1
		}
		return 0
	}
	x, xok := a.Numeric()
	y, yok := b.Numeric()
	if !xok || !yok {
		contractPanic("Compare", ErrNotNumeric)
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func Less(a, b Expr) bool       { return Compare(a, b) < 0 }
func Greater(a, b Expr) bool    { return Compare(a, b) > 0 }
func EqualValue(a, b Expr) bool { return Compare(a, b) == 0 }

// exactOp computes a op b on fractions. Results that overflow an Index are
// computed wide; they stay exact if they fit after reduction and become a
// Constant otherwise.
func exactOp(o op, an, ad, bn, bd Index) Expr {
	if o == opDiv && bn == 0 {
		contractPanic("DivOf", ErrInfinity)
	}
	if r, ok := narrowOp(o, an, ad, bn, bd); ok {
		return r
	}
	a, b := bigRat(an, ad), bigRat(bn, bd)
	out := new(big.Rat)
	switch o {
	case opAdd:
		out.Add(a, b)
	case opSub:
		out.Sub(a, b)
	case opMul:
		out.Mul(a, b)
	default:
		out.Quo(a, b)
	}
	return fromBig(out)
}

func narrowOp(o op, an, ad, bn, bd Index) (Expr, bool) {
	switch o {
	case opAdd, opSub:
		if o == opSub {
			if bn == math.MinInt64 {
				return nil, false
			}
			bn = -bn
		}
		l, ok1 := mulIndex(an, bd)
		r, ok2 := mulIndex(bn, ad)
		d, ok3 := mulIndex(ad, bd)
		if !ok1 || !ok2 || !ok3 {
			return nil, false
		}
		n, ok := addIndex(l, r)
		if !ok {
			return nil, false
		}
		return R(n, d), true
	case opMul:
		n, ok1 := mulIndex(an, bn)
		d, ok2 := mulIndex(ad, bd)
		if !ok1 || !ok2 {
			return nil, false
		}
		return R(n, d), true
	}
	n, ok1 := mulIndex(an, bd)
	d, ok2 := mulIndex(ad, bn)
	if !ok1 || !ok2 {
		return nil, false
	}
	return frac(n, d), true
}
