package symcalc

import (
	"github.com/pkg/errors"
)

// ============================================================
// binary: shared body of the operator nodes
// ============================================================

type binary struct {
	op  op
	ops holder
}

// newNode builds an operator node without simplification.
func newNode(o op, a, b Expr) Expr {
	bin := binary{op: o, ops: hold(a, b)}
	switch o {
	case opAdd:
		return Add{bin}
	case opSub:
		return Sub{bin}
	case opMul:
		return Mul{bin}
	}
	return Div{bin}
}

func (b binary) F1() Expr    { return b.ops.at(1) }
func (b binary) F2() Expr    { return b.ops.at(2) }
func (b binary) bin() binary { return b }

// substitute reapplies the node's operator to two transformed operands.
func (b binary) substitute(l, r Expr) Expr { return apply(b.op, l, r) }

func (b binary) both(f func(Expr) Expr) Expr { return b.substitute(f(b.F1()), f(b.F2())) }

func (b binary) HasDimension(d Index) bool {
	return b.F1().HasDimension(d) || b.F2().HasDimension(d)
}

func (b binary) IsConstant() bool    { return b.F1().IsConstant() && b.F2().IsConstant() }
func (b binary) MinDimension() Index { return minDim(b.F1().MinDimension(), b.F2().MinDimension()) }
func (b binary) MaxDimension() Index { return maxIndex(b.F1().MaxDimension(), b.F2().MaxDimension()) }

func (b binary) IsContinuous(d Index) bool {
	return b.F1().IsContinuous(d) && b.F2().IsContinuous(d)
}

func (b binary) EvaluateAlongDim(d Index, val Expr) Expr {
	return b.both(func(e Expr) Expr { return e.EvaluateAlongDim(d, val) })
}

func (b binary) Eval(args ...Expr) Expr {
	return b.both(func(e Expr) Expr { return e.Eval(args...) })
}

func (b binary) EvalStore(s Store, args ...Expr) Expr {
	return b.both(func(e Expr) Expr { return e.EvalStore(s, args...) })
}

func (b binary) ChangeDim(from, to Index) Expr {
	return b.both(func(e Expr) Expr { return e.ChangeDim(from, to) })
}

func (b binary) Offset(d Index, off Expr) Expr {
	return b.both(func(e Expr) Expr { return e.Offset(d, off) })
}

func (b binary) Reverse(d Index) Expr {
	return b.both(func(e Expr) Expr { return e.Reverse(d) })
}

func (b binary) Deform(d Index, fact Expr) Expr {
	return b.both(func(e Expr) Expr { return e.Deform(d, fact) })
}

func (b binary) Simplify() Expr {
	return b.both(func(e Expr) Expr { return e.Simplify() })
}

func (b binary) Numeric() (Result, bool) {
	x, ok := b.F1().Numeric()
	if !ok {
		return 0, false
	}
	y, ok := b.F2().Numeric()
	if !ok {
		return 0, false
	}
	return applyNumeric(b.op, x, y), true
}

func (b binary) Equal(other Expr) bool {
	o, ok := other.(interface{ bin() binary })
	if !ok {
		return false
	}
	ob := o.bin()
	return ob.op == b.op && b.F1().Equal(ob.F1()) && b.F2().Equal(ob.F2())
}

func (b binary) exprType() string { return b.op.name() }

func (b binary) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":  b.op.name(),
		"left":  b.F1().toJSON(),
		"right": b.F2().toJSON(),
	}
}

func precedence(e Expr) int {
	if o, ok := e.(interface{ bin() binary }); ok {
		if op := o.bin().op; op == opAdd || op == opSub {
			return 1
		}
		return 2
	}
	return 3
}

// operands renders both children, parenthesizing where precedence needs it.
func (b binary) operands(render func(Expr) string, lparen, rparen string) (string, string) {
	own := 1
	if b.op == opMul || b.op == opDiv {
		own = 2
	}
	l, r := render(b.F1()), render(b.F2())
	if precedence(b.F1()) < own {
		l = lparen + l + rparen
	}
	rp := precedence(b.F2())
	if rp < own || (rp == own && (b.op == opSub || b.op == opDiv)) {
		r = lparen + r + rparen
	}
	return l, r
}

func (b binary) String() string {
	l, r := b.operands(String, "(", ")")
	if b.op == opMul || b.op == opDiv {
		return l + b.op.symbol() + r
	}
	return l + " " + b.op.symbol() + " " + r
}

func (b binary) LaTeX() string {
	switch b.op {
	case opDiv:
		return "\\frac{" + b.F1().LaTeX() + "}{" + b.F2().LaTeX() + "}"
	case opMul:
		l, r := b.operands(LaTeX, "\\left(", "\\right)")
		return l + " \\cdot " + r
	}
	l, r := b.operands(LaTeX, "\\left(", "\\right)")
	return l + " " + b.op.symbol() + " " + r
}

func (b binary) linearPrimitive(d Index) (Expr, error) {
	p1, err := b.F1().Primitive(d)
	if err != nil {
		return nil, err
	}
	p2, err := b.F2().Primitive(d)
	if err != nil {
		return nil, err
	}
	return b.substitute(p1, p2), nil
}

// distributable reports whether e is a sum or difference and returns it.
func distributable(e Expr) (binary, bool) {
	switch v := e.(type) {
	case Add:
		return v.binary, true
	case Sub:
		return v.binary, true
	}
	return binary{}, false
}

// ============================================================
// Add: f1 + f2
// ============================================================

type Add struct{ binary }

func (a Add) IntegralComplexity(d Index) Index {
	return maxIndex(a.F1().IntegralComplexity(d), a.F2().IntegralComplexity(d))
}

func (a Add) Primitive(d Index) (Expr, error) { return a.linearPrimitive(d) }

func (a Add) Derivative(d Index) Expr {
	return AddOf(a.F1().Derivative(d), a.F2().Derivative(d))
}

func (a Add) Distribute(n int) Expr {
	if n <= 0 {
		return a
	}
	return a.both(func(e Expr) Expr { return e.Distribute(n - 1) })
}

// ============================================================
// Sub: f1 - f2
// ============================================================

type Sub struct{ binary }

func (s Sub) IntegralComplexity(d Index) Index {
	return maxIndex(s.F1().IntegralComplexity(d), s.F2().IntegralComplexity(d))
}

func (s Sub) Primitive(d Index) (Expr, error) { return s.linearPrimitive(d) }

func (s Sub) Derivative(d Index) Expr {
	return SubOf(s.F1().Derivative(d), s.F2().Derivative(d))
}

func (s Sub) Distribute(n int) Expr {
	if n <= 0 {
		return s
	}
	return s.both(func(e Expr) Expr { return e.Distribute(n - 1) })
}

// ============================================================
// Mul: f1 * f2
// ============================================================

type Mul struct{ binary }

func (m Mul) IntegralComplexity(d Index) Index {
	return scaleComplexity(addComplexity(m.F1().IntegralComplexity(d), m.F2().IntegralComplexity(d)))
}

func (m Mul) Derivative(d Index) Expr {
	f1, f2 := m.F1(), m.F2()
	return AddOf(MulOf(f1.Derivative(d), f2), MulOf(f1, f2.Derivative(d)))
}

func (m Mul) Primitive(d Index) (Expr, error) {
	f1, f2 := m.F1(), m.F2()
	h1, h2 := f1.HasDimension(d), f2.HasDimension(d)
	switch {
	case h1 && h2:
		return byParts(f1, f2, d)
	case h1:
		p, err := f1.Primitive(d)
		if err != nil {
			return nil, err
		}
		return MulOf(p, f2), nil
	case h2:
		p, err := f2.Primitive(d)
		if err != nil {
			return nil, err
		}
		return MulOf(f1, p), nil
	}
	return MulOf(X(d), m), nil
}

// byParts integrates f1*f2 along x_d either as P(f1)*f2 - ∫P(f1)*f2' or as
// f1*P(f2) - ∫f1'*P(f2). The first form is used when its cross term is no
// more complex and both derivatives are continuous, or when only f2' is
// continuous. When neither derivative is continuous the result is Zero.
func byParts(f1, f2 Expr, d Index) (Expr, error) {
	prim1, err1 := f1.Primitive(d)
	prim2, err2 := f2.Primitive(d)
	deriv1, deriv2 := f1.Derivative(d), f2.Derivative(d)
	cont1, cont2 := deriv1.IsContinuous(d), deriv2.IsContinuous(d)

	var cross1, cross2 Expr
	c1, c2 := unbounded, unbounded
	if err1 == nil {
		cross1 = MulOf(prim1, deriv2)
		c1 = cross1.IntegralComplexity(d)
	}
	if err2 == nil {
		cross2 = MulOf(deriv1, prim2)
		c2 = cross2.IntegralComplexity(d)
	}

	switch {
	case err1 == nil && ((c1 <= c2 && cont1 && cont2) || (!cont1 && cont2)):
		rest, err := cross1.Primitive(d)
		if err != nil {
			return nil, err
		}
		return SubOf(MulOf(prim1, f2), rest), nil
	case err2 == nil && cont1:
		rest, err := cross2.Primitive(d)
		if err != nil {
			return nil, err
		}
		return SubOf(MulOf(f1, prim2), rest), nil
	case err1 != nil:
		return nil, err1
	case err2 != nil:
		return nil, err2
	}
	return Zero{}, nil
}

func (m Mul) Distribute(n int) Expr {
	if n <= 0 {
		return m
	}
	f1, f2 := m.F1(), m.F2()
	l, lok := distributable(f1)
	r, rok := distributable(f2)
	switch {
	case lok && rok:
		a, b := l.F1(), l.F2()
		c, e := r.F1(), r.F2()
		first := r.substitute(MulOf(a, c), MulOf(a, e))
		second := r.substitute(MulOf(b, c), MulOf(b, e))
		return l.substitute(first, second).Distribute(n - 1)
	case lok:
		return l.substitute(MulOf(l.F1(), f2), MulOf(l.F2(), f2)).Distribute(n - 1)
	case rok:
		return r.substitute(MulOf(f1, r.F1()), MulOf(f1, r.F2())).Distribute(n - 1)
	}
	return MulOf(f1.Distribute(n-1), f2.Distribute(n-1))
}

// ============================================================
// Div: f1 / f2
// ============================================================

type Div struct{ binary }

func (q Div) IntegralComplexity(d Index) Index {
	return scaleComplexity(addComplexity(q.F1().IntegralComplexity(d), q.F2().IntegralComplexity(d)))
}

func (q Div) Derivative(d Index) Expr {
	f1, f2 := q.F1(), q.F2()
	return SubOf(
		DivOf(f1.Derivative(d), f2),
		DivOf(MulOf(f1, f2.Derivative(d)), MulOf(f2, f2)),
	)
}

func (q Div) Primitive(d Index) (Expr, error) {
	if q.F2().HasDimension(d) {
		return nil, errors.Wrapf(ErrReciprocal, "primitive of %s along x%d", q, d)
	}
	p, err := q.F1().Primitive(d)
	if err != nil {
		return nil, err
	}
	return DivOf(p, q.F2()), nil
}

// Distribute splits the numerator only.
func (q Div) Distribute(n int) Expr {
	if n <= 0 {
		return q
	}
	f2 := q.F2()
	if l, ok := distributable(q.F1()); ok {
		return l.substitute(DivOf(l.F1(), f2), DivOf(l.F2(), f2)).Distribute(n - 1)
	}
	return DivOf(q.F1().Distribute(n-1), f2.Distribute(n-1))
}
