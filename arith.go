package symcalc

// ============================================================
// Simplifying constructors
// ============================================================

// AddOf returns a + b.
func AddOf(a, b Expr) Expr {
	switch {
	case isZero(a):
		return b
	case isZero(b):
		return a
	}
	if r, ok := foldNumbers(opAdd, a, b); ok {
		return r
	}
	if r, ok := combinePiecewise(opAdd, a, b); ok {
		return r
	}
	if m, ok := a.(Monomial); ok && m.Equal(b) {
		return MulOf(I(2), m)
	}
	if r, ok := reassociate(opAdd, a, b); ok {
		return r
	}
	return newNode(opAdd, a, b)
}

// SubOf returns a - b.
func SubOf(a, b Expr) Expr {
	switch {
	case isZero(b):
		return a
	case isZero(a):
		return Neg(b)
	}
	if r, ok := foldNumbers(opSub, a, b); ok {
		return r
	}
	if a.Equal(b) {
		return Zero{}
	}
	if r, ok := combinePiecewise(opSub, a, b); ok {
		return r
	}
	if r, ok := reassociate(opSub, a, b); ok {
		return r
	}
	return newNode(opSub, a, b)
}

// MulOf returns a * b. Numbers are kept on the left.
func MulOf(a, b Expr) Expr {
	switch {
	case isZero(a) || isZero(b):
		return Zero{}
	case isOne(a):
		return b
	case isOne(b):
		return a
	}
	if r, ok := foldNumbers(opMul, a, b); ok {
		return r
	}
	if IsNumeric(b) && !IsNumeric(a) {
		a, b = b, a
	}
	if r, ok := combinePiecewise(opMul, a, b); ok {
		return r
	}
	if ma, ok := a.(Monomial); ok {
		if mb, ok := b.(Monomial); ok && ma.Dim == mb.Dim {
			return Mono(ma.Order+mb.Order, ma.Dim)
		}
	}
	if r, ok := reassociate(opMul, a, b); ok {
		return r
	}
	return newNode(opMul, a, b)
}

// DivOf returns a / b. It panics with ErrInfinity when b is exactly zero.
func DivOf(a, b Expr) Expr {
	switch {
	case isZero(b):
		contractPanic("DivOf", ErrInfinity)
	case isZero(a):
		return Zero{}
	case isOne(b):
		return a
	}
	if r, ok := foldNumbers(opDiv, a, b); ok {
		return r
	}
	if a.Equal(b) {
		return One{}
	}
	if r, ok := combinePiecewise(opDiv, a, b); ok {
		return r
	}
	if n, d, ok := ratOf(b); ok {
		return MulOf(frac(d, n), a)
	}
	if m, ok := b.(Monomial); ok {
		if ma, ok := a.(Monomial); ok && ma.Dim == m.Dim {
			return Mono(ma.Order-m.Order, m.Dim)
		}
		return MulOf(a, Mono(-m.Order, m.Dim))
	}
	if r, ok := reassociate(opDiv, a, b); ok {
		return r
	}
	return newNode(opDiv, a, b)
}

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(I(-1), e) }

// PowOf returns base^n by repeated squaring.
func PowOf(base Expr, n Index) Expr {
	switch {
	case n == 0:
		return One{}
	case isZero(base):
		if n < 0 {
			contractPanic("PowOf", ErrInfinity)
		}
		return Zero{}
	case isOne(base), n == 1:
		return base
	}
	switch v := base.(type) {
	case Rational:
		return ratPow(v, n)
	case Constant:
		return C(fastpow(v.Val, n))
	case Monomial:
		return Mono(v.Order*n, v.Dim)
	}
	if p, ok := segmentsOf(base); ok {
		return p.mapPieces(func(e Expr) Expr { return PowOf(e, n) })
	}
	if n < 0 {
		return DivOf(One{}, PowOf(base, -n))
	}
	half := PowOf(base, n/2)
	sq := MulOf(half, half)
	if n%2 == 1 {
		return MulOf(base, sq)
	}
	return sq
}

// ratPow raises a fraction to n, falling back to a Constant when the
// result does not fit in an Index.
func ratPow(v Rational, n Index) Expr {
	num, den := v.Num, v.Den
	if n < 0 {
		num, den, n = den, num, -n
	}
	pn, ok1 := ipow(num, n)
	pd, ok2 := ipow(den, n)
	if !ok1 || !ok2 {
		return C(fastpow(Result(num)/Result(den), n))
	}
	return frac(pn, pd)
}

// ============================================================
// Simplification rules
// ============================================================

// foldNumbers computes a op b when both are numbers. The result is exact
// when both operands are.
func foldNumbers(o op, a, b Expr) (Expr, bool) {
	an, ad, aok := ratOf(a)
	bn, bd, bok := ratOf(b)
	if aok && bok {
		return exactOp(o, an, ad, bn, bd), true
	}
	if !IsNumeric(a) || !IsNumeric(b) {
		return nil, false
	}
	x, _ := a.Numeric()
	y, _ := b.Numeric()
	return C(applyNumeric(o, x, y)), true
}

// reassociate folds a number into an operator node that has a numeric
// child, e.g. 2 + (x + 3) = 5 + x and (6*x)/2 = 3*x.
func reassociate(o op, a, b Expr) (Expr, bool) {
	switch {
	case IsNumeric(a) && !IsNumeric(b):
		return reassociateLeft(o, a, b)
	case IsNumeric(b) && !IsNumeric(a):
		return reassociateRight(o, a, b)
	}
	return nil, false
}

// reassociateLeft handles val op f.
func reassociateLeft(o op, val, f Expr) (Expr, bool) {
	n, ok := f.(interface{ bin() binary })
	if !ok {
		return nil, false
	}
	g := n.bin()
	f1, f2 := g.F1(), g.F2()
	num1, num2 := IsNumeric(f1), IsNumeric(f2)
	if !num1 && !num2 {
		return nil, false
	}
	switch {
	case o == opAdd && g.op == opAdd:
		if num1 {
			return AddOf(AddOf(val, f1), f2), true
		}
		return AddOf(AddOf(val, f2), f1), true
	case o == opAdd && g.op == opSub:
		if num1 {
			return SubOf(AddOf(val, f1), f2), true
		}
		return AddOf(SubOf(val, f2), f1), true
	case o == opSub && g.op == opAdd:
		if num1 {
			return SubOf(SubOf(val, f1), f2), true
		}
		return SubOf(SubOf(val, f2), f1), true
	case o == opSub && g.op == opSub:
		if num1 {
			return AddOf(SubOf(val, f1), f2), true
		}
		return SubOf(AddOf(val, f2), f1), true
	case o == opMul && g.op == opMul:
		if num1 {
			return MulOf(MulOf(val, f1), f2), true
		}
		return MulOf(MulOf(val, f2), f1), true
	case o == opMul && g.op == opDiv:
		if num1 {
			return DivOf(MulOf(val, f1), f2), true
		}
		return MulOf(DivOf(val, f2), f1), true
	case o == opDiv && g.op == opMul:
		if num1 {
			return DivOf(DivOf(val, f1), f2), true
		}
		return DivOf(DivOf(val, f2), f1), true
	case o == opDiv && g.op == opDiv:
		if num1 {
			return MulOf(DivOf(val, f1), f2), true
		}
		return DivOf(MulOf(val, f2), f1), true
	}
	return nil, false
}

// reassociateRight handles f op val.
func reassociateRight(o op, f, val Expr) (Expr, bool) {
	if o == opAdd || o == opMul {
		return reassociateLeft(o, val, f)
	}
	n, ok := f.(interface{ bin() binary })
	if !ok {
		return nil, false
	}
	g := n.bin()
	f1, f2 := g.F1(), g.F2()
	num1, num2 := IsNumeric(f1), IsNumeric(f2)
	if !num1 && !num2 {
		return nil, false
	}
	switch {
	case o == opSub && g.op == opAdd:
		if num1 {
			return AddOf(SubOf(f1, val), f2), true
		}
		return AddOf(f1, SubOf(f2, val)), true
	case o == opSub && g.op == opSub:
		if num1 {
			return SubOf(SubOf(f1, val), f2), true
		}
		return SubOf(f1, AddOf(f2, val)), true
	case o == opDiv && g.op == opMul:
		if num1 {
			return MulOf(DivOf(f1, val), f2), true
		}
		return MulOf(f1, DivOf(f2, val)), true
	case o == opDiv && g.op == opDiv:
		if num1 {
			return DivOf(DivOf(f1, val), f2), true
		}
		return DivOf(f1, MulOf(f2, val)), true
	}
	return nil, false
}
