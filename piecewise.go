package symcalc

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================
// shape: shared body of Branch and Interval
// ============================================================

// shape is a piecewise function along x_dim: n pieces separated by n-1
// increasing cut points. Piece k covers the values left of cut k.
type shape struct {
	dim Index
	n   int
	ops holder // pieces first, then cuts
}

func newShape(dim Index, pieces, cuts []Expr) shape {
	return shape{dim: dim, n: len(pieces), ops: hold(append(append([]Expr(nil), pieces...), cuts...)...)}
}

// makePiecewise returns the node for pieces and cuts: a single piece is
// returned as is, all zero pieces collapse to Zero, two pieces make a
// Branch, three an Interval and more a sum of zero padded pieces (see
// segmentsOf).
func makePiecewise(dim Index, pieces, cuts []Expr) Expr {
	if allZero(pieces) {
		return Zero{}
	}
	switch len(pieces) {
	case 1:
		return pieces[0]
	case 2:
		return Branch{newShape(dim, pieces, cuts)}
	case 3:
		return Interval{newShape(dim, pieces, cuts)}
	}
	head := Interval{newShape(dim, []Expr{pieces[0], pieces[1], Zero{}}, cuts[:2])}
	tail := makePiecewise(dim, append([]Expr{Zero{}}, pieces[2:]...), cuts[1:])
	if isZero(tail) {
		return head
	}
	return newNode(opAdd, head, tail)
}

func asPiecewise(e Expr) (shape, bool) {
	switch v := e.(type) {
	case Branch:
		return v.shape, true
	case Interval:
		return v.shape, true
	}
	return shape{}, false
}

func (p shape) Dim() Index      { return p.dim }
func (p shape) pieces() []Expr  { return p.ops.span(1, p.n) }
func (p shape) cuts() []Expr    { return p.ops.span(p.n+1, p.ops.size()) }
func (p shape) piece(k int) Expr { return p.ops.at(k) }
func (p shape) cut(k int) Expr   { return p.ops.at(p.n + k) }

func (p shape) rebuild(pieces, cuts []Expr) Expr { return makePiecewise(p.dim, pieces, cuts) }

func mapExprs(es []Expr, f func(Expr) Expr) []Expr {
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = f(e)
	}
	return out
}

func (p shape) mapPieces(f func(Expr) Expr) Expr {
	return p.rebuild(mapExprs(p.pieces(), f), p.cuts())
}

func allZero(es []Expr) bool {
	for _, e := range es {
		if !isZero(e) {
			return false
		}
	}
	return true
}

func allExact(es []Expr) bool {
	for _, e := range es {
		if !IsExact(e) {
			return false
		}
	}
	return true
}

// uniform reports whether all pieces are the same exact value.
func (p shape) uniform() bool {
	pieces := p.pieces()
	if !IsExact(pieces[0]) {
		return false
	}
	for _, e := range pieces[1:] {
		if !e.Equal(pieces[0]) {
			return false
		}
	}
	return true
}

func (p shape) HasDimension(d Index) bool {
	if d == p.dim {
		return true
	}
	for _, e := range p.pieces() {
		if e.HasDimension(d) {
			return true
		}
	}
	return false
}

// IsConstant is false: the value depends on x_dim through the cuts even
// when every piece is constant.
func (p shape) IsConstant() bool { return false }

func (p shape) constantPieces() bool {
	for _, e := range p.pieces() {
		if !e.IsConstant() {
			return false
		}
	}
	return true
}

func (p shape) MinDimension() Index {
	m := p.dim
	for _, e := range p.pieces() {
		m = minDim(m, e.MinDimension())
	}
	return m
}

func (p shape) MaxDimension() Index {
	m := p.dim
	for _, e := range p.pieces() {
		m = maxIndex(m, e.MaxDimension())
	}
	return m
}

func (p shape) IntegralComplexity(d Index) Index {
	var m Index
	for _, e := range p.pieces() {
		m = maxIndex(m, e.IntegralComplexity(d))
	}
	return m
}

func (p shape) IsContinuous(d Index) bool {
	if d == p.dim && !p.uniform() {
		return false
	}
	for _, e := range p.pieces() {
		if !e.IsContinuous(d) {
			return false
		}
	}
	return true
}

// Primitive integrates piece by piece. Along the cut dimension every piece
// after the first is shifted so that the result is continuous at each cut:
// P_k = P_k - P_k(cut) + P_{k-1}(cut).
func (p shape) Primitive(d Index) (Expr, error) {
	pieces := p.pieces()
	switch {
	case allZero(pieces):
		return Zero{}, nil
	case p.uniform():
		return MulOf(pieces[0], X(d)), nil
	case !p.HasDimension(d):
		return MulOf(X(d), p.rebuild(pieces, p.cuts())), nil
	}
	prims := make([]Expr, len(pieces))
	for i, e := range pieces {
		prim, err := e.Primitive(d)
		if err != nil {
			return nil, errors.Wrapf(err, "piece %d", i+1)
		}
		prims[i] = prim
	}
	cuts := p.cuts()
	if d == p.dim {
		for k := 1; k < len(prims); k++ {
			c := cuts[k-1]
			prims[k] = AddOf(SubOf(prims[k], prims[k].EvaluateAlongDim(p.dim, c)), prims[k-1].EvaluateAlongDim(p.dim, c))
		}
	}
	return p.rebuild(prims, cuts), nil
}

// Derivative ignores the jumps at the cuts: a function with constant
// pieces has derivative Zero.
func (p shape) Derivative(d Index) Expr {
	if !p.HasDimension(d) || p.constantPieces() {
		return Zero{}
	}
	return p.mapPieces(func(e Expr) Expr { return e.Derivative(d) })
}

func (p shape) EvaluateAlongDim(d Index, val Expr) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.EvaluateAlongDim(d, val) })
	cuts := mapExprs(p.cuts(), func(e Expr) Expr { return e.EvaluateAlongDim(d, val) })
	if d != p.dim {
		return p.rebuild(pieces, cuts)
	}
	return p.at(val, pieces, cuts)
}

func (p shape) Eval(args ...Expr) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.Eval(args...) })
	cuts := mapExprs(p.cuts(), func(e Expr) Expr { return e.Eval(args...) })
	if int(p.dim) > len(args) || args[p.dim-1] == nil {
		return p.rebuild(pieces, cuts)
	}
	return p.at(args[p.dim-1], pieces, cuts)
}

func (p shape) EvalStore(s Store, args ...Expr) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.EvalStore(s, args...) })
	cuts := mapExprs(p.cuts(), func(e Expr) Expr { return e.EvalStore(s, args...) })
	if int(p.dim) > len(args) || args[p.dim-1] == nil {
		return p.rebuild(pieces, cuts)
	}
	return p.at(args[p.dim-1].EvalStore(s), pieces, cuts)
}

// at selects the piece for x_dim = val. A first order monomial moves the
// function onto that variable's axis. Other symbolic values leave the
// choice open.
func (p shape) at(val Expr, pieces, cuts []Expr) Expr {
	if r, ok := decide(val, pieces, cuts); ok {
		return r
	}
	if m, ok := val.(Monomial); ok && m.Order == 1 {
		return makePiecewise(m.Dim, pieces, cuts)
	}
	return makePiecewise(p.dim, pieces, cuts)
}

// decide picks the piece val falls in. At a cut the result is the mean of
// the two adjacent pieces. Exact values are compared exactly; Stored values
// defer the choice to a Conditional; other numbers are compared as Result
// and numeric pieces come back as Constant.
func decide(val Expr, pieces, cuts []Expr) (Expr, bool) {
	if IsExact(val) && allExact(cuts) {
		for k, c := range cuts {
			switch Compare(val, c) {
			case -1:
				return pieces[k], true
			case 0:
				return mean(pieces[k], pieces[k+1]), true
			}
		}
		return pieces[len(pieces)-1], true
	}

	stored := IsStored(val)
	for _, e := range append([]Expr{val}, cuts...) {
		switch {
		case IsStored(e):
			stored = true
		case !IsNumeric(e):
			return nil, false
		}
	}
	if stored {
		return Conditional{value: val, pieces: pieces, cuts: cuts}, true
	}

	x, _ := val.Numeric()
	for k, c := range cuts {
		y, _ := c.Numeric()
		switch {
		case x < y:
			return asConstant(pieces[k]), true
		case x == y:
			return asConstant(mean(pieces[k], pieces[k+1])), true
		}
	}
	return asConstant(pieces[len(pieces)-1]), true
}

func mean(a, b Expr) Expr { return MulOf(R(1, 2), AddOf(a, b)) }

func asConstant(e Expr) Expr {
	if v, ok := e.Numeric(); ok {
		return C(v)
	}
	return e
}

func (p shape) ChangeDim(from, to Index) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.ChangeDim(from, to) })
	dim := p.dim
	if dim == from {
		checkDim("ChangeDim", to)
		dim = to
	}
	return makePiecewise(dim, pieces, p.cuts())
}

func (p shape) Offset(d Index, off Expr) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.Offset(d, off) })
	cuts := p.cuts()
	if d == p.dim {
		cuts = mapExprs(cuts, func(c Expr) Expr { return SubOf(c, off) })
	}
	return p.rebuild(pieces, cuts)
}

// Reverse reflects x_d. Along the cut dimension the piece order flips and
// the cuts change sign.
func (p shape) Reverse(d Index) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.Reverse(d) })
	cuts := p.cuts()
	if d != p.dim {
		return p.rebuild(pieces, cuts)
	}
	n, m := len(pieces), len(cuts)
	flipped := make([]Expr, n)
	for i := range pieces {
		flipped[i] = pieces[n-1-i]
	}
	negated := make([]Expr, m)
	for i := range cuts {
		negated[i] = Neg(cuts[m-1-i])
	}
	return p.rebuild(flipped, negated)
}

// Deform substitutes fact*x_d. Cuts on x_d become cut/fact, so fact must
// be positive; reflect with Reverse first for a negative scale.
func (p shape) Deform(d Index, fact Expr) Expr {
	pieces := mapExprs(p.pieces(), func(e Expr) Expr { return e.Deform(d, fact) })
	cuts := p.cuts()
	if d == p.dim {
		if v, ok := fact.Numeric(); ok && v <= 0 {
			contractPanic("Deform", ErrScale)
		}
		cuts = mapExprs(cuts, func(c Expr) Expr { return DivOf(c, fact) })
	}
	return p.rebuild(pieces, cuts)
}

func (p shape) Distribute(n int) Expr {
	if n <= 0 {
		return p.rebuild(p.pieces(), p.cuts())
	}
	return p.mapPieces(func(e Expr) Expr { return e.Distribute(n - 1) })
}

// Simplify collapses a piecewise function whose pieces are one exact value.
func (p shape) Simplify() Expr {
	pieces := mapExprs(p.pieces(), Simplify)
	q := newShape(p.dim, pieces, p.cuts())
	if q.uniform() {
		return pieces[0]
	}
	return p.rebuild(pieces, p.cuts())
}

func (p shape) Numeric() (Result, bool) { return 0, false }

func (p shape) Equal(other Expr) bool {
	o, ok := asPiecewise(other)
	return ok && o.dim == p.dim && o.n == p.n && equalAll(p.pieces(), o.pieces()) && equalAll(p.cuts(), o.cuts())
}

func (p shape) exprType() string {
	if p.n == 2 {
		return "branch"
	}
	return "interval"
}

func (p shape) String() string {
	return fmt.Sprintf("piecewise(x%d; %s)", p.dim, interleave(p.pieces(), p.cuts(), String))
}

func (p shape) LaTeX() string {
	return casesLaTeX(fmt.Sprintf("x_{%d}", p.dim), p.pieces(), p.cuts())
}

func casesLaTeX(v string, pieces, cuts []Expr) string {
	rows := make([]string, len(pieces))
	for k, e := range pieces {
		var cond string
		switch {
		case k == 0:
			cond = v + " < " + cuts[0].LaTeX()
		case k == len(pieces)-1:
			cond = cuts[k-1].LaTeX() + " < " + v
		default:
			cond = cuts[k-1].LaTeX() + " < " + v + " < " + cuts[k].LaTeX()
		}
		rows[k] = e.LaTeX() + " & " + cond
	}
	return "\\begin{cases} " + strings.Join(rows, " \\\\ ") + " \\end{cases}"
}

func (p shape) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":   p.exprType(),
		"dim":    p.dim,
		"pieces": jsonList(p.pieces()),
		"cuts":   jsonList(p.cuts()),
	}
}

// ============================================================
// Branch: two pieces split at one cut
// ============================================================

type Branch struct{ shape }

// NewBranch returns f1 for x_v < cut and f2 for x_v > cut.
func NewBranch(v Var, f1, cut, f2 Expr) Branch {
	checkDim("NewBranch", v.Dim)
	return Branch{newShape(v.Dim, []Expr{f1, f2}, []Expr{cut})}
}

func (b Branch) F1() Expr  { return b.piece(1) }
func (b Branch) F2() Expr  { return b.piece(2) }
func (b Branch) Cut() Expr { return b.cut(1) }

// ============================================================
// Interval: three pieces split at two cuts
// ============================================================

type Interval struct{ shape }

// NewInterval returns f1 below lower, f2 between lower and upper and f3
// above upper. lower must not exceed upper.
func NewInterval(v Var, f1, lower, f2, upper, f3 Expr) Interval {
	checkDim("NewInterval", v.Dim)
	return Interval{newShape(v.Dim, []Expr{f1, f2, f3}, []Expr{lower, upper})}
}

func (i Interval) F1() Expr    { return i.piece(1) }
func (i Interval) F2() Expr    { return i.piece(2) }
func (i Interval) F3() Expr    { return i.piece(3) }
func (i Interval) Lower() Expr { return i.cut(1) }
func (i Interval) Upper() Expr { return i.cut(2) }

// ============================================================
// Branched: n-piece builder
// ============================================================

// Branched builds a piecewise function along v from alternating pieces and
// cut points: f1, c1, f2, c2, ..., fn. Cuts must be increasing; this is
// not checked. More than three pieces are represented as a sum of
// zero padded piecewise functions.
func Branched(v Var, f1 Expr, rest ...Expr) (Expr, error) {
	if len(rest)%2 != 0 {
		return nil, errors.Wrapf(ErrBranchSpec, "got %d arguments", len(rest)+1)
	}
	checkDim("Branched", v.Dim)
	pieces := []Expr{f1}
	var cuts []Expr
	for i := 0; i < len(rest); i += 2 {
		cuts = append(cuts, rest[i])
		pieces = append(pieces, rest[i+1])
	}
	return makePiecewise(v.Dim, pieces, cuts), nil
}
