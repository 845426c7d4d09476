package symcalc

// ============================================================
// Piecewise merge algebra
// ============================================================

// segments is a flat view of a piecewise function of any number of pieces.
type segments struct {
	dim          Index
	pieces, cuts []Expr
}

// segmentsOf reads e as a piecewise function. Besides Branch and Interval
// it accepts the zero padded sum makePiecewise builds for more than three
// pieces: Interval(p0, c0, p1, c1, 0) + tail, where tail is piecewise on
// the same axis, starts with a zero piece and has c1 as its first cut.
func segmentsOf(e Expr) (segments, bool) {
	if p, ok := asPiecewise(e); ok {
		return segments{dim: p.dim, pieces: p.pieces(), cuts: p.cuts()}, true
	}
	sum, ok := e.(Add)
	if !ok {
		return segments{}, false
	}
	head, ok := sum.F1().(Interval)
	if !ok || !isZero(head.F3()) {
		return segments{}, false
	}
	tail, ok := segmentsOf(sum.F2())
	if !ok || tail.dim != head.dim || !isZero(tail.pieces[0]) || !tail.cuts[0].Equal(head.Upper()) {
		return segments{}, false
	}
	pieces := append([]Expr{head.F1(), head.F2()}, tail.pieces[1:]...)
	cuts := append([]Expr{head.Lower()}, tail.cuts...)
	return segments{dim: head.dim, pieces: pieces, cuts: cuts}, true
}

func (s segments) mapPieces(f func(Expr) Expr) Expr {
	return makePiecewise(s.dim, mapExprs(s.pieces, f), s.cuts)
}

// combinePiecewise applies o when at least one operand is piecewise. Two
// piecewise functions on the same axis with exact cuts are refined onto
// the union of their cuts. A piecewise function and any other expression
// combine piece by piece. Anything else is left to the caller.
func combinePiecewise(o op, a, b Expr) (Expr, bool) {
	pa, aok := segmentsOf(a)
	pb, bok := segmentsOf(b)
	switch {
	case aok && bok:
		if pa.dim != pb.dim || !allExact(pa.cuts) || !allExact(pb.cuts) {
			return nil, false
		}
		return refine(o, pa, pb), true
	case aok:
		return pa.mapPieces(func(e Expr) Expr { return apply(o, e, b) }), true
	case bok:
		return pb.mapPieces(func(e Expr) Expr { return apply(o, a, e) }), true
	}
	return nil, false
}

// refine walks both cut lists in order. Each sub-interval gets the piece
// of a and the piece of b covering it; equal cuts advance both sides so no
// empty interval is created.
func refine(o op, a, b segments) Expr {
	ap, ac := a.pieces, a.cuts
	bp, bc := b.pieces, b.cuts
	i, j := 0, 0
	pieces := []Expr{apply(o, ap[0], bp[0])}
	cuts := make([]Expr, 0, len(ac)+len(bc))
	for i < len(ac) || j < len(bc) {
		var c Expr
		switch {
		case j == len(bc):
			c = ac[i]
			i++
		case i == len(ac):
			c = bc[j]
			j++
		default:
			switch Compare(ac[i], bc[j]) {
			case -1:
				c = ac[i]
				i++
			case 1:
				c = bc[j]
				j++
			default:
				c = ac[i]
				i++
				j++
			}
		}
		cuts = append(cuts, c)
		pieces = append(pieces, apply(o, ap[i], bp[j]))
	}
	return makePiecewise(a.dim, pieces, cuts)
}
