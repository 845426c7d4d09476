package symcalc

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Tree renders the node structure of e, one node per line.
func Tree(e Expr) string {
	root := treeprint.NewWithRoot(label(e))
	grow(root, e)
	return root.String()
}

func label(e Expr) string {
	switch v := e.(type) {
	case Branch, Interval:
		p, _ := asPiecewise(v)
		return fmt.Sprintf("%s x%d", p.exprType(), p.dim)
	case Conditional:
		return "conditional " + v.value.String()
	case interface{ bin() binary }:
		return v.bin().op.symbol()
	}
	return e.String()
}

func grow(t treeprint.Tree, e Expr) {
	switch v := e.(type) {
	case Branch, Interval:
		p, _ := asPiecewise(v)
		cuts := p.cuts()
		for k, piece := range p.pieces() {
			var cond string
			switch {
			case k == 0:
				cond = fmt.Sprintf("x%d < %s", p.dim, cuts[0])
			case k == len(cuts):
				cond = fmt.Sprintf("x%d > %s", p.dim, cuts[k-1])
			default:
				cond = fmt.Sprintf("%s < x%d < %s", cuts[k-1], p.dim, cuts[k])
			}
			branch := t.AddMetaBranch(cond, label(piece))
			grow(branch, piece)
		}
	case Conditional:
		for k, piece := range v.pieces {
			branch := t.AddMetaBranch(k+1, label(piece))
			grow(branch, piece)
		}
	case interface{ bin() binary }:
		for _, child := range []Expr{v.bin().F1(), v.bin().F2()} {
			if _, isOp := child.(interface{ bin() binary }); !isOp && !isPiecewiseLike(child) {
				t.AddNode(label(child))
				continue
			}
			grow(t.AddBranch(label(child)), child)
		}
	}
}

func isPiecewiseLike(e Expr) bool {
	switch e.(type) {
	case Branch, Interval, Conditional:
		return true
	}
	return false
}
