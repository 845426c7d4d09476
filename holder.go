package symcalc

// holder keeps the operands of a node in 1-indexed slots. Zero and One
// operands are not stored: a bit per slot records them and at synthesizes
// a fresh value on access.
type holder struct {
	slots []Expr
	zero  uint32
	one   uint32
}

func hold(operands ...Expr) holder {
	h := holder{slots: make([]Expr, len(operands))}
	for i, e := range operands {
		switch e.(type) {
		case Zero:
			h.zero |= 1 << uint(i)
		case One:
			h.one |= 1 << uint(i)
		default:
			h.slots[i] = e
		}
	}
	return h
}

func (h holder) at(i int) Expr {
	bit := uint32(1) << uint(i-1)
	switch {
	case h.zero&bit != 0:
		return Zero{}
	case h.one&bit != 0:
		return One{}
	}
	return h.slots[i-1]
}

func (h holder) size() int { return len(h.slots) }

// span returns the operands in slots [from, to].
func (h holder) span(from, to int) []Expr {
	out := make([]Expr, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, h.at(i))
	}
	return out
}
