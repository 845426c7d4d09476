package symcalc

// ShareDimensions reports whether f and g depend on a common dimension.
func ShareDimensions(f, g Expr) bool {
	lo := maxIndex(maxIndex(f.MinDimension(), g.MinDimension()), 1)
	hi := f.MaxDimension()
	if g.MaxDimension() < hi {
		hi = g.MaxDimension()
	}
	for d := lo; d <= hi; d++ {
		if f.HasDimension(d) && g.HasDimension(d) {
			return true
		}
	}
	return false
}

// Dimensions lists the dimensions e depends on in increasing order.
func Dimensions(e Expr) []Index {
	var dims []Index
	for d := maxIndex(e.MinDimension(), 1); d <= e.MaxDimension(); d++ {
		if e.HasDimension(d) {
			dims = append(dims, d)
		}
	}
	return dims
}

// Distribute expands products of sums in e, at most n levels deep.
func Distribute(e Expr, n int) Expr { return e.Distribute(n) }

// ChangeDim renames x_from to x_to in e.
func ChangeDim(e Expr, from, to Index) Expr {
	checkDim("ChangeDim", to)
	return e.ChangeDim(from, to)
}
