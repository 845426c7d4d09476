package symcalc

// ============================================================
// Partial Derivatives and Vector Calculus
// ============================================================

// DiffN returns the n-th derivative of e along x_d.
func DiffN(e Expr, d Index, n int) Expr {
	result := e
	for i := 0; i < n; i++ {
		result = result.Derivative(d)
	}
	return result
}

// Gradient returns the partial derivatives of e along each of dims.
func Gradient(e Expr, dims ...Index) []Expr {
	result := make([]Expr, len(dims))
	for i, d := range dims {
		result[i] = e.Derivative(d)
	}
	return result
}

// Hessian returns the matrix of second partial derivatives, row i holding
// the derivatives of ∂e/∂x_dims[i].
func Hessian(e Expr, dims ...Index) [][]Expr {
	result := make([][]Expr, len(dims))
	for i, di := range dims {
		first := e.Derivative(di)
		result[i] = make([]Expr, len(dims))
		for j, dj := range dims {
			result[i][j] = first.Derivative(dj)
		}
	}
	return result
}

// Laplacian returns the sum of second derivatives along dims.
func Laplacian(e Expr, dims ...Index) Expr {
	var sum Expr = Zero{}
	for _, d := range dims {
		sum = AddOf(sum, DiffN(e, d, 2))
	}
	return sum
}

// Taylor returns the Taylor polynomial of e along x_v around a, up to and
// including the term of the given order.
func Taylor(e Expr, v Var, around Expr, order int) Expr {
	var sum Expr = Zero{}
	shift := SubOf(v.Monomial(), around)
	current := e
	factorial := Index(1)
	for k := 0; k <= order; k++ {
		if k > 0 {
			factorial *= Index(k)
		}
		coeff := DivOf(current.EvaluateAlongDim(v.Dim, around), I(factorial))
		if !isZero(coeff) {
			sum = AddOf(sum, MulOf(coeff, PowOf(shift, Index(k))))
		}
		current = current.Derivative(v.Dim)
	}
	return sum
}
