package symcalc

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// ============================================================
// Store: external source of run-time values
// ============================================================

// Store supplies the values of Stored placeholders. The engine only reads
// from it.
type Store interface {
	Get(idx Index) Result
}

// MapStore is a Store backed by a map. Missing indices read as 0.
type MapStore map[Index]Result

func (s MapStore) Get(idx Index) Result { return s[idx] }

// LoadStoreFile reads a YAML or JSON document mapping indices to values,
// for example:
//
//	0: 1.5
//	1: -2
func LoadStoreFile(path string) (MapStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading store file %s", path)
	}
	store := MapStore{}
	if err := yaml.Unmarshal(data, &store); err != nil {
		return nil, errors.Wrapf(err, "parsing store file %s", path)
	}
	return store, nil
}

// ============================================================
// Stored: placeholder resolved from a Store
// ============================================================

type Stored struct{ Idx Index }

// S returns the placeholder for store index idx.
func S(idx Index) Stored { return Stored{Idx: idx} }

func (Stored) HasDimension(Index) bool               { return false }
func (Stored) IsConstant() bool                      { return true }
func (Stored) MinDimension() Index                   { return 0 }
func (Stored) MaxDimension() Index                   { return 0 }
func (Stored) IntegralComplexity(Index) Index        { return 0 }
func (Stored) IsContinuous(Index) bool               { return true }
func (s Stored) Primitive(d Index) (Expr, error)     { return MulOf(s, X(d)), nil }
func (Stored) Derivative(Index) Expr                 { return Zero{} }
func (s Stored) EvaluateAlongDim(Index, Expr) Expr   { return s }
func (s Stored) Eval(...Expr) Expr                   { return s }
func (s Stored) EvalStore(st Store, _ ...Expr) Expr  { return C(st.Get(s.Idx)) }
func (s Stored) ChangeDim(_, _ Index) Expr           { return s }
func (s Stored) Offset(Index, Expr) Expr             { return s }
func (s Stored) Reverse(Index) Expr                  { return s }
func (s Stored) Deform(Index, Expr) Expr             { return s }
func (s Stored) Distribute(int) Expr                 { return s }
func (s Stored) Simplify() Expr                      { return s }
func (Stored) Numeric() (Result, bool)               { return 0, false }
func (s Stored) String() string                      { return fmt.Sprintf("c[%d]", s.Idx) }
func (s Stored) LaTeX() string                       { return fmt.Sprintf("C_{%d}", s.Idx) }
func (Stored) exprType() string                      { return "stored" }

func (s Stored) Equal(other Expr) bool {
	o, ok := other.(Stored)
	return ok && o == s
}

func (s Stored) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "stored", "index": s.Idx}
}

// IsStored reports whether e is a Stored placeholder.
func IsStored(e Expr) bool {
	_, ok := e.(Stored)
	return ok
}

// ============================================================
// Conditional: piecewise choice deferred until a Store is known
// ============================================================

// Conditional is what a piecewise expression evaluates to when the value
// or a cut point is a Stored placeholder. EvalStore resolves it.
type Conditional struct {
	value  Expr
	pieces []Expr
	cuts   []Expr
}

func (c Conditional) Value() Expr    { return c.value }
func (c Conditional) Pieces() []Expr { return append([]Expr(nil), c.pieces...) }
func (c Conditional) Cuts() []Expr   { return append([]Expr(nil), c.cuts...) }

func (c Conditional) withPieces(f func(Expr) Expr) Conditional {
	out := Conditional{value: c.value, cuts: c.cuts, pieces: make([]Expr, len(c.pieces))}
	for i, p := range c.pieces {
		out.pieces[i] = f(p)
	}
	return out
}

func (c Conditional) HasDimension(d Index) bool {
	for _, p := range c.pieces {
		if p.HasDimension(d) {
			return true
		}
	}
	return false
}

func (c Conditional) IsConstant() bool {
	for _, p := range c.pieces {
		if !p.IsConstant() {
			return false
		}
	}
	return true
}

func (c Conditional) MinDimension() Index {
	var m Index
	for _, p := range c.pieces {
		m = minDim(m, p.MinDimension())
	}
	return m
}

func (c Conditional) MaxDimension() Index {
	var m Index
	for _, p := range c.pieces {
		m = maxIndex(m, p.MaxDimension())
	}
	return m
}

func (c Conditional) IntegralComplexity(d Index) Index {
	var m Index
	for _, p := range c.pieces {
		m = maxIndex(m, p.IntegralComplexity(d))
	}
	return m
}

func (c Conditional) IsContinuous(d Index) bool {
	for _, p := range c.pieces {
		if !p.IsContinuous(d) {
			return false
		}
	}
	return true
}

// Primitive integrates each candidate; the choice does not depend on any
// dimension.
func (c Conditional) Primitive(d Index) (Expr, error) {
	out := Conditional{value: c.value, cuts: c.cuts, pieces: make([]Expr, len(c.pieces))}
	for i, p := range c.pieces {
		prim, err := p.Primitive(d)
		if err != nil {
			return nil, err
		}
		out.pieces[i] = prim
	}
	return out, nil
}

func (c Conditional) Derivative(d Index) Expr {
	out := c.withPieces(func(p Expr) Expr { return p.Derivative(d) })
	if allZero(out.pieces) {
		return Zero{}
	}
	return out
}

func (c Conditional) EvaluateAlongDim(d Index, val Expr) Expr {
	return c.withPieces(func(p Expr) Expr { return p.EvaluateAlongDim(d, val) })
}

func (c Conditional) Eval(args ...Expr) Expr {
	return c.withPieces(func(p Expr) Expr { return p.Eval(args...) })
}

func (c Conditional) EvalStore(s Store, args ...Expr) Expr {
	pieces := make([]Expr, len(c.pieces))
	for i, p := range c.pieces {
		pieces[i] = p.EvalStore(s, args...)
	}
	cuts := make([]Expr, len(c.cuts))
	for i, cut := range c.cuts {
		cuts[i] = cut.EvalStore(s, args...)
	}
	value := c.value.EvalStore(s)
	if r, ok := decide(value, pieces, cuts); ok {
		return r
	}
	return Conditional{value: value, pieces: pieces, cuts: cuts}
}

func (c Conditional) ChangeDim(from, to Index) Expr {
	return c.withPieces(func(p Expr) Expr { return p.ChangeDim(from, to) })
}

func (c Conditional) Offset(d Index, off Expr) Expr {
	return c.withPieces(func(p Expr) Expr { return p.Offset(d, off) })
}

func (c Conditional) Reverse(d Index) Expr {
	return c.withPieces(func(p Expr) Expr { return p.Reverse(d) })
}

func (c Conditional) Deform(d Index, fact Expr) Expr {
	return c.withPieces(func(p Expr) Expr { return p.Deform(d, fact) })
}

func (c Conditional) Distribute(n int) Expr {
	if n <= 0 {
		return c
	}
	return c.withPieces(func(p Expr) Expr { return p.Distribute(n - 1) })
}

func (c Conditional) Simplify() Expr {
	return c.withPieces(func(p Expr) Expr { return p.Simplify() })
}

func (Conditional) Numeric() (Result, bool) { return 0, false }
func (Conditional) exprType() string        { return "conditional" }

func (c Conditional) Equal(other Expr) bool {
	o, ok := other.(Conditional)
	return ok && c.value.Equal(o.value) && equalAll(c.pieces, o.pieces) && equalAll(c.cuts, o.cuts)
}

func (c Conditional) String() string {
	return "cond(" + c.value.String() + "; " + interleave(c.pieces, c.cuts, func(e Expr) string { return e.String() }) + ")"
}

func (c Conditional) LaTeX() string {
	return casesLaTeX(c.value.LaTeX(), c.pieces, c.cuts)
}

func (c Conditional) toJSON() map[string]interface{} {
	return map[string]interface{}{
		"type":   "conditional",
		"value":  c.value.toJSON(),
		"pieces": jsonList(c.pieces),
		"cuts":   jsonList(c.cuts),
	}
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// interleave renders "p0, c0, p1, c1, p2".
func interleave(pieces, cuts []Expr, render func(Expr) string) string {
	parts := make([]string, 0, len(pieces)+len(cuts))
	for i, p := range pieces {
		if i > 0 {
			parts = append(parts, render(cuts[i-1]))
		}
		parts = append(parts, render(p))
	}
	return strings.Join(parts, ", ")
}
