package symcalc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/njchilds90/symcalc"
)

func TestStored_EvalStore(t *testing.T) {
	store := MapStore{0: 1.5, 1: 2.5}
	assert.Equal(t, C(2.5), S(1).EvalStore(store))
	assert.Equal(t, C(0), S(7).EvalStore(store))
	assert.True(t, S(1).Equal(S(1).Eval(One{})))
	assert.True(t, IsStored(S(1)))
	assert.False(t, IsStored(C(1.5)))
	assert.False(t, IsNumeric(S(1)))

	scaled := MulOf(S(0), X(1))
	require.IsType(t, Mul{}, scaled)
	assert.Equal(t, C(3), scaled.EvalStore(store, I(2)))
	assert.Equal(t, "c[0]*x1", scaled.String())
}

func TestConditional_StoredCut(t *testing.T) {
	gated := NewBranch(x, Zero{}, S(0), One{})

	deferred := gated.Eval(One{})
	require.IsType(t, Conditional{}, deferred)
	cond := deferred.(Conditional)
	assert.True(t, One{}.Equal(cond.Value()))
	assert.Len(t, cond.Pieces(), 2)
	assert.Equal(t, []Expr{S(0)}, cond.Cuts())
	assert.Equal(t, "cond(1; 0, c[0], 1)", cond.String())

	assert.True(t, EqualValue(Zero{}, deferred.EvalStore(MapStore{0: 2})))
	assert.True(t, EqualValue(One{}, deferred.EvalStore(MapStore{0: -1})))
	assert.True(t, EqualValue(R(1, 2), deferred.EvalStore(MapStore{0: 1})))

	assert.True(t, EqualValue(Zero{}, gated.EvalStore(MapStore{0: 2}, One{})))
	assert.True(t, EqualValue(One{}, gated.EvalStore(MapStore{0: -1}, One{})))
}

func TestConditional_StoredValue(t *testing.T) {
	deferred := step().Eval(S(3))
	require.IsType(t, Conditional{}, deferred)
	assert.True(t, EqualValue(One{}, deferred.EvalStore(MapStore{3: 5})))
	assert.True(t, EqualValue(Zero{}, deferred.EvalStore(MapStore{3: -5})))
}

func TestEvalStore_CutDependsOnArguments(t *testing.T) {
	gated := NewBranch(x, Zero{}, X(2), One{})
	at := gated.EvalStore(MapStore{}, One{}, I(2))
	assert.True(t, EqualValue(Zero{}, at))
	assert.True(t, EqualValue(at, gated.Eval(One{}, I(2))))
	assert.True(t, EqualValue(One{}, gated.EvalStore(MapStore{}, I(3), I(2))))

	shifted := NewBranch(x, Zero{}, AddOf(S(0), X(2)), One{})
	assert.True(t, EqualValue(Zero{}, shifted.EvalStore(MapStore{0: 1}, One{}, I(2))))
	assert.True(t, EqualValue(One{}, shifted.EvalStore(MapStore{0: -3}, One{}, I(2))))
}

func TestConditional_DerivativeOfConstantPieces(t *testing.T) {
	deferred := NewBranch(x, One{}, S(0), I(2)).Eval(One{})
	require.IsType(t, Conditional{}, deferred)
	assert.Equal(t, Zero{}, deferred.Derivative(1))
}

func TestConditional_PiecesStayAlgebraic(t *testing.T) {
	gated := NewBranch(x, X(2), S(0), Mono(2, 2))
	deferred := gated.Eval(One{})
	require.IsType(t, Conditional{}, deferred)
	assert.True(t, deferred.HasDimension(2))
	assert.False(t, deferred.IsConstant())

	d := deferred.Derivative(2)
	assert.True(t, EqualValue(I(6), d.EvalStore(MapStore{0: 0}, nil, I(3))))
	assert.True(t, EqualValue(One{}, d.EvalStore(MapStore{0: 2}, nil, I(3))))

	prim, err := deferred.Primitive(2)
	require.NoError(t, err)
	assert.True(t, EqualValue(R(9, 2), prim.EvalStore(MapStore{0: 2}, nil, I(3))))
}

func TestLoadStoreFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.yaml")
	require.NoError(t, os.WriteFile(path, []byte("0: 1.5\n3: -2\n"), 0o644))

	store, err := LoadStoreFile(path)
	require.NoError(t, err)
	assert.Equal(t, MapStore{0: 1.5, 3: -2}, store)

	_, err = LoadStoreFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("zero: one\n"), 0o644))
	_, err = LoadStoreFile(bad)
	assert.Error(t, err)
}
