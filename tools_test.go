package symcalc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/njchilds90/symcalc"
)

func call(tool string, params map[string]interface{}) ToolResponse {
	return HandleToolCall(ToolRequest{Tool: tool, Params: params})
}

func decoded(e Expr) map[string]interface{} {
	doc, err := ToJSON(e)
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		panic(err)
	}
	return m
}

// ============================================================
// Tool calls
// ============================================================

func TestTool_Simplify(t *testing.T) {
	resp := call("simplify", map[string]interface{}{
		"expr": decoded(NewBranch(x, One{}, I(2), One{})),
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1", resp.String)
	assert.Equal(t, "1", resp.LaTeX)
}

func TestTool_Derivative(t *testing.T) {
	resp := call("derivative", map[string]interface{}{
		"expr":  decoded(Mono(3, 1)),
		"dim":   1.0,
		"order": 2.0,
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "6*x1", resp.String)
}

func TestTool_Primitive(t *testing.T) {
	resp := call("primitive", map[string]interface{}{"expr": decoded(Mono(2, 1)), "dim": 1.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1/3*x1^3", resp.String)

	resp = call("primitive", map[string]interface{}{"expr": decoded(Mono(-1, 1)), "dim": 1.0})
	assert.Contains(t, resp.Error, "logarithm")
}

func TestTool_Integrate(t *testing.T) {
	resp := call("integrate", map[string]interface{}{
		"expr": decoded(Mono(2, 1)),
		"bounds": []interface{}{
			map[string]interface{}{"dim": 1.0, "start": 0.0, "end": 3.0},
		},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "9", resp.String)
	assert.Equal(t, map[string]interface{}{"type": "rational", "num": Index(9), "den": Index(1)}, resp.Result)

	resp = call("integrate", map[string]interface{}{
		"expr": ToMap(X(2)),
		"bounds": []interface{}{
			map[string]interface{}{"dim": 2, "start": 0, "end": ToMap(X(1))},
			map[string]interface{}{"dim": 1, "start": 0, "end": 1},
		},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1/6", resp.String)
}

func TestTool_NumericIntegrate(t *testing.T) {
	resp := call("numeric_integrate", map[string]interface{}{
		"expr": decoded(Mono(2, 1)), "dim": 1.0, "a": 0.0, "b": 3.0,
	})
	require.Empty(t, resp.Error)
	v, ok := resp.Result.(float64)
	require.True(t, ok)
	assert.InDelta(t, 9.0, v, 1e-6)
}

func TestTool_Evaluate(t *testing.T) {
	r := decoded(ramp())
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"above", []interface{}{2.0}, "2"},
		{"below", []interface{}{-1.0}, "0"},
		{"inexact", []interface{}{0.5}, "0.5"},
		{"symbolic", []interface{}{decoded(X(2))}, "piecewise(x2; 0, 0, x2)"},
		{"free", []interface{}{nil}, "piecewise(x1; 0, 0, x1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call("evaluate", map[string]interface{}{"expr": r, "args": tt.args})
			require.Empty(t, resp.Error)
			assert.Equal(t, tt.want, resp.String)
		})
	}
}

func TestTool_EvaluateWithStore(t *testing.T) {
	gated := decoded(NewBranch(x, Zero{}, S(0), One{}))
	resp := call("evaluate", map[string]interface{}{
		"expr":  gated,
		"args":  []interface{}{1.0},
		"store": map[string]interface{}{"0": 2.0},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "0", resp.String)

	tb := Toolbox{Store: MapStore{0: -1}}
	resp = tb.Call(ToolRequest{Tool: "evaluate", Params: map[string]interface{}{
		"expr": gated,
		"args": []interface{}{1.0},
	}})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1", resp.String)

	resp = call("evaluate", map[string]interface{}{
		"expr":  gated,
		"store": map[string]interface{}{"zero": 2.0},
	})
	assert.NotEmpty(t, resp.Error)
}

func TestTool_Distribute(t *testing.T) {
	sq := decoded(PowOf(AddOf(X(1), X(2)), 2))
	resp := call("distribute", map[string]interface{}{"expr": sq})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "x1^2")

	tb := Toolbox{MaxDistributeDepth: 2}
	resp = tb.Call(ToolRequest{Tool: "distribute", Params: map[string]interface{}{"expr": sq, "depth": 5.0}})
	assert.Contains(t, resp.Error, "exceeds")
}

func TestTool_Branched(t *testing.T) {
	resp := call("branched", map[string]interface{}{
		"dim":  1.0,
		"args": []interface{}{decoded(Zero{}), decoded(Zero{}), decoded(X(1))},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "piecewise(x1; 0, 0, x1)", resp.String)
	assert.Contains(t, resp.LaTeX, `\begin{cases}`)

	resp = call("branched", map[string]interface{}{
		"dim":  1.0,
		"args": []interface{}{decoded(Zero{}), decoded(Zero{})},
	})
	assert.Contains(t, resp.Error, "alternating")
}

func TestTool_Transforms(t *testing.T) {
	r := decoded(ramp())
	resp := call("reverse", map[string]interface{}{"expr": r, "dim": 1.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, "piecewise(x1; -1*x1, 0, 0)", resp.String)

	resp = call("offset", map[string]interface{}{"expr": decoded(X(1)), "dim": 1.0, "offset": decoded(I(2))})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x1 + 2", resp.String)

	resp = call("deform", map[string]interface{}{"expr": decoded(Mono(2, 1)), "dim": 1.0, "factor": decoded(I(3))})
	require.Empty(t, resp.Error)
	assert.Equal(t, "9*x1^2", resp.String)

	resp = call("deform", map[string]interface{}{"expr": r, "dim": 1.0, "factor": decoded(I(-1))})
	assert.Contains(t, resp.Error, "positive factor")

	resp = call("change_dim", map[string]interface{}{"expr": r, "from": 1.0, "to": 4.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, "piecewise(x4; 0, 0, x4)", resp.String)
}

func TestTool_GradientAndTaylor(t *testing.T) {
	resp := call("gradient", map[string]interface{}{
		"expr": decoded(MulOf(X(1), X(2))),
		"dims": []interface{}{1.0, 2.0},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "[x2, x1]", resp.String)
	assert.Len(t, resp.Result, 2)

	resp = call("taylor", map[string]interface{}{
		"expr":   decoded(Mono(3, 1)),
		"dim":    1.0,
		"around": decoded(One{}),
		"order":  1.0,
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1 + 3*(x1 - 1)", resp.String)
}

func TestTool_Rendering(t *testing.T) {
	resp := call("to_latex", map[string]interface{}{"expr": decoded(R(1, 2))})
	require.Empty(t, resp.Error)
	assert.Equal(t, `\frac{1}{2}`, resp.LaTeX)

	resp = call("tree", map[string]interface{}{"expr": decoded(ramp())})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "branch x1")
}

// ============================================================
// Bad requests
// ============================================================

func TestTool_Errors(t *testing.T) {
	assert.Equal(t, "unknown tool: solve", call("solve", nil).Error)
	assert.Contains(t, call("simplify", nil).Error, "missing param: expr")
	assert.Contains(t, call("simplify", map[string]interface{}{"expr": "x"}).Error, "expression object")
	assert.Contains(t, call("derivative", map[string]interface{}{"expr": decoded(X(1)), "dim": 0.0}).Error, "1-indexed")
	assert.Contains(t, call("gradient", map[string]interface{}{"expr": decoded(X(1)), "dims": "1"}).Error, "array")

	// x1^-1 at 0 raises a contract panic, reported as an error
	inverse := map[string]interface{}{"type": "div", "left": decoded(One{}), "right": decoded(X(1))}
	resp := call("evaluate", map[string]interface{}{"expr": inverse, "args": []interface{}{0.0}})
	assert.Contains(t, resp.Error, "infinities")
}

func TestToolSpecs_AllHandled(t *testing.T) {
	specs := ToolSpecs()
	require.NotEmpty(t, specs)
	seen := map[string]bool{}
	for _, spec := range specs {
		assert.False(t, seen[spec.Name], "duplicate tool %s", spec.Name)
		seen[spec.Name] = true
		assert.NotEmpty(t, spec.Description)
		resp := call(spec.Name, map[string]interface{}{})
		assert.NotContains(t, resp.Error, "unknown tool", spec.Name)
		assert.NotEmpty(t, resp.Error, "%s should reject empty params", spec.Name)
	}
}
