package symcalc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/njchilds90/symcalc"
)

// ============================================================
// JSON round trip
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	exprs := map[string]Expr{
		"zero":        Zero{},
		"rational":    R(-1, 3),
		"constant":    C(2.5),
		"monomial":    Mono(-2, 3),
		"stored":      S(4),
		"product":     MulOf(R(1, 2), Mono(2, 1)),
		"sum":         AddOf(X(1), X(2)),
		"difference":  SubOf(I(2), X(1)),
		"quotient":    DivOf(One{}, AddOf(X(1), One{})),
		"branch":      ramp(),
		"interval":    box(),
		"conditional": NewBranch(x, Zero{}, S(0), One{}).Eval(One{}),
	}
	for name, e := range exprs {
		t.Run(name, func(t *testing.T) {
			s, err := ToJSON(e)
			require.NoError(t, err)
			back, err := ParseJSON(s)
			require.NoError(t, err)
			assert.True(t, e.Equal(back), "%s became %s", e, back)
		})
	}
}

func TestJSON_ManyPieces(t *testing.T) {
	stairs, err := Branched(x, I(1), I(0), I(2), I(1), I(3), I(2), I(4))
	require.NoError(t, err)
	s, err := ToJSON(stairs)
	require.NoError(t, err)
	back, err := ParseJSON(s)
	require.NoError(t, err)
	for _, v := range samples {
		assert.True(t, EqualValue(stairs.Eval(v), back.Eval(v)))
	}
}

func TestJSON_ToMap(t *testing.T) {
	m := ToMap(Mono(2, 1))
	assert.Equal(t, "monomial", m["type"])
	assert.EqualValues(t, 2, m["order"])

	b, err := json.Marshal(ToMap(R(1, 3)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rational","num":1,"den":3}`, string(b))
}

// ============================================================
// Hand-written documents
// ============================================================

func TestJSON_Parse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Expr
	}{
		{"var", `{"type":"var","dim":2}`, X(2)},
		{"one", `{"type":"one"}`, One{}},
		{"integer rational", `{"type":"rational","num":4}`, I(4)},
		{"normalized rational", `{"type":"rational","num":2,"den":6}`, R(1, 3)},
		{"neg", `{"type":"neg","arg":{"type":"var","dim":1}}`, Neg(X(1))},
		{"pow", `{"type":"pow","base":{"type":"var","dim":1},"exp":3}`, Mono(3, 1)},
		{"simplified on parse", `{"type":"add","left":{"type":"rational","num":1,"den":2},"right":{"type":"rational","num":1,"den":2}}`, One{}},
		{"branched", `{"type":"branched","dim":1,"args":[{"type":"zero"},{"type":"zero"},{"type":"monomial","order":1,"dim":1}]}`, ramp()},
		{"branch", `{"type":"branch","dim":1,"pieces":[{"type":"zero"},{"type":"one"}],"cuts":[{"type":"zero"}]}`, step()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON(tt.doc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestJSON_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{"not json", `{`, nil},
		{"missing type", `{}`, nil},
		{"unknown type", `{"type":"sin"}`, nil},
		{"fractional order", `{"type":"monomial","order":1.5,"dim":1}`, nil},
		{"missing operand", `{"type":"add","left":{"type":"one"}}`, nil},
		{"wrong piece count", `{"type":"branch","dim":1,"pieces":[{"type":"zero"}],"cuts":[]}`, nil},
		{"conditional shape", `{"type":"conditional","value":{"type":"one"},"pieces":[{"type":"one"}],"cuts":[{"type":"zero"}]}`, nil},
		{"zero denominator", `{"type":"rational","num":1,"den":0}`, ErrDenominator},
		{"zero dimension", `{"type":"var","dim":0}`, ErrDimension},
		{"division by zero", `{"type":"div","left":{"type":"one"},"right":{"type":"zero"}}`, ErrInfinity},
		{"odd branched", `{"type":"branched","dim":1,"args":[{"type":"zero"},{"type":"zero"}]}`, ErrBranchSpec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON(tt.doc)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
