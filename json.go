package symcalc

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToMap returns the wire form of e.
func ToMap(e Expr) map[string]interface{} { return e.toJSON() }

func jsonList(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = e.toJSON()
	}
	return out
}

// ParseJSON decodes a JSON document into an expression.
func ParseJSON(s string) (Expr, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(s), &data); err != nil {
		return nil, errors.Wrap(err, "invalid expression JSON")
	}
	return FromJSON(data)
}

// FromJSON builds an expression from its wire form. Expressions that
// could never be valid, such as a zero denominator, are reported as
// errors.
func FromJSON(data map[string]interface{}) (Expr, error) {
	return Recover(func() (Expr, error) { return fromJSON(data) })
}

func fromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, errors.New("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, errors.New("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, errors.New("field 'type' must be a non-empty string")
	}

	sub := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := fromJSON(m)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: %s", typ, field)
		}
		return e, nil
	}

	subList := func(field string) ([]Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, errors.Errorf("%s: missing %q", typ, field)
		}
		return exprList(v, typ+": "+field)
	}

	subIndex := func(field string) (Index, error) {
		v, ok := data[field]
		if !ok {
			return 0, errors.Errorf("%s: missing %q", typ, field)
		}
		n, err := asIndex(v)
		if err != nil {
			return 0, errors.Wrapf(err, "%s: %q", typ, field)
		}
		return n, nil
	}

	switch typ {
	case "zero":
		return Zero{}, nil

	case "one":
		return One{}, nil

	case "rational":
		num, err := subIndex("num")
		if err != nil {
			return nil, err
		}
		den := Index(1)
		if _, ok := data["den"]; ok {
			if den, err = subIndex("den"); err != nil {
				return nil, err
			}
		}
		return R(num, den), nil

	case "constant":
		v, ok := data["value"].(float64)
		if !ok {
			return nil, errors.Errorf("%s: %q must be a number", typ, "value")
		}
		return C(v), nil

	case "monomial":
		order, err := subIndex("order")
		if err != nil {
			return nil, err
		}
		dim, err := subIndex("dim")
		if err != nil {
			return nil, err
		}
		return Mono(order, dim), nil

	case "var":
		dim, err := subIndex("dim")
		if err != nil {
			return nil, err
		}
		return X(dim), nil

	case "stored":
		idx, err := subIndex("index")
		if err != nil {
			return nil, err
		}
		return S(idx), nil

	case "add", "sub", "mul", "div":
		l, err := sub("left")
		if err != nil {
			return nil, err
		}
		r, err := sub("right")
		if err != nil {
			return nil, err
		}
		switch typ {
		case "add":
			return AddOf(l, r), nil
		case "sub":
			return SubOf(l, r), nil
		case "mul":
			return MulOf(l, r), nil
		}
		return DivOf(l, r), nil

	case "neg":
		arg, err := sub("arg")
		if err != nil {
			return nil, err
		}
		return Neg(arg), nil

	case "pow":
		base, err := sub("base")
		if err != nil {
			return nil, err
		}
		exp, err := subIndex("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "branch", "interval":
		dim, err := subIndex("dim")
		if err != nil {
			return nil, err
		}
		pieces, err := subList("pieces")
		if err != nil {
			return nil, err
		}
		cuts, err := subList("cuts")
		if err != nil {
			return nil, err
		}
		want := 2
		if typ == "interval" {
			want = 3
		}
		if len(pieces) != want || len(cuts) != want-1 {
			return nil, errors.Errorf("%s: needs %d pieces and %d cuts", typ, want, want-1)
		}
		checkDim(typ, dim)
		return makePiecewise(dim, pieces, cuts), nil

	case "branched":
		dim, err := subIndex("dim")
		if err != nil {
			return nil, err
		}
		args, err := subList("args")
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, errors.Wrap(ErrBranchSpec, typ)
		}
		return Branched(V(dim), args[0], args[1:]...)

	case "conditional":
		value, err := sub("value")
		if err != nil {
			return nil, err
		}
		pieces, err := subList("pieces")
		if err != nil {
			return nil, err
		}
		cuts, err := subList("cuts")
		if err != nil {
			return nil, err
		}
		if len(pieces) != len(cuts)+1 {
			return nil, errors.Errorf("%s: needs one more piece than cuts", typ)
		}
		return Conditional{value: value, pieces: pieces, cuts: cuts}, nil
	}
	return nil, errors.Errorf("unknown expression type: %s", typ)
}

func exprList(v interface{}, what string) ([]Expr, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("%s must be an array", what)
	}
	out := make([]Expr, len(raw))
	for i, it := range raw {
		m, ok := it.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("%s[%d] must be an expression object", what, i)
		}
		e, err := fromJSON(m)
		if err != nil {
			return nil, errors.Wrapf(err, "%s[%d]", what, i)
		}
		out[i] = e
	}
	return out, nil
}

// asIndex accepts the integer forms a decoded or hand-built map may hold.
func asIndex(v interface{}) (Index, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, errors.Errorf("%v is not an integer", n)
		}
		return Index(n), nil
	case int:
		return Index(n), nil
	case int64:
		return n, nil
	case json.Number:
		return n.Int64()
	}
	return 0, errors.Errorf("%v must be an integer", v)
}
