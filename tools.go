package symcalc

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ToolParam describes one tool argument. Type is a JSON schema type name.
type ToolParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type ToolSpec struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ToolParam `json:"params"`
}

// DefaultDistributeDepth caps distribute calls that do not give a depth.
const DefaultDistributeDepth = 4

// Toolbox answers tool calls. Store, when set, resolves Stored
// placeholders for evaluate calls that carry no store of their own.
// MaxDistributeDepth bounds the depth a caller may request.
type Toolbox struct {
	Store              Store
	MaxDistributeDepth int
}

// HandleToolCall answers req with a Toolbox that has no store.
func HandleToolCall(req ToolRequest) ToolResponse { return Toolbox{}.Call(req) }

func expr(name, desc string) ToolParam {
	return ToolParam{Name: name, Type: "object", Description: desc, Required: true}
}

func integer(name, desc string, required bool) ToolParam {
	return ToolParam{Name: name, Type: "integer", Description: desc, Required: required}
}

var exprParam = expr("expr", "expression object, e.g. {\"type\":\"monomial\",\"order\":2,\"dim\":1}")

// ToolSpecs lists the tools Call understands.
func ToolSpecs() []ToolSpec {
	dim := integer("dim", "1-indexed dimension", true)
	return []ToolSpec{
		{"simplify", "Simplify an expression", []ToolParam{exprParam}},
		{"derivative", "Derivative along a dimension, optionally of higher order", []ToolParam{exprParam, dim, integer("order", "derivative order (default 1)", false)}},
		{"primitive", "Antiderivative along a dimension, continuous across cut points", []ToolParam{exprParam, dim}},
		{"integrate", "Definite, possibly iterated, integral. bounds=[{dim,start,end}], innermost first", []ToolParam{exprParam, {Name: "bounds", Type: "array", Description: "list of {dim, start, end} with start/end expression objects", Required: true}}},
		{"numeric_integrate", "Gauss-Legendre quadrature over one dimension", []ToolParam{exprParam, dim, {Name: "a", Type: "number", Required: true}, {Name: "b", Type: "number", Required: true}}},
		{"evaluate", "Evaluate with positional arguments (x1, x2, ...) and an optional store", []ToolParam{exprParam, {Name: "args", Type: "array", Description: "numbers, expression objects or null for a free dimension"}, {Name: "store", Type: "object", Description: "map of store index to value"}}},
		{"distribute", "Expand products of sums up to a depth", []ToolParam{exprParam, integer("depth", "recursion depth", false)}},
		{"branched", "Build a piecewise function from alternating pieces and cut points", []ToolParam{dim, {Name: "args", Type: "array", Description: "f1, c1, f2, ..., fn as expression objects", Required: true}}},
		{"reverse", "Reflect a dimension: f(-x)", []ToolParam{exprParam, dim}},
		{"offset", "Shift a dimension: f(x + off)", []ToolParam{exprParam, dim, expr("offset", "shift as expression object")}},
		{"deform", "Scale a dimension: f(fact * x), fact > 0", []ToolParam{exprParam, dim, expr("factor", "scale as expression object")}},
		{"change_dim", "Rename dimension from to dimension to", []ToolParam{exprParam, integer("from", "source dimension", true), integer("to", "target dimension", true)}},
		{"gradient", "Partial derivatives along the listed dimensions", []ToolParam{exprParam, {Name: "dims", Type: "array", Description: "dimensions", Required: true}}},
		{"taylor", "Taylor polynomial along a dimension", []ToolParam{exprParam, dim, expr("around", "expansion point"), integer("order", "highest term", true)}},
		{"tree", "Render the expression tree", []ToolParam{exprParam}},
		{"to_latex", "Render as LaTeX", []ToolParam{exprParam}},
	}
}

// Call runs one tool. Invalid input is reported in ToolResponse.Error.
func (tb Toolbox) Call(req ToolRequest) (resp ToolResponse) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*ContractError)
			if !ok {
				panic(r)
			}
			resp = ToolResponse{Error: ce.Error()}
		}
	}()
	resp, err := tb.call(req)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return resp
}

func respond(e Expr) ToolResponse {
	return ToolResponse{Result: e.toJSON(), LaTeX: e.LaTeX(), String: e.String()}
}

func (tb Toolbox) call(req ToolRequest) (ToolResponse, error) {
	p := params(req.Params)
	switch req.Tool {
	case "simplify", "to_latex", "tree":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		switch req.Tool {
		case "to_latex":
			return ToolResponse{LaTeX: e.LaTeX(), String: e.LaTeX()}, nil
		case "tree":
			return ToolResponse{String: Tree(e)}, nil
		}
		return respond(e.Simplify()), nil

	case "derivative":
		e, d, err := p.exprAndDim()
		if err != nil {
			return ToolResponse{}, err
		}
		order, err := p.optionalIndex("order", 1)
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(DiffN(e, d, int(order))), nil

	case "primitive":
		e, d, err := p.exprAndDim()
		if err != nil {
			return ToolResponse{}, err
		}
		prim, err := e.Primitive(d)
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(prim), nil

	case "integrate":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		bounds, err := p.bounds("bounds")
		if err != nil {
			return ToolResponse{}, err
		}
		result, err := IntegrateN(e, bounds...)
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(result), nil

	case "numeric_integrate":
		e, d, err := p.exprAndDim()
		if err != nil {
			return ToolResponse{}, err
		}
		a, err := p.number("a")
		if err != nil {
			return ToolResponse{}, err
		}
		b, err := p.number("b")
		if err != nil {
			return ToolResponse{}, err
		}
		v, err := NumericIntegrate(e, V(d), a, b)
		if err != nil {
			return ToolResponse{}, err
		}
		s := strconv.FormatFloat(v, 'g', -1, 64)
		return ToolResponse{Result: v, LaTeX: s, String: s}, nil

	case "evaluate":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		args, err := p.args("args")
		if err != nil {
			return ToolResponse{}, err
		}
		store, err := p.store("store")
		if err != nil {
			return ToolResponse{}, err
		}
		if store == nil {
			store = tb.Store
		}
		if store == nil {
			return respond(e.Eval(args...)), nil
		}
		return respond(e.EvalStore(store, args...)), nil

	case "distribute":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		depth, err := p.optionalIndex("depth", DefaultDistributeDepth)
		if err != nil {
			return ToolResponse{}, err
		}
		if tb.MaxDistributeDepth > 0 && int(depth) > tb.MaxDistributeDepth {
			return ToolResponse{}, errors.Errorf("depth %d exceeds the limit of %d", depth, tb.MaxDistributeDepth)
		}
		return respond(e.Distribute(int(depth))), nil

	case "branched":
		d, err := p.dim("dim")
		if err != nil {
			return ToolResponse{}, err
		}
		args, err := p.exprs("args")
		if err != nil {
			return ToolResponse{}, err
		}
		if len(args) == 0 {
			return ToolResponse{}, ErrBranchSpec
		}
		result, err := Branched(V(d), args[0], args[1:]...)
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(result), nil

	case "reverse":
		e, d, err := p.exprAndDim()
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(e.Reverse(d)), nil

	case "offset", "deform":
		e, d, err := p.exprAndDim()
		if err != nil {
			return ToolResponse{}, err
		}
		key := "offset"
		if req.Tool == "deform" {
			key = "factor"
		}
		arg, err := p.expr(key)
		if err != nil {
			return ToolResponse{}, err
		}
		if req.Tool == "deform" {
			return respond(e.Deform(d, arg)), nil
		}
		return respond(e.Offset(d, arg)), nil

	case "change_dim":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		from, err := p.dim("from")
		if err != nil {
			return ToolResponse{}, err
		}
		to, err := p.dim("to")
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(ChangeDim(e, from, to)), nil

	case "gradient":
		e, err := p.expr("expr")
		if err != nil {
			return ToolResponse{}, err
		}
		dims, err := p.dims("dims")
		if err != nil {
			return ToolResponse{}, err
		}
		grad := Gradient(e, dims...)
		result := make([]interface{}, len(grad))
		strs := make([]string, len(grad))
		latex := make([]string, len(grad))
		for i, g := range grad {
			result[i], strs[i], latex[i] = g.toJSON(), g.String(), g.LaTeX()
		}
		return ToolResponse{
			Result: result,
			String: "[" + strings.Join(strs, ", ") + "]",
			LaTeX:  "\\left(" + strings.Join(latex, ", ") + "\\right)",
		}, nil

	case "taylor":
		e, d, err := p.exprAndDim()
		if err != nil {
			return ToolResponse{}, err
		}
		around, err := p.expr("around")
		if err != nil {
			return ToolResponse{}, err
		}
		order, err := p.index("order")
		if err != nil {
			return ToolResponse{}, err
		}
		return respond(Taylor(e, V(d), around, int(order))), nil
	}
	return ToolResponse{}, errors.Errorf("unknown tool: %s", req.Tool)
}

// ============================================================
// Parameter decoding
// ============================================================

type params map[string]interface{}

func (p params) get(key string) (interface{}, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, errors.Errorf("missing param: %s", key)
	}
	return v, nil
}

func (p params) expr(key string) (Expr, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an expression object", key)
	}
	return FromJSON(m)
}

func (p params) exprs(key string) ([]Expr, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	return exprList(v, "param "+key)
}

func (p params) index(key string) (Index, error) {
	v, err := p.get(key)
	if err != nil {
		return 0, err
	}
	n, err := asIndex(v)
	return n, errors.Wrapf(err, "param %s", key)
}

func (p params) optionalIndex(key string, def Index) (Index, error) {
	if v, ok := p[key]; !ok || v == nil {
		return def, nil
	}
	return p.index(key)
}

func (p params) dim(key string) (Index, error) {
	d, err := p.index(key)
	if err != nil {
		return 0, err
	}
	if d < 1 {
		return 0, errors.Wrapf(ErrDimension, "param %s", key)
	}
	return d, nil
}

func (p params) dims(key string) ([]Index, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an array", key)
	}
	out := make([]Index, len(raw))
	for i, r := range raw {
		d, err := asIndex(r)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s[%d]", key, i)
		}
		if d < 1 {
			return nil, errors.Wrapf(ErrDimension, "param %s[%d]", key, i)
		}
		out[i] = d
	}
	return out, nil
}

func (p params) exprAndDim() (Expr, Index, error) {
	e, err := p.expr("expr")
	if err != nil {
		return nil, 0, err
	}
	d, err := p.dim("dim")
	if err != nil {
		return nil, 0, err
	}
	return e, d, nil
}

func (p params) number(key string) (Result, error) {
	v, err := p.get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return Result(n), nil
	case int64:
		return Result(n), nil
	case json.Number:
		return n.Float64()
	}
	return 0, errors.Errorf("param %s must be a number", key)
}

// value turns a number or expression object into an expression. Whole
// numbers stay exact.
func value(v interface{}) (Expr, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return I(Index(n)), nil
		}
		return C(n), nil
	case int:
		return I(Index(n)), nil
	case int64:
		return I(n), nil
	case map[string]interface{}:
		return FromJSON(n)
	}
	return nil, errors.Errorf("%v is neither a number nor an expression", v)
}

func (p params) args(key string) ([]Expr, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an array", key)
	}
	out := make([]Expr, len(raw))
	for i, r := range raw {
		e, err := value(r)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s[%d]", key, i)
		}
		out[i] = e
	}
	return out, nil
}

func (p params) store(key string) (Store, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an object", key)
	}
	store := MapStore{}
	for k, val := range raw {
		idx, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "param %s: index %q", key, k)
		}
		x, ok := val.(float64)
		if !ok {
			return nil, errors.Errorf("param %s[%s] must be a number", key, k)
		}
		store[idx] = x
	}
	return store, nil
}

func (p params) bounds(key string) ([]Bounds, error) {
	v, err := p.get(key)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Errorf("param %s must be an array", key)
	}
	out := make([]Bounds, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]interface{})
		if !ok {
			return nil, errors.Errorf("param %s[%d] must be an object", key, i)
		}
		b := params(m)
		d, err := b.dim("dim")
		if err != nil {
			return nil, errors.Wrapf(err, "param %s[%d]", key, i)
		}
		start, err := value(m["start"])
		if err != nil || start == nil {
			return nil, errors.Errorf("param %s[%d]: start must be a number or expression", key, i)
		}
		end, err := value(m["end"])
		if err != nil || end == nil {
			return nil, errors.Errorf("param %s[%d]: end must be a number or expression", key, i)
		}
		out[i] = Over(V(d), start, end)
	}
	return out, nil
}
