package directive

import (
	"git.home.luguber.info/inful/loki/internal/foundation/errors"
)

// Env resolves names during evaluation.
type Env interface {
	// Lookup returns the value bound to a bare identifier, if any.
	Lookup(name string) (any, bool)
	// Call invokes a named operation.
	Call(name string, args Args) (any, error)
}

// Object is a host value whose fields can be read with `x.name`.
type Object interface {
	Attr(name string) (any, bool)
}

// Eval evaluates a single expression.
func Eval(n Node, env Env) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *ArrayLit:
		out := make([]any, 0, len(n.Elems))
		for _, e := range n.Elems {
			v, err := Eval(e, env)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *MapLit:
		out := make(map[string]any, len(n.Keys))
		for i, k := range n.Keys {
			v, err := Eval(n.Values[i], env)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case *Ident:
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}
		return env.Call(n.Name, nil)
	case *Call:
		args, err := evalArgs(n, env)
		if err != nil {
			return nil, err
		}
		return env.Call(n.Name, args)
	case *Field:
		x, err := Eval(n.X, env)
		if err != nil {
			return nil, err
		}
		return field(x, n.Name)
	}
	return nil, errors.InternalError("unknown expression node %T", n).Build()
}

// EvalAll evaluates statements in order and returns the value of the last one.
func EvalAll(stmts []Statement, env Env) (any, error) {
	var last any
	for _, s := range stmts {
		v, err := Eval(s.Expr, env)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func evalArgs(c *Call, env Env) (Args, error) {
	args := make(Args, 0, len(c.Args)+1)
	for _, a := range c.Args {
		v, err := Eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if len(c.KwKeys) > 0 {
		opts := make(map[string]any, len(c.KwKeys))
		for i, k := range c.KwKeys {
			v, err := Eval(c.KwValues[i], env)
			if err != nil {
				return nil, err
			}
			opts[k] = v
		}
		args = append(args, opts)
	}
	return args, nil
}

func field(x any, name string) (any, error) {
	switch x := x.(type) {
	case map[string]any:
		return x[name], nil
	case Object:
		if v, ok := x.Attr(name); ok {
			return v, nil
		}
		return nil, errors.ReferenceError("undefined field '%s'", name).Build()
	case nil:
		return nil, errors.ReferenceError("undefined field '%s' for nil", name).Build()
	}
	return nil, errors.ValidationError("cannot read field '%s' of '%s'", name, ToString(x)).Build()
}
