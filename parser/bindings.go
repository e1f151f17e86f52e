package parser

import (
	"github.com/ava12/lrx/grammar"
	"github.com/ava12/lrx/tables"
)

// Builder constructs values for reducer expressions.
type Builder interface {
	// Call constructs a value for name(args...) expression.
	Call(name string, args []any) (any, error)
	// Present wraps matched optional value.
	Present(value any) any
	// Absent returns value for unmatched optional.
	Absent() any
}

// BindingsFunc adapts a function to Bindings.
type BindingsFunc func(prod int) ReduceFunc

func (f BindingsFunc) Reducer(prod int) ReduceFunc {
	return f(prod)
}

type exprBindings []ReduceFunc

func (eb exprBindings) Reducer(prod int) ReduceFunc {
	if prod < 0 || prod >= len(eb) {
		return nil
	}
	return eb[prod]
}

// ExprBindings compiles reducer expressions of all productions to reducers calling b.
func ExprBindings(t *tables.Tables, b Builder) Bindings {
	res := make(exprBindings, len(t.Productions))
	for i, p := range t.Productions {
		res[i] = ReduceFunc(compile(p.Reducer, b))
	}
	return res
}

// Override returns bindings using reducers from funcs for productions with listed IDs, base otherwise.
func Override(t *tables.Tables, base Bindings, funcs map[string]ReduceFunc) Bindings {
	byProd := make(map[int]ReduceFunc)
	for i, p := range t.Productions {
		if f, has := funcs[p.ID]; has && p.ID != "" {
			byProd[i] = f
		}
	}

	return BindingsFunc(func(prod int) ReduceFunc {
		if f, has := byProd[prod]; has {
			return f
		}
		return base.Reducer(prod)
	})
}

func compile(x grammar.Expr, b Builder) func(values []any) (any, error) {
	switch x.Kind {
	case grammar.MatchExpr:
		i := x.Index
		return func(values []any) (any, error) {
			return values[i], nil
		}

	case grammar.AbsentExpr:
		return func([]any) (any, error) {
			return b.Absent(), nil
		}

	case grammar.PresentExpr:
		arg := compile(x.Args[0], b)
		return func(values []any) (any, error) {
			v, e := arg(values)
			if e != nil {
				return nil, e
			}
			return b.Present(v), nil
		}
	}

	name := x.Name
	args := make([]func([]any) (any, error), len(x.Args))
	for i, a := range x.Args {
		args[i] = compile(a, b)
	}
	return func(values []any) (any, error) {
		vs := make([]any, len(args))
		for i, arg := range args {
			v, e := arg(values)
			if e != nil {
				return nil, e
			}
			vs[i] = v
		}
		return b.Call(name, vs)
	}
}
