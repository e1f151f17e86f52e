package grammar

import (
	"strconv"
	"strings"
)

// ExprKind is reducer expression kind.
type ExprKind int

const (
	// MatchExpr refers to matched value by index.
	MatchExpr ExprKind = iota
	// CallExpr constructs a node.
	CallExpr
	// PresentExpr wraps matched optional value.
	PresentExpr
	// AbsentExpr stands for unmatched optional.
	AbsentExpr
)

// Expr is reducer expression.
type Expr struct {
	Kind  ExprKind `json:"kind"`
	Index int      `json:"index,omitempty"`
	Name  string   `json:"name,omitempty"`
	Args  []Expr   `json:"args,omitempty"`
}

// Match returns match reference expression.
func Match(index int) Expr {
	return Expr{Kind: MatchExpr, Index: index}
}

// Call returns constructor call expression.
func Call(name string, args ...Expr) Expr {
	return Expr{Kind: CallExpr, Name: name, Args: args}
}

// Present returns present(arg) expression.
func Present(arg Expr) Expr {
	return Expr{Kind: PresentExpr, Args: []Expr{arg}}
}

// Absent returns absent expression.
func Absent() Expr {
	return Expr{Kind: AbsentExpr}
}

// String returns expression in grammar description syntax.
func (e Expr) String() string {
	switch e.Kind {
	case MatchExpr:
		return "$" + strconv.Itoa(e.Index)
	case AbsentExpr:
		return "absent"
	case PresentExpr:
		return "present(" + joinExprs(e.Args) + ")"
	default:
		return e.Name + "(" + joinExprs(e.Args) + ")"
	}
}

func joinExprs(es []Expr) string {
	items := make([]string, len(es))
	for i, e := range es {
		items[i] = e.String()
	}
	return strings.Join(items, ", ")
}

// Walk calls f for e and all nested expressions, parents first.
func (e Expr) Walk(f func(Expr)) {
	f(e)
	for _, a := range e.Args {
		a.Walk(f)
	}
}

// MaxMatch returns the highest match index used in expression or -1.
func (e Expr) MaxMatch() int {
	res := -1
	e.Walk(func(x Expr) {
		if x.Kind == MatchExpr && x.Index > res {
			res = x.Index
		}
	})
	return res
}

// Map returns expression copy with match references replaced by f results.
func (e Expr) Map(f func(index int) Expr) Expr {
	if e.Kind == MatchExpr {
		return f(e.Index)
	}

	res := Expr{Kind: e.Kind, Index: e.Index, Name: e.Name}
	if len(e.Args) > 0 {
		res.Args = make([]Expr, len(e.Args))
		for i, a := range e.Args {
			res.Args[i] = a.Map(f)
		}
	}
	return res
}
