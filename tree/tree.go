// Package tree contains generic syntax tree built by reducer expressions.
//
// A tree element is any value: *Node for constructor calls, Present and Absent for optional symbols,
// token values for leaves.
package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a constructor call result.
type Node struct {
	Name     string
	Children []any
}

// Present wraps matched optional value.
type Present struct {
	Value any
}

// Absent stands for unmatched optional.
type Absent struct{}

// Builder creates tree elements for reducer expressions, implements parser.Builder.
type Builder struct{}

func (Builder) Call(name string, args []any) (any, error) {
	return &Node{Name: name, Children: args}, nil
}

func (Builder) Present(value any) any {
	return Present{value}
}

func (Builder) Absent() any {
	return Absent{}
}

// Children returns node children, a single wrapped value for Present and nil for other elements.
func Children(el any) []any {
	switch el := el.(type) {
	case *Node:
		return el.Children
	case Present:
		return []any{el.Value}
	default:
		return nil
	}
}

// NodeVisitor is called for each visited element, level is 0 for root.
type NodeVisitor func(el any, level int) (walkChildren, walkSiblings bool)

type WalkMode int

const (
	// WalkLtr visits children first to last.
	WalkLtr WalkMode = iota
	// WalkRtl visits children last to first.
	WalkRtl
)

// Walk visits elements depth-first, parents before children.
func Walk(root any, mode WalkMode, visitor NodeVisitor) {
	visitElement(root, 0, mode == WalkRtl, visitor)
}

func visitElement(el any, level int, rtl bool, visitor NodeVisitor) (visitSiblings bool) {
	walkChildren, walkSiblings := visitor(el, level)
	if !walkChildren {
		return walkSiblings
	}

	children := Children(el)
	for i := range children {
		if rtl {
			i = len(children) - 1 - i
		}
		if !visitElement(children[i], level+1, rtl, visitor) {
			break
		}
	}
	return walkSiblings
}

// NodeFilter selects elements.
type NodeFilter func(el any) bool

// IsA selects nodes with one of names.
func IsA(names ...string) NodeFilter {
	return func(el any) bool {
		n, valid := el.(*Node)
		if !valid {
			return false
		}
		for _, name := range names {
			if n.Name == name {
				return true
			}
		}
		return false
	}
}

func IsNot(f NodeFilter) NodeFilter {
	return func(el any) bool {
		return !f(el)
	}
}

func IsAny(fs ...NodeFilter) NodeFilter {
	return func(el any) bool {
		for _, f := range fs {
			if f(el) {
				return true
			}
		}
		return false
	}
}

// Find returns all elements selected by filter in depth-first left to right order.
// Children of selected elements are searched too.
func Find(root any, f NodeFilter) []any {
	var res []any
	Walk(root, WalkLtr, func(el any, _ int) (bool, bool) {
		if f(el) {
			res = append(res, el)
		}
		return true, true
	})
	return res
}

// Format returns element in reducer expression syntax, e.g. `greet("hello", present("world"))`.
// Strings are quoted, other leaves are formatted with fmt.
func Format(el any) string {
	var sb strings.Builder
	format(&sb, el)
	return sb.String()
}

func format(sb *strings.Builder, el any) {
	switch el := el.(type) {
	case *Node:
		sb.WriteString(el.Name)
		formatArgs(sb, el.Children)
	case Present:
		sb.WriteString("present")
		formatArgs(sb, []any{el.Value})
	case Absent:
		sb.WriteString("absent")
	case string:
		sb.WriteString(strconv.Quote(el))
	case nil:
		sb.WriteString("nil")
	default:
		fmt.Fprint(sb, el)
	}
}

func formatArgs(sb *strings.Builder, args []any) {
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		format(sb, arg)
	}
	sb.WriteByte(')')
}
