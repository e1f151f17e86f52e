package tables

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pingcap/errors"

	"github.com/ava12/lrx/grammar"
)

var identRe = regexp.MustCompile("^[A-Za-z_][A-Za-z_0-9]*$")

// WriteGo writes Go source file declaring variable varName of type *tables.Tables in package pkg.
func WriteGo(w io.Writer, t *Tables, pkg, varName string) error {
	if !identRe.MatchString(pkg) {
		return badIdentifierError("package", pkg)
	}
	if !identRe.MatchString(varName) {
		return badIdentifierError("variable", varName)
	}

	var buffer bytes.Buffer
	buffer.WriteString("// Code generated by lrgen. DO NOT EDIT.\n\n" +
		"package " + pkg + "\n\n" +
		"import (\n")
	if len(t.Productions) > 0 {
		buffer.WriteString("\t\"github.com/ava12/lrx/grammar\"\n")
	}
	buffer.WriteString("\t\"github.com/ava12/lrx/tables\"\n)\n\n" +
		"var " + varName + " = &tables.Tables{\n")

	buffer.WriteString("\tTerminals: " + stringsGo(t.Terminals) + ",\n")
	buffer.WriteString("\tNonterminals: " + stringsGo(t.Nonterminals) + ",\n")

	buffer.WriteString("\tGoals: []tables.Goal{\n")
	for _, g := range t.Goals {
		buffer.WriteString(fmt.Sprintf("\t\t{Name: %q, State: %d},\n", g.Name, g.State))
	}
	buffer.WriteString("\t},\n")

	buffer.WriteString("\tProductions: []tables.Production{\n")
	for _, p := range t.Productions {
		buffer.WriteString(fmt.Sprintf("\t\t{LHS: %d, Arity: %d, Reducer: %s", p.LHS, p.Arity, exprGo(p.Reducer)))
		if p.ID != "" {
			buffer.WriteString(fmt.Sprintf(", ID: %q", p.ID))
		}
		buffer.WriteString("},\n")
	}
	buffer.WriteString("\t},\n")

	writeRows(&buffer, "Actions", t.Actions)

	if len(t.Splits) > 0 {
		buffer.WriteString("\tSplits: []tables.Split{\n")
		for _, s := range t.Splits {
			buffer.WriteString(fmt.Sprintf("\t\t{State: %d, Terminal: %d, Action: %d},\n", s.State, s.Terminal, s.Action))
		}
		buffer.WriteString("\t},\n")
	}

	writeRows(&buffer, "Gotos", t.Gotos)
	buffer.WriteString("}\n")

	src, e := format.Source(buffer.Bytes())
	if e != nil {
		return errors.Trace(e)
	}

	_, e = w.Write(src)
	return errors.Trace(e)
}

func stringsGo(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = strconv.Quote(item)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}

func writeRows(buffer *bytes.Buffer, name string, rows [][]int32) {
	buffer.WriteString("\t" + name + ": [][]int32{\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = strconv.FormatInt(int64(cell), 10)
		}
		buffer.WriteString("\t\t{" + strings.Join(cells, ", ") + "},\n")
	}
	buffer.WriteString("\t},\n")
}

func exprGo(x grammar.Expr) string {
	switch x.Kind {
	case grammar.MatchExpr:
		return "grammar.Match(" + strconv.Itoa(x.Index) + ")"
	case grammar.AbsentExpr:
		return "grammar.Absent()"
	case grammar.PresentExpr:
		return "grammar.Present(" + exprGo(x.Args[0]) + ")"
	}

	var sb strings.Builder
	sb.WriteString("grammar.Call(" + strconv.Quote(x.Name))
	for _, arg := range x.Args {
		sb.WriteString(", ")
		sb.WriteString(exprGo(arg))
	}
	sb.WriteByte(')')
	return sb.String()
}
