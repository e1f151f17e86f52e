// Package lrgen compiles grammar description to parser tables and writes them as JSON or Go source.
package lrgen

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pingcap/errors"
	"go.uber.org/zap"

	"github.com/ava12/lrx/automaton"
	"github.com/ava12/lrx/config"
	"github.com/ava12/lrx/langdef"
	"github.com/ava12/lrx/log"
	"github.com/ava12/lrx/tables"
)

// Compile converts grammar description to tables.
// name is used in error messages only. conf may be nil, default config is used then.
func Compile(name string, src []byte, conf *config.Config) (*tables.Tables, error) {
	if conf == nil {
		conf = config.Default()
	}
	started := time.Now()

	g, e := langdef.ParseBytes(name, src)
	if e != nil {
		return nil, e
	}
	if len(conf.Build.Goals) > 0 {
		g.Goals = append([]string(nil), conf.Build.Goals...)
	}

	a, e := automaton.Build(g, conf.BuildOptions()...)
	if e != nil {
		return nil, e
	}

	t := tables.Emit(a)
	log.Named("lrgen").Info("grammar compiled",
		zap.String("grammar", name),
		zap.Int("states", t.NumStates()),
		zap.Uint64("fingerprint", t.Fingerprint()),
		zap.Duration("duration", time.Since(started)))
	return t, nil
}

// CompileFile reads grammar description file and converts it to tables.
func CompileFile(path string, conf *config.Config) (*tables.Tables, error) {
	src, e := os.ReadFile(path)
	if e != nil {
		return nil, errors.Trace(e)
	}
	return Compile(path, src, conf)
}

// OutputName returns output file name: the configured one
// or grammar file name with the suffix of output format.
func OutputName(grammarPath string, emit config.Emit) string {
	if emit.Output != "" {
		return emit.Output
	}

	ext := filepath.Ext(grammarPath)
	return strings.TrimSuffix(grammarPath, ext) + "." + emit.Format
}

// Write encodes tables in configured format.
// Go package name defaults to the name of output file directory, variable name defaults to the first goal name.
func Write(w io.Writer, t *tables.Tables, emit config.Emit, outputPath string) error {
	if emit.Format == config.FormatJSON {
		return tables.Encode(w, t)
	}

	pkg := emit.Package
	if pkg == "" {
		dir, e := filepath.Abs(outputPath)
		if e != nil {
			return errors.Trace(e)
		}
		pkg = filepath.Base(filepath.Dir(dir))
	}

	varName := emit.Var
	if varName == "" && len(t.Goals) > 0 {
		varName = t.Goals[0].Name
	}

	return tables.WriteGo(w, t, pkg, varName)
}

// Generate compiles grammar file and writes tables to output file.
// Returns output file name.
func Generate(grammarPath string, conf *config.Config) (string, error) {
	if conf == nil {
		conf = config.Default()
	}

	t, e := CompileFile(grammarPath, conf)
	if e != nil {
		return "", e
	}

	outputPath := OutputName(grammarPath, conf.Emit)
	var buffer bytes.Buffer
	e = Write(&buffer, t, conf.Emit, outputPath)
	if e == nil {
		e = os.WriteFile(outputPath, buffer.Bytes(), 0o666)
	}
	return outputPath, errors.Trace(e)
}

// Check compiles grammar file and compares resulting tables with the ones stored in JSON file.
// Returns false if the stored tables differ or cannot be read.
func Check(grammarPath, jsonPath string, conf *config.Config) (bool, error) {
	t, e := CompileFile(grammarPath, conf)
	if e != nil {
		return false, e
	}

	f, e := os.Open(jsonPath)
	if e != nil {
		return false, errors.Trace(e)
	}
	defer f.Close()

	stored, e := tables.Decode(f)
	if e != nil {
		return false, e
	}
	return stored.Fingerprint() == t.Fingerprint(), nil
}
