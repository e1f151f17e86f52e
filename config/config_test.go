package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, FormatGo, c.Emit.Format)
	require.Equal(t, "warn", c.Log.Level)
	require.False(t, c.Build.Strict)
	require.NoError(t, c.Validate())

	c.Build.Goals = append(c.Build.Goals, "X")
	require.Empty(t, Default().Build.Goals)
}

func TestDecode(t *testing.T) {
	c, e := Decode(strings.NewReader(`
[log]
level = "debug"
max-size = 10

[build]
strict = true
workers = 4
goals = ["Script", "Module"]

[emit]
format = "json"
output = "tables.json"
`))
	require.NoError(t, e)
	require.Equal(t, "debug", c.Log.Level)
	require.Equal(t, "text", c.Log.Format)
	require.Equal(t, 10, c.Log.FileMaxSize)
	require.Equal(t, Build{Strict: true, Workers: 4, Goals: []string{"Script", "Module"}}, c.Build)
	require.Equal(t, Emit{Format: FormatJSON, Output: "tables.json"}, c.Emit)
	require.Len(t, c.BuildOptions(), 2)
}

func TestDecodeErrors(t *testing.T) {
	samples := []string{
		`[build]
strict = "yes"`,
		`[build]
strictness = true`,
		`[emit]
format = "yaml"`,
		`[build]
workers = -1`,
		`[log`,
	}
	for i, src := range samples {
		_, e := Decode(strings.NewReader(src))
		require.Error(t, e, "sample #%d", i)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lrgen.toml")
	require.NoError(t, os.WriteFile(path, []byte("[emit]\npackage = \"js\"\nvar = \"Tables\"\n"), 0o644))

	c, e := Load(path)
	require.NoError(t, e)
	require.Equal(t, "js", c.Emit.Package)
	require.Equal(t, "Tables", c.Emit.Var)
	require.Equal(t, FormatGo, c.Emit.Format)
	require.Len(t, c.BuildOptions(), 1)

	_, e = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, e)
}
