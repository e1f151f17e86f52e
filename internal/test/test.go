// Package test contains helpers shared by package tests.
package test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava12/lrx"
)

// ExpectErrorCode fails the test unless e carries lrx error code expected.
// Traced and combined errors are looked through.
func ExpectErrorCode(t testing.TB, expected int, e error, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, e, msgAndArgs...)
	require.Equal(t, expected, lrx.CodeOf(e), append([]any{"error: %v"}, e)...)
}

// CheckErrorCodes parses each sample with f and checks resulting error code, 0 means no error.
func CheckErrorCodes(t *testing.T, samples []string, code int, f func(string) error) {
	t.Helper()
	for i, src := range samples {
		e := f(src)
		if code == 0 {
			require.NoError(t, e, "sample #%d", i)
		} else {
			ExpectErrorCode(t, code, e, "sample #%d", i)
		}
	}
}
