package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	var q Queue[int]
	require.True(t, q.IsEmpty())
	require.Equal(t, 0, q.Len())
	_, has := q.First()
	require.False(t, has)

	q.Append(1)
	require.False(t, q.IsEmpty())
	v, has := q.First()
	require.True(t, has)
	require.Equal(t, 1, v)
	require.True(t, q.IsEmpty())
}

func TestPrefilled(t *testing.T) {
	q := New(1, 2, 3)
	require.Equal(t, 3, q.Len())
	for i := 1; i <= 3; i++ {
		v, _ := q.First()
		require.Equal(t, i, v)
	}
	require.True(t, q.IsEmpty())
}

func TestInterleaved(t *testing.T) {
	q := New[int]()
	next := 0
	expected := 0
	for round := 0; round < 50; round++ {
		for i := 0; i < round%7+1; i++ {
			q.Append(next)
			next++
		}
		for i := 0; i < round%5 && !q.IsEmpty(); i++ {
			v, has := q.First()
			require.True(t, has)
			require.Equal(t, expected, v)
			expected++
		}
		require.Equal(t, next-expected, q.Len())
	}

	for !q.IsEmpty() {
		v, _ := q.First()
		require.Equal(t, expected, v)
		expected++
	}
	require.Equal(t, next, expected)
}
