package dv

import (
	"errors"
	"testing"

	"github.com/pellcurve/pell"
	"github.com/stretchr/testify/require"
)

func TestNewRelease(t *testing.T) {
	v, err := New(6)
	require.NoError(t, err)
	require.Len(t, v, 6)
	for _, d := range v {
		require.Zero(t, d)
	}
	v[0] = 0xdead
	Release(v)

	// a reacquired vector is zeroed regardless of what the pool returns
	w, err := New(MaxDigits)
	require.NoError(t, err)
	require.Len(t, w, MaxDigits)
	for _, d := range w {
		require.Zero(t, d)
	}
	Release(w)

	_, err = New(MaxDigits + 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, pell.ErrPrecision))
}

func TestCopyCmp(t *testing.T) {
	a := Vector{1, 2, 3, 4}
	b := Vector{0, 0, 0, 0}
	Copy(b, a, 3)
	require.Equal(t, Vector{1, 2, 3, 0}, b)

	require.Zero(t, Cmp(a, b, 3))
	require.Equal(t, 1, Cmp(a, b, 4))
	require.Equal(t, -1, Cmp(b, a, 4))

	// the most significant digit decides before any lower one
	c := Vector{^uint64(0), ^uint64(0), 0}
	d := Vector{0, 0, 1}
	require.Equal(t, -1, Cmp(c, d, 3))
	require.Equal(t, 1, Cmp(d, c, 3))

	Zero(b)
	require.Equal(t, Vector{0, 0, 0, 0}, b)
}
