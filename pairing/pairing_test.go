package pairing

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pellcurve/pell"
	"github.com/pellcurve/pell/ff/f2m"
)

func TestInit(t *testing.T) {
	tab, err := Init(Config{Cores: 4})
	require.NoError(t, err)
	require.Same(t, tab, Get())
	require.Len(t, tab.Exp, f2m.Bits)
	require.Len(t, tab.Sqr, 4)
	require.Len(t, tab.Srt, 4)

	// the exponentiation table applies the Frobenius expIters times
	a, err := new(f2m.Element).SetRandom()
	require.NoError(t, err)
	var want f2m.Element
	want.Set(a)
	for i := 0; i < expIters; i++ {
		want.Square(&want)
	}
	var got f2m.Element
	f2m.Itr(&got, a, tab.Exp)
	require.True(t, got.Equal(&want))

	// worker tables agree with the serial Frobenius walk and undo each other
	for i := 0; i < tab.Cores; i++ {
		want.Set(a)
		for j := 0; j < i*tab.Chunk; j++ {
			want.Square(&want)
		}
		f2m.Itr(&got, a, tab.Sqr[i])
		require.True(t, got.Equal(&want), "core %d", i)

		f2m.Itr(&got, &got, tab.Srt[i])
		require.True(t, got.Equal(a), "core %d", i)
	}

	Clean()
}

func TestPartition(t *testing.T) {
	for _, cores := range []int{1, 2, 3, 4, 8} {
		tab, err := Init(Config{Cores: cores})
		require.NoError(t, err)

		require.Zero(t, tab.Par(0))
		require.Equal(t, (f2m.Bits-1)/2, tab.Par(cores))
		for i := 0; i < cores; i++ {
			require.LessOrEqual(t, tab.Par(i), tab.Par(i+1), "cores %d", cores)
		}
	}

	_, err := Init(Config{Cores: -1})
	require.Error(t, err)
	require.True(t, errors.Is(err, pell.ErrNoConfig))
}

func TestSerialization(t *testing.T) {
	tab, err := Init(Config{Cores: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := tab.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	var back Tables
	m, err := back.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, n, m)

	if diff := cmp.Diff(*tab, back); diff != "" {
		t.Fatalf("tables mismatch (-want +got):\n%s", diff)
	}
}
