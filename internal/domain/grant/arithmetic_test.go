package grant

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
)

func TestSaturatingArithmetic(t *testing.T) {
	require.Equal(t, uint64(math.MaxUint64), SaturatingAdd(math.MaxUint64, 1))
	require.Equal(t, uint64(5), SaturatingAdd(2, 3))
	require.Equal(t, uint64(0), SaturatingSub(3, 5))
	require.Equal(t, uint64(2), SaturatingSub(5, 3))

	_, ok := CheckedAdd(math.MaxUint64, 1)
	require.False(t, ok)
	sum, ok := CheckedAdd(math.MaxUint64-1, 1)
	require.True(t, ok)
	require.Equal(t, uint64(math.MaxUint64), sum)
}

func TestProRata(t *testing.T) {
	tests := []struct {
		name                     string
		total, elapsed, duration uint64
		want                     uint64
	}{
		{name: "half", total: 1000, elapsed: 50, duration: 100, want: 500},
		{name: "truncates", total: 10, elapsed: 1, duration: 3, want: 3},
		{name: "zero elapsed", total: 1000, elapsed: 0, duration: 100, want: 0},
		{name: "zero duration", total: 1000, elapsed: 10, duration: 0, want: 0},
		{name: "clamped", total: 1000, elapsed: 150, duration: 100, want: 1000},
		{name: "wide intermediate", total: math.MaxUint64, elapsed: math.MaxUint64 - 1, duration: math.MaxUint64, want: math.MaxUint64 - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ProRata(tt.total, tt.elapsed, tt.duration))
		})
	}
}

func TestReleasable(t *testing.T) {
	require.Equal(t, uint64(0), Releasable(1000, 0, 0, 100, -1))
	require.Equal(t, uint64(500), Releasable(1000, 0, 0, 100, 50))
	require.Equal(t, uint64(0), Releasable(1000, 600, 0, 100, 50))
	require.Equal(t, uint64(500), Releasable(1000, 500, 0, 100, 100))
	require.Equal(t, uint64(400), Releasable(1000, 600, 0, 100, 500))

	// Full int64 range without overflow.
	require.Equal(t, uint64(50), Releasable(100, 0, math.MinInt64, math.MaxInt64, 0))
}

func TestReleasableProperties(t *testing.T) {
	f := gofakeit.New(42)

	for i := 0; i < 500; i++ {
		total := f.Uint64()
		start := int64(f.IntRange(-1_000_000, 1_000_000))
		end := start + int64(f.IntRange(1, 10_000_000))
		a := start + int64(f.IntRange(-1000, int(end-start)+1000))
		b := a + int64(f.IntRange(0, 5_000_000))

		ra := Releasable(total, 0, start, end, a)
		rb := Releasable(total, 0, start, end, b)
		require.LessOrEqual(t, ra, rb, "unlock must be monotonic in time")
		require.LessOrEqual(t, rb, total, "unlock never exceeds total")

		released := ra / 2
		require.Equal(t, SaturatingSub(rb, released), Releasable(total, released, start, end, b))
	}
}

func TestProgress(t *testing.T) {
	require.Equal(t, uint64(0), Progress(0, 10))
	require.Equal(t, uint64(5000), Progress(1000, 500))
	require.Equal(t, uint64(BasisPoints), Progress(1000, 2000))
	require.Equal(t, uint64(3333), Progress(3, 1))
	require.Equal(t, uint64(5000), Progress(math.MaxUint64, math.MaxUint64/2+1))
}
