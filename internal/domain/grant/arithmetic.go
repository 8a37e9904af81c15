package grant

import (
	"math"
	"math/bits"

	sdkmath "cosmossdk.io/math"
)

// BasisPoints is the denominator of progress ratios.
const BasisPoints = 10_000

// SaturatingAdd returns a+b clamped at the maximum uint64.
func SaturatingAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// SaturatingSub returns a-b clamped at zero.
func SaturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

// CheckedAdd returns a+b and false when the sum overflows.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// ProRata returns floor(total * elapsed / duration) using a 256-bit intermediate.
// elapsed is clamped to duration, so the result never exceeds total.
func ProRata(total, elapsed, duration uint64) uint64 {
	if duration == 0 || elapsed == 0 {
		return 0
	}
	if elapsed >= duration {
		return total
	}
	return sdkmath.NewUint(total).MulUint64(elapsed).QuoUint64(duration).Uint64()
}

// Releasable is the linear unlock from anchor to end, net of what was already released.
// Before anchor nothing is unlocked; at or after end the full remainder is.
func Releasable(total, released uint64, anchor, end, now int64) uint64 {
	if now >= end {
		return SaturatingSub(total, released)
	}
	if now < anchor {
		return 0
	}
	unlocked := ProRata(total, span(anchor, now), span(anchor, end))
	return SaturatingSub(unlocked, released)
}

// Progress returns vested/total in basis points.
func Progress(total, vested uint64) uint64 {
	if total == 0 {
		return 0
	}
	if vested >= total {
		return BasisPoints
	}
	return sdkmath.NewUint(vested).MulUint64(BasisPoints).QuoUint64(total).Uint64()
}

// span is to-from for from <= to, exact over the full int64 range.
func span(from, to int64) uint64 {
	return uint64(to) - uint64(from)
}
