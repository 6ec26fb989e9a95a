package similarity

import (
	"context"
	"math"

	"github.com/hupe1980/scango/internal/parallel"
)

// hash64 scrambles a 64-bit value. Used to derive per-measure base offsets
// from user seeds so that adjacent seeds do not produce adjacent streams.
func hash64(v uint64) uint64 {
	v = v*3935559000370003845 + 2691343689449507681
	v ^= v >> 21
	v ^= v << 37
	v ^= v >> 4
	v *= 4768777513237032717
	v ^= v << 20
	v ^= v >> 41
	v ^= v << 5
	return v
}

// mix64 is the splitmix64 finalizer. It is the per-element hash behind both
// MinHash values and the normal-number table: a pure function of its input,
// so every fingerprint is reproducible independent of evaluation order.
func mix64(v uint64) uint64 {
	v = (v ^ (v >> 30)) * 0xbf58476d1ce4e5b9
	v = (v ^ (v >> 27)) * 0x94d049bb133111eb
	return v ^ (v >> 31)
}

// unitFloat maps a hash to the open interval (0, 1).
func unitFloat(h uint64) float64 {
	return (float64(h>>11) + 0.5) / (1 << 53)
}

// randomNormals fills a table of count pseudorandom standard normal values,
// deterministic for a fixed seed. Entry i depends only on (seed, i), so the
// parallel fill is order-independent.
func randomNormals(ctx context.Context, workers, count int, seed uint64) ([]float32, error) {
	base := hash64(seed)
	normals := make([]float32, count)
	err := parallel.For(ctx, workers, count, func(start, end int) {
		for i := start; i < end; i++ {
			// Box-Muller over two hashed uniforms.
			u1 := unitFloat(mix64(base + 2*uint64(i)))
			u2 := unitFloat(mix64(base + 2*uint64(i) + 1))
			normals[i] = float32(math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2))
		}
	})
	if err != nil {
		return nil, err
	}
	return normals, nil
}
