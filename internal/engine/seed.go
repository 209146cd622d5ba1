package engine

import "math/rand"

// DeriveSeed mixes the master seed and an episode index into an independent
// per-episode seed. The result depends only on its inputs, so the dataset is
// identical for any number of workers.
func DeriveSeed(master int64, index int) int64 {
	z := uint64(master) + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z >> 1)
}

// newRand returns the episode-scoped random source.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
