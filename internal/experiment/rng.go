package experiment

import "math/rand/v2"

// TrialRNG returns the random source for one trial. Each (agents, trial)
// pair gets its own PCG stream derived from seed, so trials are independent
// and any single trial can be replayed from the report seed.
func TrialRNG(seed uint64, agents, trial int) *rand.Rand {
	stream := mix(uint64(agents)<<32 | uint64(uint32(trial)))
	return rand.New(rand.NewPCG(mix(seed), stream))
}

// mix is the SplitMix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
