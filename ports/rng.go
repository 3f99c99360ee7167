package ports

// RNG is the randomness source used by sample generators. Seeded
// implementations make probe runs reproducible.
type RNG interface {
	// Float64 returns a uniform draw from [0, 1).
	Float64() float64
	// Intn returns a uniform draw from [0, n).
	Intn(n int) int
}
