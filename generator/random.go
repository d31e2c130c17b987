package generator

import (
	"math/rand"
	"time"
)

const (
	lettersAndDigits = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	uppersAndDigits  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	uppers           = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewRandom returns a generator seeded with the given seed, or with the
// wall clock when seed is zero. Every component that needs randomness
// receives one of these explicitly so tests can seed deterministically.
func NewRandom(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RandomInt returns a random integer in [min, max].
func RandomInt(random *rand.Rand, min, max int64) int64 {
	return min + random.Int63n(max-min+1)
}

// RandomFloat returns a random float in [min, max).
func RandomFloat(random *rand.Rand, min, max float64) float64 {
	return min + random.Float64()*(max-min)
}

// RandomString returns a random string of the given length drawn from
// charset.
func RandomString(random *rand.Rand, length int64, charset string) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[random.Intn(len(charset))]
	}
	return string(b)
}
