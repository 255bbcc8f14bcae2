package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out run identifiers. IDs are ULIDs, so they sort by creation
// time and stay increasing within a millisecond. The seed fixes the random
// part only; the timestamp part always comes from the clock.
type Generator struct {
	mu      sync.Mutex
	seed    uint64
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator seeds the entropy source from seed, or from crypto/rand when
// seed is zero.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{
		seed:    seed,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(int64(seed))), 0),
		now:     time.Now,
	}
}

// Seed returns the seed the entropy source was built from.
func (g *Generator) Seed() uint64 {
	return g.seed
}

func (g *Generator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now().UTC()), g.entropy)
	if err != nil {
		// only on clock rollback past the epoch or entropy overflow
		panic(err)
	}
	return id.String()
}

var std = NewGenerator(0)

// New returns a ULID string from the package generator.
func New() string {
	return std.New()
}
