package id

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewIsValidULID(t *testing.T) {
	s := New()
	if _, err := ulid.ParseStrict(s); err != nil {
		t.Fatalf("New() = %q is not a ULID: %v", s, err)
	}
}

func TestGeneratorMonotonic(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGenerator(42)
	g.now = func() time.Time { return fixed }

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = g.New()
	}
	if !sort.StringsAreSorted(ids) {
		t.Errorf("ids within one millisecond are not increasing")
	}
}

func TestGeneratorConcurrent(t *testing.T) {
	g := NewGenerator(0)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s := g.New()
				mu.Lock()
				if seen[s] {
					t.Errorf("duplicate id %s", s)
				}
				seen[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}

func TestGeneratorSeededEntropy(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b := NewGenerator(7), NewGenerator(7)
	a.now = func() time.Time { return fixed }
	b.now = func() time.Time { return fixed }

	for i := 0; i < 10; i++ {
		if x, y := a.New(), b.New(); x != y {
			t.Fatalf("id %d: %s != %s with the same seed and clock", i, x, y)
		}
	}
	if a.Seed() != 7 {
		t.Errorf("Seed() = %d, want 7", a.Seed())
	}
}

func TestGeneratorZeroSeedIsResolved(t *testing.T) {
	if g := NewGenerator(0); g.Seed() == 0 {
		t.Errorf("zero seed was not replaced")
	}
}
