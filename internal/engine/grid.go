package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidSearchSpace = errors.New("invalid search space")

// SearchSpace bounds the parameters drawn for each run. J and K are inclusive
// ranges of months; ratios form the grid RatioMin, RatioMin+RatioStep, ...
// strictly below RatioMax.
type SearchSpace struct {
	JMin, JMax int
	KMin, KMax int

	RatioMin  decimal.Decimal
	RatioMax  decimal.Decimal
	RatioStep decimal.Decimal
}

func DefaultSearchSpace() SearchSpace {
	return SearchSpace{
		JMin:      1,
		JMax:      12,
		KMin:      1,
		KMax:      12,
		RatioMin:  decimal.Zero,
		RatioMax:  decimal.NewFromInt(1),
		RatioStep: decimal.RequireFromString("0.01"),
	}
}

func (s SearchSpace) Validate() error {
	switch {
	case s.JMin < 1 || s.JMax < s.JMin:
		return fmt.Errorf("%w: J range [%d, %d]", ErrInvalidSearchSpace, s.JMin, s.JMax)
	case s.KMin < 1 || s.KMax < s.KMin:
		return fmt.Errorf("%w: K range [%d, %d]", ErrInvalidSearchSpace, s.KMin, s.KMax)
	case !s.RatioStep.IsPositive():
		return fmt.Errorf("%w: ratio step %s", ErrInvalidSearchSpace, s.RatioStep)
	case s.RatioMin.IsNegative() || s.RatioMax.GreaterThan(decimal.NewFromInt(1)) || !s.RatioMin.LessThan(s.RatioMax):
		return fmt.Errorf("%w: ratio range [%s, %s)", ErrInvalidSearchSpace, s.RatioMin, s.RatioMax)
	}
	return nil
}

// Ratios lists the ratio grid.
func (s SearchSpace) Ratios() []decimal.Decimal {
	var out []decimal.Decimal
	if !s.RatioStep.IsPositive() {
		return out
	}
	for r := s.RatioMin; r.LessThan(s.RatioMax); r = r.Add(s.RatioStep) {
		out = append(out, r)
	}
	return out
}

// Size is the number of distinct (J, K, ratio) triples.
func (s SearchSpace) Size() int {
	return (s.JMax - s.JMin + 1) * (s.KMax - s.KMin + 1) * len(s.Ratios())
}

// RunParams are the inputs of one simulation run.
type RunParams struct {
	J            int
	K            int
	Ratio        decimal.Decimal
	StartingCash decimal.Decimal
}

func (p RunParams) String() string {
	return fmt.Sprintf("J=%d K=%d ratio=%s", p.J, p.K, p.Ratio)
}

// sampler draws run parameters uniformly from a search space. It is not safe
// for concurrent use; the sweep draws every sample before starting any run.
type sampler struct {
	rng    *rand.Rand
	space  SearchSpace
	ratios []decimal.Decimal
	seed   uint64
}

func newSampler(space SearchSpace, seed uint64) (*sampler, error) {
	if err := space.Validate(); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &sampler{
		rng:    rand.New(rand.NewPCG(seed, seed>>32|seed<<32)),
		space:  space,
		ratios: space.Ratios(),
		seed:   seed,
	}, nil
}

func (s *sampler) sample(startingCash decimal.Decimal) RunParams {
	return RunParams{
		J:            s.space.JMin + s.rng.IntN(s.space.JMax-s.space.JMin+1),
		K:            s.space.KMin + s.rng.IntN(s.space.KMax-s.space.KMin+1),
		Ratio:        s.ratios[s.rng.IntN(len(s.ratios))],
		StartingCash: startingCash,
	}
}

func (s *sampler) sampleN(n int, startingCash decimal.Decimal) []RunParams {
	out := make([]RunParams, n)
	for i := range out {
		out[i] = s.sample(startingCash)
	}
	return out
}
