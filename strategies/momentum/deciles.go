package momentum

import "momentum/types"

// SplitDeciles returns the top (winners) and bottom (losers) deciles of a ranking
// sorted ascending. Rankings shorter than ten fall back to one stock per side.
func SplitDeciles(ranked []types.Security) (winners, losers []types.Security) {
	if len(ranked) == 0 {
		return []types.Security{}, []types.Security{}
	}
	if len(ranked) < 10 {
		return []types.Security{ranked[len(ranked)-1]}, []types.Security{ranked[0]}
	}

	decileSize := len(ranked) / 10
	losers = append([]types.Security(nil), ranked[:decileSize]...)
	winners = append([]types.Security(nil), ranked[len(ranked)-decileSize:]...)
	return winners, losers
}

func (r *Ranker) SplitDeciles(ranked []types.Security) ([]types.Security, []types.Security) {
	return SplitDeciles(ranked)
}
