package valuation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/dynastyhq/gridiron/internal/domain"
)

// PositionalScarcity estimates how steeply a position's production drops
// from its top tier to replacement level. A large drop-off means the few
// elite players at the position deserve aggressive bids.
//
// Returns 1.5 when the position pool is thinner than its replacement level,
// otherwise a graded multiplier derived from the points gap between the
// top-third mean and the replacement player.
func PositionalScarcity(position domain.Position, pool []domain.PlayerRecord) float64 {
	level, ok := replacementLevels[position]
	if !ok {
		return 1.0
	}

	var points []float64
	for _, p := range pool {
		if p.Position == position {
			points = append(points, p.ProjectedPoints)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(points)))

	if len(points) < level {
		return 1.5 // not even enough bodies to fill starting lineups
	}

	topTier := points[:level/3]
	if len(topTier) == 0 {
		return 1.0
	}
	dropOff := stat.Mean(topTier, nil) - points[level-1]

	switch {
	case dropOff > 100:
		return 1.3
	case dropOff > 75:
		return 1.2
	case dropOff > 50:
		return 1.1
	default:
		return 1.0
	}
}
