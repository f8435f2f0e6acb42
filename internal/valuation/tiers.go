package valuation

import (
	"sort"

	"github.com/dynastyhq/gridiron/internal/domain"
)

// TieredPlayer is a player annotated with its computed valuation, as placed
// into an auction tier.
type TieredPlayer struct {
	Player       domain.PlayerRecord `json:"player"`
	AuctionValue int                 `json:"auction_value"`
	VBD          float64             `json:"vbd"`
	Breakdown    Breakdown           `json:"breakdown"`
}

// Tiers partitions the pool into auction strategy bands by dollar value.
// Values are integers clamped to [1, 0.4*budget], so every player lands in
// exactly one band.
type Tiers struct {
	Elite   []TieredPlayer `json:"elite"`   // $40+
	Premium []TieredPlayer `json:"premium"` // $25-39
	Starter []TieredPlayer `json:"starter"` // $10-24
	Value   []TieredPlayer `json:"value"`   // $5-9
	Bargain []TieredPlayer `json:"bargain"` // $2-4
	Dollar  []TieredPlayer `json:"dollar"`  // $1
}

// TierPlayers values every player in the pool and buckets them into dollar
// bands, each band sorted descending by value.
func TierPlayers(pool []domain.PlayerRecord, settings Settings) Tiers {
	results := ValueAll(pool, settings)

	var tiers Tiers
	for i, r := range results {
		tp := TieredPlayer{
			Player:       pool[i],
			AuctionValue: r.AuctionValue,
			VBD:          r.VBD,
			Breakdown:    r.Breakdown,
		}
		switch {
		case r.AuctionValue >= 40:
			tiers.Elite = append(tiers.Elite, tp)
		case r.AuctionValue >= 25:
			tiers.Premium = append(tiers.Premium, tp)
		case r.AuctionValue >= 10:
			tiers.Starter = append(tiers.Starter, tp)
		case r.AuctionValue >= 5:
			tiers.Value = append(tiers.Value, tp)
		case r.AuctionValue >= 2:
			tiers.Bargain = append(tiers.Bargain, tp)
		default:
			tiers.Dollar = append(tiers.Dollar, tp)
		}
	}

	for _, band := range [][]TieredPlayer{
		tiers.Elite, tiers.Premium, tiers.Starter,
		tiers.Value, tiers.Bargain, tiers.Dollar,
	} {
		sort.SliceStable(band, func(i, j int) bool {
			return band[i].AuctionValue > band[j].AuctionValue
		})
	}

	return tiers
}
