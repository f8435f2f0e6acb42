package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynastyhq/gridiron/internal/domain"
)

func leaguePool() []domain.PlayerRecord {
	var pool []domain.PlayerRecord
	pool = append(pool, buildPool(domain.PositionQB, 36, 420, 6)...)
	pool = append(pool, buildPool(domain.PositionRB, 70, 340, 3)...)
	pool = append(pool, buildPool(domain.PositionWR, 90, 330, 2.5)...)
	pool = append(pool, buildPool(domain.PositionTE, 36, 230, 4)...)
	pool = append(pool, buildPool(domain.PositionLB, 50, 210, 2)...)
	return pool
}

func TestValue_ReplacementPlayerGetsMinimumBid(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()

	// QB replacement rank is 24; with no multiplier data the value floors
	// at the $1 minimum bid.
	replacement := pool[23]
	result := Value(replacement, pool, settings)

	assert.Zero(t, result.VBD)
	assert.Equal(t, 1, result.AuctionValue)
	assert.Equal(t, 1.0, result.DynastyMultiplier)
	assert.Equal(t, 1.0, result.DraftCapitalMultiplier)
	assert.Equal(t, 1.0, result.TeamMultiplier)
	assert.Equal(t, 1.0, result.RookieMultiplier)
	assert.Equal(t, 1.0, result.ContractMultiplier)
}

func TestValue_ClampInvariant(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()
	maxValue := settings.TotalBudget * 4 / 10

	for _, r := range ValueAll(pool, settings) {
		assert.GreaterOrEqual(t, r.AuctionValue, 1)
		assert.LessOrEqual(t, r.AuctionValue, maxValue)
	}
}

func TestValue_TopPlayerOutvaluesReplacement(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()

	top := Value(pool[0], pool, settings)
	assert.Greater(t, top.AuctionValue, 1)
	assert.Greater(t, top.VBD, 0.0)
	assert.Equal(t, top.Breakdown.BaseValue, top.AuctionValue,
		"no multipliers apply without age/draft/team data on a mid-list team")
}

func TestValue_MultipliersApplied(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()

	plain := Value(pool[0], pool, settings)

	boosted := pool[0]
	boosted.Team = "KC"
	boosted.Age = intp(22)
	boosted.DraftRound = "1"
	boosted.DraftPick = "3"
	boosted.DraftYear = "2025"
	result := Value(boosted, pool, settings)

	assert.Equal(t, 1.08, result.DynastyMultiplier) // QB young bonus at 22
	assert.Equal(t, 1.2, result.DraftCapitalMultiplier)
	assert.Equal(t, 1.1, result.TeamMultiplier)
	assert.Equal(t, 1.15, result.RookieMultiplier)
	assert.Greater(t, result.AuctionValue, plain.AuctionValue)
}

func TestValue_ContractPenaltyFromSettings(t *testing.T) {
	settings := DefaultSettings(2025)
	settings.ContractStatus = "expiring"
	pool := leaguePool()

	result := Value(pool[0], pool, settings)
	assert.Equal(t, 0.95, result.ContractMultiplier)
}

func TestValue_RankBlend(t *testing.T) {
	settings := DefaultSettings(2025)
	settings.BlendRankings = true
	pool := leaguePool()

	// A fringe player with an elite overall rank gets pulled up by the
	// rank-derived anchor: round(0.7*1 + 0.3*60) = 19.
	fringe := pool[30] // below QB replacement, base value 1
	fringe.Rank = intp(5)
	result := Value(fringe, pool, settings)
	assert.Equal(t, 19, result.AuctionValue)

	// Blend disabled: rank is ignored.
	settings.BlendRankings = false
	result = Value(fringe, pool, settings)
	assert.Equal(t, 1, result.AuctionValue)
}

func TestValue_EmptyPool(t *testing.T) {
	settings := DefaultSettings(2025)
	player := domain.PlayerRecord{Name: "Solo", Position: domain.PositionQB, ProjectedPoints: 300}

	result := Value(player, nil, settings)
	assert.Equal(t, 1, result.AuctionValue)

	assert.Empty(t, ValueAll(nil, settings))
}

func TestValueAll_MatchesSingleValue(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()

	all := ValueAll(pool, settings)
	for _, i := range []int{0, 23, 50, 120, len(pool) - 1} {
		single := Value(pool[i], pool, settings)
		assert.Equal(t, single, all[i], "pool index %d", i)
	}
}

func TestTierPlayers_ExhaustiveDisjointPartition(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()

	tiers := TierPlayers(pool, settings)
	bands := map[string][]TieredPlayer{
		"elite": tiers.Elite, "premium": tiers.Premium, "starter": tiers.Starter,
		"value": tiers.Value, "bargain": tiers.Bargain, "dollar": tiers.Dollar,
	}

	seen := make(map[string]string)
	total := 0
	for name, band := range bands {
		total += len(band)
		for _, tp := range band {
			if prior, dup := seen[tp.Player.ID]; dup {
				t.Fatalf("player %s in both %s and %s", tp.Player.ID, prior, name)
			}
			seen[tp.Player.ID] = name
		}
	}
	assert.Equal(t, len(pool), total, "every player lands in exactly one tier")
}

func TestTierPlayers_BandBoundariesAndOrdering(t *testing.T) {
	settings := DefaultSettings(2025)
	pool := leaguePool()
	tiers := TierPlayers(pool, settings)

	check := func(band []TieredPlayer, lo, hi int) {
		prev := hi
		for _, tp := range band {
			assert.GreaterOrEqual(t, tp.AuctionValue, lo)
			assert.LessOrEqual(t, tp.AuctionValue, hi)
			assert.LessOrEqual(t, tp.AuctionValue, prev, "band sorted descending")
			prev = tp.AuctionValue
		}
	}
	maxValue := settings.TotalBudget * 4 / 10
	check(tiers.Elite, 40, maxValue)
	check(tiers.Premium, 25, 39)
	check(tiers.Starter, 10, 24)
	check(tiers.Value, 5, 9)
	check(tiers.Bargain, 2, 4)
	check(tiers.Dollar, 1, 1)
}

func TestPositionalScarcity(t *testing.T) {
	// Thin position pool: maximum scarcity.
	thin := buildPool(domain.PositionTE, 10, 200, 5)
	assert.Equal(t, 1.5, PositionalScarcity(domain.PositionTE, thin))

	// Steep drop-off from top tier to replacement.
	steep := buildPool(domain.PositionRB, 60, 400, 6)
	// top third (16) mean = 400 - avg(0..15)*6 = 400 - 45 = 355;
	// replacement (48th) = 400 - 47*6 = 118; drop-off 237 -> 1.3.
	assert.Equal(t, 1.3, PositionalScarcity(domain.PositionRB, steep))

	// Flat position: no scarcity premium.
	flat := buildPool(domain.PositionQB, 40, 300, 0.5)
	assert.Equal(t, 1.0, PositionalScarcity(domain.PositionQB, flat))

	// No replacement level configured.
	assert.Equal(t, 1.0, PositionalScarcity(domain.PositionUnknown, flat))
}
