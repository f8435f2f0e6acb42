package valuation

import (
	"math"
	"sort"

	"github.com/dynastyhq/gridiron/internal/domain"
)

// Breakdown retains every component of a valuation for auditability and
// dashboard display.
type Breakdown struct {
	BaseValue      int     `json:"base_value"`
	AgeAdjustment  float64 `json:"age_adjustment"`
	DraftCapital   float64 `json:"draft_capital"`
	TeamSituation  float64 `json:"team_situation"`
	RookieBonus    float64 `json:"rookie_bonus"`
	ContractStatus float64 `json:"contract_status"`
}

// Result is the auction valuation for a single player.
type Result struct {
	AuctionValue           int       `json:"auction_value"`
	VBD                    float64   `json:"vbd"`
	DynastyMultiplier      float64   `json:"dynasty_multiplier"`
	DraftCapitalMultiplier float64   `json:"draft_capital_multiplier"`
	TeamMultiplier         float64   `json:"team_multiplier"`
	RookieMultiplier       float64   `json:"rookie_multiplier"`
	ContractMultiplier     float64   `json:"contract_multiplier"`
	Breakdown              Breakdown `json:"breakdown"`
}

// poolContext carries the totals shared by every valuation over one pool,
// so valuing a whole pool stays linear after the initial VBD pass.
type poolContext struct {
	vbds         []float64 // indexed like the pool
	totalVBD     float64
	totalDollars int
}

// newPoolContext computes per-player VBD, selects the draftable universe
// (top rosterSize*numTeams by VBD), and derives the dollar pool. Every
// roster slot reserves a $1 minimum bid before the remaining dollars are
// spread over the draftable universe's VBD.
func newPoolContext(pool []domain.PlayerRecord, settings Settings) poolContext {
	ctx := poolContext{vbds: make([]float64, len(pool))}
	for i, p := range pool {
		ctx.vbds[i] = VBD(p, pool)
	}

	draftableSlots := settings.RosterSize * settings.NumTeams
	sorted := make([]float64, len(ctx.vbds))
	copy(sorted, ctx.vbds)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	if draftableSlots < len(sorted) {
		sorted = sorted[:draftableSlots]
	}
	for _, v := range sorted {
		ctx.totalVBD += v
	}

	ctx.totalDollars = settings.TotalBudget*settings.NumTeams - draftableSlots
	return ctx
}

// value synthesizes one player's auction value from its VBD and the shared
// pool context.
func (ctx poolContext) value(player domain.PlayerRecord, vbd float64, settings Settings) Result {
	baseValue := 1
	if ctx.totalVBD > 0 && vbd > 0 {
		baseValue = int(math.Round(vbd * float64(ctx.totalDollars) / ctx.totalVBD))
	}

	dynasty := dynastyMultiplier(player, settings.CurrentYear)
	draftCapital := draftCapitalMultiplier(player)
	team := teamMultiplier(player)
	rookie := rookieMultiplier(player, settings.CurrentYear)
	contract := contractMultiplier(settings.ContractStatus)

	totalMultiplier := dynasty * draftCapital * team * rookie * contract
	auctionValue := int(math.Round(float64(baseValue) * totalMultiplier))

	if settings.BlendRankings && player.Rank != nil {
		rankValue := valueFromRank(*player.Rank, settings.TotalBudget)
		auctionValue = int(math.Round(float64(auctionValue)*0.7 + float64(rankValue)*0.3))
	}

	maxValue := int(float64(settings.TotalBudget) * 0.4)
	if auctionValue < 1 {
		auctionValue = 1
	}
	if auctionValue > maxValue {
		auctionValue = maxValue
	}

	return Result{
		AuctionValue:           auctionValue,
		VBD:                    vbd,
		DynastyMultiplier:      dynasty,
		DraftCapitalMultiplier: draftCapital,
		TeamMultiplier:         team,
		RookieMultiplier:       rookie,
		ContractMultiplier:     contract,
		Breakdown: Breakdown{
			BaseValue:      baseValue,
			AgeAdjustment:  dynasty,
			DraftCapital:   draftCapital,
			TeamSituation:  team,
			RookieBonus:    rookie,
			ContractStatus: contract,
		},
	}
}

// Value computes the auction value of one player against the pool.
func Value(player domain.PlayerRecord, pool []domain.PlayerRecord, settings Settings) Result {
	ctx := newPoolContext(pool, settings)
	return ctx.value(player, VBD(player, pool), settings)
}

// ValueAll computes auction values for every player in the pool, sharing
// the replacement and dollar-pool computation across players.
func ValueAll(pool []domain.PlayerRecord, settings Settings) []Result {
	ctx := newPoolContext(pool, settings)
	results := make([]Result, len(pool))
	for i, p := range pool {
		results[i] = ctx.value(p, ctx.vbds[i], settings)
	}
	return results
}
