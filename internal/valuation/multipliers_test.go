package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dynastyhq/gridiron/internal/domain"
)

func intp(v int) *int { return &v }

func TestDynastyMultiplier_PeakAges(t *testing.T) {
	for _, tc := range []struct {
		position domain.Position
		age      int
	}{
		{domain.PositionQB, 26}, {domain.PositionQB, 32},
		{domain.PositionRB, 23}, {domain.PositionRB, 26},
		{domain.PositionWR, 25}, {domain.PositionWR, 29},
		{domain.PositionTE, 26}, {domain.PositionTE, 30},
	} {
		p := domain.PlayerRecord{Position: tc.position, Age: intp(tc.age)}
		assert.Equal(t, 1.0, dynastyMultiplier(p, 2025), "%s at %d", tc.position, tc.age)
	}
}

func TestDynastyMultiplier_YoungBonusAndOldPenalty(t *testing.T) {
	rb22 := domain.PlayerRecord{Position: domain.PositionRB, Age: intp(22)}
	assert.Equal(t, 1.1, dynastyMultiplier(rb22, 2025))

	rb30 := domain.PlayerRecord{Position: domain.PositionRB, Age: intp(30)}
	assert.Equal(t, 0.65, dynastyMultiplier(rb30, 2025))

	wr21 := domain.PlayerRecord{Position: domain.PositionWR, Age: intp(21)}
	assert.Equal(t, 1.2, dynastyMultiplier(wr21, 2025))
}

func TestDynastyMultiplier_UntabulatedExtremes(t *testing.T) {
	young := domain.PlayerRecord{Position: domain.PositionQB, Age: intp(20)}
	assert.Equal(t, 1.3, dynastyMultiplier(young, 2025))

	old := domain.PlayerRecord{Position: domain.PositionQB, Age: intp(40)}
	assert.Equal(t, 0.6, dynastyMultiplier(old, 2025))
}

func TestDynastyMultiplier_NoAgeOrNoCurve(t *testing.T) {
	noAge := domain.PlayerRecord{Position: domain.PositionRB}
	assert.Equal(t, 1.0, dynastyMultiplier(noAge, 2025))

	kicker := domain.PlayerRecord{Position: domain.PositionPK, Age: intp(43)}
	assert.Equal(t, 1.0, dynastyMultiplier(kicker, 2025))
}

func TestDynastyMultiplier_FallsBackToBirthYear(t *testing.T) {
	birth := time.Date(1995, 6, 1, 0, 0, 0, 0, time.UTC)
	p := domain.PlayerRecord{Position: domain.PositionRB, Birthdate: &birth}
	// 2025 - 1995 = 30 -> RB old penalty 0.65
	assert.Equal(t, 0.65, dynastyMultiplier(p, 2025))
}

func TestDraftCapitalMultiplier_Tiers(t *testing.T) {
	for _, tc := range []struct {
		round, pick string
		want        float64
	}{
		{"1", "5", 1.2},   // overall 5
		{"1", "20", 1.1},  // overall 20
		{"2", "10", 1.05}, // overall 42
		{"3", "1", 1.0},   // overall 65
		{"4", "30", 0.95}, // overall 126
		{"6", "10", 0.9},  // overall 170
	} {
		p := domain.PlayerRecord{DraftRound: tc.round, DraftPick: tc.pick}
		assert.Equal(t, tc.want, draftCapitalMultiplier(p), "round %s pick %s", tc.round, tc.pick)
	}
}

func TestDraftCapitalMultiplier_MissingData(t *testing.T) {
	assert.Equal(t, 1.0, draftCapitalMultiplier(domain.PlayerRecord{}))
	assert.Equal(t, 1.0, draftCapitalMultiplier(domain.PlayerRecord{DraftRound: "2"}))
	assert.Equal(t, 1.0, draftCapitalMultiplier(domain.PlayerRecord{DraftRound: "x", DraftPick: "y"}))
}

func TestTeamMultiplier_CappedStack(t *testing.T) {
	// KC is both an elite offense and a good QB situation: 1.05*1.05
	// would be 1.1025, capped at 1.10.
	qb := domain.PlayerRecord{Position: domain.PositionQB, Team: "KC"}
	assert.Equal(t, 1.1, teamMultiplier(qb))

	// Elite offense only.
	te := domain.PlayerRecord{Position: domain.PositionTE, Team: "DAL"}
	assert.Equal(t, 1.05, teamMultiplier(te))

	// Good situation without elite offense.
	rb := domain.PlayerRecord{Position: domain.PositionRB, Team: "DET"}
	assert.Equal(t, 1.05, teamMultiplier(rb))

	// Neither.
	wr := domain.PlayerRecord{Position: domain.PositionWR, Team: "NE"}
	assert.Equal(t, 1.0, teamMultiplier(wr))
}

func TestRookieMultiplier_StringYearComparison(t *testing.T) {
	rookie := domain.PlayerRecord{DraftYear: "2025"}
	assert.Equal(t, 1.15, rookieMultiplier(rookie, 2025))

	veteran := domain.PlayerRecord{DraftYear: "2019"}
	assert.Equal(t, 1.0, rookieMultiplier(veteran, 2025))

	undrafted := domain.PlayerRecord{}
	assert.Equal(t, 1.0, rookieMultiplier(undrafted, 2025))
}

func TestContractMultiplier(t *testing.T) {
	assert.Equal(t, 0.95, contractMultiplier("expiring"))
	assert.Equal(t, 1.0, contractMultiplier(""))
	assert.Equal(t, 1.0, contractMultiplier("signed"))
}

func TestValueFromRank_Brackets(t *testing.T) {
	budget := 500
	assert.Equal(t, 60, valueFromRank(1, budget))
	assert.Equal(t, 60, valueFromRank(12, budget))
	assert.Equal(t, 40, valueFromRank(24, budget))
	assert.Equal(t, 25, valueFromRank(50, budget))
	assert.Equal(t, 10, valueFromRank(100, budget))
	assert.Equal(t, 5, valueFromRank(200, budget))
	assert.Equal(t, 1, valueFromRank(201, budget))
}
