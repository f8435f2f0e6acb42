package identity

import (
	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/domain"
)

// Matcher resolves players against ranking records by name variation lookup.
type Matcher struct {
	log zerolog.Logger
}

// NewMatcher creates a new matcher
func NewMatcher(log zerolog.Logger) *Matcher {
	return &Matcher{log: log.With().Str("component", "matcher").Logger()}
}

// MatchStats summarizes one matching pass, for sync reporting.
type MatchStats struct {
	Matched    int `json:"matched"`
	Unmatched  int `json:"unmatched"`
	Collisions int `json:"collisions"` // variation keys claimed by more than one ranking
}

// Match pairs each player with at most one ranking record.
//
// A lookup is built from every variation of every ranking's name. When two
// rankings collide on a variation key the later one silently wins; that
// ambiguity is accepted (the collision count is reported for diagnostics but
// never changes the resolved value). Each player then tries its own
// variations in order and takes the first hit. Players that miss every
// variation get one last lossy attempt, first-name + last-initial, unless
// they are a team defense (defense "names" are team names and the fallback
// would cross-match them). Unmatched players carry a nil Ranking.
//
// Pure function of its inputs: results are deterministic given stable input
// order.
func (m *Matcher) Match(players []domain.PlayerRecord, rankings []domain.RankingRecord) ([]domain.MatchResult, MatchStats) {
	lookup := make(map[string]*domain.RankingRecord, len(rankings)*4)
	stats := MatchStats{}

	for i := range rankings {
		for _, v := range Variations(rankings[i].Name) {
			if _, taken := lookup[v]; taken {
				stats.Collisions++
				m.log.Debug().
					Str("key", v).
					Str("winner", rankings[i].Name).
					Msg("Ranking variation collision, last write wins")
			}
			lookup[v] = &rankings[i]
		}
	}

	results := make([]domain.MatchResult, 0, len(players))
	for _, player := range players {
		result := domain.MatchResult{Player: player, Strategy: domain.MatchNone}
		normalized := Normalize(player.Name)
		initialKey := firstNameLastInitial(normalized)

		for _, v := range Variations(player.Name) {
			if ranking, ok := lookup[v]; ok {
				result.Ranking = ranking
				switch v {
				case normalized:
					result.Strategy = domain.MatchExact
				case initialKey:
					result.Strategy = domain.MatchInitialFallback
				default:
					result.Strategy = domain.MatchVariation
				}
				break
			}
		}

		// Variations already ends with the initial key, but only for names
		// it could derive one from; re-attempt explicitly for everything
		// except team defenses.
		if result.Ranking == nil && !player.Position.IsTeamDefense() && initialKey != "" {
			if ranking, ok := lookup[initialKey]; ok {
				result.Ranking = ranking
				result.Strategy = domain.MatchInitialFallback
			}
		}

		if result.Ranking != nil {
			stats.Matched++
		} else {
			stats.Unmatched++
		}
		results = append(results, result)
	}

	return results, stats
}
