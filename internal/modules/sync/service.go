// Package sync orchestrates a league sync: pull the player directory and
// rosters from the league host, rebuild the canonical player pool, pull
// consensus rankings and projections from the rankings host, resolve player
// identity across the two, and persist the result.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/clients/fantasypros"
	"github.com/dynastyhq/gridiron/internal/clients/mfl"
	"github.com/dynastyhq/gridiron/internal/clients/sleeper"
	"github.com/dynastyhq/gridiron/internal/domain"
	"github.com/dynastyhq/gridiron/internal/identity"
)

// rankingsGroups is the set of position groups fetched from the rankings
// host. Kickers and team defenses are not covered there.
var rankingsGroups = []domain.Position{
	domain.PositionQB, domain.PositionRB, domain.PositionWR, domain.PositionTE,
	domain.PositionDL, domain.PositionLB, domain.PositionDB,
}

// LeagueHost is the subset of the MFL client the sync needs.
type LeagueHost interface {
	Players(ctx context.Context) ([]mfl.Player, error)
	Rosters(ctx context.Context, leagueID string) ([]mfl.FranchiseRoster, error)
}

// RankingsHost is the subset of the FantasyPros client the sync needs.
type RankingsHost interface {
	ConsensusRankings(ctx context.Context, position domain.Position) ([]domain.RankingRecord, error)
	Projections(ctx context.Context, position domain.Position) ([]fantasypros.Projection, error)
}

// MetadataHost supplies supplemental player metadata (ages). Optional.
type MetadataHost interface {
	Players(ctx context.Context) (map[string]sleeper.Player, error)
}

// PlayerStore is the subset of the players repository the sync needs.
type PlayerStore interface {
	UpsertBatch(records []domain.PlayerRecord, leagueID string) error
	MarkAllRostered(leagueID string) (int64, error)
	UpdateRanking(mflID string, rank int, tier, byeWeek *int, strategy domain.MatchStrategy) error
}

// Service runs league syncs.
type Service struct {
	league   LeagueHost
	rankings RankingsHost
	metadata MetadataHost // nil disables enrichment
	store    PlayerStore
	runs     *RunRepository
	matcher  *identity.Matcher
	leagueID string
	year     string
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a sync service. metadata may be nil.
func NewService(league LeagueHost, rankings RankingsHost, metadata MetadataHost,
	store PlayerStore, runs *RunRepository, leagueID, year string, log zerolog.Logger) *Service {
	return &Service{
		league:   league,
		rankings: rankings,
		metadata: metadata,
		store:    store,
		runs:     runs,
		matcher:  identity.NewMatcher(log),
		leagueID: leagueID,
		year:     year,
		now:      time.Now,
		log:      log.With().Str("component", "sync").Logger(),
	}
}

// Run executes a full sync and records it in sync history. The returned Run
// carries the summary counters even when the sync failed partway.
func (s *Service) Run(ctx context.Context) (*Run, error) {
	run, err := s.runs.Start(s.leagueID, s.year)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("run_id", run.ID).Str("league_id", s.leagueID).Msg("Starting league sync")

	if err := s.execute(ctx, run); err != nil {
		run.Error = err.Error()
		if finishErr := s.runs.Finish(run); finishErr != nil {
			s.log.Error().Err(finishErr).Str("run_id", run.ID).Msg("Failed to record sync failure")
		}
		return run, err
	}

	if err := s.runs.Finish(run); err != nil {
		return run, err
	}
	s.log.Info().
		Str("run_id", run.ID).
		Int("players", run.Summary.TotalPlayers).
		Int("matched", run.Summary.PlayersMatched).
		Int("unmatched", run.Summary.PlayersUnmatched).
		Msg("League sync finished")
	return run, nil
}

func (s *Service) execute(ctx context.Context, run *Run) error {
	directory, err := s.league.Players(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch player directory: %w", err)
	}

	rosters, err := s.league.Rosters(ctx, s.leagueID)
	if err != nil {
		return fmt.Errorf("failed to fetch rosters: %w", err)
	}
	rostered := rosteredIDs(rosters)
	run.Summary.RosteredPlayers = len(rostered)

	pool := s.buildPool(directory, rostered)
	run.Summary.TotalPlayers = len(pool)
	for _, p := range pool {
		if p.IsFreeAgent {
			run.Summary.FreeAgents++
		}
	}

	s.enrichAges(ctx, pool)
	s.applyProjections(ctx, pool)

	if _, err := s.store.MarkAllRostered(s.leagueID); err != nil {
		return err
	}
	if err := s.store.UpsertBatch(pool, s.leagueID); err != nil {
		return err
	}

	rankings := s.fetchRankings(ctx)
	run.Summary.RankingsFetched = len(rankings)

	results, stats := s.matcher.Match(pool, rankings)
	run.Summary.PlayersMatched = stats.Matched
	run.Summary.PlayersUnmatched = stats.Unmatched
	run.Summary.Collisions = stats.Collisions

	for _, result := range results {
		if result.Ranking == nil {
			continue
		}
		err := s.store.UpdateRanking(result.Player.ID, result.Ranking.Rank,
			result.Ranking.Tier, result.Ranking.ByeWeek, result.Strategy)
		if err != nil {
			return err
		}
	}
	return nil
}

// rosteredIDs flattens every franchise roster into a set of player IDs.
func rosteredIDs(rosters []mfl.FranchiseRoster) map[string]bool {
	ids := make(map[string]bool)
	for _, franchise := range rosters {
		for _, p := range franchise.Player {
			if p.ID != "" {
				ids[string(p.ID)] = true
			}
		}
	}
	return ids
}

// buildPool converts the raw directory into PlayerRecords. Administrative
// slots and unrecognized positions are dropped. Players without an NFL team
// are kept only when rostered (a rostered player mid-move still matters; an
// unrostered one does not).
func (s *Service) buildPool(directory []mfl.Player, rostered map[string]bool) []domain.PlayerRecord {
	now := s.now()
	pool := make([]domain.PlayerRecord, 0, len(directory))

	for _, raw := range directory {
		if raw.ID == "" || raw.Name == "" || raw.Position == "" {
			continue
		}
		if domain.IsAdministrative(raw.Position) {
			continue
		}
		position := domain.ParsePosition(raw.Position)
		if position == domain.PositionUnknown {
			continue
		}

		isRostered := rostered[string(raw.ID)]
		hasTeam := raw.Team != "" && raw.Team != "FA"
		if !isRostered && !hasTeam {
			continue
		}

		record := domain.PlayerRecord{
			ID:          string(raw.ID),
			Name:        raw.Name,
			Position:    position,
			Team:        raw.Team,
			DraftYear:   string(raw.DraftYear),
			DraftRound:  string(raw.DraftRound),
			DraftPick:   string(raw.DraftPick),
			IsFreeAgent: !isRostered,
		}
		record.NormalizedKey = identity.Normalize(record.Name)
		if birth, ok := raw.BirthTime(); ok {
			record.Birthdate = &birth
			record.Age = record.AgeAt(now)
		}

		pool = append(pool, record)
	}
	return pool
}

// enrichAges fills missing ages from the metadata host, matched by
// normalized name. Best effort: a metadata failure never fails the sync.
func (s *Service) enrichAges(ctx context.Context, pool []domain.PlayerRecord) {
	if s.metadata == nil {
		return
	}

	catalog, err := s.metadata.Players(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Metadata fetch failed, skipping age enrichment")
		return
	}

	byName := make(map[string]sleeper.Player, len(catalog))
	for _, p := range catalog {
		if p.Age != nil {
			byName[identity.Normalize(p.FullName())] = p
		}
	}

	enriched := 0
	for i := range pool {
		if pool[i].Age != nil {
			continue
		}
		if match, ok := byName[pool[i].NormalizedKey]; ok {
			age := *match.Age
			pool[i].Age = &age
			enriched++
		}
	}
	if enriched > 0 {
		s.log.Debug().Int("players", enriched).Msg("Ages enriched from metadata host")
	}
}

// applyProjections fills projected points from the rankings host, matched by
// normalized name within each position group. Best effort.
func (s *Service) applyProjections(ctx context.Context, pool []domain.PlayerRecord) {
	points := make(map[string]float64)
	for _, group := range rankingsGroups {
		projections, err := s.rankings.Projections(ctx, group)
		if err != nil {
			s.log.Warn().Err(err).Str("position", string(group)).Msg("Projections fetch failed, skipping group")
			continue
		}
		for _, proj := range projections {
			points[identity.Normalize(proj.Name)] = proj.Points
		}
	}
	if len(points) == 0 {
		return
	}

	for i := range pool {
		if pts, ok := points[pool[i].NormalizedKey]; ok {
			pool[i].ProjectedPoints = pts
		}
	}
}

// fetchRankings pulls consensus rankings for every covered position group.
// A failed group is skipped rather than failing the sync; partial rankings
// still let most of the pool resolve.
func (s *Service) fetchRankings(ctx context.Context) []domain.RankingRecord {
	var all []domain.RankingRecord
	for _, group := range rankingsGroups {
		records, err := s.rankings.ConsensusRankings(ctx, group)
		if err != nil {
			s.log.Warn().Err(err).Str("position", string(group)).Msg("Rankings fetch failed, skipping group")
			continue
		}
		all = append(all, records...)
	}
	return all
}
