package fantasypros

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynastyhq/gridiron/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	opts = append(opts, WithPacing(0, func(time.Duration) {}))
	return NewClient(server.URL, "test-key", "2025", zerolog.Nop(), opts...)
}

func TestConsensusRankings_ReshapesPlayers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "/nfl/2025/consensus-rankings", r.URL.Path)
		assert.Equal(t, "PPR", r.URL.Query().Get("scoring"))
		assert.Equal(t, "WR", r.URL.Query().Get("position"))

		w.Write([]byte(`{"count":2,"total_experts":40,"players":[
			{"player_name":"Justin Jefferson","player_team_id":"MIN","player_position_id":"WR",
			 "rank_ecr":1,"pos_rank":"WR1","tier":1,"player_bye_week":"6"},
			{"player_name":"D.J. Moore","player_team_id":"CHI","player_position_id":"WR",
			 "rank_ecr":18,"pos_rank":"WR12","tier":3,"player_bye_week":5}
		]}`))
	})

	records, err := client.ConsensusRankings(context.Background(), domain.PositionWR)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Justin Jefferson", records[0].Name)
	assert.Equal(t, domain.PositionWR, records[0].Position)
	assert.Equal(t, 1, records[0].Rank)
	assert.Equal(t, "WR1", records[0].PositionRank)
	require.NotNil(t, records[0].ByeWeek)
	assert.Equal(t, 6, *records[0].ByeWeek, "string bye week should parse")

	require.NotNil(t, records[1].ByeWeek)
	assert.Equal(t, 5, *records[1].ByeWeek, "numeric bye week should parse")
}

func TestConsensusRankings_MissingOptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"players":[{"player_name":"Some Linebacker","player_team_id":"DAL",
			"player_position_id":"LB","rank_ecr":44,"pos_rank":"LB44"}]}`))
	})

	records, err := client.ConsensusRankings(context.Background(), domain.PositionLB)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Tier)
	assert.Nil(t, records[0].ByeWeek)
}

func TestProjections_ExtractsPoints(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nfl/2025/projections", r.URL.Path)
		w.Write([]byte(`{"season":2025,"players":[
			{"name":"Josh Allen","team_id":"BUF","position_id":"QB","stats":{"points":412.7,"pass_yds":4300}}
		]}`))
	})

	projections, err := client.Projections(context.Background(), domain.PositionQB)
	require.NoError(t, err)
	require.Len(t, projections, 1)
	assert.Equal(t, 412.7, projections[0].Points)
	assert.Equal(t, "BUF", projections[0].Team)
}

func TestConsensusRankings_AuthFailureIsPermanent(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.ConsensusRankings(context.Background(), domain.PositionQB)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx other than 429 should not be retried")
}

func TestConsensusRankings_RetriesRateLimit(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"players":[]}`))
	})

	records, err := client.ConsensusRankings(context.Background(), domain.PositionQB)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 2, calls)
}
