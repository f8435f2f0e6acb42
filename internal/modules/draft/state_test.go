package draft

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynastyhq/gridiron/internal/domain"
)

type fakeLookup struct {
	players map[string]*domain.PlayerRecord
}

func (f *fakeLookup) GetByID(id string) (*domain.PlayerRecord, error) {
	return f.players[id], nil
}

func testLookup() *fakeLookup {
	return &fakeLookup{players: map[string]*domain.PlayerRecord{
		"13604": {ID: "13604", Name: "Hill, Tyreek", Position: domain.PositionWR},
		"12625": {ID: "12625", Name: "McCaffrey, Christian", Position: domain.PositionRB},
	}}
}

func seeds() []TeamSeed {
	return []TeamSeed{
		{FranchiseID: "0001", Name: "The Juggernauts", Budget: 200},
		{FranchiseID: "0002", Name: "Rebuild City", Budget: 200},
	}
}

func newTestService(broadcast func(Snapshot)) *Service {
	values := map[string]int{"13604": 42}
	return NewService(testLookup(), func(id string) int { return values[id] }, broadcast, zerolog.Nop())
}

func TestStart_InitializesTeams(t *testing.T) {
	service := newTestService(nil)

	snap, err := service.Start(seeds())
	require.NoError(t, err)
	assert.True(t, snap.Active)
	require.Len(t, snap.Teams, 2)
	assert.Equal(t, 200.0, snap.Teams[0].Budget)

	_, err = service.Start(seeds())
	assert.ErrorIs(t, err, ErrDraftInProgress)
}

func TestNominate_SetsSuggestedValue(t *testing.T) {
	service := newTestService(nil)
	_, err := service.Start(seeds())
	require.NoError(t, err)

	snap, err := service.Nominate("13604", "0001", 10)
	require.NoError(t, err)
	require.NotNil(t, snap.Nomination)
	assert.Equal(t, "Hill, Tyreek", snap.Nomination.PlayerName)
	assert.Equal(t, 10.0, snap.Nomination.CurrentBid)
	assert.Equal(t, "0001", snap.Nomination.HighBidder)
	assert.Equal(t, 42, snap.Nomination.SuggestedValue)

	_, err = service.Nominate("12625", "0002", 5)
	assert.ErrorIs(t, err, ErrNominationOpen)
}

func TestNominate_Validation(t *testing.T) {
	service := newTestService(nil)
	_, err := service.Start(seeds())
	require.NoError(t, err)

	_, err = service.Nominate("13604", "9999", 5)
	assert.ErrorIs(t, err, ErrUnknownFranchise)

	_, err = service.Nominate("13604", "0001", 500)
	assert.ErrorIs(t, err, ErrInsufficientBudget)

	_, err = service.Nominate("unknown-player", "0001", 5)
	assert.Error(t, err)
}

func TestBid_RaisesAndValidates(t *testing.T) {
	service := newTestService(nil)
	_, err := service.Start(seeds())
	require.NoError(t, err)
	_, err = service.Nominate("13604", "0001", 10)
	require.NoError(t, err)

	snap, err := service.Bid("0002", 15)
	require.NoError(t, err)
	assert.Equal(t, 15.0, snap.Nomination.CurrentBid)
	assert.Equal(t, "0002", snap.Nomination.HighBidder)

	_, err = service.Bid("0001", 15)
	assert.ErrorIs(t, err, ErrBidTooLow)

	_, err = service.Bid("0001", 300)
	assert.ErrorIs(t, err, ErrInsufficientBudget)
}

func TestAward_TransfersBudgetAndClearsBlock(t *testing.T) {
	service := newTestService(nil)
	_, err := service.Start(seeds())
	require.NoError(t, err)
	_, err = service.Nominate("13604", "0001", 10)
	require.NoError(t, err)
	_, err = service.Bid("0002", 45)
	require.NoError(t, err)

	snap, err := service.Award()
	require.NoError(t, err)
	assert.Nil(t, snap.Nomination)
	assert.Equal(t, 1, snap.PickCount)

	winner := snap.Teams[1]
	require.Equal(t, "0002", winner.FranchiseID)
	assert.Equal(t, 45.0, winner.Spent)
	assert.Equal(t, 155.0, winner.Remaining())
	require.Len(t, winner.Picks, 1)
	assert.Equal(t, "Hill, Tyreek", winner.Picks[0].PlayerName)

	_, err = service.Award()
	assert.ErrorIs(t, err, ErrNoActiveNomination)
}

func TestUndoLastPick_RefundsBudget(t *testing.T) {
	service := newTestService(nil)
	_, err := service.Start(seeds())
	require.NoError(t, err)
	_, err = service.Nominate("13604", "0001", 30)
	require.NoError(t, err)
	_, err = service.Award()
	require.NoError(t, err)

	snap, err := service.UndoLastPick()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.PickCount)
	assert.Equal(t, 0.0, snap.Teams[0].Spent)
	assert.Empty(t, snap.Teams[0].Picks)

	_, err = service.UndoLastPick()
	assert.Error(t, err)
}

func TestBroadcast_FiresOnEveryMutation(t *testing.T) {
	var events []Snapshot
	service := newTestService(func(s Snapshot) { events = append(events, s) })

	_, err := service.Start(seeds())
	require.NoError(t, err)
	_, err = service.Nominate("13604", "0001", 10)
	require.NoError(t, err)
	_, err = service.Bid("0002", 20)
	require.NoError(t, err)
	_, err = service.Award()
	require.NoError(t, err)

	assert.Len(t, events, 4)
	assert.NotNil(t, events[1].Nomination)
	assert.Nil(t, events[3].Nomination)
}

func TestOperationsRequireActiveDraft(t *testing.T) {
	service := newTestService(nil)

	_, err := service.Nominate("13604", "0001", 5)
	assert.ErrorIs(t, err, ErrNoActiveDraft)
	_, err = service.Bid("0001", 5)
	assert.ErrorIs(t, err, ErrNoActiveDraft)
	_, err = service.Award()
	assert.ErrorIs(t, err, ErrNoActiveDraft)
}

func TestHub_BroadcastAndDropSlowSubscriber(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	ch := hub.subscribe()
	require.Equal(t, 1, hub.SubscriberCount())

	hub.Broadcast(Snapshot{PickCount: 1})
	snap := <-ch
	assert.Equal(t, 1, snap.PickCount)

	// Fill the buffer past capacity; the subscriber gets dropped.
	for i := 0; i < subscriberBuffer+1; i++ {
		hub.Broadcast(Snapshot{PickCount: i})
	}
	assert.Equal(t, 0, hub.SubscriberCount())
}
