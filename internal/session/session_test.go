package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/content"
	"github.com/JoshOsborne1/partysync/internal/game"
	"github.com/JoshOsborne1/partysync/internal/protocol"
	"github.com/JoshOsborne1/partysync/internal/pubsub"
)

const testTopic = "ROOM42"

func testPlayers() []game.Player {
	return []game.Player{
		{ID: "a", Name: "A", IsHost: true},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}
}

func testDeck() *content.Deck {
	cards := []content.Card{
		{ID: "d1", Text: "Pizza"},
		{ID: "d2", Text: "Beach"},
		{ID: "d3", Text: "Guitar"},
	}
	return content.NewDeck(cards, 1)
}

func newTestHost(t *testing.T, bus pubsub.Bus, mode game.Mode, settings game.Settings) *Host {
	t.Helper()
	initial, err := game.NewState(mode, testPlayers(), settings)
	require.NoError(t, err)
	var deck *content.Deck
	if mode != game.ModeColors {
		deck = testDeck()
	}
	h, err := NewHost(context.Background(), bus, testTopic, "a", initial, deck, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func newTestParticipant(t *testing.T, bus pubsub.Bus, userID string) (*Participant, chan game.State) {
	t.Helper()
	states := make(chan game.State, 64)
	p, err := NewParticipant(context.Background(), bus, testTopic, userID, func(s game.State) { states <- s }, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p, states
}

// waitState drains snapshots until one satisfies cond.
func waitState(t *testing.T, states <-chan game.State, within time.Duration, cond func(game.State) bool) game.State {
	t.Helper()
	deadline := time.After(within)
	for {
		select {
		case s := <-states:
			if cond(s) {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot")
			return game.State{}
		}
	}
}

func TestHostAppliesParticipantIntentAndBroadcasts(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	newTestHost(t, bus, game.ModeCards, game.Settings{MaxRounds: 2, TurnSeconds: 60})
	p, states := newTestParticipant(t, bus, "b")

	// The host answers the join-time request_state with the initial snapshot.
	waitState(t, states, time.Second, func(s game.State) bool {
		return s.Phase == game.PhaseInstructions
	})

	p.StartTurn()
	playing := waitState(t, states, time.Second, func(s game.State) bool {
		return s.Phase == game.PhasePlaying
	})
	require.NotNil(t, playing.CurrentCard)
	require.Equal(t, 60, playing.TimerRemaining)

	p.MarkCorrect("b")
	scored := waitState(t, states, time.Second, func(s game.State) bool {
		return s.Players[1].Score > 0
	})
	require.Equal(t, 1, scored.Players[1].Streak)
	require.Equal(t, 1, scored.CardsInRound)
	// The resolved card is swapped for a fresh one in the same broadcast.
	require.NotNil(t, scored.CurrentCard)
}

func TestInvalidIntentIsSilentlyIgnored(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	newTestHost(t, bus, game.ModeCards, game.Settings{MaxRounds: 2, TurnSeconds: 60})
	p, states := newTestParticipant(t, bus, "b")

	// Colors-mode intent against a card game: wrong phase, no response.
	p.SubmitColor(content.Color{R: 1})
	p.StartTurn()

	playing := waitState(t, states, time.Second, func(s game.State) bool {
		return s.Phase == game.PhasePlaying
	})
	require.Nil(t, playing.Rounds)
	for _, pl := range playing.Players {
		require.Zero(t, pl.Score)
	}
}

func TestLateJoinerRecoversHostState(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	h := newTestHost(t, bus, game.ModeCards, game.Settings{MaxRounds: 2, TurnSeconds: 600})
	h.StartTurn()
	h.MarkCorrect("b")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.Eventually(t, func() bool {
		s, err := h.State(ctx)
		return err == nil && s.CardsInRound == 1
	}, time.Second, 10*time.Millisecond)

	// Join mid-game; the only recovery path is request_state.
	_, states := newTestParticipant(t, bus, "c")
	got := waitState(t, states, time.Second, func(s game.State) bool {
		return s.CardsInRound == 1
	})

	want, err := h.State(ctx)
	require.NoError(t, err)

	// Allow one tick of drift between snapshot and canonical read.
	require.InDelta(t, want.TimerRemaining, got.TimerRemaining, 1)
	want.TimerRemaining = 0
	got.TimerRemaining = 0
	require.Empty(t, cmp.Diff(want, got))
}

func TestSnapshotApplicationIsIdempotent(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	p, _ := newTestParticipant(t, bus, "b")

	state, err := game.NewState(game.ModeCards, testPlayers(), game.Settings{MaxRounds: 2, TurnSeconds: 60})
	require.NoError(t, err)
	frame, err := protocol.Encode(protocol.TypeGameState, protocol.GameStatePayload{GameState: state})
	require.NoError(t, err)

	p.onFrame(frame)
	first, ok := p.State()
	require.True(t, ok)

	p.onFrame(frame)
	second, _ := p.State()
	require.Empty(t, cmp.Diff(first, second))
}

func TestParticipantNeverMutatesLocally(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	// No host on the topic: intents go nowhere and nothing comes back.
	p, _ := newTestParticipant(t, bus, "b")
	p.StartTurn()
	p.MarkCorrect("b")

	time.Sleep(50 * time.Millisecond)
	_, ok := p.State()
	require.False(t, ok, "participant invented state without a host snapshot")
}

func TestParticipantIgnoresForeignPlayerActions(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	p, _ := newTestParticipant(t, bus, "b")
	other, _ := newTestParticipant(t, bus, "c")
	other.MarkCorrect("c")

	time.Sleep(50 * time.Millisecond)
	_, ok := p.State()
	require.False(t, ok)
}

func TestTimerExpiryAdvancesTurn(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	h := newTestHost(t, bus, game.ModeCards, game.Settings{MaxRounds: 2, TurnSeconds: 1})
	_, states := newTestParticipant(t, bus, "b")

	h.StartTurn()
	summary := waitState(t, states, 3*time.Second, func(s game.State) bool {
		return s.Phase == game.PhaseRoundSummary
	})
	require.Equal(t, 1, summary.ClueGiverIndex)
	require.Equal(t, 1, summary.CurrentRound)
}

func TestColorsAutoAdvanceOverTheWire(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	h := newTestHost(t, bus, game.ModeColors, game.Settings{MaxRounds: 1, TurnSeconds: 30})
	pb, statesB := newTestParticipant(t, bus, "b")
	pc, _ := newTestParticipant(t, bus, "c")

	h.StartTurn()
	waitState(t, statesB, time.Second, func(s game.State) bool {
		return s.Phase == game.PhaseColorPick
	})

	h.SubmitColor(content.Color{R: 10})
	pb.SubmitColor(content.Color{G: 10})
	pc.SubmitColor(content.Color{B: 10})

	// Last submission moves the chain; no host click involved.
	waitState(t, statesB, time.Second, func(s game.State) bool {
		return s.Phase == game.PhaseClue1
	})
}

func TestHostRoleResolution(t *testing.T) {
	bus := pubsub.NewMemoryBus()
	defer bus.Close()

	h := newTestHost(t, bus, game.ModeCards, game.Settings{MaxRounds: 2, TurnSeconds: 60})
	p, states := newTestParticipant(t, bus, "b")

	waitState(t, states, time.Second, func(s game.State) bool { return len(s.Players) == 3 })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	hostRole, err := h.Role(ctx)
	require.NoError(t, err)
	require.True(t, hostRole.IsClueGiver, "host user holds seat 0 at game start")

	partRole := p.Role()
	require.True(t, partRole.IsGuesser)
	require.False(t, partRole.IsClueGiver)
}
