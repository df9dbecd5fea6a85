package protocol

import (
	"testing"

	"github.com/JoshOsborne1/partysync/internal/game"
)

// Pin the logical wire shape: {type, payload}.
func TestDecodePlayerActionFromWireJSON(t *testing.T) {
	raw := []byte(`{"type":"player_action","payload":{"action":"submit_guess","playerId":"p2","data":{"targetId":"p1","color":{"r":12,"g":200,"b":34}}}}`)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypePlayerAction {
		t.Fatalf("type = %s", env.Type)
	}

	action, err := DecodePlayerAction(env)
	if err != nil {
		t.Fatalf("DecodePlayerAction: %v", err)
	}
	if action.Action != ActionSubmitGuess || action.PlayerID != "p2" {
		t.Fatalf("action = %+v", action)
	}
}

func TestGameStateRoundTripsThroughEnvelope(t *testing.T) {
	state, err := game.NewState(game.ModeCards, []game.Player{
		{ID: "h", Name: "Host", IsHost: true},
		{ID: "g", Name: "Guest"},
	}, game.Settings{MaxRounds: 2, TurnSeconds: 45})
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	data, err := Encode(TypeGameState, GameStatePayload{GameState: state})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	snap, err := DecodeGameState(env)
	if err != nil {
		t.Fatalf("DecodeGameState: %v", err)
	}
	if snap.GameState.Phase != state.Phase || len(snap.GameState.Players) != 2 {
		t.Fatalf("snapshot lost data: %+v", snap.GameState)
	}
}

func TestHostLeftHasNoPayload(t *testing.T) {
	data, err := Encode(TypeHostLeft, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeHostLeft {
		t.Fatalf("type = %s", env.Type)
	}
}
