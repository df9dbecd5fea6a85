// Package protocol defines the three message kinds that travel over a
// room's broadcast topic, plus the relay's terminal host-left notice.
// Everything is a full-value payload; receivers replace, never merge.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/JoshOsborne1/partysync/internal/game"
)

type MessageType string

const (
	// TypeGameState carries the host's full snapshot; host -> all.
	TypeGameState MessageType = "game_state"
	// TypeRequestState asks the host to re-broadcast; sent once by every
	// non-host right after subscribing (late join / reconnect recovery).
	TypeRequestState MessageType = "request_state"
	// TypePlayerAction carries a participant intent for the host to fold in.
	TypePlayerAction MessageType = "player_action"
	// TypeHostLeft is emitted by the relay when the host connection drops.
	// There is no failover; the game is over.
	TypeHostLeft MessageType = "host_left"
)

type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type GameStatePayload struct {
	GameState game.State `json:"gameState"`
}

// PlayerActionPayload is an intent: a request to apply one transition. It
// carries no authority; the host validates phase-applicability before use.
type PlayerActionPayload struct {
	Action   string          `json:"action"`
	PlayerID string          `json:"playerId"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// ActionData is the union of per-action fields a participant can attach.
type ActionData struct {
	TargetID string     `json:"targetId,omitempty"`
	Option   string     `json:"option,omitempty"`
	Clue     string     `json:"clue,omitempty"`
	Color    *ColorData `json:"color,omitempty"`
	Target   string     `json:"target,omitempty"`
}

type ColorData struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func Encode(t MessageType, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", t, err)
		}
		raw = b
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}

func Decode(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}

func DecodeGameState(env Envelope) (GameStatePayload, error) {
	var p GameStatePayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return GameStatePayload{}, fmt.Errorf("decode game_state: %w", err)
	}
	return p, nil
}

func DecodePlayerAction(env Envelope) (PlayerActionPayload, error) {
	var p PlayerActionPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		return PlayerActionPayload{}, fmt.Errorf("decode player_action: %w", err)
	}
	return p, nil
}
