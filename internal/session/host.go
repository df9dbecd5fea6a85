// Package session holds the two halves of the replication protocol: the
// Host, which owns the canonical state and is the only code path allowed to
// call transitions, and the Participant, which renders snapshots and sends
// intents. Handing a component a *Host is handing it mutation authority;
// everything else gets the Participant surface.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/content"
	"github.com/JoshOsborne1/partysync/internal/game"
	"github.com/JoshOsborne1/partysync/internal/protocol"
	"github.com/JoshOsborne1/partysync/internal/pubsub"
)

type hostMsg interface{ isHostMsg() }

type dispatch struct{ Cmd game.Command }
type busFrame struct{ Data []byte }
type timerFired struct{ Gen int }
type getState struct{ Reply chan game.State }
type stop struct{}

func (dispatch) isHostMsg()   {}
func (busFrame) isHostMsg()   {}
func (timerFired) isHostMsg() {}
func (getState) isHostMsg()   {}
func (stop) isHostMsg()       {}

// Host is the authoritative reducer loop for one room's game. A single
// goroutine serializes every input — local dispatches, bus traffic, timer
// fires — applies transitions one at a time, and broadcasts a full snapshot
// after every mutation.
type Host struct {
	inbox  chan hostMsg
	state  game.State
	deck   *content.Deck
	bus    pubsub.Bus
	topic  string
	userID string
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()

	timer    *time.Timer
	timerGen int
}

// NewHost starts the host loop over an already-built initial state and
// immediately broadcasts it. The deck may be nil for modes that draw no
// content (colors).
func NewHost(parent context.Context, bus pubsub.Bus, topic, userID string, initial game.State, deck *content.Deck, log *zap.Logger) (*Host, error) {
	ctx, cancel := context.WithCancel(parent)
	h := &Host{
		inbox:  make(chan hostMsg, 64),
		state:  initial,
		deck:   deck,
		bus:    bus,
		topic:  topic,
		userID: userID,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	unsub, err := bus.Subscribe(topic, func(data []byte) {
		select {
		case h.inbox <- busFrame{Data: data}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		cancel()
		return nil, err
	}
	h.unsub = unsub

	go h.loop()
	return h, nil
}

func (h *Host) loop() {
	h.broadcast()
	for {
		select {
		case <-h.ctx.Done():
			h.teardown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case dispatch:
				h.apply(msg.Cmd)

			case busFrame:
				h.onFrame(msg.Data)

			case timerFired:
				if msg.Gen != h.timerGen {
					break // stale fire from a phase we already left
				}
				h.apply(game.Command{Type: game.CmdTick})

			case getState:
				msg.Reply <- h.state

			case stop:
				h.teardown()
				return
			}
		}
	}
}

// apply runs one transition against the canonical state. Failures are the
// protocol's "invalid intent" case: logged and dropped, nothing sent back.
func (h *Host) apply(cmd game.Command) {
	cmd = h.withDraw(cmd)
	next, err := game.Apply(h.state, cmd)
	if err != nil {
		h.log.Debug("intent dropped",
			zap.String("cmd", string(cmd.Type)),
			zap.String("phase", string(h.state.Phase)),
			zap.Error(err))
		return
	}
	h.state = next
	h.afterResolve(cmd)
	h.broadcast()
	h.syncTimer()
}

// withDraw injects a drawn card into the commands that open a turn, keeping
// the state machine itself free of randomness.
func (h *Host) withDraw(cmd game.Command) game.Command {
	if h.deck == nil {
		return cmd
	}
	if cmd.Type != game.CmdStartTurn && cmd.Type != game.CmdDealNext {
		return cmd
	}
	card, err := h.deck.Draw(h.state.Settings.Difficulty)
	if err != nil {
		h.log.Warn("deck draw failed", zap.Error(err))
		return cmd
	}
	cmd.Card = &card
	return cmd
}

// afterResolve deals the next card once the current one has been resolved,
// so a turn keeps flowing without an extra client round trip.
func (h *Host) afterResolve(cmd game.Command) {
	if h.state.Phase != game.PhasePlaying {
		return
	}
	switch cmd.Type {
	case game.CmdMarkCorrect, game.CmdMarkIncorrect, game.CmdSkip, game.CmdAnswer:
		next, err := game.Apply(h.state, h.withDraw(game.Command{Type: game.CmdDealNext}))
		if err == nil {
			h.state = next
		}
	}
}

func (h *Host) onFrame(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		h.log.Debug("bad frame", zap.Error(err))
		return
	}

	switch env.Type {
	case protocol.TypeRequestState:
		// Late joiner or reconnect: re-broadcast what we have.
		h.broadcast()

	case protocol.TypePlayerAction:
		action, err := protocol.DecodePlayerAction(env)
		if err != nil {
			h.log.Debug("bad player_action", zap.Error(err))
			return
		}
		cmd, ok := commandFromAction(action)
		if !ok {
			h.log.Debug("unknown action", zap.String("action", action.Action))
			return
		}
		h.apply(cmd)

	case protocol.TypeGameState:
		// Our own echo; the canonical copy already lives here.
	}
}

func (h *Host) broadcast() {
	data, err := protocol.Encode(protocol.TypeGameState, protocol.GameStatePayload{GameState: h.state})
	if err != nil {
		h.log.Error("encode snapshot", zap.Error(err))
		return
	}
	if err := h.bus.Publish(h.ctx, h.topic, data); err != nil {
		h.log.Warn("broadcast failed", zap.Error(err))
	}
}

// syncTimer arms a one-second timer whenever the current phase has a live
// clock, bumping the generation so fires scheduled for an earlier phase are
// ignored when they land.
func (h *Host) syncTimer() {
	h.stopTimer()
	if !timedPhase(h.state) {
		return
	}
	h.timerGen++
	gen := h.timerGen
	h.timer = time.AfterFunc(time.Second, func() {
		select {
		case h.inbox <- timerFired{Gen: gen}:
		case <-h.ctx.Done():
		}
	})
}

func (h *Host) stopTimer() {
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.timerGen++
}

func timedPhase(s game.State) bool {
	switch s.Phase {
	case game.PhasePlaying, game.PhaseGuess1, game.PhaseGuess2:
		return s.TimerRemaining > 0
	default:
		return false
	}
}

func (h *Host) teardown() {
	h.stopTimer()
	if h.unsub != nil {
		h.unsub()
		h.unsub = nil
	}
	h.cancel()
}

// Close stops the loop and drops the subscription. In-flight broadcasts are
// left to die on the wire.
func (h *Host) Close() {
	select {
	case h.inbox <- stop{}:
	case <-h.ctx.Done():
	}
}

// State fetches the canonical state through the loop, so readers never race
// the reducer.
func (h *Host) State(ctx context.Context) (game.State, error) {
	reply := make(chan game.State, 1)
	select {
	case h.inbox <- getState{Reply: reply}:
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	case <-h.ctx.Done():
		return game.State{}, errors.New("host session closed")
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	}
}

// Role resolves the host user's in-game role against the current state.
func (h *Host) Role(ctx context.Context) (game.Role, error) {
	s, err := h.State(ctx)
	if err != nil {
		return game.Role{}, err
	}
	return game.RoleOf(s, h.userID), nil
}

func (h *Host) send(cmd game.Command) {
	select {
	case h.inbox <- dispatch{Cmd: cmd}:
	case <-h.ctx.Done():
	}
}

// Intent dispatchers. On the host these fold straight into the reducer; the
// Participant type exposes the same surface but publishes player_action.

func (h *Host) StartTurn() { h.send(game.Command{Type: game.CmdStartTurn}) }

func (h *Host) MarkCorrect(targetID string) {
	h.send(game.Command{Type: game.CmdMarkCorrect, TargetID: targetID})
}

func (h *Host) Skip() { h.send(game.Command{Type: game.CmdSkip}) }

func (h *Host) Answer(option string) {
	h.send(game.Command{Type: game.CmdAnswer, PlayerID: h.userID, Option: option})
}

func (h *Host) SubmitColor(c content.Color) {
	h.send(game.Command{Type: game.CmdSubmitColor, PlayerID: h.userID, Color: &c})
}

func (h *Host) SubmitClue(text string) {
	h.send(game.Command{Type: game.CmdSubmitClue, PlayerID: h.userID, Clue: text})
}

func (h *Host) SubmitGuess(targetID string, c content.Color) {
	h.send(game.Command{Type: game.CmdSubmitGuess, PlayerID: h.userID, TargetID: targetID, Color: &c})
}

func (h *Host) AdvancePhase(target game.Phase) {
	h.send(game.Command{Type: game.CmdAdvancePhase, Target: target})
}

// commandFromAction maps a wire intent onto a state-machine command.
func commandFromAction(p protocol.PlayerActionPayload) (game.Command, bool) {
	var data protocol.ActionData
	if len(p.Data) > 0 {
		if err := json.Unmarshal(p.Data, &data); err != nil {
			return game.Command{}, false
		}
	}

	cmd := game.Command{
		PlayerID: p.PlayerID,
		TargetID: data.TargetID,
		Option:   data.Option,
		Clue:     data.Clue,
		Target:   game.Phase(data.Target),
	}
	if data.Color != nil {
		cmd.Color = &content.Color{R: data.Color.R, G: data.Color.G, B: data.Color.B}
	}

	switch p.Action {
	case protocol.ActionStartTurn:
		cmd.Type = game.CmdStartTurn
	case protocol.ActionMarkCorrect:
		cmd.Type = game.CmdMarkCorrect
	case protocol.ActionMarkIncorrect:
		cmd.Type = game.CmdMarkIncorrect
	case protocol.ActionSkip:
		cmd.Type = game.CmdSkip
	case protocol.ActionAnswer:
		cmd.Type = game.CmdAnswer
	case protocol.ActionSubmitColor:
		cmd.Type = game.CmdSubmitColor
	case protocol.ActionSubmitClue:
		cmd.Type = game.CmdSubmitClue
	case protocol.ActionSubmitGuess:
		cmd.Type = game.CmdSubmitGuess
	case protocol.ActionAdvancePhase:
		cmd.Type = game.CmdAdvancePhase
	default:
		return game.Command{}, false
	}
	return cmd, true
}
