package session

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/content"
	"github.com/JoshOsborne1/partysync/internal/game"
	"github.com/JoshOsborne1/partysync/internal/protocol"
	"github.com/JoshOsborne1/partysync/internal/pubsub"
)

// Participant is the non-host side of the protocol: it holds a read-only
// copy of the last snapshot and translates user actions into player_action
// publishes. It has no path to the transition functions at all — mutation
// exclusivity is enforced by this type's surface, not by the transport.
type Participant struct {
	bus    pubsub.Bus
	topic  string
	userID string
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()

	mu       sync.RWMutex
	state    game.State
	haveSnap bool
	hostLeft bool
	onState  func(game.State)
}

// NewParticipant subscribes to the room topic and immediately asks the host
// for the current snapshot — the sole recovery path for a late join or a
// reconnect.
func NewParticipant(parent context.Context, bus pubsub.Bus, topic, userID string, onState func(game.State), log *zap.Logger) (*Participant, error) {
	ctx, cancel := context.WithCancel(parent)
	p := &Participant{
		bus:     bus,
		topic:   topic,
		userID:  userID,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		onState: onState,
	}

	unsub, err := bus.Subscribe(topic, p.onFrame)
	if err != nil {
		cancel()
		return nil, err
	}
	p.unsub = unsub

	if err := p.publish(protocol.TypeRequestState, nil); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Participant) onFrame(data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		p.log.Debug("bad frame", zap.Error(err))
		return
	}

	switch env.Type {
	case protocol.TypeGameState:
		snap, err := protocol.DecodeGameState(env)
		if err != nil {
			p.log.Debug("bad snapshot", zap.Error(err))
			return
		}
		// Full replace, never a merge. Replaying the same snapshot twice
		// is a no-op by construction.
		p.mu.Lock()
		p.state = snap.GameState
		p.haveSnap = true
		cb := p.onState
		p.mu.Unlock()
		if cb != nil {
			cb(snap.GameState)
		}

	case protocol.TypeHostLeft:
		p.mu.Lock()
		p.hostLeft = true
		p.mu.Unlock()

	case protocol.TypePlayerAction, protocol.TypeRequestState:
		// Other participants' traffic; nothing here is authoritative.
	}
}

// State returns the latest snapshot and whether one has arrived yet.
func (p *Participant) State() (game.State, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state, p.haveSnap
}

// HostLeft reports whether the relay declared the host gone. Terminal: no
// failover exists, the game cannot advance.
func (p *Participant) HostLeft() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hostLeft
}

// Role resolves this user's in-game role against the latest snapshot.
func (p *Participant) Role() game.Role {
	s, ok := p.State()
	if !ok {
		return game.Role{PlayerIndex: -1}
	}
	return game.RoleOf(s, p.userID)
}

// Close tears down the subscription. In-flight broadcasts are harmless
// afterwards; there is nobody left to receive them.
func (p *Participant) Close() {
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
	p.cancel()
}

func (p *Participant) publish(t protocol.MessageType, payload any) error {
	data, err := protocol.Encode(t, payload)
	if err != nil {
		return err
	}
	return p.bus.Publish(p.ctx, p.topic, data)
}

func (p *Participant) sendAction(action string, data protocol.ActionData) {
	body, err := json.Marshal(data)
	if err != nil {
		p.log.Error("encode action data", zap.Error(err))
		return
	}
	frame, err := protocol.Encode(protocol.TypePlayerAction, protocol.PlayerActionPayload{
		Action:   action,
		PlayerID: p.userID,
		Data:     body,
	})
	if err != nil {
		p.log.Error("encode action", zap.Error(err))
		return
	}
	if err := p.bus.Publish(p.ctx, p.topic, frame); err != nil {
		p.log.Warn("send action failed", zap.String("action", action), zap.Error(err))
	}
}

// Intent senders; same surface as the Host dispatchers, zero authority.

func (p *Participant) StartTurn() { p.sendAction(protocol.ActionStartTurn, protocol.ActionData{}) }

func (p *Participant) MarkCorrect(targetID string) {
	p.sendAction(protocol.ActionMarkCorrect, protocol.ActionData{TargetID: targetID})
}

func (p *Participant) Skip() { p.sendAction(protocol.ActionSkip, protocol.ActionData{}) }

func (p *Participant) Answer(option string) {
	p.sendAction(protocol.ActionAnswer, protocol.ActionData{Option: option})
}

func (p *Participant) SubmitColor(c content.Color) {
	p.sendAction(protocol.ActionSubmitColor, protocol.ActionData{Color: colorData(c)})
}

func (p *Participant) SubmitClue(text string) {
	p.sendAction(protocol.ActionSubmitClue, protocol.ActionData{Clue: text})
}

func (p *Participant) SubmitGuess(targetID string, c content.Color) {
	p.sendAction(protocol.ActionSubmitGuess, protocol.ActionData{TargetID: targetID, Color: colorData(c)})
}

func (p *Participant) AdvancePhase(target game.Phase) {
	p.sendAction(protocol.ActionAdvancePhase, protocol.ActionData{Target: string(target)})
}

func colorData(c content.Color) *protocol.ColorData {
	return &protocol.ColorData{R: c.R, G: c.G, B: c.B}
}
