// Package relay is the server half of the broadcast transport: one actor
// per room that fans every inbound frame out to every member. It never
// looks inside game frames — the host client is the authority, the relay
// is plumbing. The single game-aware thing it does is announce host loss,
// because only the relay can observe the host's connection dying.
package relay

import (
	"context"

	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/metrics"
	"github.com/JoshOsborne1/partysync/internal/protocol"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	MemberID string
	IsHost   bool
	Outbox   chan []byte
}

type Leave struct{ MemberID string }

// Frame is one opaque payload to broadcast to everyone, sender included —
// the host relies on seeing its own snapshots echo back in loopback setups.
type Frame struct {
	From string
	Data []byte
}

type Shutdown struct{}

type GetInfo struct{ Reply chan Info }

type Info struct {
	NumMembers int
	HostGone   bool
}

func (Join) isRoomMsg()     {}
func (Leave) isRoomMsg()    {}
func (Frame) isRoomMsg()    {}
func (Shutdown) isRoomMsg() {}
func (GetInfo) isRoomMsg()  {}

type member struct {
	outbox chan []byte
	isHost bool
}

type Room struct {
	inbox    chan Msg
	members  map[string]member
	hostGone bool
	seated   bool // a host joined at least once
	onClose  func()
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewRoom(parent context.Context, log *zap.Logger, onClose func()) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		members: make(map[string]member),
		onClose: onClose,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.members[msg.MemberID] = member{outbox: msg.Outbox, isHost: msg.IsHost}
				if msg.IsHost {
					r.seated = true
				}
				r.log.Debug("member joined",
					zap.String("member", msg.MemberID),
					zap.Bool("host", msg.IsHost),
					zap.Int("members", len(r.members)))

			case Leave:
				mem, ok := r.members[msg.MemberID]
				if !ok {
					break
				}
				close(mem.outbox)
				delete(r.members, msg.MemberID)
				if mem.isHost {
					// No failover exists: tell everyone and close up.
					r.hostGone = true
					if frame, err := protocol.Encode(protocol.TypeHostLeft, nil); err == nil {
						r.broadcast(frame)
					}
					r.shutdown()
					return
				}
				if r.seated && len(r.members) == 0 {
					r.shutdown()
					return
				}

			case Frame:
				r.broadcast(msg.Data)

			case GetInfo:
				msg.Reply <- Info{NumMembers: len(r.members), HostGone: r.hostGone}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) broadcast(data []byte) {
	for id, mem := range r.members {
		select {
		case mem.outbox <- data:
			metrics.RelayedFrames.Inc()
		default:
			// Member can't keep up; drop it rather than stall the room.
			close(mem.outbox)
			delete(r.members, id)
			metrics.DroppedMembers.Inc()
			r.log.Warn("dropped slow member", zap.String("member", id))
		}
	}
}

func (r *Room) shutdown() {
	for id, mem := range r.members {
		close(mem.outbox)
		delete(r.members, id)
	}
	r.cancel()
	if r.onClose != nil {
		r.onClose()
		r.onClose = nil
	}
}
