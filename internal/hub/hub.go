package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/metrics"
	"github.com/JoshOsborne1/partysync/internal/relay"
)

type HubMsg interface{ isHubMsg() }

type EnsureRoom struct {
	Code  string
	Reply chan *relay.Room
}

type GetRoom struct {
	Code  string
	Reply chan *relay.Room
}

type RemoveRoom struct {
	Code string
}

type ShutdownHub struct{}

func (EnsureRoom) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (RemoveRoom) isHubMsg()  {}
func (ShutdownHub) isHubMsg() {}

// Hub is the room registry: a single actor owning the code -> room map, so
// creation, lookup, and teardown never race.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*relay.Room
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*relay.Room),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if room := h.rooms[msg.Code]; room != nil {
					msg.Reply <- room
					break
				}
				code := msg.Code
				room := relay.NewRoom(h.ctx, h.log.With(zap.String("room", code)), func() {
					// Rooms remove themselves once they close (host left
					// or everyone disconnected).
					select {
					case h.inbox <- RemoveRoom{Code: code}:
					case <-h.ctx.Done():
					}
				})
				h.rooms[code] = room
				metrics.ActiveRooms.Inc()
				h.log.Info("room created", zap.String("room", code))
				msg.Reply <- room

			case GetRoom:
				msg.Reply <- h.rooms[msg.Code] // may be nil

			case RemoveRoom:
				if _, ok := h.rooms[msg.Code]; ok {
					delete(h.rooms, msg.Code)
					metrics.ActiveRooms.Dec()
					h.log.Info("room removed", zap.String("room", msg.Code))
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for code, room := range h.rooms {
		room.Inbox() <- relay.Shutdown{}
		delete(h.rooms, code)
		metrics.ActiveRooms.Dec()
	}
	h.cancel()
}
