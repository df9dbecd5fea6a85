package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JoshOsborne1/partysync/internal/hub"
	"github.com/JoshOsborne1/partysync/internal/relay"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 16
)

// Handler bridges one websocket connection into a relay room: a writer
// goroutine drains the member outbox, the read loop feeds frames back in.
// The connection declares host=1 if it carries the room's authority; the
// relay uses that only to announce host loss.
func Handler(h *hub.Hub, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		isHost := r.URL.Query().Get("host") == "1"

		reply := make(chan *relay.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		room := <-reply
		if room == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		memberID := uuid.NewString()
		out := make(chan []byte, outboxSize)
		room.Inbox() <- relay.Join{MemberID: memberID, IsHost: isHost, Outbox: out}
		defer func() { room.Inbox() <- relay.Leave{MemberID: memberID} }()

		log = log.With(zap.String("room", code), zap.String("member", memberID))
		log.Debug("connected", zap.Bool("host", isHost))

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for frame := range out {
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, frame)
				cancel()
			}
			// Outbox closed: the room dropped us or shut down. Closing the
			// connection unblocks the read loop below.
			writeCancel()
			_ = conn.Close(websocket.StatusGoingAway, "room closed")
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Debug("read ended", zap.Error(err))
				return
			}
			room.Inbox() <- relay.Frame{From: memberID, Data: data}
		}
	}
}
