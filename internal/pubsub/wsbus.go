package pubsub

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

var ErrWrongTopic = errors.New("bus is bound to a different topic")

// WSBus is the client-side transport adapter: one websocket connection to
// the relay, bound to a single room topic. Sessions built on it don't know
// they are remote; the Bus surface is identical to the in-memory one.
type WSBus struct {
	conn  *websocket.Conn
	topic string
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	handlers map[int]Handler
	nextID   int
}

// DialRoom connects to a relay and binds the bus to the room's topic. The
// host flag tells the relay which connection's death ends the game.
func DialRoom(ctx context.Context, baseURL, code string, isHost bool, log *zap.Logger) (*WSBus, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse relay url: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	if isHost {
		q.Set("host", "1")
	}
	u.Path = "/ws"
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	busCtx, cancel := context.WithCancel(context.Background())
	b := &WSBus{
		conn:     conn,
		topic:    code,
		log:      log,
		ctx:      busCtx,
		cancel:   cancel,
		handlers: make(map[int]Handler),
	}
	go b.readLoop()
	return b, nil
}

func (b *WSBus) readLoop() {
	for {
		_, data, err := b.conn.Read(b.ctx)
		if err != nil {
			if b.ctx.Err() == nil {
				b.log.Debug("relay connection closed", zap.Error(err))
			}
			b.cancel()
			return
		}
		b.mu.Lock()
		hs := make([]Handler, 0, len(b.handlers))
		for _, h := range b.handlers {
			hs = append(hs, h)
		}
		b.mu.Unlock()
		for _, h := range hs {
			h(data)
		}
	}
}

func (b *WSBus) Publish(ctx context.Context, topic string, data []byte) error {
	if topic != b.topic {
		return ErrWrongTopic
	}
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return b.conn.Write(wctx, websocket.MessageText, data)
}

func (b *WSBus) Subscribe(topic string, h Handler) (func(), error) {
	if topic != b.topic {
		return nil, ErrWrongTopic
	}
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}, nil
}

func (b *WSBus) Close() {
	b.cancel()
	_ = b.conn.Close(websocket.StatusNormalClosure, "bye")
}
