package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/giantswarm/microerror"
	"github.com/giantswarm/micrologger"
	"github.com/gorilla/websocket"

	"github.com/comalice/reactiontask/internal/core"
)

const defaultSendBuffer = 64

type client struct {
	conn *websocket.Conn
	b    *Broadcaster
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.b.RemoveClient(c)
			return
		}
	}
}

type BroadcasterConfig struct {
	Logger micrologger.Logger
	// SendBuffer is the per-client queue length. Clients whose queue is full
	// are disconnected.
	SendBuffer int
}

// Broadcaster fans engine output out to websocket clients. It is the Host
// and a Publisher of the session it serves: signals, debug lines,
// transitions and samples all become messages.
type Broadcaster struct {
	logger     micrologger.Logger
	sendBuffer int

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewBroadcaster(config BroadcasterConfig) (*Broadcaster, error) {
	if config.Logger == nil {
		return nil, microerror.Maskf(invalidConfigError, "%T.Logger must not be empty", config)
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = defaultSendBuffer
	}

	b := &Broadcaster{
		logger:     config.Logger,
		sendBuffer: config.SendBuffer,
		clients:    make(map[*client]bool),
	}

	return b, nil
}

// addClient registers conn and starts its writer. initial, when not nil, is
// queued before any broadcast.
func (b *Broadcaster) addClient(conn *websocket.Conn, initial *WSMessage) *client {
	c := &client{
		conn: conn,
		b:    b,
		send: make(chan []byte, b.sendBuffer),
	}

	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			c.send <- data
		}
	}

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	go c.writePump()
	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	for c := range b.clients {
		delete(b.clients, c)
		close(c.send)
	}
	b.mu.Unlock()
}

func (b *Broadcaster) EmitSignal() error {
	b.broadcast(WSMessage{Type: MsgSignal})
	return nil
}

func (b *Broadcaster) StopSignal() error {
	b.broadcast(WSMessage{Type: MsgSignalStop})
	return nil
}

func (b *Broadcaster) DebugLog(line string) {
	b.broadcast(WSMessage{Type: MsgDebug, Payload: DebugPayload{Line: line}})
}

func (b *Broadcaster) Publish(_ context.Context, record core.TransitionRecord) error {
	b.broadcast(WSMessage{Type: MsgTransition, Payload: record})
	if record.Sample != nil {
		b.broadcast(WSMessage{Type: MsgSample, Payload: record.Sample})
	}
	return nil
}

// sendTo queues msg for a single client.
func (b *Broadcaster) sendTo(c *client, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Errorf(context.Background(), err, "marshal %s message", msg.Type)
		return
	}

	b.mu.RLock()
	_, ok := b.clients[c]
	if ok {
		select {
		case c.send <- data:
		default:
			ok = false
		}
	}
	b.mu.RUnlock()

	if !ok {
		b.RemoveClient(c)
	}
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Errorf(context.Background(), err, "marshal %s message", msg.Type)
		return
	}

	var slow []*client

	b.mu.RLock()
	for c := range b.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	b.mu.RUnlock()

	for _, c := range slow {
		// Client can't keep up, disconnect it.
		b.logger.Debugf(context.Background(), "ws client %s too slow, disconnecting", c.conn.RemoteAddr())
		b.RemoveClient(c)
	}
}
