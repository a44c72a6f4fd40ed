// Package ws carries the live channel over gorilla/websocket.
//
// A Conn is one client session: a buffered outbound queue drained by a write
// pump, and a read pump that keeps the connection alive (ping/pong) and
// detects disconnects. Conn implements session.Handle, so Attach is all a
// connection upgrade handler needs to plug a socket into the registry.
package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/unkn0wn-root/cachefan"
	"github.com/unkn0wn-root/cachefan/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size; clients only talk back for pongs
	maxMessageSize = 4 * 1024

	defaultSendBuffer = 256
)

// ErrSlowClient is returned by Send when the outbound buffer is full. The
// payload is dropped; the read pump will reap the connection if it is dead.
var ErrSlowClient = errors.New("ws: send buffer full")

// ErrClosed is returned by Send after the connection is torn down.
var ErrClosed = errors.New("ws: connection closed")

type Conn struct {
	id       string
	identity string
	sock     *websocket.Conn
	send     chan []byte
	log      cachefan.Logger

	closeOnce sync.Once
	closed    chan struct{}
	onClose   func(*Conn)
}

var _ session.Handle = (*Conn)(nil)

type Options struct {
	Logger     cachefan.Logger
	SendBuffer int // 0 => 256

	// OnClose runs exactly once when the connection tears down, from
	// whichever side noticed first. Attach uses it to unregister.
	OnClose func(*Conn)
}

func NewConn(identity string, sock *websocket.Conn, opts Options) *Conn {
	return &Conn{
		id:       uuid.New().String(),
		identity: identity,
		sock:     sock,
		send:     make(chan []byte, coalesceInt(opts.SendBuffer, defaultSendBuffer)),
		log:      coalesceLogger(opts.Logger),
		closed:   make(chan struct{}),
		onClose:  opts.OnClose,
	}
}

// Attach wires a freshly upgraded socket into the registry and starts both
// pumps. The registry entry is removed when the connection dies, from either
// side.
func Attach(r *session.Registry, identity string, sock *websocket.Conn, log cachefan.Logger) *Conn {
	c := NewConn(identity, sock, Options{
		Logger:  log,
		OnClose: func(cc *Conn) { r.Unregister(cc) },
	})
	r.Register(identity, c)
	c.Start()
	return c
}

// Start launches the read and write pumps. Call once.
func (c *Conn) Start() {
	go c.writePump()
	go c.readPump()
}

// ID identifies the connection, not the user.
func (c *Conn) ID() string { return c.id }

// Identity returns the logical user this connection belongs to.
func (c *Conn) Identity() string { return c.identity }

// Send queues a payload without blocking. Fire-and-forget: a full buffer or
// closed connection returns an error and the caller drops the payload.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSlowClient
	}
}

// Close tears the connection down. Safe to call from any goroutine, any
// number of times.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.sock.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	})
	return nil
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.closed:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.sock.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case payload := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("ws write failed", cachefan.Fields{"conn": c.id, "err": err})
				return
			}
			// drain whatever queued while we were writing
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.sock.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					c.log.Debug("ws write failed", cachefan.Fields{"conn": c.id, "err": err})
					return
				}
			}

		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump exists to service pongs and notice disconnects; inbound payloads
// are not part of the delivery protocol and are ignored.
func (c *Conn) readPump() {
	defer func() { _ = c.Close() }()

	c.sock.SetReadLimit(maxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(pongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.sock.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Debug("ws read error", cachefan.Fields{"conn": c.id, "err": err})
			}
			return
		}
	}
}

func coalesceInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func coalesceLogger(l cachefan.Logger) cachefan.Logger {
	if l == nil {
		return cachefan.NopLogger{}
	}
	return l
}
