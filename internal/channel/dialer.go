package channel

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Dialer opens the byte stream a STOMP session runs over.
type Dialer interface {
	Dial(ctx context.Context) (io.ReadWriteCloser, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context) (io.ReadWriteCloser, error)

func (f DialerFunc) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	return f(ctx)
}

// stompSubprotocols are offered during the websocket handshake, newest first.
var stompSubprotocols = []string{"v12.stomp", "v11.stomp", "v10.stomp"}

// WebsocketDialer carries STOMP over a websocket, one frame chunk per text message.
type WebsocketDialer struct {
	URL              string
	Token            string
	HandshakeTimeout time.Duration
}

func (d *WebsocketDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: d.HandshakeTimeout,
		Subprotocols:     stompSubprotocols,
	}

	header := http.Header{}
	if d.Token != "" {
		header.Set("Authorization", "Bearer "+d.Token)
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("failed to dial websocket: %w", err)
	}
	return newWSConn(conn), nil
}

// TCPDialer connects to a broker speaking plain STOMP over TCP.
type TCPDialer struct {
	Address string
	Timeout time.Duration
}

func (d *TCPDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	conn, err := nd.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial tcp: %w", err)
	}
	return conn, nil
}

const wsCloseWait = time.Second

// wsConn exposes a websocket as a byte stream. Reads drain one message at a
// time; each Write is sent as its own text message.
type wsConn struct {
	conn    *websocket.Conn
	reader  io.Reader
	writeMu sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			_, r, err := c.conn.NextReader()
			if err != nil {
				return 0, err
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if err == io.EOF {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsCloseWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// trackedConn closes the underlying transport a single time no matter how
// many teardown paths reach it, and reports when the transport died. A STOMP
// subscription is not a reliable drop signal on its own: if the connection
// breaks before the client registered the subscription, its channel is never
// closed.
type trackedConn struct {
	io.ReadWriteCloser
	once     sync.Once
	err      error
	deadOnce sync.Once
	dead     chan struct{}
}

func newTrackedConn(rwc io.ReadWriteCloser) *trackedConn {
	return &trackedConn{ReadWriteCloser: rwc, dead: make(chan struct{})}
}

func (c *trackedConn) Read(p []byte) (int, error) {
	n, err := c.ReadWriteCloser.Read(p)
	if err != nil {
		c.markDead()
	}
	return n, err
}

func (c *trackedConn) Write(p []byte) (int, error) {
	n, err := c.ReadWriteCloser.Write(p)
	if err != nil {
		c.markDead()
	}
	return n, err
}

func (c *trackedConn) Close() error {
	c.once.Do(func() {
		c.err = c.ReadWriteCloser.Close()
	})
	c.markDead()
	return c.err
}

// Dead is closed once a read or write failed or the transport was closed.
func (c *trackedConn) Dead() <-chan struct{} {
	return c.dead
}

func (c *trackedConn) markDead() {
	c.deadOnce.Do(func() { close(c.dead) })
}
