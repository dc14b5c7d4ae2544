package connection

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is the websocket transport of a session. Frames are queued on a
// buffered channel and written by the server's write pump.
type Client struct {
	Conn *websocket.Conn

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		Conn: conn,
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Send queues a frame without blocking
func (c *Client) Send(message []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrSendBufferFull
	}
}

// Close stops the client; the write pump then closes the socket
func (c *Client) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// Outbound yields queued frames
func (c *Client) Outbound() <-chan []byte { return c.send }

// Done is closed once the client is closed
func (c *Client) Done() <-chan struct{} { return c.done }
