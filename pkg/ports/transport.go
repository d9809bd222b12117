package ports

import "context"

// Conn is one established duplex channel. Each message is a complete JSON
// text frame.
type Conn interface {
	// ReadMessage blocks until the next inbound message arrives or the
	// channel fails. Any error ends the connection.
	ReadMessage() ([]byte, error)

	// WriteMessage sends one message. Safe to call concurrently with ReadMessage.
	WriteMessage(data []byte) error

	// Close releases the channel. It unblocks a pending ReadMessage and is
	// safe to call more than once.
	Close() error
}

// Dialer opens a Conn to the given URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}
