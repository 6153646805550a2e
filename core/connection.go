package core

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/longlp/reactor-httpd/internal/logging"
)

// receiveChunk is the stack-buffer size used to drain a socket per recv()
// call, matching the C++ source's 2048-byte read chunk.
const receiveChunk = 2048

// Handler is invoked by the owning Looper when a Connection becomes ready.
// It must be total over all inputs: no panic may escape across a Looper
// boundary.
type Handler func(*Connection)

// Connection owns one Socket and a pair of read/write Buffers, and holds
// the event masks a Poller needs plus a single handler callable. The
// looper field is a back-edge to the owning Looper: never a second owner,
// just a way for the handler to ask for its own deletion.
type Connection struct {
	// writeMu guards the write buffer and the underlying socket write path.
	// It is needed because a CGI handler may complete on a ThreadPool
	// worker goroutine and send a response concurrently with the reactor
	// goroutine handling a subsequent pipelined request on the same
	// Connection (see SPEC_FULL.md §9).
	writeMu sync.Mutex

	socket      *Socket
	readBuffer  *Buffer
	writeBuffer *Buffer

	events  uint32
	revents uint32

	handler Handler
	looper  *Looper
}

// NewConnection takes ownership of socket and allocates its buffers.
func NewConnection(socket *Socket) *Connection {
	return &Connection{
		socket:      socket,
		readBuffer:  NewBuffer(DefaultBufferCapacity),
		writeBuffer: NewBuffer(DefaultBufferCapacity),
	}
}

// Fd returns the underlying socket descriptor.
func (c *Connection) Fd() int { return c.socket.Fd() }

// Socket returns the owned Socket.
func (c *Connection) Socket() *Socket { return c.socket }

// SetEvents sets the monitored event mask (for the Poller).
func (c *Connection) SetEvents(events uint32) { c.events = events }

// Events returns the monitored event mask.
func (c *Connection) Events() uint32 { return c.events }

// setRevents stamps the returned event mask; called by the Poller.
func (c *Connection) setRevents(revents uint32) { c.revents = revents }

// Revents returns the last returned event mask.
func (c *Connection) Revents() uint32 { return c.revents }

// SetHandler installs the per-connection callback invoked by Start.
func (c *Connection) SetHandler(handler Handler) { c.handler = handler }

// SetLooper records the owning Looper. Called exactly once at hand-off.
func (c *Connection) SetLooper(looper *Looper) { c.looper = looper }

// Looper returns the owning Looper, or nil before hand-off.
func (c *Connection) Looper() *Looper { return c.looper }

// FindAndPopTill delegates to the read buffer.
func (c *Connection) FindAndPopTill(delimiter string) (string, bool) {
	return c.readBuffer.FindAndPopTill(delimiter)
}

// ReadSize returns the number of bytes buffered for reading.
func (c *Connection) ReadSize() int { return c.readBuffer.Size() }

// WriteSize returns the number of bytes queued for writing.
func (c *Connection) WriteSize() int {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeBuffer.Size()
}

// ReadData returns the raw bytes currently buffered for reading.
func (c *Connection) ReadData() []byte { return c.readBuffer.Data() }

// ReadDataAsString returns the read buffer contents as a string.
func (c *Connection) ReadDataAsString() string { return c.readBuffer.AsStringView() }

// ClearReadBuffer empties the read buffer.
func (c *Connection) ClearReadBuffer() { c.readBuffer.Clear() }

// ClearWriteBuffer empties the write buffer.
func (c *Connection) ClearWriteBuffer() {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.writeBuffer.Clear()
}

// Write appends a string to the write buffer.
func (c *Connection) Write(s string) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.writeBuffer.PushBack(s)
}

// WriteBytes appends raw bytes to the write buffer.
func (c *Connection) WriteBytes(data []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.writeBuffer.PushBackBytes(data)
}

// Receive drains the socket via repeated recv on a 2048-byte chunk until
// EAGAIN/EWOULDBLOCK, appending everything read to the read buffer. It
// returns the total bytes read and whether the peer closed the connection.
// A zero-length recv means the peer closed; EINTR retries; any other error
// is logged and reported as peer-closed.
func (c *Connection) Receive() (bytesRead int, peerClosed bool) {
	chunk := make([]byte, receiveChunk)
	for {
		n, err := unix.Read(c.Fd(), chunk)
		if n > 0 {
			bytesRead += n
			c.readBuffer.PushBackUnsafe(chunk[:n])
			continue
		}
		if n == 0 && err == nil {
			return bytesRead, true
		}
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return bytesRead, false
		}
		logging.Log(logging.Error, fmt.Sprintf("Connection: Receive() error: %v", err))
		return bytesRead, true
	}
}

// Send writes the entire write buffer via repeated send, tolerating
// EINTR/EAGAIN/EWOULDBLOCK by retrying. Any other error logs and aborts the
// write. The write buffer is cleared regardless of outcome.
func (c *Connection) Send() {
	c.writeMu.Lock()
	defer func() {
		c.writeBuffer.Clear()
		c.writeMu.Unlock()
	}()

	data := c.writeBuffer.Data()
	for written := 0; written < len(data); {
		n, err := unix.Write(c.Fd(), data[written:])
		if n <= 0 {
			if err != unix.EINTR && err != unix.EAGAIN && err != unix.EWOULDBLOCK {
				logging.Log(logging.Error, fmt.Sprintf("Connection: Send() error: %v", err))
				return
			}
			n = 0
		}
		written += n
	}
}

// Start invokes the installed handler with this Connection.
func (c *Connection) Start() {
	c.handler(c)
}
