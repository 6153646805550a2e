package core

import (
	"sync"
)

// loopTimeoutMs is the epoll_wait timeout per wake, matching the source's
// 3000ms loop granularity used for cooperative Exit().
const loopTimeoutMs = 3000

// Looper is a single-threaded event loop owning a Poller and the set of
// client Connections accepted onto it ("one looper per thread"). The
// acceptor's listener Connection is borrowed, not owned: it is registered
// with the Poller but never placed in the owned connections map.
type Looper struct {
	poller *Poller

	mu          sync.Mutex
	connections map[int]*Connection

	exit chan struct{}
	once sync.Once
}

// NewLooper builds a Looper with a default-sized Poller.
func NewLooper() *Looper {
	return &Looper{
		poller:      NewPoller(DefaultListenedEvents),
		connections: make(map[int]*Connection),
		exit:        make(chan struct{}),
	}
}

// StartLoop polls for readiness until Exit is called, dispatching each
// ready Connection's handler on the calling goroutine. The handler may call
// DeleteConnection(fd) on this Looper; after that call it must not touch
// the Connection again.
func (l *Looper) StartLoop() {
	for {
		select {
		case <-l.exit:
			return
		default:
		}

		ready := l.poller.Poll(loopTimeoutMs)
		for _, connection := range ready {
			connection.Start()
		}
	}
}

// AddAcceptor borrow-registers the acceptor's listener Connection: it goes
// into the Poller's interest set but is never owned by this Looper.
func (l *Looper) AddAcceptor(acceptorConn *Connection) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.poller.AddConnection(acceptorConn)
}

// AddConnection takes ownership of newConn, registers it with the Poller,
// and stores it keyed on its fd.
func (l *Looper) AddConnection(newConn *Connection) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.poller.AddConnection(newConn)
	l.connections[newConn.Fd()] = newConn
}

// DeleteConnection drops the owned Connection for fd, closing its socket.
// Returns false if fd is not an owned key.
func (l *Looper) DeleteConnection(fd int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	conn, ok := l.connections[fd]
	if !ok {
		return false
	}
	l.poller.RemoveConnection(fd)
	delete(l.connections, fd)
	_ = conn.Socket().Close()
	return true
}

// Exit signals the loop to terminate; it returns on the next wake, within
// loopTimeoutMs.
func (l *Looper) Exit() {
	l.once.Do(func() { close(l.exit) })
}
