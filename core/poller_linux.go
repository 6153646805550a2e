//go:build linux

package core

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/longlp/reactor-httpd/internal/logging"
)

// Event flags mirroring the monitored/returned event masks a Connection
// carries. Add is the epoll_ctl registration op, not an event bit.
const (
	EventAdd  = unix.EPOLL_CTL_ADD
	EventRead = unix.EPOLLIN
	EventET   = unix.EPOLLET
)

// DefaultListenedEvents is the default epoll scratch buffer size.
const DefaultListenedEvents = 1024

// BlockForever passed to Poll blocks with no timeout.
const BlockForever = -1

// Poller is an edge-triggered readiness multiplexer over a registered set
// of Connections, backed by Linux epoll. It never owns the Connections it
// is given; it only borrows pointers to them.
//
// registryMu guards registry against the concurrent access pattern this
// server actually has: AddConnection is called from the acceptor/listener
// goroutine (a new client handed off mid-flight) and RemoveConnection from
// whichever goroutine calls Looper.DeleteConnection, while Poll runs on the
// owning reactor goroutine — Looper.mu serializes Looper.AddConnection/
// DeleteConnection against each other but is never held across Poll, so
// registry needs its own lock.
type Poller struct {
	epfd   int
	events []unix.EpollEvent

	registryMu sync.Mutex
	registry   map[int32]*Connection
}

// NewPoller creates the epoll instance and preallocates a scratch buffer of
// capacity entries. A creation failure is fatal.
func NewPoller(capacity uint64) *Poller {
	if capacity == 0 {
		capacity = DefaultListenedEvents
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Poller: epoll_create1() error: %v", err))
		panic(fmt.Errorf("poller: epoll_create1() error: %w", err))
	}
	return &Poller{
		epfd:     epfd,
		events:   make([]unix.EpollEvent, capacity),
		registry: make(map[int32]*Connection),
	}
}

// AddConnection registers connection.Fd() with the interest mask carried on
// the Connection, recovering the pointer on readiness via an internal
// fd→Connection registry (Go cannot stash an arbitrary pointer in the
// kernel-visible epoll_event portably, so the registry plays the role the
// C++ source gives to epoll_data.ptr).
func (p *Poller) AddConnection(connection *Connection) {
	fd := connection.Fd()
	if fd == -1 {
		panic("poller: cannot AddConnection() with an invalid fd")
	}
	event := unix.EpollEvent{Events: connection.Events(), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Poller: epoll_ctl add error: %v", err))
		panic(fmt.Errorf("poller: epoll_ctl add error: %w", err))
	}
	p.registryMu.Lock()
	p.registry[int32(fd)] = connection
	p.registryMu.Unlock()
}

// RemoveConnection unregisters fd from the epoll interest set. Safe to call
// for fds that were never or are no longer registered.
func (p *Poller) RemoveConnection(fd int) {
	_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	p.registryMu.Lock()
	delete(p.registry, int32(fd))
	p.registryMu.Unlock()
}

// Poll blocks up to timeoutMs milliseconds (BlockForever blocks
// indefinitely) and returns the Connections that became ready, with each
// Connection's returned-event mask stamped. A wait failure is fatal.
func (p *Poller) Poll(timeoutMs int) []*Connection {
	ready, err := unix.EpollWait(p.epfd, p.events, timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		logging.Log(logging.Error, fmt.Sprintf("Poller: Poll() error: %v", err))
		panic(fmt.Errorf("poller: epoll_wait() error: %w", err))
	}

	result := make([]*Connection, 0, ready)
	p.registryMu.Lock()
	for i := 0; i < ready; i++ {
		ev := p.events[i]
		conn, ok := p.registry[ev.Fd]
		if !ok {
			continue
		}
		conn.setRevents(ev.Events)
		result = append(result, conn)
	}
	p.registryMu.Unlock()
	return result
}

// GetPollSize returns the capacity of the scratch event buffer.
func (p *Poller) GetPollSize() int { return len(p.events) }

// Close releases the epoll file descriptor.
func (p *Poller) Close() error {
	return unix.Close(p.epfd)
}
