package core

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/longlp/reactor-httpd/internal/logging"
)

const backlog = 128

// Socket exclusively owns one OS file descriptor; fd == -1 is the closed
// sentinel (as returned by NewUnboundSocket and left by Close). The zero
// value holds fd 0 and is not a closed Socket. Socket is not safe to copy: once ownership is
// handed to a Connection, the original variable must not be used again.
type Socket struct {
	fd int
}

// NewSocket wraps an already-open file descriptor (e.g. one returned by
// Accept), taking ownership of it.
func NewSocket(fd int) *Socket {
	return &Socket{fd: fd}
}

// NewUnboundSocket returns a Socket with no underlying fd yet; Bind/Connect
// create the fd on demand, choosing the family from the target address.
func NewUnboundSocket() *Socket {
	return &Socket{fd: -1}
}

// Fd returns the underlying descriptor, or -1 if closed/unbound.
func (s *Socket) Fd() int { return s.fd }

func createSocket(protocol Protocol) int {
	fd, err := unix.Socket(domainFor(protocol), unix.SOCK_STREAM, 0)
	if err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: socket() error: %v", err))
		panic(fmt.Errorf("socket: socket() error: %w", err))
	}
	return fd
}

// Connect dials server_address, creating the fd on demand. A connect
// failure is a fatal configuration error.
func (s *Socket) Connect(address NetAddress) {
	if s.fd == -1 {
		s.fd = createSocket(address.protocol)
	}
	if err := unix.Connect(s.fd, address.sockaddr()); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: Connect() error: %v", err))
		panic(fmt.Errorf("socket: connect() error: %w", err))
	}
}

// Bind binds to address, creating the fd on demand. reusable toggles
// SO_REUSEADDR and SO_REUSEPORT before binding. A bind failure is fatal.
func (s *Socket) Bind(address NetAddress, reusable bool) {
	if s.fd == -1 {
		s.fd = createSocket(address.protocol)
	}
	if reusable {
		s.SetReusable()
	}
	if err := unix.Bind(s.fd, address.sockaddr()); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: Bind() error: %v", err))
		panic(fmt.Errorf("socket: bind() error: %w", err))
	}
}

// Listen marks the socket as a listener with a fixed backlog of 128. A
// listen failure is fatal.
func (s *Socket) Listen() {
	if err := unix.Listen(s.fd, backlog); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: Listen() error: %v", err))
		panic(fmt.Errorf("socket: listen() error: %w", err))
	}
}

// Accept accepts the next pending connection, returning a non-blocking,
// close-on-exec client fd equivalent to accept4(SOCK_NONBLOCK|SOCK_CLOEXEC),
// or -1 on failure. Accept failures are tolerated (logged at warning) and
// never escalate to a fatal error — the server must stay up under pressure.
func (s *Socket) Accept(clientAddress *NetAddress) int {
	fd, sa, err := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		logging.Log(logging.Warning, fmt.Sprintf("Socket: Accept() error: %v", err))
		return -1
	}
	*clientAddress = fromSockaddr(sa)
	return fd
}

// SetReusable sets SO_REUSEADDR and SO_REUSEPORT. Failure is fatal.
func (s *Socket) SetReusable() {
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: SetReusable() error: %v", err))
		panic(fmt.Errorf("socket: setsockopt(SO_REUSEADDR) error: %w", err))
	}
	if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: SetReusable() error: %v", err))
		panic(fmt.Errorf("socket: setsockopt(SO_REUSEPORT) error: %w", err))
	}
}

// SetNonBlocking sets O_NONBLOCK on the descriptor, a no-op if already set.
func (s *Socket) SetNonBlocking() {
	attrs := s.GetAttrs()
	if attrs&unix.O_NONBLOCK != 0 {
		return
	}
	if err := unix.SetNonblock(s.fd, true); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: SetNonBlocking() error: %v", err))
		panic(fmt.Errorf("socket: fcntl(O_NONBLOCK) error: %w", err))
	}
}

// GetAttrs returns the current fcntl(F_GETFL) flags.
func (s *Socket) GetAttrs() int {
	flags, err := unix.FcntlInt(uintptr(s.fd), unix.F_GETFL, 0)
	if err != nil {
		logging.Log(logging.Error, fmt.Sprintf("Socket: GetAttrs() error: %v", err))
		panic(fmt.Errorf("socket: fcntl(F_GETFL) error: %w", err))
	}
	return flags
}

// Close closes the descriptor if valid. Safe to call more than once.
func (s *Socket) Close() error {
	if s.fd == -1 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
