package core

import (
	"fmt"

	"github.com/longlp/reactor-httpd/internal/logging"
)

// Acceptor owns the listening Connection, accepts incoming clients on the
// listener Looper, and hands each one off to a Looper chosen by the
// DistributionAgent. Callers install SetOnHandle before the listener Looper
// starts its loop; SetOnAccept is optional instrumentation invoked after a
// client has been handed off.
type Acceptor struct {
	acceptorConnection *Connection
	agent              *DistributionAgent

	onAccept Handler
	onHandle Handler
}

// NewAcceptor binds and listens on serverAddress, registers the resulting
// listener Connection on listener (level-triggered, never edge-triggered:
// accept() readiness must be re-checked every loop iteration), and installs
// no-op callbacks.
func NewAcceptor(listener *Looper, agent *DistributionAgent, serverAddress NetAddress) *Acceptor {
	acceptorSocket := NewUnboundSocket()
	acceptorSocket.Bind(serverAddress, true)
	acceptorSocket.Listen()

	acceptorConn := NewConnection(acceptorSocket)
	acceptorConn.SetEvents(uint32(EventRead))
	acceptorConn.SetLooper(listener)
	listener.AddAcceptor(acceptorConn)

	a := &Acceptor{
		acceptorConnection: acceptorConn,
		agent:              agent,
	}
	a.SetOnAccept(func(*Connection) {})
	a.SetOnHandle(func(*Connection) {})
	return a
}

// SetOnAccept installs the callback fired after a new client Connection has
// been distributed to a Looper, and wires the actual accept-loop logic onto
// the listener Connection's handler.
func (a *Acceptor) SetOnAccept(onAcceptCallback Handler) {
	a.onAccept = onAcceptCallback
	a.acceptorConnection.SetHandler(func(connection *Connection) {
		var clientAddress NetAddress
		acceptFd := connection.Socket().Accept(&clientAddress)
		if acceptFd == -1 {
			return
		}

		clientSocket := NewSocket(acceptFd)
		clientSocket.SetNonBlocking()
		clientConn := NewConnection(clientSocket)
		clientConn.SetEvents(uint32(EventRead) | uint32(EventET))
		clientConn.SetHandler(a.onHandle)

		looper, idx := a.agent.SelectCandidate()

		logging.Log(logging.Info, fmt.Sprintf("new client fd=%d maps to reactor=%d", clientConn.Fd(), idx))

		clientConn.SetLooper(looper)
		looper.AddConnection(clientConn)
		a.onAccept(connection)
	})
}

// SetOnHandle installs the per-message callback assigned to every accepted
// client Connection.
func (a *Acceptor) SetOnHandle(onHandleCallback Handler) {
	a.onHandle = onHandleCallback
}

// GetAcceptorConnection returns the listener Connection.
func (a *Acceptor) GetAcceptorConnection() *Connection {
	return a.acceptorConnection
}
