package core

import (
	"sync"
	"testing"
	"time"
)

func TestAcceptorDistributesNewClientToReactor(t *testing.T) {
	listener := NewLooper()
	reactor := NewLooper()

	agent := NewDistributionAgent()
	agent.AddCandidate(reactor)

	local := NewNetAddress("127.0.0.1", 20187, IPv4)
	acceptor := NewAcceptor(listener, agent, local)

	var mu sync.Mutex
	handled := false
	acceptor.SetOnHandle(func(c *Connection) {
		mu.Lock()
		handled = true
		mu.Unlock()
	})
	acceptor.SetOnAccept(func(*Connection) {})

	go listener.StartLoop()
	go reactor.StartLoop()
	defer listener.Exit()
	defer reactor.Exit()

	clientSocket := NewUnboundSocket()
	clientSocket.Connect(local)
	clientConn := NewConnection(clientSocket)
	defer clientSocket.Close()

	time.Sleep(200 * time.Millisecond)
	clientConn.Write("ping")
	clientConn.Send()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := handled
		mu.Unlock()
		if done {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("accepted client's handler never fired on the reactor Looper")
}

func TestAcceptorGetAcceptorConnection(t *testing.T) {
	listener := NewLooper()
	agent := NewDistributionAgent()
	agent.AddCandidate(NewLooper())

	local := NewNetAddress("127.0.0.1", 20188, IPv4)
	acceptor := NewAcceptor(listener, agent, local)

	conn := acceptor.GetAcceptorConnection()
	if conn == nil {
		t.Fatal("GetAcceptorConnection() = nil")
	}
	if conn.Fd() == -1 {
		t.Fatal("GetAcceptorConnection().Fd() = -1, want a bound listener fd")
	}
}
