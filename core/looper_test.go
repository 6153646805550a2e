package core

import (
	"sync"
	"testing"
	"time"
)

func TestLooperAddAndDeleteConnection(t *testing.T) {
	local := NewNetAddress("127.0.0.1", 20185, IPv4)
	listenerSocket := NewUnboundSocket()
	listenerSocket.Bind(local, true)
	listenerSocket.Listen()
	listenerSocket.SetNonBlocking()

	looper := NewLooper()
	conn := NewConnection(listenerSocket)
	conn.SetEvents(uint32(EventRead))
	conn.SetHandler(func(*Connection) {})
	looper.AddConnection(conn)

	if ok := looper.DeleteConnection(conn.Fd()); !ok {
		t.Fatal("DeleteConnection() = false for an owned fd, want true")
	}
	if ok := looper.DeleteConnection(conn.Fd()); ok {
		t.Fatal("DeleteConnection() = true for an already-removed fd, want false")
	}
}

func TestLooperStartLoopDispatchesAndExits(t *testing.T) {
	local := NewNetAddress("127.0.0.1", 20186, IPv4)
	serverSocket := NewUnboundSocket()
	serverSocket.Bind(local, true)
	serverSocket.Listen()
	serverSocket.SetNonBlocking()

	looper := NewLooper()

	var mu sync.Mutex
	fired := false
	conn := NewConnection(serverSocket)
	conn.SetEvents(uint32(EventRead))
	conn.SetHandler(func(c *Connection) {
		mu.Lock()
		fired = true
		mu.Unlock()
		looper.Exit()
	})
	looper.AddAcceptor(conn)

	done := make(chan struct{})
	go func() {
		looper.StartLoop()
		close(done)
	}()

	go func() {
		client := NewUnboundSocket()
		client.Connect(local)
		time.Sleep(200 * time.Millisecond)
		client.Close()
	}()

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("StartLoop() did not return after Exit()")
	}

	mu.Lock()
	defer mu.Unlock()
	if !fired {
		t.Fatal("listener handler never fired")
	}
}
