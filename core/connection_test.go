package core

import (
	"testing"
	"time"
)

func TestConnectionEventsAndRevents(t *testing.T) {
	local := NewNetAddress("127.0.0.1", 20182, IPv4)
	server := NewUnboundSocket()
	server.Bind(local, true)
	server.Listen()
	defer server.Close()

	conn := NewConnection(server)
	conn.SetEvents(uint32(EventRead) | uint32(EventET))
	if conn.Events()&uint32(EventRead) == 0 {
		t.Error("Events() missing EventRead")
	}
	if conn.Events()&uint32(EventET) == 0 {
		t.Error("Events() missing EventET")
	}

	conn.setRevents(uint32(EventRead))
	if conn.Revents()&uint32(EventRead) == 0 {
		t.Error("Revents() missing EventRead after setRevents")
	}
}

func TestConnectionHandlerInvoke(t *testing.T) {
	local := NewNetAddress("127.0.0.1", 20183, IPv4)
	server := NewUnboundSocket()
	server.Bind(local, true)
	server.Listen()
	defer server.Close()

	conn := NewConnection(server)
	count := 0
	conn.SetHandler(func(*Connection) { count++ })
	conn.Start()
	if count != 1 {
		t.Fatalf("handler invoked %d times, want 1", count)
	}
}

func TestConnectionSendAndReceive(t *testing.T) {
	local := NewNetAddress("127.0.0.1", 20184, IPv4)
	serverSocket := NewUnboundSocket()
	serverSocket.Bind(local, true)
	serverSocket.Listen()
	defer serverSocket.Close()

	clientMessage := "hello from client"
	serverMessage := "hello from server"

	go func() {
		clientSocket := NewUnboundSocket()
		clientSocket.Connect(local)
		clientSocket.SetNonBlocking()
		clientConn := NewConnection(clientSocket)
		clientConn.Write(clientMessage)
		if got, want := clientConn.WriteSize(), len(clientMessage); got != want {
			t.Errorf("client WriteSize() = %d, want %d", got, want)
		}
		clientConn.Send()

		time.Sleep(300 * time.Millisecond)
		n, peerClosed := clientConn.Receive()
		if n != len(serverMessage) || peerClosed {
			t.Errorf("client Receive() = (%d, %v), want (%d, false)", n, peerClosed, len(serverMessage))
		}
		if got := clientConn.ReadDataAsString(); got != serverMessage {
			t.Errorf("client ReadDataAsString() = %q, want %q", got, serverMessage)
		}
		clientSocket.Close()
	}()

	var clientAddress NetAddress
	time.Sleep(100 * time.Millisecond)
	acceptedFd := serverSocket.Accept(&clientAddress)
	if acceptedFd == -1 {
		t.Fatal("Accept() = -1")
	}
	connectedSocket := NewSocket(acceptedFd)
	connectedSocket.SetNonBlocking()
	connectedConn := NewConnection(connectedSocket)
	defer connectedSocket.Close()

	time.Sleep(100 * time.Millisecond)
	n, peerClosed := connectedConn.Receive()
	if n != len(clientMessage) || peerClosed {
		t.Fatalf("server Receive() = (%d, %v), want (%d, false)", n, peerClosed, len(clientMessage))
	}
	if got, want := connectedConn.ReadSize(), len(clientMessage); got != want {
		t.Fatalf("server ReadSize() = %d, want %d", got, want)
	}

	connectedConn.Write(serverMessage)
	connectedConn.Send()
	time.Sleep(400 * time.Millisecond)
}
