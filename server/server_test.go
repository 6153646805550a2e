package server

import (
	"context"
	"testing"
	"time"

	"github.com/longlp/reactor-httpd/core"
)

func TestNewServerAppliesOptions(t *testing.T) {
	addr := core.NewNetAddress("127.0.0.1", 20280, core.IPv4)
	srv := NewServer(addr, WithNumThreads(4), WithCacheCapacityBytes(1024))
	defer func() { _ = srv.Shutdown(context.Background()) }()

	if got, want := srv.Config().NumThreads, 4; got != want {
		t.Fatalf("Config().NumThreads = %d, want %d", got, want)
	}
	if srv.Cache() == nil {
		t.Fatal("Cache() = nil, want a configured Cache")
	}
	if got, want := srv.Pool().Size(), 4; got != want {
		t.Fatalf("Pool().Size() = %d, want %d", got, want)
	}
}

func TestNewServerWithoutCacheCapacity(t *testing.T) {
	addr := core.NewNetAddress("127.0.0.1", 20281, core.IPv4)
	srv := NewServer(addr)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	if srv.Cache() != nil {
		t.Fatal("Cache() != nil, want nil when CacheCapacityBytes is unset")
	}
}

func TestBeginPanicsWithoutOnHandle(t *testing.T) {
	addr := core.NewNetAddress("127.0.0.1", 20282, core.IPv4)
	srv := NewServer(addr)
	defer func() { _ = srv.Shutdown(context.Background()) }()

	defer func() {
		r := recover()
		if r != ErrOnHandleNotSet {
			t.Fatalf("recover() = %v, want %v", r, ErrOnHandleNotSet)
		}
	}()
	srv.Begin()
}

func TestServerBeginAndShutdown(t *testing.T) {
	addr := core.NewNetAddress("127.0.0.1", 20283, core.IPv4)
	srv := NewServer(addr, WithNumThreads(2))

	accepted := make(chan struct{}, 1)
	srv.OnAccept(func(*core.Connection) {
		select {
		case accepted <- struct{}{}:
		default:
		}
	})
	srv.OnHandle(func(c *core.Connection) {
		_, peerClosed := c.Receive()
		if peerClosed {
			return
		}
	})

	done := make(chan struct{})
	go func() {
		srv.Begin()
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)

	client := core.NewUnboundSocket()
	client.Connect(addr)
	defer client.Close()

	select {
	case <-accepted:
	case <-time.After(3 * time.Second):
		t.Fatal("OnAccept callback never fired for a connecting client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Begin() did not return after Shutdown()")
	}
}
