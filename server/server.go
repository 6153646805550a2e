// Package server assembles the core reactor primitives into the framework's
// public entry point: build a Config, register OnAccept/OnHandle callbacks,
// then Begin.
package server

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"

	"github.com/longlp/reactor-httpd/core"
	"github.com/longlp/reactor-httpd/internal/logging"
)

// ErrOnHandleNotSet is the value Begin panics with if OnHandle was never
// called.
var ErrOnHandleNotSet = errors.New("server: OnHandle callback not set before Begin")

// Server wires a listener Looper, a pool of reactor Loopers, a
// DistributionAgent, a ThreadPool, and an Acceptor. Users provide business
// logic through OnAccept (optional) and OnHandle (required); everything
// else — accepting, distributing, and polling client connections — is
// handled internally.
type Server struct {
	config Config

	onHandleSet bool

	listener  *core.Looper
	reactors  []*core.Looper
	reactorWG sync.WaitGroup
	agent     *core.DistributionAgent
	pool      *core.ThreadPool
	acceptor  *core.Acceptor
	cache     *core.Cache
}

// NewServer builds a Server bound to serverAddress, applying opts over
// DefaultConfig. It immediately starts the reactor Loopers (each on its own
// dedicated goroutine — StartLoop never returns, so these must not compete
// with the bounded ThreadPool, which exists for off-reactor work like CGI)
// and constructs the Acceptor, but does not start accepting connections
// until Begin is called.
func NewServer(serverAddress core.NetAddress, opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.LogFile != "" {
		logging.Configure(cfg.LogFile, 100, 5, 30)
	}

	s := &Server{
		config:   cfg,
		agent:    core.NewDistributionAgent(),
		pool:     core.NewThreadPool(cfg.NumThreads),
		listener: core.NewLooper(),
	}

	if cfg.CacheCapacityBytes > 0 {
		s.cache = core.NewCache(cfg.CacheCapacityBytes)
	}

	s.reactors = make([]*core.Looper, 0, s.pool.Size())
	for i := 0; i < s.pool.Size(); i++ {
		reactor := core.NewLooper()
		s.reactors = append(s.reactors, reactor)
		s.agent.AddCandidate(reactor)

		s.reactorWG.Add(1)
		go func(r *core.Looper) {
			defer s.reactorWG.Done()
			r.StartLoop()
		}(reactor)
	}

	s.acceptor = core.NewAcceptor(s.listener, s.agent, serverAddress)
	return s
}

// Cache returns the shared static-resource Cache, or nil if none was
// configured.
func (s *Server) Cache() *core.Cache { return s.cache }

// Pool returns the ThreadPool used for dispatching work (e.g. CGI
// execution) off the reactor goroutines. The reactor Loopers themselves run
// on their own dedicated goroutines, not on this pool.
func (s *Server) Pool() *core.ThreadPool { return s.pool }

// Config returns the resolved configuration this Server was built with.
func (s *Server) Config() Config { return s.config }

// OnAccept appends custom logic run after a new client connection has been
// distributed to a reactor Looper. The base accept/distribute behavior
// always runs first.
func (s *Server) OnAccept(onAccept core.Handler) *Server {
	s.acceptor.SetOnAccept(onAccept)
	return s
}

// OnHandle installs the per-message handler for every accepted client
// connection. There is no base implementation; it must be set before
// Begin.
func (s *Server) OnHandle(onHandle core.Handler) *Server {
	s.acceptor.SetOnHandle(onHandle)
	s.onHandleSet = true
	return s
}

// Begin blocks running the listener Looper's accept loop. Panics if
// OnHandle was never set.
func (s *Server) Begin() {
	if !s.onHandleSet {
		panic(ErrOnHandleNotSet)
	}
	s.listener.StartLoop()
}

// Shutdown stops the listener Looper, then every reactor Looper (joining
// their dedicated goroutines), then closes the ThreadPool, in that order,
// aggregating any errors encountered along the way into a single combined
// error.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error

	s.listener.Exit()

	for _, reactor := range s.reactors {
		reactor.Exit()
	}

	done := make(chan struct{})
	go func() {
		s.reactorWG.Wait()
		s.pool.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		err = multierr.Append(err, ctx.Err())
	}

	return err
}
