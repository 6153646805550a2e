// Command server runs a GET/HEAD HTTP/1.1 + CGI file server on top of the
// reactor-httpd framework.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/longlp/reactor-httpd/core"
	"github.com/longlp/reactor-httpd/httpd"
	"github.com/longlp/reactor-httpd/internal/logging"
	"github.com/longlp/reactor-httpd/server"
)

const serverShutdownGrace = 10 * time.Second

func main() {
	address := flag.String("address", "127.0.0.1", "server address")
	port := flag.Int("port", 8080, "server port")
	directory := flag.String("directory", "", "directory for resources, it should contain index.html")
	numThreads := flag.Int("threads", 0, "reactor/thread pool size (0 = number of CPUs)")
	cacheBytes := flag.Int("cache-bytes", core.DefaultCacheCapacity, "static resource cache capacity in bytes (0 disables caching)")
	logFile := flag.String("log-file", "", "rotated log file path (empty logs to stderr)")
	flag.Parse()

	if *directory == "" {
		fmt.Fprintln(os.Stderr, "missing required -directory flag")
		os.Exit(1)
	}
	if !dirExists(*directory) {
		fmt.Fprintf(os.Stderr, "not found directory %s\n", *directory)
		os.Exit(1)
	}

	opts := []server.Option{
		server.WithServingDirectory(*directory),
		server.WithCacheCapacityBytes(*cacheBytes),
		server.WithLogFile(*logFile),
	}
	if *numThreads > 0 {
		opts = append(opts, server.WithNumThreads(*numThreads))
	}

	netAddress := core.NewNetAddress(*address, uint16(*port), core.IPv4)
	fmt.Printf("Setting up server on %s\n", netAddress.String())

	httpServer := server.NewServer(netAddress, opts...)
	httpServer.OnHandle(httpd.NewHandler(*directory, httpServer.Cache(), httpServer.Pool()))

	go handleShutdown(httpServer)

	httpServer.Begin()
}

func handleShutdown(httpServer *server.Server) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Log(logging.Error, fmt.Sprintf("shutdown: %v", err))
	}
	logging.Close()
	os.Exit(0)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
