package server

import "runtime"

// Config carries the construction-time settings a Server needs. Zero value
// is not meaningful on its own; use DefaultConfig as a base.
type Config struct {
	// NumThreads is the requested reactor/ThreadPool worker count. The
	// ThreadPool enforces a floor of 2 regardless of this value.
	NumThreads int

	// CacheCapacityBytes bounds the static-file response Cache; 0 disables
	// the cache.
	CacheCapacityBytes int

	// ServingDirectory is the filesystem root resolved against request
	// paths for static and CGI resources.
	ServingDirectory string

	// LogFile is the lumberjack-rotated log destination; empty logs to
	// stderr only.
	LogFile string
}

// DefaultConfig returns a Config sized off the host's CPU count, with no
// cache and no log file, serving the current directory.
func DefaultConfig() Config {
	return Config{
		NumThreads:         runtime.NumCPU(),
		CacheCapacityBytes: 0,
		ServingDirectory:   ".",
		LogFile:            "",
	}
}
