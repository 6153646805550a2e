// Package logging wraps zap behind the single external-logger contract the
// framework's core and httpd packages depend on: Log(level, message). Writes
// never block the caller; a background goroutine drains a bounded channel
// and flushes zap's buffer either every flushInterval or every
// flushBatchSize messages, whichever comes first.
package logging

import (
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Level mirrors the three severities the original server distinguishes:
// informational, recoverable-fault warnings, and fatal errors.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

const (
	queueCapacity   = 4096
	flushBatchSize  = 1000
	flushInterval   = 3 * time.Millisecond
)

type entry struct {
	level Level
	msg   string
}

// asyncLogger drains queued entries into a zap.Logger on its own goroutine.
type asyncLogger struct {
	zl    *zap.Logger
	queue chan entry
	done  chan struct{}
}

var (
	defaultOnce sync.Once
	defaultLog  *asyncLogger
)

// Configure installs the package-level logger, rotating to logFile via
// lumberjack. It must be called at most once, before the first Log call
// that should honor non-default settings; calling Log before Configure
// lazily installs stderr-only defaults.
func Configure(logFile string, maxSizeMB, maxBackups, maxAgeDays int) {
	defaultOnce.Do(func() {
		defaultLog = newAsyncLogger(logFile, maxSizeMB, maxBackups, maxAgeDays)
	})
}

func newAsyncLogger(logFile string, maxSizeMB, maxBackups, maxAgeDays int) *asyncLogger {
	var core zapcore.Core
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	if logFile == "" {
		core = zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), zap.DebugLevel)
	} else {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		core = zapcore.NewCore(encoder, zapcore.AddSync(rotator), zap.DebugLevel)
	}

	al := &asyncLogger{
		zl:    zap.New(core),
		queue: make(chan entry, queueCapacity),
		done:  make(chan struct{}),
	}
	go al.drain()
	return al
}

func (al *asyncLogger) drain() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	pending := 0
	for {
		select {
		case e, ok := <-al.queue:
			if !ok {
				al.zl.Sync()
				close(al.done)
				return
			}
			al.write(e)
			pending++
			if pending >= flushBatchSize {
				al.zl.Sync()
				pending = 0
			}
		case <-ticker.C:
			if pending > 0 {
				al.zl.Sync()
				pending = 0
			}
		}
	}
}

func (al *asyncLogger) write(e entry) {
	switch e.level {
	case Error:
		al.zl.Error(e.msg)
	case Warning:
		al.zl.Warn(e.msg)
	default:
		al.zl.Info(e.msg)
	}
}

func ensureDefault() *asyncLogger {
	defaultOnce.Do(func() {
		defaultLog = newAsyncLogger("", 0, 0, 0)
	})
	return defaultLog
}

// Log enqueues msg at level for asynchronous delivery. It never blocks:
// when the internal queue is saturated the write is dropped rather than
// stalling the reactor goroutine that called it.
func Log(level Level, msg string) {
	l := ensureDefault()
	select {
	case l.queue <- entry{level: level, msg: msg}:
	default:
	}
}

// Close flushes and stops the background drain goroutine. Safe to call at
// most once, typically during server shutdown.
func Close() {
	l := ensureDefault()
	close(l.queue)
	<-l.done
}

