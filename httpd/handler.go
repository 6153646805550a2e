package httpd

import (
	"fmt"
	"strconv"

	"github.com/longlp/reactor-httpd/core"
	"github.com/longlp/reactor-httpd/internal/logging"
)

// handler holds the state ProcessHTTPRequest needs: where static/CGI
// resources are resolved from, the shared response cache, and the pool CGI
// execution is dispatched onto so a slow CGI child never blocks a reactor
// goroutine.
type handler struct {
	servingDirectory string
	cache            *core.Cache
	pool             *core.ThreadPool
}

// NewHandler builds the core.Handler installed via server.Server.OnHandle.
// servingDirectory is prefixed onto every request's resource URL; cache may
// be nil to disable static-file caching.
func NewHandler(servingDirectory string, cache *core.Cache, pool *core.ThreadPool) core.Handler {
	h := &handler{servingDirectory: servingDirectory, cache: cache, pool: pool}
	return h.process
}

// process implements the edge-triggered read-then-respond cycle: drain the
// socket, then handle every complete pipelined request currently buffered.
// A request naming a cgi-bin resource is dispatched onto the ThreadPool so
// the reactor goroutine can keep servicing other connections while the CGI
// child runs; its response is written back, and the connection torn down if
// needed, from the pool worker goroutine instead.
func (h *handler) process(conn *core.Connection) {
	fd := conn.Fd()
	_, peerClosed := conn.Receive()
	if peerClosed {
		if looper := conn.Looper(); looper != nil {
			looper.DeleteConnection(fd)
		}
		logging.Log(logging.Info, fmt.Sprintf("client fd=%d has exited.", fd))
		return
	}

	for {
		requestStr, ok := conn.FindAndPopTill(crlf + crlf)
		if !ok {
			break
		}

		request := ParseRequest(requestStr)
		if !request.IsValid() {
			h.respondBadRequest(conn)
			conn.Looper().DeleteConnection(fd)
			return
		}

		resourceFullPath := h.servingDirectory + request.ResourceURL()
		logging.Log(logging.Info, resourceFullPath)

		if isCgiRequest(resourceFullPath) {
			h.dispatchCGI(conn, request, resourceFullPath)
			if request.ShouldClose() {
				return
			}
			continue
		}

		if h.respondStatic(conn, request, resourceFullPath) {
			conn.Looper().DeleteConnection(fd)
			return
		}
	}
}

func (h *handler) respondBadRequest(conn *core.Connection) {
	var buf []byte
	response := Make400Response()
	response.Serialize(&buf)
	conn.WriteBytes(buf)
	conn.Send()
}

// respondStatic writes the response for a non-CGI request and reports
// whether the connection should now close.
func (h *handler) respondStatic(conn *core.Connection, request Request, resourceFullPath string) bool {
	var buf []byte

	if !isFileExists(resourceFullPath) {
		logging.Log(logging.Info, fmt.Sprintf("%s not exist.", resourceFullPath))
		response := Make404Response()
		response.Serialize(&buf)
		conn.WriteBytes(buf)
		conn.Send()
		return true
	}

	response := Make200Response(request.ShouldClose(), resourceFullPath, true)
	response.Serialize(&buf)

	if request.Method() == MethodGET {
		var body []byte
		cached := h.cache != nil && h.cache.TryLoad(resourceFullPath, &body)
		if !cached {
			if err := loadFile(resourceFullPath, &body); err != nil {
				logging.Log(logging.Error, fmt.Sprintf("failed to load %s: %v", resourceFullPath, err))
			} else if h.cache != nil {
				h.cache.TryInsert(resourceFullPath, body)
			}
		}
		buf = append(buf, body...)
	}

	conn.WriteBytes(buf)
	conn.Send()
	return request.ShouldClose()
}

// dispatchCGI submits CGI execution and response delivery as one ThreadPool
// task. The reactor goroutine returns immediately; the pool worker blocks on
// the CGI child instead.
func (h *handler) dispatchCGI(conn *core.Connection, request Request, resourceFullPath string) {
	fd := conn.Fd()
	looper := conn.Looper()
	shouldClose := request.ShouldClose()

	_, err := h.pool.Submit(func() any {
		var buf []byte

		runner := ParseCGIRunner(resourceFullPath)
		switch {
		case !runner.IsValid():
			response := Make400Response()
			response.Serialize(&buf)
		case !isFileExists(runner.Path()):
			response := Make404Response()
			response.Serialize(&buf)
		default:
			result := runner.Run()
			response := Make200Response(shouldClose, "", false)
			response.ChangeHeader(headerContentLength, strconv.Itoa(len(result)))
			response.Serialize(&buf)
			buf = append(buf, result...)
		}

		conn.WriteBytes(buf)
		conn.Send()
		if shouldClose {
			looper.DeleteConnection(fd)
		}
		return nil
	})
	if err != nil {
		logging.Log(logging.Warning, fmt.Sprintf("cgi dispatch failed for fd=%d: %v", fd, err))
	}
}
