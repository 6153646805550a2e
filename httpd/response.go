package httpd

import (
	"fmt"
	"strconv"
	"strings"
)

// Response is an HTTP/1.1 status line plus headers; the body is kept
// separate (loaded from cache, disk, or a CGI child) and appended by the
// caller after Serialize.
type Response struct {
	statusLine  string
	shouldClose bool
	headers     []Header
	resourceURL string
	hasResource bool
}

// Make200Response builds a 200 OK response. If resourceURL names an
// existing file, Content-Length and Content-Type are derived from it;
// otherwise Content-Length is 0.
func Make200Response(shouldClose bool, resourceURL string, hasResource bool) Response {
	return newResponse(statusOK, shouldClose, resourceURL, hasResource)
}

// Make400Response builds a 400 Bad Request response, always closing.
func Make400Response() Response {
	return newResponse(statusBadRequest, true, "", false)
}

// Make404Response builds a 404 Not Found response, always closing.
func Make404Response() Response {
	return newResponse(statusNotFound, true, "", false)
}

// Make503Response builds a 503 Service Unavailable response, always
// closing.
func Make503Response() Response {
	return newResponse(statusServiceUnavailable, true, "", false)
}

func newResponse(statusCode string, shouldClose bool, resourceURL string, hasResource bool) Response {
	r := Response{
		statusLine:  fmt.Sprintf("%s%s%s", httpVersionString, space, statusCode),
		shouldClose: shouldClose,
	}

	connectionValue := connectionKeepAlive
	if shouldClose {
		connectionValue = connectionClose
	}
	r.headers = append(r.headers, NewHeader(headerServer, serverName))
	r.headers = append(r.headers, NewHeader(headerConnection, connectionValue))

	if hasResource && isFileExists(resourceURL) {
		r.resourceURL = resourceURL
		r.hasResource = true
		contentLength := checkFileSize(resourceURL)
		r.headers = append(r.headers, NewHeader(headerContentLength, strconv.FormatInt(contentLength, 10)))

		if lastDot := strings.LastIndex(resourceURL, dot); lastDot != -1 {
			extensionRaw := resourceURL[lastDot+1:]
			extension := toExtension(extensionRaw)
			r.headers = append(r.headers, NewHeader(headerContentType, extensionToMime(extension)))
		}
	} else {
		r.headers = append(r.headers, NewHeader(headerContentLength, contentLengthZero))
	}

	return r
}

// Serialize renders the status line and headers (no body) into buffer.
func (r Response) Serialize(buffer *[]byte) {
	var sb strings.Builder
	sb.WriteString(r.statusLine)
	sb.WriteString(crlf)
	for _, h := range r.headers {
		sb.WriteString(h.Serialize())
	}
	sb.WriteString(crlf)
	*buffer = append(*buffer, sb.String()...)
}

// Headers returns the response's header list.
func (r Response) Headers() []Header { return r.headers }

// ChangeHeader overwrites the value of the first header matching key,
// returning false if no such header exists.
func (r *Response) ChangeHeader(key, newValue string) bool {
	for i := range r.headers {
		if r.headers[i].Key() == key {
			r.headers[i].SetValue(newValue)
			return true
		}
	}
	return false
}
