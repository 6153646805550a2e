package httpd

import "fmt"

// Request is a parsed GET/HEAD HTTP/1.1 request line plus headers.
// ShouldClose defaults to true; it flips to false only when a
// Connection: Keep-Alive header is present, matching this framework's wire
// contract (not the HTTP/1.1 default of keep-alive-unless-told-otherwise).
type Request struct {
	method        Method
	version       Version
	resourceURL   string
	headers       []Header
	shouldClose   bool
	valid         bool
	invalidReason string
}

// ParseRequest deserializes a full "\r\n\r\n"-terminated request. An invalid
// request has IsValid() == false and a non-empty InvalidReason().
func ParseRequest(requestStr string) Request {
	r := Request{
		method:      MethodUnsupported,
		version:     VersionUnsupported,
		shouldClose: true,
	}

	lines := split(requestStr, crlf)
	if len(lines) < 2 || lines[len(lines)-1] != "" {
		r.invalidReason = "Request format is wrong."
		return r
	}

	lines = lines[:len(lines)-1]
	if !r.parseRequestLine(lines[0]) {
		return r
	}

	lines = lines[1:]
	for _, line := range lines {
		header := ParseHeader(line)
		if !header.IsValid() {
			r.invalidReason = "Fail to parse header line: " + line
			return r
		}
		r.scanHeader(header)
		r.headers = append(r.headers, header)
	}
	r.valid = true
	return r
}

func (r *Request) parseRequestLine(requestLine string) bool {
	tokens := split(requestLine, space)
	if len(tokens) != 3 {
		r.invalidReason = fmt.Sprintf("Invalid first request headline: %s", requestLine)
		return false
	}

	r.method = toMethod(tokens[0])
	if r.method == MethodUnsupported {
		r.invalidReason = fmt.Sprintf("Unsupported method: %s", tokens[0])
		return false
	}

	r.version = toVersion(tokens[2])
	if r.version == VersionUnsupported {
		r.invalidReason = fmt.Sprintf("Unsupported version: %s", tokens[2])
		return false
	}

	target := tokens[1]
	if target == "" || target[len(target)-1] == '/' {
		r.resourceURL = target + defaultRoute
	} else {
		r.resourceURL = target
	}
	return true
}

func (r *Request) scanHeader(header Header) {
	if format(header.Key()) != format(headerConnection) {
		return
	}
	if format(header.Value()) == format(connectionKeepAlive) {
		r.shouldClose = false
	}
}

// ShouldClose reports whether the connection must close after this
// request's response is sent.
func (r Request) ShouldClose() bool { return r.shouldClose }

// IsValid reports whether parsing succeeded.
func (r Request) IsValid() bool { return r.valid }

// Method returns the parsed request method.
func (r Request) Method() Method { return r.method }

// HTTPVersion returns the parsed protocol version.
func (r Request) HTTPVersion() Version { return r.version }

// ResourceURL returns the request target, defaulted to index.html when the
// raw target was empty or directory-style.
func (r Request) ResourceURL() string { return r.resourceURL }

// Headers returns the parsed header list.
func (r Request) Headers() []Header { return r.headers }

// InvalidReason explains why IsValid is false; empty when valid.
func (r Request) InvalidReason() string { return r.invalidReason }

func (r Request) String() string {
	if !r.valid {
		return fmt.Sprintf("Request is invalid.\nReason: %s\n", r.invalidReason)
	}
	out := fmt.Sprintf(
		"Request is valid.\nMethod: %s\nHTTP Version: %s\nResource Url: %s\nConnection Keep Alive: %t\nHeaders: \n",
		r.method, r.version, r.resourceURL, !r.shouldClose)
	for _, h := range r.headers {
		out += h.Serialize()
	}
	return out
}
