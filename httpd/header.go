package httpd

import "fmt"

// Header is one "key:value" HTTP header line, with no space around the
// colon on the wire (matching this framework's serialization, not every
// server's).
type Header struct {
	key   string
	value string
	valid bool
}

// NewHeader builds a Header directly from a key/value pair.
func NewHeader(key, value string) Header {
	return Header{key: key, value: value, valid: true}
}

// ParseHeader deserializes a single "key:value" line. A value containing a
// colon (e.g. an address like "127.0.0.1:20080") is preserved by rejoining
// every token after the first split on ":".
func ParseHeader(line string) Header {
	tokens := split(line, colon)
	if len(tokens) < 2 {
		return Header{valid: false}
	}
	key := tokens[0]
	rest := tokens[1:]
	var value string
	if len(rest) == 1 {
		value = rest[0]
	} else {
		value = join(rest, colon)
	}
	return Header{key: key, value: value, valid: true}
}

// IsValid reports whether this Header parsed successfully.
func (h Header) IsValid() bool { return h.valid }

// Key returns the header name.
func (h Header) Key() string { return h.key }

// Value returns the header value.
func (h Header) Value() string { return h.value }

// SetValue overwrites the header value in place.
func (h *Header) SetValue(newValue string) { h.value = newValue }

// Serialize renders "key:value\r\n".
func (h Header) Serialize() string {
	return fmt.Sprintf("%s%s%s%s", h.key, colon, h.value, crlf)
}
