// Package core implements the reactor primitives: addresses, sockets, byte
// buffers, the concurrent cache, the epoll poller, connections, loopers, the
// thread pool and the distribution agent.
package core

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Protocol identifies the address family of a NetAddress.
type Protocol int

const (
	// IPv4 selects AF_INET.
	IPv4 Protocol = iota
	// IPv6 selects AF_INET6.
	IPv6
)

// NetAddress is a value type identifying a network endpoint as
// "ip + port", round-trippable through String. It is the Go equivalent of
// a sockaddr_storage: it keeps enough information to be converted to a
// unix.Sockaddr for bind/connect/accept without further lookups.
type NetAddress struct {
	protocol Protocol
	ip       net.IP
	port     uint16
}

// NewNetAddress builds a NetAddress from a textual IP, a port and a protocol.
func NewNetAddress(ip string, port uint16, protocol Protocol) NetAddress {
	parsed := net.ParseIP(ip)
	return NetAddress{protocol: protocol, ip: parsed, port: port}
}

// Protocol returns the address family.
func (a NetAddress) Protocol() Protocol { return a.protocol }

// IP returns the textual IP address.
func (a NetAddress) IP() string {
	if a.ip == nil {
		return ""
	}
	return a.ip.String()
}

// Port returns the port number.
func (a NetAddress) Port() uint16 { return a.port }

// String renders "<ip> @ <port>", matching the source's NetAddress::ToString.
func (a NetAddress) String() string {
	return fmt.Sprintf("%s @ %d", a.IP(), a.port)
}

// sockaddr converts this NetAddress into a unix.Sockaddr suitable for
// bind/connect. Zero-valued NetAddress (default construction) yields a
// wildcard address sufficient to receive addresses from Accept.
func (a NetAddress) sockaddr() unix.Sockaddr {
	switch a.protocol {
	case IPv6:
		var addr [16]byte
		if ip16 := a.ip.To16(); ip16 != nil {
			copy(addr[:], ip16)
		}
		return &unix.SockaddrInet6{Port: int(a.port), Addr: addr}
	default:
		var addr [4]byte
		if ip4 := a.ip.To4(); ip4 != nil {
			copy(addr[:], ip4)
		}
		return &unix.SockaddrInet4{Port: int(a.port), Addr: addr}
	}
}

// fromSockaddr fills a NetAddress from a unix.Sockaddr returned by Accept.
func fromSockaddr(sa unix.Sockaddr) NetAddress {
	switch v := sa.(type) {
	case *unix.SockaddrInet6:
		return NetAddress{protocol: IPv6, ip: net.IP(v.Addr[:]), port: uint16(v.Port)}
	case *unix.SockaddrInet4:
		return NetAddress{protocol: IPv4, ip: net.IP(v.Addr[:]), port: uint16(v.Port)}
	default:
		return NetAddress{}
	}
}

func domainFor(protocol Protocol) int {
	if protocol == IPv6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}
