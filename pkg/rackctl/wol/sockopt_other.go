//go:build !unix

package wol

import "syscall"

// The runtime already enables broadcast on datagram sockets here.
func setBroadcast(_, _ string, _ syscall.RawConn) error { return nil }
