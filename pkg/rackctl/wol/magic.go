// Package wol builds Wake-on-LAN magic packets and broadcasts them over UDP.
package wol

import (
	"errors"
	"fmt"
	"net"
	"regexp"
)

// PacketLen is the size of a magic packet: a 6-byte sync stream followed by
// 16 copies of the 6-byte hardware address.
const PacketLen = 6 + 16*6

// ErrInvalidMAC is wrapped by every ParseMAC failure.
var ErrInvalidMAC = errors.New("invalid MAC address")

var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

// ParseMAC accepts a 48-bit address written as six hex pairs separated by
// colons or hyphens. Other forms accepted by net.ParseMAC (dotted, EUI-64,
// InfiniBand) are rejected.
func ParseMAC(s string) (net.HardwareAddr, error) {
	if !macPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}
	hw, err := net.ParseMAC(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidMAC, s, err)
	}
	return hw, nil
}

// MagicPacket returns the 102-byte payload for hw. It panics when hw is not a
// 6-byte address or the result is not PacketLen long; both indicate a
// programming error since ParseMAC guarantees the length.
func MagicPacket(hw net.HardwareAddr) []byte {
	if len(hw) != 6 {
		panic(fmt.Sprintf("wol: hardware address has %d bytes, want 6", len(hw)))
	}
	packet := make([]byte, 0, PacketLen)
	for i := 0; i < 6; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, hw...)
	}
	if len(packet) != PacketLen {
		panic(fmt.Sprintf("wol: magic packet is %d bytes, want %d", len(packet), PacketLen))
	}
	return packet
}
