package wol

import (
	"context"
	"fmt"
	"log/slog"
	"net"
)

// DefaultAddr is the limited broadcast address on the discard port.
const DefaultAddr = "255.255.255.255:9"

// Sender broadcasts magic packets.
type Sender struct {
	// Addr is the destination "host:port" (default DefaultAddr).
	Addr string

	Logger *slog.Logger
}

// Wake validates mac, builds its magic packet and sends it.
func (s *Sender) Wake(ctx context.Context, mac string) error {
	hw, err := ParseMAC(mac)
	if err != nil {
		return err
	}
	return s.Send(ctx, MagicPacket(hw))
}

// Send writes packet as a single datagram from an ephemeral socket with
// SO_BROADCAST set. The socket is closed on every path.
func (s *Sender) Send(ctx context.Context, packet []byte) error {
	addr := s.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("wol: resolve %s: %w", addr, err)
	}
	network := "udp4"
	if raddr.IP != nil && raddr.IP.To4() == nil {
		network = "udp6"
	}

	lc := net.ListenConfig{Control: setBroadcast}
	conn, err := lc.ListenPacket(ctx, network, ":0")
	if err != nil {
		return fmt.Errorf("wol: open socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := conn.WriteTo(packet, raddr)
	if err != nil {
		return fmt.Errorf("wol: send to %s: %w", raddr, err)
	}
	if s.Logger != nil {
		s.Logger.Debug("magic packet sent", "addr", raddr.String(), "bytes", n)
	}
	return nil
}
