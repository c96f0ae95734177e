package wol_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/vpbank/rackctl/pkg/rackctl/wol"
)

// ─────────────────────────────────────────────────────────────────────────────
// ParseMAC
// ─────────────────────────────────────────────────────────────────────────────

func TestParseMAC(t *testing.T) {
	tests := []struct {
		in      string
		want    net.HardwareAddr
		wantErr bool
	}{
		{in: "AA:BB:CC:DD:EE:FF", want: net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}},
		{in: "aa-bb-cc-dd-ee-ff", want: net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}},
		{in: "00:11:22:33:44:55", want: net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}},
		{in: "", wantErr: true},
		{in: "AA:BB:CC:DD:EE", wantErr: true},
		{in: "AA:BB:CC:DD:EE:FF:00", wantErr: true},
		{in: "AABB.CCDD.EEFF", wantErr: true},
		{in: "GG:BB:CC:DD:EE:FF", wantErr: true},
		{in: " AA:BB:CC:DD:EE:FF", wantErr: true},
		{in: "00:00:5e:00:53:01:02:03", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := wol.ParseMAC(tt.in)
			if tt.wantErr {
				if !errors.Is(err, wol.ErrInvalidMAC) {
					t.Fatalf("ParseMAC(%q) err = %v, want ErrInvalidMAC", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMAC(%q): %v", tt.in, err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ParseMAC(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// MagicPacket
// ─────────────────────────────────────────────────────────────────────────────

func TestMagicPacket_Layout(t *testing.T) {
	hw := net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	p := wol.MagicPacket(hw)

	if len(p) != wol.PacketLen || len(p) != 102 {
		t.Fatalf("len = %d, want 102", len(p))
	}
	if !bytes.Equal(p[:6], bytes.Repeat([]byte{0xFF}, 6)) {
		t.Errorf("sync stream = % X", p[:6])
	}
	for i := 0; i < 16; i++ {
		off := 6 + i*6
		if !bytes.Equal(p[off:off+6], hw) {
			t.Errorf("repetition %d = % X, want % X", i, p[off:off+6], hw)
		}
	}
}

func TestMagicPacket_PanicsOnBadLength(t *testing.T) {
	for _, hw := range []net.HardwareAddr{
		nil,
		{0x01, 0x02, 0x03},
		{0, 0, 0x5e, 0, 0x53, 1, 2, 3}, // EUI-64
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("MagicPacket(%v) did not panic", hw)
				}
			}()
			wol.MagicPacket(hw)
		}()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Sender
// ─────────────────────────────────────────────────────────────────────────────

func listen(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSender_WakeReachesListener(t *testing.T) {
	conn := listen(t)
	s := &wol.Sender{Addr: conn.LocalAddr().String()}

	if err := s.Wake(context.Background(), "aa-bb-cc-dd-ee-ff"); err != nil {
		t.Fatalf("Wake: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := wol.MagicPacket(net.HardwareAddr{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF})
	if !bytes.Equal(buf[:n], want) {
		t.Errorf("received %d bytes, want the 102-byte magic packet", n)
	}
}

func TestSender_WakeRejectsBadMAC(t *testing.T) {
	conn := listen(t)
	s := &wol.Sender{Addr: conn.LocalAddr().String()}

	if err := s.Wake(context.Background(), "not-a-mac"); !errors.Is(err, wol.ErrInvalidMAC) {
		t.Fatalf("err = %v, want ErrInvalidMAC", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if n, _, err := conn.ReadFromUDP(make([]byte, 512)); err == nil {
		t.Errorf("unexpected datagram of %d bytes", n)
	}
}

func TestSender_CancelledContext(t *testing.T) {
	conn := listen(t)
	s := &wol.Sender{Addr: conn.LocalAddr().String()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Send(ctx, make([]byte, wol.PacketLen)); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestSender_BadAddress(t *testing.T) {
	s := &wol.Sender{Addr: "no-port-here"}
	if err := s.Send(context.Background(), make([]byte, wol.PacketLen)); err == nil {
		t.Fatal("expected resolve error")
	}
}
