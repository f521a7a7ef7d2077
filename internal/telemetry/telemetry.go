// Package telemetry sends the heartbeat + attitude packets spec.md §4.8
// and §6 call for. MAVLink wire serialization is an explicit external
// collaborator the pack carries no library for (spec.md §1), so the
// frames here are a minimal fixed-width encoding sufficient to exercise
// the "UDP-like send(bytes) endpoint" contract — not a MAVLink-compatible
// encoder.
package telemetry

import (
	"context"
	"encoding/binary"
	"math"
	"net"
	"time"

	"github.com/flightcore/quadfc/internal/flightcore"
)

const period = 100 * time.Millisecond // ~10 Hz

const (
	frameHeartbeat = 0x01
	frameAttitude  = 0x02
)

// Sender periodically pushes heartbeat + attitude frames to a ground
// station over UDP.
type Sender struct {
	conn  *net.UDPConn
	state *flightcore.State
}

// Dial opens the UDP socket to groundIP:14550 (the conventional MAVLink
// ground-control port, kept here only as a familiar default — no MAVLink
// semantics are implied).
func Dial(groundIP string, state *flightcore.State) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(groundIP, "14550"))
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	return &Sender{conn: conn, state: state}, nil
}

func (s *Sender) Run(ctx context.Context) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.conn.Close()
			return
		case <-ticker.C:
			s.sendHeartbeat()
			s.sendAttitude()
		}
	}
}

func (s *Sender) sendHeartbeat() {
	buf := make([]byte, 2)
	buf[0] = frameHeartbeat
	buf[1] = 1 // active
	s.conn.Write(buf)
}

func (s *Sender) sendAttitude() {
	snap := s.state.Snapshot()
	buf := make([]byte, 1+8*6)
	buf[0] = frameAttitude
	vals := []float64{snap.Roll, snap.Pitch, snap.Yaw, snap.DRoll, snap.DPitch, snap.DYaw}
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[1+i*8:], math.Float64bits(v))
	}
	s.conn.Write(buf)
}
