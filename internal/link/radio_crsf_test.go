package link

import "testing"

func TestCRSFUnpackDecodesPackedChannels(t *testing.T) {
	cr := NewCRSFRadio(nil)

	// Two channels packed at 11 bits each, both set to the same raw value
	// (992, the CRSF mid-point), little-endian bit-packed across 3 bytes.
	const raw = uint16(992)
	bits := uint32(raw) | uint32(raw)<<11
	payload := []byte{
		byte(bits),
		byte(bits >> 8),
		byte(bits >> 16),
	}

	cr.unpack(payload)

	if !cr.HasNewFrame() {
		t.Fatalf("HasNewFrame() = false right after unpack")
	}
	if cr.channels[0] != raw || cr.channels[1] != raw {
		t.Fatalf("channels[0:2] = %v, want [%d, %d]", cr.channels[:2], raw, raw)
	}
}

func TestCRSFChannelNormalizedMidpointIsZero(t *testing.T) {
	cr := NewCRSFRadio(nil)
	got := cr.ChannelNormalized(1)
	if diff := got - 0; diff > 0.01 || diff < -0.01 {
		t.Fatalf("ChannelNormalized at constructed midpoint = %v, want ~0", got)
	}
}

func TestCRSFChannelNormalizedOutOfRangeIndex(t *testing.T) {
	cr := NewCRSFRadio(nil)
	if got := cr.ChannelNormalized(0); got != 0 {
		t.Fatalf("ChannelNormalized(0) = %v, want 0", got)
	}
	if got := cr.ChannelNormalized(99); got != 0 {
		t.Fatalf("ChannelNormalized(99) = %v, want 0", got)
	}
}

func TestCRSFInitWithNoReaderDoesNotPanic(t *testing.T) {
	cr := NewCRSFRadio(nil)
	if err := cr.Init(); err != nil {
		t.Fatalf("Init() with no reader attached returned an error: %v", err)
	}
}
