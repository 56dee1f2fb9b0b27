package dmx

import "testing"

func TestBuildSACNPacketLength(t *testing.T) {
	var data [UniverseSize]byte
	p := buildSACNPacket([16]byte{}, "core", 1, 0, data)
	if len(p) != 638 {
		t.Fatalf("len = %d, want 638", len(p))
	}
}

func TestBuildSACNPacketLayout(t *testing.T) {
	var data [UniverseSize]byte
	data[0] = 77
	p := buildSACNPacket([16]byte{}, "core", 5, 3, data)

	if string(p[4:16]) != "ASC-E1.17\x00\x00\x00" {
		t.Fatalf("ACN identifier mismatch: %q", p[4:16])
	}
	// root vector at offset 18..22
	if p[18] != 0 || p[19] != 0 || p[20] != 0 || p[21] != 4 {
		t.Fatalf("root vector mismatch: %v", p[18:22])
	}
	// framing vector at offset 40..44 (after the framing flags&length at 38..40)
	if p[40] != 0 || p[41] != 0 || p[42] != 0 || p[43] != 2 {
		t.Fatalf("framing vector mismatch: %v", p[40:44])
	}
	// universe at offset 38+2+4+64+1+2+1+1 = 113
	universeOffset := 38 + 2 + 4 + 64 + 1 + 2 + 1 + 1
	if p[universeOffset] != 0 || p[universeOffset+1] != 5 {
		t.Fatalf("universe mismatch: %v", p[universeOffset:universeOffset+2])
	}
	// DMX start code + first channel at offset 115+2+1+1+2+2+2 = 125
	startCodeOffset := 115 + 2 + 1 + 1 + 2 + 2 + 2
	if p[startCodeOffset] != 0 {
		t.Fatalf("start code = %d, want 0", p[startCodeOffset])
	}
	if p[startCodeOffset+1] != 77 {
		t.Fatalf("first channel = %d, want 77", p[startCodeOffset+1])
	}
}

func TestSACNGroupAddrForUniverse1(t *testing.T) {
	addr, err := sacnGroupAddr(1)
	if err != nil {
		t.Fatal(err)
	}
	if addr.String() != "239.255.0.1:5568" {
		t.Fatalf("addr = %s, want 239.255.0.1:5568", addr.String())
	}
}
