package dmx

import "testing"

func TestNetworkProtocolDevicesAlwaysPresent(t *testing.T) {
	devs := networkProtocolDevices()
	var sawArtNet, sawSACN bool
	for _, d := range devs {
		if d.Kind == KindArtNet {
			sawArtNet = true
		}
		if d.Kind == KindSACN {
			sawSACN = true
		}
		if d.Address != "" {
			t.Fatalf("network pseudo-device %s should have empty address, got %q", d.ID, d.Address)
		}
	}
	if !sawArtNet || !sawSACN {
		t.Fatalf("expected both artnet and sacn pseudo-devices, got %+v", devs)
	}
}

func TestBuildArtPollPacketHeader(t *testing.T) {
	p := buildArtPollPacket()
	if string(p[:8]) != "Art-Net\x00" {
		t.Fatalf("id = %q, want Art-Net\\x00", p[:8])
	}
	if p[8] != 0x00 || p[9] != 0x20 {
		t.Fatalf("opcode bytes = %x %x, want 00 20 (little-endian 0x2000)", p[8], p[9])
	}
}

func TestClassifyODEHostname(t *testing.T) {
	cases := map[string]Kind{
		"ode-mk3-1.local":   KindEnttecODEMk3,
		"ODE-MK2-2.local":   KindEnttecODEMk2,
		"legacy-ode.local":  KindEnttecODE,
	}
	for host, want := range cases {
		if got := classifyODEHostname(host); got != want {
			t.Errorf("classifyODEHostname(%q) = %s, want %s", host, got, want)
		}
	}
}

func TestDeviceNameForKinds(t *testing.T) {
	if n := deviceNameFor(KindEnttecUSB, "/dev/ttyUSB0"); n == "" {
		t.Fatal("expected non-empty name")
	}
	if n := deviceNameFor(KindSerialGeneric, "/dev/ttyUSB1"); n == "" {
		t.Fatal("expected non-empty name")
	}
}
