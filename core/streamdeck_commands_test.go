package core

import "testing"

func TestStreamdeckDisconnectWithoutConnectIsNoop(t *testing.T) {
	c := NewCore(nil)
	if err := c.StreamdeckDisconnect(); err != nil {
		t.Fatalf("StreamdeckDisconnect with nothing connected: %v", err)
	}
}

func TestStreamdeckUpdateLayoutWithoutConnectFails(t *testing.T) {
	c := NewCore(nil)
	if err := c.StreamdeckUpdateLayout(nil, nil); err == nil {
		t.Fatal("StreamdeckUpdateLayout without streamdeck_connect: want error")
	}
}

func TestStreamdeckSetButtonStateWithoutConnectFails(t *testing.T) {
	c := NewCore(nil)
	if err := c.StreamdeckSetButtonState("fx1", true); err == nil {
		t.Fatal("StreamdeckSetButtonState without streamdeck_connect: want error")
	}
}
