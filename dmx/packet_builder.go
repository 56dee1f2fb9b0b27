package dmx

import "math"

// PacketInput is the semantic input to BuildPacket: an operator's
// desired color/intensity and, for moving heads, pan/tilt (§4.E).
type PacketInput struct {
	R, G, B   byte
	Intensity byte
	Pan       *float64 // degrees, 0..540
	Tilt      *float64 // degrees, 0..270
	Mode      *FixtureMode
}

// BuildPacket turns a PacketInput into the byte layout a fixture
// expects. Without a mode the output is the 3-byte RGB triple. With a
// mode, the output is exactly mode.Channels bytes, built by the
// 11-step procedure in §4.E. Every channel write is bounds-checked;
// malformed mode descriptors (out-of-range indices) never panic.
func BuildPacket(in PacketInput) []byte {
	if in.Mode == nil {
		return []byte{in.R, in.G, in.B}
	}
	mode := in.Mode
	n := mode.Channels
	if n < 0 {
		n = 0
	}
	packet := make([]byte, n)

	set := func(idx *int, v byte) {
		if idx == nil {
			return
		}
		i := *idx
		if i >= 0 && i < n {
			packet[i] = v
		}
	}

	// 1. mode selector
	if mode.IsModeBased {
		set(mode.ModeSelectorIndex, mode.ModeValue)
	}

	// 2. pan
	if in.Pan != nil {
		set(mode.PanIndex, degreesToDMX(*in.Pan, 540))
	}

	// 3. tilt
	if in.Tilt != nil {
		set(mode.TiltIndex, degreesToDMX(*in.Tilt, 270))
	}

	hasDimmer := mode.DimmerIndex != nil

	// 4. dimmer
	if hasDimmer {
		v := in.Intensity
		if mode.InvertDimmer {
			v = 255 - in.Intensity
		}
		set(mode.DimmerIndex, v)
	}

	// 5. strobe off
	if mode.StrobeIndex != nil {
		set(mode.StrobeIndex, 0)
	}

	// 6. resolve RGB
	r, g, b := in.R, in.G, in.B
	if !hasDimmer {
		scale := float64(in.Intensity) / 255.0
		r = scaleByte(in.R, scale)
		g = scaleByte(in.G, scale)
		b = scaleByte(in.B, scale)
	}

	// 7. RGB segments
	for seg := 0; seg < mode.RGBSegmentCount; seg++ {
		base := mode.RGBStart + 3*seg
		if base < 0 || base+2 >= n {
			continue
		}
		packet[base] = r
		packet[base+1] = g
		packet[base+2] = b
	}

	// 8. white
	if mode.WhiteIndex != nil {
		if in.R == in.G && in.G == in.B && in.R > 200 {
			v := in.Intensity
			if hasDimmer {
				v = 255
			}
			set(mode.WhiteIndex, v)
			for seg := 0; seg < mode.RGBSegmentCount; seg++ {
				base := mode.RGBStart + 3*seg
				if base < 0 || base+2 >= n {
					continue
				}
				packet[base], packet[base+1], packet[base+2] = 0, 0, 0
			}
		} else {
			set(mode.WhiteIndex, 0)
		}
	}

	// 9. warm white
	if mode.WarmWhiteIndex != nil {
		avg := (float64(in.R) + float64(in.G)) / 2
		set(mode.WarmWhiteIndex, byteOf(avg*float64(in.Intensity)/255.0))
	}

	// 10. cold white
	if mode.ColdWhiteIndex != nil {
		set(mode.ColdWhiteIndex, byteOf(float64(in.B)*float64(in.Intensity)/255.0))
	}

	// 11. amber
	if mode.AmberIndex != nil {
		if in.R > 200 && in.G > 100 && in.G < 200 {
			amber := (float64(in.R) + float64(in.G)/2) / 2
			set(mode.AmberIndex, byteOf(amber*float64(in.Intensity)/255.0))
		} else {
			set(mode.AmberIndex, 0)
		}
	}

	return packet
}

func degreesToDMX(deg, span float64) byte {
	v := math.Round(deg / span * 255)
	return byteOf(v)
}

func scaleByte(v byte, scale float64) byte {
	return byteOf(float64(v) * scale)
}

func byteOf(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(math.Round(v))
}
