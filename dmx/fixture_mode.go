package dmx

// FixtureMode describes the channel layout of a DMX fixture, supplied
// by the operator for any fixture more complex than plain RGB (§3
// FixtureMode).
type FixtureMode struct {
	Channels int

	DimmerIndex        *int
	StrobeIndex        *int
	PanIndex           *int
	TiltIndex          *int
	PanFineIndex       *int
	TiltFineIndex      *int
	WhiteIndex         *int
	WarmWhiteIndex     *int
	ColdWhiteIndex     *int
	AmberIndex         *int
	EffectsIndex       *int
	ResetIndex         *int
	ModeSelectorIndex  *int

	IsModeBased bool
	ModeValue   byte

	RGBStart        int
	RGBSegmentCount int

	InvertDimmer bool
}

// Valid reports whether the mode descriptor is internally consistent
// enough to build a packet from: all indices within range, and a
// mode-selector index+value present whenever IsModeBased is set. A mode
// that fails Valid is not an error to the builder — malformed indices
// are silently ignored per §4.E's closing rule — but callers accepting
// operator-supplied modes may want to reject them earlier.
func (m *FixtureMode) Valid() bool {
	if m.Channels <= 0 {
		return false
	}
	inRange := func(idx *int) bool { return idx == nil || (*idx >= 0 && *idx < m.Channels) }
	if !inRange(m.DimmerIndex) || !inRange(m.StrobeIndex) || !inRange(m.PanIndex) ||
		!inRange(m.TiltIndex) || !inRange(m.PanFineIndex) || !inRange(m.TiltFineIndex) ||
		!inRange(m.WhiteIndex) || !inRange(m.WarmWhiteIndex) || !inRange(m.ColdWhiteIndex) ||
		!inRange(m.AmberIndex) || !inRange(m.EffectsIndex) || !inRange(m.ResetIndex) ||
		!inRange(m.ModeSelectorIndex) {
		return false
	}
	if m.IsModeBased && m.ModeSelectorIndex == nil {
		return false
	}
	return true
}
