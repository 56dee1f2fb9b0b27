// Package streamdeck drives Elgato Stream Deck controllers: device
// discovery and connection, per-kind button grids, cached button
// rendering, the startup loading animation, and press-to-event
// handling (§5).
package streamdeck

import "fmt"

// vidElgato is the USB vendor ID shared by every Stream Deck kind.
const vidElgato = 0x0fd9

// PID is an Elgato Stream Deck USB product ID.
type PID uint16

const (
	PIDOriginal   PID = 0x0060
	PIDOriginalV2 PID = 0x006d
	PIDMk2        PID = 0x0080
	PIDMk2Scissor PID = 0x00cd
	PIDMini       PID = 0x0063
	PIDMiniMk2    PID = 0x0090
	PIDXL         PID = 0x006c
	PIDXLv2       PID = 0x008f
	PIDPlus       PID = 0x0084
	PIDNeo        PID = 0x009a
	PIDPedal      PID = 0x0086
)

// Kind describes one device family's button grid and image format.
type Kind struct {
	PID PID

	Name string
	Cols int
	Rows int

	// Visual is false for kinds with no displays (the Pedal).
	Visual   bool
	KeySize  int // button image is KeySize x KeySize pixels, square
}

func (k Kind) String() string { return k.Name }

// ButtonCount is the number of physical buttons in the grid.
func (k Kind) ButtonCount() int { return k.Cols * k.Rows }

// kinds is the full device table, grounded on Elgato's published specs
// and cross-checked against the button counts/sizes enumerated in §5.1.
var kinds = map[PID]Kind{
	PIDOriginal:   {PID: PIDOriginal, Name: "Original", Cols: 5, Rows: 3, Visual: true, KeySize: 144},
	PIDOriginalV2: {PID: PIDOriginalV2, Name: "OriginalV2", Cols: 5, Rows: 3, Visual: true, KeySize: 144},
	PIDMk2:        {PID: PIDMk2, Name: "Mk2", Cols: 5, Rows: 3, Visual: true, KeySize: 144},
	PIDMk2Scissor: {PID: PIDMk2Scissor, Name: "Mk2Scissor", Cols: 5, Rows: 3, Visual: true, KeySize: 144},
	PIDMini:       {PID: PIDMini, Name: "Mini", Cols: 3, Rows: 2, Visual: true, KeySize: 144},
	PIDMiniMk2:    {PID: PIDMiniMk2, Name: "MiniMk2", Cols: 3, Rows: 2, Visual: true, KeySize: 144},
	PIDXL:         {PID: PIDXL, Name: "XL", Cols: 8, Rows: 4, Visual: true, KeySize: 96},
	PIDXLv2:       {PID: PIDXLv2, Name: "XLv2", Cols: 8, Rows: 4, Visual: true, KeySize: 96},
	PIDPlus:       {PID: PIDPlus, Name: "Plus", Cols: 4, Rows: 2, Visual: true, KeySize: 200},
	PIDNeo:        {PID: PIDNeo, Name: "Neo", Cols: 4, Rows: 2, Visual: true, KeySize: 200},
	PIDPedal:      {PID: PIDPedal, Name: "Pedal", Cols: 3, Rows: 1, Visual: false},
}

// KindFor returns the device table entry for pid.
func KindFor(pid PID) (Kind, error) {
	k, ok := kinds[pid]
	if !ok {
		return Kind{}, fmt.Errorf("streamdeck: %#04x is not a known device kind", uint16(pid))
	}
	return k, nil
}

// IsXL reports whether pid is one of the two 32-button XL variants,
// which get the reserved-control-column layout (§5.2) instead of the
// plain left/right split.
func (k Kind) IsXL() bool {
	return k.PID == PIDXL || k.PID == PIDXLv2
}
