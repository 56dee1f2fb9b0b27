package streamdeck

// FxButton is one assignable Stream Deck button: either a battle-board
// or user effect, or one of the four always-present control buttons
// (§5.2).
type FxButton struct {
	ID       string
	Name     string
	ImageURL string
	IsGlobal bool // true for battle-board effects, false for user FX
	Control  bool // true for INTRO/PARTY/BREAK/END
}

// ButtonState is the current play state rendered on one key.
type ButtonState struct {
	Button    *FxButton
	IsPlaying bool
}

// controlButtons are always placed in the XL's reserved rightmost
// column, one per row, in this order (§5.2).
var controlButtons = []string{"INTRO", "PARTY", "BREAK", "END"}

// ControlColor returns the fill color for a control button by name.
func ControlColor(name string) (r, g, b byte) {
	switch name {
	case "INTRO":
		return 0x8A, 0x2B, 0xE2
	case "PARTY":
		return 0xFF, 0x69, 0xB4
	case "BREAK":
		return 0x1E, 0x90, 0xFF
	case "END":
		return 0xDC, 0x14, 0x3C
	default:
		return 0x50, 0x50, 0x50
	}
}

// Layout assigns battle-board and user FX buttons to a device's key
// grid. On XL/XLv2 devices the rightmost column is reserved for the
// four control buttons and battle board/user FX share the remaining
// 5+2 columns (§5.2); on every other kind the grid splits in half,
// battle board on the left, user FX on the right.
func Layout(kind Kind, battleBoard, userFX []FxButton) []*FxButton {
	n := kind.ButtonCount()
	slots := make([]*FxButton, n)

	if kind.IsXL() {
		layoutXL(kind, slots, battleBoard, userFX)
		return slots
	}

	midCol := kind.Cols / 2
	battleIdx, userIdx := 0, 0
	for row := 0; row < kind.Rows; row++ {
		for col := 0; col < midCol; col++ {
			if battleIdx < len(battleBoard) {
				idx := row*kind.Cols + col
				b := battleBoard[battleIdx]
				slots[idx] = &b
				battleIdx++
			}
		}
		for col := midCol; col < kind.Cols; col++ {
			if userIdx < len(userFX) {
				idx := row*kind.Cols + col
				u := userFX[userIdx]
				slots[idx] = &u
				userIdx++
			}
		}
	}
	return slots
}

const xlUserFXMax = 12

func layoutXL(kind Kind, slots []*FxButton, battleBoard, userFX []FxButton) {
	battleIdx := 0
	for row := 0; row < kind.Rows; row++ {
		for col := 0; col < 5; col++ {
			if battleIdx < len(battleBoard) {
				idx := row*kind.Cols + col
				b := battleBoard[battleIdx]
				slots[idx] = &b
				battleIdx++
			}
		}
	}

	userIdx := 0
	for row := 0; row < kind.Rows; row++ {
		for col := 5; col < 7; col++ {
			if userIdx < len(userFX) && userIdx < xlUserFXMax {
				idx := row*kind.Cols + col
				u := userFX[userIdx]
				slots[idx] = &u
				userIdx++
			}
		}
	}

	for row, name := range controlButtons {
		idx := row*kind.Cols + 7
		if idx >= len(slots) {
			continue
		}
		slots[idx] = &FxButton{ID: "control_" + toLower(name), Name: name, Control: true}
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
