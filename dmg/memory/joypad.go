package memory

import "github.com/valerio/go-dmg/dmg/bit"

// JoypadKey represents a key on the Gameboy joypad
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

var joypadKeyNames = [...]string{"Right", "Left", "Up", "Down", "A", "B", "Select", "Start"}

func (k JoypadKey) String() string {
	if int(k) < len(joypadKeyNames) {
		return joypadKeyNames[k]
	}
	return "Unknown"
}

// Joypad tracks the active-low state of both button groups and the group
// selection written to P1.
type Joypad struct {
	buttons uint8 // A, B, Select, Start
	dpad    uint8 // Right, Left, Up, Down
	sel     uint8 // bits 4-5 of P1
}

func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// Read builds P1: bits 6-7 always read 1, a group is selected when its bit is 0
// and selecting both ANDs the two nibbles.
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0) | j.sel

	selectDpad := !bit.IsSet(4, j.sel)
	selectButtons := !bit.IsSet(5, j.sel)

	switch {
	case selectButtons && selectDpad:
		result |= j.buttons & j.dpad & 0x0F
	case selectButtons:
		result |= j.buttons & 0x0F
	case selectDpad:
		result |= j.dpad & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// Write only latches the selection bits.
func (j *Joypad) Write(value uint8) {
	j.sel = value & 0x30
}

// Press clears the key bit and reports whether it was a released->pressed transition.
func (j *Joypad) Press(key JoypadKey) bool {
	group, index := j.locate(key)
	if group == nil {
		return false
	}
	was := bit.IsSet(index, *group)
	*group = bit.Reset(index, *group)
	return was
}

// Release sets the key bit back to 1.
func (j *Joypad) Release(key JoypadKey) {
	group, index := j.locate(key)
	if group == nil {
		return
	}
	*group = bit.Set(index, *group)
}

func (j *Joypad) locate(key JoypadKey) (*uint8, uint8) {
	switch {
	case key <= JoypadDown:
		return &j.dpad, uint8(key)
	case key <= JoypadStart:
		return &j.buttons, uint8(key - JoypadA)
	default:
		return nil, 0
	}
}
