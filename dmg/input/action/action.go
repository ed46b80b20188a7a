package action

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Emulator features
	EmulatorSpeedUp
	EmulatorSpeedDown
	EmulatorMuteToggle
	EmulatorReset
	EmulatorSnapshot
	EmulatorQuit
)

var names = map[Action]string{
	GBButtonA:          "A",
	GBButtonB:          "B",
	GBButtonStart:      "Start",
	GBButtonSelect:     "Select",
	GBDPadUp:           "Up",
	GBDPadDown:         "Down",
	GBDPadLeft:         "Left",
	GBDPadRight:        "Right",
	EmulatorSpeedUp:    "SpeedUp",
	EmulatorSpeedDown:  "SpeedDown",
	EmulatorMuteToggle: "MuteToggle",
	EmulatorReset:      "Reset",
	EmulatorSnapshot:   "Snapshot",
	EmulatorQuit:       "Quit",
}

func (a Action) String() string {
	if name, ok := names[a]; ok {
		return name
	}
	return "Unknown"
}

// IsGameBoy reports whether the action is a joypad button.
func (a Action) IsGameBoy() bool {
	return a >= GBButtonA && a <= GBDPadRight
}
