package input

import (
	"log/slog"

	"github.com/valerio/go-dmg/dmg/config"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
)

// maxSpeed caps the turbo multiplier.
const maxSpeed = 8

// BindRuntime wires the emulator hotkeys to the runtime configuration.
func BindRuntime(m *Manager, rt *config.Runtime) {
	m.On(action.EmulatorSpeedUp, event.Press, func() {
		rt.SetSpeed(min(rt.Speed()+1, maxSpeed))
		slog.Info("Speed", "multiplier", rt.Speed())
	})
	m.On(action.EmulatorSpeedDown, event.Press, func() {
		rt.SetSpeed(rt.Speed() - 1)
		slog.Info("Speed", "multiplier", rt.Speed())
	})
	m.On(action.EmulatorMuteToggle, event.Press, func() {
		slog.Info("Audio", "muted", rt.ToggleMute())
	})
	m.On(action.EmulatorReset, event.Press, func() {
		slog.Info("Reset requested")
		rt.RequestReset()
	})
}
