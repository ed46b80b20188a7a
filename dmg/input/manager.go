package input

import (
	"log/slog"
	"sync"
	"time"

	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/memory"
)

const (
	// debounceDuration is the minimum time between two presses of the same
	// emulator action. Joypad buttons are never debounced.
	debounceDuration = 300 * time.Millisecond
)

// Joypad receives button transitions, normally the emulator under its lock.
type Joypad interface {
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

// Manager handles input actions and their associated callbacks
type Manager struct {
	mu            sync.Mutex
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]time.Time
	joypad        Joypad
	now           func() time.Time
}

func NewManager(j Joypad) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		joypad:        j,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if act.IsGameBoy() {
		m.triggerJoypad(act, evt)
		return
	}

	m.mu.Lock()
	if evt == event.Press {
		now := m.now()
		if last, ok := m.lastTriggered[act]; ok && now.Sub(last) < debounceDuration {
			m.mu.Unlock()
			return
		}
		m.lastTriggered[act] = now
	}
	callbacks := append([]func(){}, m.handlers[act][evt]...)
	m.mu.Unlock()

	slog.Debug("Input action", "action", act, "event", evt)
	for _, callback := range callbacks {
		callback()
	}
}

func (m *Manager) triggerJoypad(act action.Action, evt event.Type) {
	if m.joypad == nil {
		return
	}
	key, ok := joypadKeys[act]
	if !ok {
		return
	}
	switch evt {
	case event.Press:
		m.joypad.Press(key)
	case event.Release:
		m.joypad.Release(key)
	}
}

// joypadKeys maps Game Boy actions to joypad keys
var joypadKeys = map[action.Action]memory.JoypadKey{
	action.GBButtonA:      memory.JoypadA,
	action.GBButtonB:      memory.JoypadB,
	action.GBButtonStart:  memory.JoypadStart,
	action.GBButtonSelect: memory.JoypadSelect,
	action.GBDPadUp:       memory.JoypadUp,
	action.GBDPadDown:     memory.JoypadDown,
	action.GBDPadLeft:     memory.JoypadLeft,
	action.GBDPadRight:    memory.JoypadRight,
}
