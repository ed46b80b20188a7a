package dmg

import (
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/video"
)

// Emulator is what a Session drives: one frame budget per call, a frame for
// the presenter and the joypad collaborator.
type Emulator interface {
	RunFrame()
	Framebuffer() *video.FrameBuffer
	Press(key memory.JoypadKey)
	Release(key memory.JoypadKey)
}

var _ Emulator = (*DMG)(nil)
