package dmg

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/config"
	"github.com/valerio/go-dmg/dmg/cpu"
	"github.com/valerio/go-dmg/dmg/memory"
	"github.com/valerio/go-dmg/dmg/timing"
	"github.com/valerio/go-dmg/dmg/video"
)

// DMG owns the whole machine. The bus and every device hanging off it are
// guarded by one RWMutex: the step loop takes the write lock per instruction,
// the audio side takes short read locks for snapshots.
type DMG struct {
	mu sync.RWMutex

	cpu *cpu.CPU
	gpu *video.GPU
	mem *memory.MMU

	cart      *memory.Cartridge
	bootImage []byte
	runtime   *config.Runtime
	budget    timing.Budget
	trace     bool
}

type Option func(*DMG)

// WithBootstrap maps a 256 byte boot image over the cartridge at start up.
func WithBootstrap(image []byte) Option {
	return func(e *DMG) { e.bootImage = append([]byte(nil), image...) }
}

// WithRuntime shares a runtime configuration with the input handlers.
func WithRuntime(rt *config.Runtime) Option {
	return func(e *DMG) { e.runtime = rt }
}

// WithTrace logs every executed instruction at Debug.
func WithTrace(enabled bool) Option {
	return func(e *DMG) { e.trace = enabled }
}

// New creates an emulator for cart. A nil cartridge behaves like a console
// with an empty slot.
func New(cart *memory.Cartridge, opts ...Option) (*DMG, error) {
	e := &DMG{cart: cart}
	for _, opt := range opts {
		opt(e)
	}
	if e.runtime == nil {
		e.runtime = config.NewRuntime(1, false)
	}
	if err := e.init(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewWithFile creates a new emulator instance and loads the file specified into it.
func NewWithFile(path string, opts ...Option) (*DMG, error) {
	cart, err := memory.LoadCartridge(path)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded cartridge", "title", cart.Title(), "type", cart.MBCType(), "rom_banks", cart.ROMBanks())
	return New(cart, opts...)
}

// LoadBootstrapImage reads a boot image for WithBootstrap.
func LoadBootstrapImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bootstrap: %w", err)
	}
	if _, err := memory.NewBootstrap(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (e *DMG) init() error {
	if e.cart != nil {
		e.mem = memory.NewWithCartridge(e.cart)
	} else {
		e.mem = memory.New()
	}

	if e.bootImage != nil {
		boot, err := memory.NewBootstrap(e.bootImage)
		if err != nil {
			return err
		}
		e.mem.SetBootstrap(boot)
		e.cpu = cpu.NewWithBootstrap(e.mem)
	} else {
		e.cpu = cpu.New(e.mem)
	}

	e.gpu = video.NewGpu(e.mem)
	e.budget = timing.Budget{}
	return nil
}

// Step runs one CPU step and lets the other devices catch up with it.
// Returns the cycles consumed.
func (e *DMG) Step() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step()
}

func (e *DMG) step() int {
	if e.trace {
		pc := e.cpu.GetPC()
		slog.Debug("exec", "pc", fmt.Sprintf("0x%04X", pc), "op", cpu.OpcodeName(e.mem, pc))
	}
	cycles := e.cpu.Step()
	e.mem.Tick(cycles)
	e.gpu.Tick(cycles)
	return cycles
}

// RunFrame consumes the runtime flags and runs until the frame budget is
// spent. Each step takes and releases the lock so the audio side can read
// between instructions.
func (e *DMG) RunFrame() {
	if e.runtime.ConsumeReset() {
		e.Reset()
	}
	if e.budget.Exhausted() {
		e.budget.Refill(e.runtime.Speed())
	}
	for !e.budget.Exhausted() {
		e.budget.Consume(e.Step())
	}
}

// Reset rebuilds the machine from the loaded cartridge.
func (e *DMG) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	// the boot image was validated in New
	if err := e.init(); err != nil {
		panic(fmt.Sprintf("dmg: reset failed: %v", err))
	}
	slog.Info("Emulator reset")
}

// Framebuffer returns a copy of the last drawn picture.
func (e *DMG) Framebuffer() *video.FrameBuffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gpu.GetFrameBuffer().Snapshot()
}

// Frames counts completed frames since the last reset.
func (e *DMG) Frames() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.gpu.Frames()
}

func (e *DMG) Press(key memory.JoypadKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mem.Press(key)
}

func (e *DMG) Release(key memory.JoypadKey) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mem.Release(key)
}

// Runtime returns the configuration consumed once per frame.
func (e *DMG) Runtime() *config.Runtime {
	return e.runtime
}

func (e *DMG) Cartridge() *memory.Cartridge {
	return e.cart
}

// SerialOutput returns what the guest has sent over the link port.
func (e *DMG) SerialOutput() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mem.SerialOutput()
}

// CPUState is a register dump for status lines and logs.
type CPUState struct {
	PC, SP     uint16
	A, F       uint8
	Flags      string
	Halted     bool
	IME        bool
	Cycles     uint64
	LY         uint8
	Interrupts uint8
}

func (e *DMG) CPUState() CPUState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return CPUState{
		PC:         e.cpu.GetPC(),
		SP:         e.cpu.GetSP(),
		A:          e.cpu.GetA(),
		F:          e.cpu.GetF(),
		Flags:      e.cpu.GetFlagString(),
		Halted:     e.cpu.IsHalted(),
		IME:        e.cpu.GetIME(),
		Cycles:     e.cpu.GetCycles(),
		LY:         e.gpu.Line(),
		Interrupts: e.mem.PendingInterrupts(),
	}
}

// AudioWritten collects and clears the per-channel written flags.
func (e *DMG) AudioWritten() [4]audio.RegWritten {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mem.APU.Written()
}

// AudioChannel returns a snapshot of channel n (1-4).
func (e *DMG) AudioChannel(n int) audio.Registers {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mem.APU.Channel(n)
}

func (e *DMG) AudioDACEnabled(n int) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mem.APU.DACEnabled(n)
}

// SetAudioChannelInactive clears the NR52 status bit of channel n.
func (e *DMG) SetAudioChannelInactive(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mem.APU.SetChannelInactive(n)
}

var _ audio.Source = (*DMG)(nil)
