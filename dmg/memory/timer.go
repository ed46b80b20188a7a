package memory

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const divPeriod = 256

// timaPeriods maps TAC bits 1-0 to the number of cycles per TIMA increment.
//
//	00 -> 1024 (4096 Hz)
//	01 -> 16   (262144 Hz)
//	10 -> 64   (65536 Hz)
//	11 -> 256  (16384 Hz)
var timaPeriods = [4]int{1024, 16, 64, 256}

// Timer implements DIV/TIMA/TMA/TAC with cycle accumulators. Overflow reloads
// TIMA from TMA and requests the interrupt within the same Tick.
type Timer struct {
	divCycles  int
	timaCycles int

	div  byte
	tima byte
	tma  byte
	tac  byte

	// IRQ requester callback
	TimerInterruptHandler func()
}

func (t *Timer) Tick(cycles int) {
	t.divCycles += cycles
	for t.divCycles >= divPeriod {
		t.divCycles -= divPeriod
		t.div++
	}

	if !bit.IsSet(2, t.tac) {
		t.timaCycles = 0
		return
	}

	period := timaPeriods[t.tac&0x03]
	t.timaCycles += cycles
	for t.timaCycles >= period {
		t.timaCycles -= period
		t.incrementTIMA()
	}
}

func (t *Timer) incrementTIMA() {
	t.tima++
	if t.tima != 0 {
		return
	}

	t.tima = t.tma
	if t.TimerInterruptHandler != nil {
		t.TimerInterruptHandler()
	}
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	default:
		return 0xFF
	}
}

func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		// the accumulator keeps its phase
		t.div = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}
