package timing

// Budget is the number of cycles the emulation may still run before the
// current frame tick is over. The step loop refuses to advance the CPU once
// it is exhausted and resumes after the next Refill.
type Budget struct {
	remaining int
}

// FrameCycles is the per-frame allowance for a speed multiplier, which is
// clamped to at least 1.
func FrameCycles(speed int) int {
	return CyclesPerFrame * max(speed, 1)
}

// Refill starts a new frame allowance. Cycles the last instruction ran past
// the previous allowance are charged to the new one, unused cycles are not kept.
func (b *Budget) Refill(speed int) {
	b.remaining = min(b.remaining, 0) + FrameCycles(speed)
}

// Consume charges cycles against the allowance; instructions are atomic so the
// last one may overshoot.
func (b *Budget) Consume(cycles int) {
	b.remaining -= cycles
}

func (b *Budget) Exhausted() bool {
	return b.remaining <= 0
}

func (b *Budget) Remaining() int {
	return max(b.remaining, 0)
}
