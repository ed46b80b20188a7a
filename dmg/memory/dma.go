package memory

import "github.com/valerio/go-dmg/dmg/addr"

const dmaCycles = 160

// DMA models the OAM transfer started by writing the source page to 0xFF46.
// The 160 byte block is copied in one go once the countdown expires.
type DMA struct {
	page      byte
	remaining int
}

func (d *DMA) start(page byte) {
	d.page = page
	d.remaining = dmaCycles
}

// Active reports whether a transfer is pending.
func (d *DMA) Active() bool {
	return d.remaining > 0
}

// tick returns true when the transfer is due.
func (d *DMA) tick(cycles int) bool {
	if d.remaining == 0 {
		return false
	}
	d.remaining -= cycles
	if d.remaining > 0 {
		return false
	}
	d.remaining = 0
	return true
}

func (d *DMA) source() uint16 {
	page := d.page
	// sources above 0xDFFF land on the echo of work RAM
	if page > 0xDF {
		page &= 0xDF
	}
	return uint16(page) << 8
}

func (m *MMU) transferOAM() {
	src := m.dma.source()
	var block [addr.OAMSize]byte
	for i := range block {
		block[i] = m.Read(src + uint16(i))
	}
	copy(m.oam[:], block[:])
}
