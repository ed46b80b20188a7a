package memory

import (
	"errors"
	"fmt"
	"os"
)

const bootstrapSize = 0x100

var ErrBootstrapSize = errors.New("bootstrap image must be exactly 256 bytes")

// Bootstrap is the optional boot program overlaid on 0x0000-0x00FF until the
// CPU reaches the cartridge entry point.
type Bootstrap struct {
	data    [bootstrapSize]byte
	enabled bool
}

// LoadBootstrap reads a bootstrap image from disk.
func LoadBootstrap(path string) (*Bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bootstrap %s: %w", path, err)
	}
	return NewBootstrap(data)
}

// NewBootstrap wraps a raw 256 byte boot image.
func NewBootstrap(data []byte) (*Bootstrap, error) {
	if len(data) != bootstrapSize {
		return nil, fmt.Errorf("%w: got %d", ErrBootstrapSize, len(data))
	}
	b := &Bootstrap{enabled: true}
	copy(b.data[:], data)
	return b, nil
}

// Enabled reports whether the overlay still intercepts reads.
func (b *Bootstrap) Enabled() bool {
	return b != nil && b.enabled
}

func (b *Bootstrap) read(address uint16) byte {
	return b.data[address]
}
