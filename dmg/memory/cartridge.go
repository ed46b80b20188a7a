package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	titleAddress          = 0x134
	titleEnd              = 0x142
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D
	globalChecksumAddress = 0x14E
	headerEnd             = 0x150

	romBankSize = 0x4000
	ramBankSize = 0x2000
)

var (
	ErrHeaderTooShort           = errors.New("cartridge header is truncated")
	ErrUnsupportedCartridgeType = errors.New("unsupported cartridge type")
	ErrUnsupportedROMSize       = errors.New("unsupported ROM size")
	ErrUnsupportedRAMSize       = errors.New("unsupported RAM size")
)

// MBCType identifies the bank controller wired on the cartridge.
type MBCType uint8

const (
	NoMBCType MBCType = iota
	MBC1Type
	MBC3Type
	MBC5Type
)

func (t MBCType) String() string {
	switch t {
	case NoMBCType:
		return "ROM ONLY"
	case MBC1Type:
		return "MBC1"
	case MBC3Type:
		return "MBC3"
	case MBC5Type:
		return "MBC5"
	}
	return "UNKNOWN"
}

// Cartridge holds the ROM image and the decoded header fields.
type Cartridge struct {
	data []byte

	title          string
	cartType       uint8
	mbcType        MBCType
	hasBattery     bool
	romBankCount   int
	ramSize        int
	version        uint8
	headerChecksum uint8
	globalChecksum uint16
}

// LoadCartridge reads a ROM image from disk and decodes its header.
func LoadCartridge(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM %s: %w", path, err)
	}

	slog.Info("Loaded ROM data", "path", path, "bytes", len(data))
	return NewCartridgeWithData(data)
}

// NewCartridgeWithData decodes a cartridge from a raw ROM image.
// Images smaller than the declared ROM size are padded with 0xFF.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) < headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooShort, len(bytes))
	}

	cartType := bytes[cartridgeTypeAddress]
	mbcType, battery, err := decodeCartridgeType(cartType)
	if err != nil {
		return nil, err
	}

	romBanks, err := decodeROMBanks(bytes[romSizeAddress])
	if err != nil {
		return nil, err
	}

	ramSize, err := decodeRAMSize(bytes[ramSizeAddress])
	if err != nil {
		return nil, err
	}

	cart := &Cartridge{
		data:           make([]byte, max(len(bytes), romBanks*romBankSize)),
		title:          cleanTitle(bytes[titleAddress : titleEnd+1]),
		cartType:       cartType,
		mbcType:        mbcType,
		hasBattery:     battery,
		romBankCount:   romBanks,
		ramSize:        ramSize,
		version:        bytes[versionNumberAddress],
		headerChecksum: bytes[headerChecksumAddress],
		globalChecksum: bit.Combine(bytes[globalChecksumAddress], bytes[globalChecksumAddress+1]),
	}

	n := copy(cart.data, bytes)
	for i := n; i < len(cart.data); i++ {
		cart.data[i] = 0xFF
	}

	if sum := computeHeaderChecksum(bytes); sum != cart.headerChecksum {
		slog.Warn("Cartridge header checksum mismatch",
			"expected", fmt.Sprintf("0x%02X", cart.headerChecksum),
			"computed", fmt.Sprintf("0x%02X", sum))
	}

	return cart, nil
}

// Title returns the cleaned up game title.
func (c *Cartridge) Title() string { return c.title }

// MBCType returns the bank controller variant.
func (c *Cartridge) MBCType() MBCType { return c.mbcType }

// ROMBanks returns the number of 16KB ROM banks.
func (c *Cartridge) ROMBanks() int { return c.romBankCount }

// RAMSize returns the external RAM size in bytes.
func (c *Cartridge) RAMSize() int { return c.ramSize }

// Header returns a printable summary of the header fields.
func (c *Cartridge) Header() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:     %s\n", c.title)
	fmt.Fprintf(&sb, "Type:      0x%02X (%s", c.cartType, c.mbcType)
	if c.hasBattery {
		sb.WriteString("+BATTERY")
	}
	sb.WriteString(")\n")
	fmt.Fprintf(&sb, "ROM:       %d banks (%d KB)\n", c.romBankCount, c.romBankCount*romBankSize/1024)
	fmt.Fprintf(&sb, "RAM:       %d KB\n", c.ramSize/1024)
	fmt.Fprintf(&sb, "Version:   %d\n", c.version)
	fmt.Fprintf(&sb, "Checksums: header 0x%02X, global 0x%04X\n", c.headerChecksum, c.globalChecksum)
	return sb.String()
}

func decodeCartridgeType(value uint8) (MBCType, bool, error) {
	switch value {
	case 0x00, 0x08:
		return NoMBCType, false, nil
	case 0x09:
		return NoMBCType, true, nil
	case 0x01, 0x02:
		return MBC1Type, false, nil
	case 0x03:
		return MBC1Type, true, nil
	case 0x11, 0x12:
		return MBC3Type, false, nil
	case 0x0F, 0x10, 0x13:
		return MBC3Type, true, nil
	case 0x19, 0x1A, 0x1C, 0x1D:
		return MBC5Type, false, nil
	case 0x1B, 0x1E:
		return MBC5Type, true, nil
	}
	return 0, false, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCartridgeType, value)
}

func decodeROMBanks(value uint8) (int, error) {
	switch {
	case value <= 0x08:
		// 32KB << n, i.e. 2 banks << n
		return 2 << value, nil
	case value == 0x52:
		return 72, nil
	case value == 0x53:
		return 80, nil
	case value == 0x54:
		return 96, nil
	}
	return 0, fmt.Errorf("%w: 0x%02X", ErrUnsupportedROMSize, value)
}

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

func decodeRAMSize(value uint8) (int, error) {
	size, ok := ramSizes[value]
	if !ok {
		return 0, fmt.Errorf("%w: 0x%02X", ErrUnsupportedRAMSize, value)
	}
	return size, nil
}

func computeHeaderChecksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data[titleAddress:headerChecksumAddress] {
		sum = sum - b - 1
	}
	return sum
}

// cleanTitle trims the NUL padding off a header title and replaces any
// non-printable byte with '?'.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		if b == 0 {
			break
		}
		r := rune(b)
		if !unicode.IsPrint(r) || r > unicode.MaxASCII {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
