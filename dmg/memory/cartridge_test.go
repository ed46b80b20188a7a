package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartridgeWithData(t *testing.T) {
	tests := []struct {
		name     string
		cartType byte
		romCode  byte
		ramCode  byte
		mbc      MBCType
		banks    int
		ram      int
	}{
		{"ROM only", 0x00, 0x00, 0x00, NoMBCType, 2, 0},
		{"MBC1+RAM+BATTERY", 0x03, 0x04, 0x03, MBC1Type, 32, 32 * 1024},
		{"MBC3+TIMER+BATTERY", 0x0F, 0x06, 0x00, MBC3Type, 128, 0},
		{"MBC3+RAM", 0x12, 0x05, 0x02, MBC3Type, 64, 8 * 1024},
		{"MBC5+RAM+BATTERY", 0x1B, 0x07, 0x04, MBC5Type, 256, 128 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := NewCartridgeWithData(bankedROM(tt.cartType, tt.romCode, tt.ramCode))
			require.NoError(t, err)
			assert.Equal(t, "TESTROM", cart.Title())
			assert.Equal(t, tt.mbc, cart.MBCType())
			assert.Equal(t, tt.banks, cart.ROMBanks())
			assert.Equal(t, tt.ram, cart.RAMSize())
		})
	}
}

func TestNewCartridgeWithData_Errors(t *testing.T) {
	valid := func() []byte { return bankedROM(0x00, 0x00, 0x00) }

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"truncated header", func(b []byte) []byte { return b[:0x14F] }, ErrHeaderTooShort},
		{"MBC2 unsupported", func(b []byte) []byte { b[cartridgeTypeAddress] = 0x05; return b }, ErrUnsupportedCartridgeType},
		{"HuC1 unsupported", func(b []byte) []byte { b[cartridgeTypeAddress] = 0xFF; return b }, ErrUnsupportedCartridgeType},
		{"bad ROM size", func(b []byte) []byte { b[romSizeAddress] = 0x09; return b }, ErrUnsupportedROMSize},
		{"bad RAM size", func(b []byte) []byte { b[ramSizeAddress] = 0x06; return b }, ErrUnsupportedRAMSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCartridgeWithData(tt.mutate(valid()))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewCartridgeWithData_PadsShortImages(t *testing.T) {
	data := bankedROM(0x01, 0x01, 0x00)[:0x5000] // declares 4 banks
	cart, err := NewCartridgeWithData(data)
	require.NoError(t, err)
	assert.Len(t, cart.data, 4*romBankSize)
	assert.Equal(t, byte(0xFF), cart.data[0x5000])
	assert.Equal(t, byte(0x01), cart.data[0x4FFF])
}

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{[]byte("TETRIS\x00\x00\x00"), "TETRIS"},
		{[]byte("POKEMON RED"), "POKEMON RED"},
		{[]byte{'A', 0x01, 'B'}, "A?B"},
		{[]byte{0xC3, 'X'}, "?X"},
		{[]byte{0, 'A'}, "(Untitled)"},
		{[]byte("   "), "(Untitled)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTitle(tt.in))
		})
	}
}

func TestLoadCartridge(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(dir, "game.gb")
		require.NoError(t, os.WriteFile(path, bankedROM(0x01, 0x00, 0x00), 0o644))

		cart, err := LoadCartridge(path)
		require.NoError(t, err)
		assert.Equal(t, MBC1Type, cart.MBCType())
		assert.Contains(t, cart.Header(), "MBC1")
		assert.Contains(t, cart.Header(), "TESTROM")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCartridge(filepath.Join(dir, "nope.gb"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestHeaderReportsBattery(t *testing.T) {
	cart := mustCartridge(bankedROM(0x1B, 0x00, 0x02))
	assert.Contains(t, cart.Header(), "MBC5+BATTERY")
}
