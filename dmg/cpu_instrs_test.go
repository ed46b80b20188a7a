package dmg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/valerio/go-dmg/dmg/backend"
)

// romDir holds blargg's cpu_instrs individual ROMs. They are not
// redistributable, so the suite skips when they are missing.
func romDir() string {
	if dir := os.Getenv("DMG_TEST_ROMS"); dir != "" {
		return dir
	}
	return filepath.Join("..", "test-roms", "blargg", "cpu_instrs", "individual")
}

func TestCPUInstrs(t *testing.T) {
	if testing.Short() {
		t.Skip("test ROMs are slow")
	}

	tests := []struct {
		rom       string
		maxFrames int
	}{
		{"01-special.gb", 500},
		{"02-interrupts.gb", 500},
		{"03-op sp,hl.gb", 500},
		{"04-op r,imm.gb", 500},
		{"05-op rp.gb", 500},
		{"06-ld r,r.gb", 500},
		{"07-jr,jp,call,ret,rst.gb", 500},
		{"08-misc instrs.gb", 500},
		{"09-op r,r.gb", 1000},
		{"10-bit ops.gb", 1000},
		{"11-op a,(hl).gb", 1500},
	}

	for _, tt := range tests {
		name := strings.TrimSuffix(tt.rom, ".gb")
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(romDir(), tt.rom)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				t.Skipf("ROM file not found: %s", path)
			}

			e, err := NewWithFile(path)
			require.NoError(t, err)

			var out string
			for range tt.maxFrames {
				e.RunFrame()
				out = e.SerialOutput()
				if strings.Contains(out, "Passed") || strings.Contains(out, "Failed") {
					break
				}
			}

			if !strings.Contains(out, "Passed") {
				shot, err := backend.SaveSnapshot(e.Framebuffer(), t.TempDir(), name, 2)
				require.NoError(t, err)
				t.Fatalf("%s did not pass after %d frames\nserial: %q\nscreen: %s", tt.rom, e.Frames(), out, shot)
			}
		})
	}
}
