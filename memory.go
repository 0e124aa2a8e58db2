package chip8

import "github.com/pkg/errors"

const (
	MemorySize   = 4096
	FontAddress  = 0x050
	MaxROMSize   = MemorySize - StartAddress
	addressMask  = MemorySize - 1
	fontGlyphLen = 5
)

// ErrROMTooLarge is returned when a ROM does not fit between StartAddress and
// the end of memory.
var ErrROMTooLarge = errors.New("rom too large")

// Memory is the 4K linear address space. All accesses wrap modulo MemorySize.
type Memory [MemorySize]uint8

var fontSet = [16 * fontGlyphLen]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontSet returns a copy of the built-in hex digit glyphs.
func FontSet() []uint8 {
	font := fontSet
	return font[:]
}

func (mem *Memory) clear() {
	for i := 0; i < len(mem); i++ {
		mem[i] = 0
	}
	copy(mem[FontAddress:], fontSet[:])
}

func (mem *Memory) read(addr uint16) uint8 {
	return mem[addr&addressMask]
}

func (mem *Memory) write(addr uint16, val uint8) {
	mem[addr&addressMask] = val
}

// fetchOpcode returns the big-endian word at addr.
func (mem *Memory) fetchOpcode(addr uint16) uint16 {
	return uint16(mem.read(addr))<<8 | uint16(mem.read(addr+1))
}

// loadROM copies as much of rom as fits at StartAddress. The prefix is still
// loaded when the ROM is too large.
func (mem *Memory) loadROM(rom []byte) error {
	n := copy(mem[StartAddress:], rom)
	if n < len(rom) {
		return errors.Wrapf(ErrROMTooLarge, "%d bytes, %d loaded", len(rom), n)
	}
	return nil
}
