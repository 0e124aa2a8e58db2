package chip8

import (
	"log"
	"math/rand"
	"os"

	tm "github.com/buger/goterm"
	"github.com/pkg/errors"
)

const NumKeys = 16

// System owns the whole machine state. It is not safe for concurrent use;
// hosts write keys and read the framebuffer between calls to Cycle.
type System struct {
	cpu CPU
	mem Memory
	gfx Graphics

	keys [NumKeys]bool

	delayTimer uint8
	soundTimer uint8

	rng    *rand.Rand
	logger *log.Logger
}

// New returns a System with the font loaded and PC at StartAddress.
func New(opts ...Option) *System {
	sys := &System{}
	for _, opt := range append(defaultOptions(), opts...) {
		opt(sys)
	}
	sys.Initialize()
	return sys
}

// Initialize resets the machine to its power-on state. Options are kept.
func (sys *System) Initialize() {
	sys.cpu.reset()
	sys.mem.clear()
	sys.gfx.clear()

	for i := 0; i < len(sys.keys); i++ {
		sys.keys[i] = false
	}

	sys.delayTimer = 0
	sys.soundTimer = 0
}

func (sys *System) Print() {
	tm.Clear()
	tm.MoveCursor(1, 1)

	sys.cpu.Print(tm.Screen)
	tm.Printf("DT = %d, ST = %d\n", sys.delayTimer, sys.soundTimer)

	tm.Flush()
}

// Cycle executes one instruction and then ticks both timers.
func (sys *System) Cycle() {
	sys.cpu.Cycle(sys)

	sys.updateTimer()
}

func (sys *System) updateTimer() {
	if sys.delayTimer > 0 {
		sys.delayTimer--
	}
	if sys.soundTimer > 0 {
		sys.soundTimer--
	}
}

// Load copies a ROM file into memory at StartAddress. Memory is untouched
// if the file cannot be read.
func (sys *System) Load(filename string) error {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "chip8: load %s", filename)
	}
	return sys.LoadBytes(bytes)
}

// LoadBytes copies rom into memory at StartAddress. ROMs longer than
// MaxROMSize are truncated and ErrROMTooLarge is returned.
func (sys *System) LoadBytes(rom []byte) error {
	return errors.WithMessage(sys.mem.loadROM(rom), "chip8")
}

func (sys *System) OnKeyDown(key int) {
	if key >= 0 && key < NumKeys {
		sys.keys[key] = true
	}
}

func (sys *System) OnKeyUp(key int) {
	if key >= 0 && key < NumKeys {
		sys.keys[key] = false
	}
}

// Keys exposes the keypad for hosts that write it directly.
func (sys *System) Keys() *[NumKeys]bool {
	return &sys.keys
}

// Framebuffer exposes the row-major 64x32 cells. Each row is Pitch bytes.
func (sys *System) Framebuffer() *[GfxCells]uint32 {
	return &sys.gfx.buffer
}

func (sys *System) GetPixel(x, y uint8) bool {
	return sys.gfx.getPixel(x, y)
}

func (sys *System) IsDirty() bool {
	return sys.gfx.isDirty()
}

func (sys *System) SetDirty(dirty bool) {
	sys.gfx.setDirty(dirty)
}

func (sys *System) DelayTimer() uint8 {
	return sys.delayTimer
}

func (sys *System) SoundTimer() uint8 {
	return sys.soundTimer
}

// SoundActive reports whether the buzzer should be on.
func (sys *System) SoundActive() bool {
	return sys.soundTimer > 0
}

// CPU returns a snapshot of the register file.
func (sys *System) CPU() CPU {
	return sys.cpu
}
