package chip8

const (
	GfxWidth  = 64
	GfxHeight = 32
	GfxCells  = GfxWidth * GfxHeight

	// PixelOn and PixelOff are the only values a framebuffer cell holds.
	PixelOn  uint32 = 0xFFFFFFFF
	PixelOff uint32 = 0x00000000

	// Pitch is the byte length of one framebuffer row.
	Pitch = 4 * GfxWidth
)

// Graphics is the 64x32 monochrome framebuffer, row-major.
type Graphics struct {
	buffer [GfxCells]uint32
	dirty  bool
}

func (g *Graphics) isDirty() bool {
	return g.dirty
}

func (g *Graphics) setDirty(dirty bool) {
	g.dirty = dirty
}

func (g *Graphics) clear() {
	for i := 0; i < len(g.buffer); i++ {
		g.buffer[i] = PixelOff
	}
	g.dirty = true
}

func (g *Graphics) getPixel(x, y uint8) bool {
	if int(x) >= GfxWidth || int(y) >= GfxHeight {
		return false
	}
	return g.buffer[int(y)*GfxWidth+int(x)] == PixelOn
}

// draw XORs an h-row sprite read from mem at I onto the screen. The origin
// wraps; pixels running past the right or bottom edge are clipped. It reports
// whether any lit pixel was turned off.
func (g *Graphics) draw(mem *Memory, I uint16, x, y, h uint8) bool {
	hit := false
	col0 := int(x) % GfxWidth
	row0 := int(y) % GfxHeight
	for r := 0; r < int(h); r++ {
		row := row0 + r
		if row >= GfxHeight {
			break
		}
		sprite := mem.read(I + uint16(r))
		for b := 0; b < 8; b++ {
			col := col0 + b
			if col >= GfxWidth {
				break
			}
			if sprite&(0x80>>uint(b)) == 0 {
				continue
			}
			cell := &g.buffer[row*GfxWidth+col]
			if *cell == PixelOn {
				hit = true
				*cell = PixelOff
			} else {
				*cell = PixelOn
			}
		}
	}
	g.dirty = true
	return hit
}
