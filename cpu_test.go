package chip8

import (
	"bytes"
	"log"
	"math/rand"
	"strings"
	"testing"
)

// exec writes opc at PC and runs a single cycle.
func exec(sys *System, opc uint16) {
	sys.mem.write(sys.cpu.PC, uint8(opc>>8))
	sys.mem.write(sys.cpu.PC+1, uint8(opc))
	sys.Cycle()
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name  string
		setup func(cpu *CPU)
		opc   uint16
		check func(t *testing.T, sys *System)
	}{
		{
			name:  "add with carry",
			setup: func(cpu *CPU) { cpu.V[0], cpu.V[1] = 0xFF, 0x01 },
			opc:   0x8014,
			check: func(t *testing.T, sys *System) {
				wantRegs(t, sys, map[int]uint8{0x0: 0x00, 0xF: 1})
			},
		},
		{
			name:  "sub without borrow",
			setup: func(cpu *CPU) { cpu.V[0], cpu.V[1] = 0x05, 0x03 },
			opc:   0x8015,
			check: func(t *testing.T, sys *System) {
				wantRegs(t, sys, map[int]uint8{0x0: 0x02, 0xF: 1})
			},
		},
		{
			name:  "jump plus V0",
			setup: func(cpu *CPU) { cpu.V[0] = 0x10 },
			opc:   0xB200,
			check: func(t *testing.T, sys *System) {
				wantPC(t, sys, 0x210)
			},
		},
		{
			name:  "font address",
			setup: func(cpu *CPU) { cpu.V[2] = 0xA },
			opc:   0xF229,
			check: func(t *testing.T, sys *System) {
				if sys.cpu.I != 0x82 {
					t.Fatalf("I = 0x%x; want 0x82", sys.cpu.I)
				}
			},
		},
		{
			name:  "font address uses low nibble",
			setup: func(cpu *CPU) { cpu.V[2] = 0x1F },
			opc:   0xF229,
			check: func(t *testing.T, sys *System) {
				if sys.cpu.I != FontAddress+5*0xF {
					t.Fatalf("I = 0x%x; want 0x%x", sys.cpu.I, FontAddress+5*0xF)
				}
			},
		},
		{
			name:  "bcd",
			setup: func(cpu *CPU) { cpu.V[0], cpu.I = 156, 0x300 },
			opc:   0xF033,
			check: func(t *testing.T, sys *System) {
				if got := sys.mem[0x300:0x303]; !bytes.Equal(got, []byte{1, 5, 6}) {
					t.Fatalf("mem[0x300:0x303] = %v; want [1 5 6]", got)
				}
			},
		},
		{
			name:  "load byte",
			opc:   0x6A42,
			check: func(t *testing.T, sys *System) { wantRegs(t, sys, map[int]uint8{0xA: 0x42}) },
		},
		{
			name:  "add byte wraps without flag",
			setup: func(cpu *CPU) { cpu.V[3], cpu.V[0xF] = 0xFE, 7 },
			opc:   0x7303,
			check: func(t *testing.T, sys *System) { wantRegs(t, sys, map[int]uint8{0x3: 0x01, 0xF: 7}) },
		},
		{
			name:  "load register",
			setup: func(cpu *CPU) { cpu.V[5] = 0x99 },
			opc:   0x8450,
			check: func(t *testing.T, sys *System) { wantRegs(t, sys, map[int]uint8{0x4: 0x99}) },
		},
		{
			name:  "or",
			setup: func(cpu *CPU) { cpu.V[1], cpu.V[2] = 0xF0, 0x0F },
			opc:   0x8121,
			check: func(t *testing.T, sys *System) { wantRegs(t, sys, map[int]uint8{0x1: 0xFF}) },
		},
		{
			name:  "and",
			setup: func(cpu *CPU) { cpu.V[1], cpu.V[2] = 0xF3, 0x3F },
			opc:   0x8122,
			check: func(t *testing.T, sys *System) { wantRegs(t, sys, map[int]uint8{0x1: 0x33}) },
		},
		{
			name:  "xor",
			setup: func(cpu *CPU) { cpu.V[1], cpu.V[2] = 0xFF, 0x0F },
			opc:   0x8123,
			check: func(t *testing.T, sys *System) { wantRegs(t, sys, map[int]uint8{0x1: 0xF0}) },
		},
		{
			name:  "load I",
			opc:   0xA123,
			check: func(t *testing.T, sys *System) {
				if sys.cpu.I != 0x123 {
					t.Fatalf("I = 0x%x; want 0x123", sys.cpu.I)
				}
			},
		},
		{
			name:  "add I has no flag",
			setup: func(cpu *CPU) { cpu.I, cpu.V[1] = 0xFFF, 2 },
			opc:   0xF11E,
			check: func(t *testing.T, sys *System) {
				if sys.cpu.I != 0x1001 {
					t.Fatalf("I = 0x%x; want 0x1001", sys.cpu.I)
				}
				wantRegs(t, sys, map[int]uint8{0xF: 0})
			},
		},
		{
			name:  "jump",
			opc:   0x1ABC,
			check: func(t *testing.T, sys *System) { wantPC(t, sys, 0xABC) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := New(WithSeed(1))
			if tt.setup != nil {
				tt.setup(&sys.cpu)
			}
			exec(sys, tt.opc)
			tt.check(t, sys)
		})
	}
}

func wantRegs(t *testing.T, sys *System, want map[int]uint8) {
	t.Helper()
	for r, v := range want {
		if got := sys.cpu.V[r]; got != v {
			t.Fatalf("V%X = 0x%02x; want 0x%02x", r, got, v)
		}
	}
}

func wantPC(t *testing.T, sys *System, pc uint16) {
	t.Helper()
	if sys.cpu.PC != pc {
		t.Fatalf("PC = 0x%03x; want 0x%03x", sys.cpu.PC, pc)
	}
}

func TestALUFlags(t *testing.T) {
	type result struct{ v, flag uint8 }
	ops := []struct {
		sub  uint16
		want func(a, b uint8) result
	}{
		{0x4, func(a, b uint8) result {
			s := uint16(a) + uint16(b)
			return result{uint8(s), uint8(s >> 8)}
		}},
		{0x5, func(a, b uint8) result {
			if a > b {
				return result{a - b, 1}
			}
			return result{a - b, 0}
		}},
		{0x7, func(a, b uint8) result {
			if b > a {
				return result{b - a, 1}
			}
			return result{b - a, 0}
		}},
		{0x6, func(a, _ uint8) result { return result{a >> 1, a & 1} }},
		{0xE, func(a, _ uint8) result { return result{a << 1, a >> 7} }},
	}

	sys := New()
	for _, op := range ops {
		for a := 0; a < 256; a++ {
			for b := 0; b < 256; b++ {
				want := op.want(uint8(a), uint8(b))

				sys.cpu.PC = StartAddress
				sys.cpu.V[0], sys.cpu.V[1], sys.cpu.V[0xF] = uint8(a), uint8(b), 0xAA
				exec(sys, 0x8010|op.sub)
				if sys.cpu.V[0] != want.v || sys.cpu.V[0xF] != want.flag {
					t.Fatalf("8%03X a=%d b=%d: V0=%d VF=%d; want %d %d",
						0x010|op.sub, a, b, sys.cpu.V[0], sys.cpu.V[0xF], want.v, want.flag)
				}

				// With x == F the flag overwrites the result.
				sys.cpu.PC = StartAddress
				sys.cpu.V[0xF], sys.cpu.V[1] = uint8(a), uint8(b)
				exec(sys, 0x8F10|op.sub)
				if sys.cpu.V[0xF] != want.flag {
					t.Fatalf("8F1%X a=%d b=%d: VF=%d; want %d", op.sub, a, b, sys.cpu.V[0xF], want.flag)
				}
			}
		}
	}
}

func TestShiftIgnoresVy(t *testing.T) {
	sys := New()
	sys.cpu.V[0], sys.cpu.V[1] = 0x02, 0xFF
	exec(sys, 0x8016)
	wantRegs(t, sys, map[int]uint8{0x0: 0x01, 0x1: 0xFF, 0xF: 0})
	exec(sys, 0x801E)
	wantRegs(t, sys, map[int]uint8{0x0: 0x02, 0x1: 0xFF, 0xF: 0})
}

func TestPCAdvance(t *testing.T) {
	ops := []uint16{
		0x00E0, 0x6123, 0x7123, 0x8120, 0x8121, 0x8122, 0x8123, 0x8124, 0x8125,
		0x8126, 0x8127, 0x812E, 0xA300, 0xC1FF, 0xD125, 0xF107, 0xF115, 0xF118,
		0xF11E, 0xF129, 0xF133, 0xF155, 0xF165,
		// unknown
		0x0000, 0x0123, 0x00E1, 0x8128, 0xE100, 0xF1FF,
	}
	for _, opc := range ops {
		sys := New(WithSeed(1))
		sys.cpu.I = 0x300
		exec(sys, opc)
		if sys.cpu.PC != StartAddress+2 {
			t.Errorf("0x%04X: PC = 0x%03x; want 0x%03x", opc, sys.cpu.PC, StartAddress+2)
		}
	}
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name  string
		setup func(sys *System)
		opc   uint16
		skip  bool
	}{
		{"SE byte equal", func(s *System) { s.cpu.V[1] = 0x42 }, 0x3142, true},
		{"SE byte differ", func(s *System) { s.cpu.V[1] = 0x41 }, 0x3142, false},
		{"SNE byte equal", func(s *System) { s.cpu.V[1] = 0x42 }, 0x4142, false},
		{"SNE byte differ", func(s *System) { s.cpu.V[1] = 0x41 }, 0x4142, true},
		{"SE reg equal", func(s *System) { s.cpu.V[1], s.cpu.V[2] = 7, 7 }, 0x5120, true},
		{"SE reg differ", func(s *System) { s.cpu.V[1], s.cpu.V[2] = 7, 8 }, 0x5120, false},
		{"SNE reg equal", func(s *System) { s.cpu.V[1], s.cpu.V[2] = 7, 7 }, 0x9120, false},
		{"SNE reg differ", func(s *System) { s.cpu.V[1], s.cpu.V[2] = 7, 8 }, 0x9120, true},
		{"SKP down", func(s *System) { s.cpu.V[3] = 0xB; s.OnKeyDown(0xB) }, 0xE39E, true},
		{"SKP up", func(s *System) { s.cpu.V[3] = 0xB }, 0xE39E, false},
		{"SKP masks key", func(s *System) { s.cpu.V[3] = 0x1B; s.OnKeyDown(0xB) }, 0xE39E, true},
		{"SKNP down", func(s *System) { s.cpu.V[3] = 0xB; s.OnKeyDown(0xB) }, 0xE3A1, false},
		{"SKNP up", func(s *System) { s.cpu.V[3] = 0xB }, 0xE3A1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := New()
			tt.setup(sys)
			exec(sys, tt.opc)
			want := uint16(StartAddress + 2)
			if tt.skip {
				want += 2
			}
			wantPC(t, sys, want)
		})
	}
}

func TestCallRet(t *testing.T) {
	// 0x200: CALL 0x206
	// 0x202: LD V0, 1
	// 0x204: JP 0x204
	// 0x206: LD V1, 2
	// 0x208: RET
	sys := newTestSystem(t, 0x2206, 0x6001, 0x1204, 0x6102, 0x00EE)

	run(sys, 1)
	wantPC(t, sys, 0x206)
	if sys.cpu.SP != 1 || sys.cpu.Stack[0] != 0x202 {
		t.Fatalf("SP = %d, S[0] = 0x%x; want 1, 0x202", sys.cpu.SP, sys.cpu.Stack[0])
	}

	run(sys, 2)
	wantPC(t, sys, 0x202)
	if sys.cpu.SP != 0 {
		t.Fatalf("SP = %d; want 0", sys.cpu.SP)
	}

	run(sys, 3)
	wantPC(t, sys, 0x204)
	wantRegs(t, sys, map[int]uint8{0x0: 1, 0x1: 2})
}

func TestStackFaults(t *testing.T) {
	var out bytes.Buffer
	sys := New(WithLogger(log.New(&out, "", 0)))

	exec(sys, 0x00EE)
	wantPC(t, sys, StartAddress+2)
	if !strings.Contains(out.String(), "stack underflow") {
		t.Fatalf("underflow not logged: %q", out.String())
	}

	// CALL 0x200 recurses until the stack is full.
	sys.cpu.PC = StartAddress
	for i := 0; i < StackDepth; i++ {
		exec(sys, 0x2200)
	}
	if int(sys.cpu.SP) != StackDepth {
		t.Fatalf("SP = %d; want %d", sys.cpu.SP, StackDepth)
	}
	exec(sys, 0x2200)
	if int(sys.cpu.SP) != StackDepth {
		t.Fatalf("SP = %d after overflow; want %d", sys.cpu.SP, StackDepth)
	}
	wantPC(t, sys, StartAddress+2)
	if !strings.Contains(out.String(), "stack overflow") {
		t.Fatalf("overflow not logged: %q", out.String())
	}
}

func TestWaitKey(t *testing.T) {
	sys := newTestSystem(t, 0xF50A)

	run(sys, 3)
	wantPC(t, sys, StartAddress)

	sys.OnKeyDown(0x9)
	sys.OnKeyDown(0x3)
	run(sys, 1)
	wantPC(t, sys, StartAddress+2)
	wantRegs(t, sys, map[int]uint8{0x5: 0x3})
}

func TestRandom(t *testing.T) {
	const seed = 42
	want := rand.New(rand.NewSource(seed))

	sys := New(WithSeed(seed))
	for i := 0; i < 100; i++ {
		sys.cpu.PC = StartAddress
		exec(sys, 0xC40F)
		if exp := uint8(want.Intn(256)) & 0x0F; sys.cpu.V[4] != exp {
			t.Fatalf("round %d: V4 = 0x%02x; want 0x%02x", i, sys.cpu.V[4], exp)
		}
	}
}

func TestBCDAll(t *testing.T) {
	sys := New()
	for v := 0; v < 256; v++ {
		sys.cpu.PC = StartAddress
		sys.cpu.I = 0x400
		sys.cpu.V[7] = uint8(v)
		exec(sys, 0xF733)
		got := int(sys.mem[0x400])*100 + int(sys.mem[0x401])*10 + int(sys.mem[0x402])
		if got != v || sys.mem[0x401] > 9 || sys.mem[0x402] > 9 {
			t.Fatalf("BCD(%d) = %v", v, sys.mem[0x400:0x403])
		}
	}
}

func TestStoreLoadRegisters(t *testing.T) {
	sys := New()
	for x := 0; x < 16; x++ {
		sys.cpu.PC = StartAddress
		sys.cpu.I = 0x500
		for i := range sys.cpu.V {
			sys.cpu.V[i] = uint8(0x10*x + i)
		}
		saved := sys.cpu.V

		exec(sys, 0xF055|uint16(x)<<8)
		if sys.cpu.I != 0x500 {
			t.Fatalf("FX55 changed I to 0x%x", sys.cpu.I)
		}
		for i := range sys.cpu.V {
			sys.cpu.V[i] = 0
		}
		exec(sys, 0xF065|uint16(x)<<8)
		if sys.cpu.I != 0x500 {
			t.Fatalf("FX65 changed I to 0x%x", sys.cpu.I)
		}
		for i := 0; i < 16; i++ {
			want := saved[i]
			if i > x {
				want = 0
			}
			if sys.cpu.V[i] != want {
				t.Fatalf("x=%d: V%X = 0x%02x; want 0x%02x", x, i, sys.cpu.V[i], want)
			}
		}
	}
}

func TestMemoryWraps(t *testing.T) {
	sys := New()
	sys.cpu.I = 0xFFF
	sys.cpu.V[0] = 123
	exec(sys, 0xF033)
	if sys.mem[0xFFF] != 1 || sys.mem[0x000] != 2 || sys.mem[0x001] != 3 {
		t.Fatalf("BCD did not wrap: %d %d %d", sys.mem[0xFFF], sys.mem[0], sys.mem[1])
	}
}

func TestPrint(t *testing.T) {
	sys := newTestSystem(t, 0x6AFF)
	run(sys, 1)

	var out bytes.Buffer
	cpu := sys.CPU()
	cpu.Print(&out)
	for _, s := range []string{"Cycles #1", "PC = 0x0202", "VA = 0xff"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("missing %q in %q", s, out.String())
		}
	}
}
