package chip8

import (
	"fmt"
	"io"
)

const (
	StartAddress = 0x200
	RegCarry     = 0xF
	StackDepth   = 16
)

type CPU struct {
	V     [16]uint8 // general-purpose registers
	I     uint16    // Index register
	PC    uint16    // program counter
	SP    uint8     // stack pointer, next free slot
	Stack [StackDepth]uint16

	opcode uint16
	cycles int64
}

func (cpu *CPU) Print(w io.Writer) {
	fmt.Fprintf(w, "Cycles #%d\n", cpu.cycles)
	fmt.Fprintf(w, "PC = 0x%04x, SP = %d, I = 0x%04x, OP = 0x%04x\n", cpu.PC, cpu.SP, cpu.I, cpu.opcode)
	for i := 0; i < len(cpu.V); i += 4 {
		fmt.Fprintf(w, "V%X = 0x%02x, V%X = 0x%02x, V%X = 0x%02x, V%X = 0x%02x\n",
			i, cpu.V[i], i+1, cpu.V[i+1], i+2, cpu.V[i+2], i+3, cpu.V[i+3])
	}
}

// Cycles returns the number of instructions executed since reset.
func (cpu *CPU) Cycles() int64 {
	return cpu.cycles
}

func (cpu *CPU) reset() {
	*cpu = CPU{PC: StartAddress}
}

func (cpu *CPU) Cycle(sys *System) {
	cpu.step(sys)
	cpu.cycles++
}

// step fetches the word at PC, moves PC past it and runs its handler.
func (cpu *CPU) step(sys *System) {
	opc := sys.mem.fetchOpcode(cpu.PC)
	cpu.opcode = opc
	cpu.PC += 2
	decode(opc)(cpu, sys, opc)
}

func (cpu *CPU) skip() {
	cpu.PC += 2
}

// setCarry writes VF. Handlers that produce a flag call it after writing Vx.
func (cpu *CPU) setCarry(carry uint8) {
	cpu.V[RegCarry] = carry
}

func (cpu *CPU) unknownOp(sys *System, opc uint16) {
	sys.logger.Printf("unknown opcode 0x%04x at 0x%03x", opc, cpu.PC-2)
}

// 00E0: Clears the screen
func (cpu *CPU) cls(sys *System, _ uint16) {
	sys.gfx.clear()
}

// 00EE: Returns from subroutine
func (cpu *CPU) ret(sys *System, opc uint16) {
	if cpu.SP == 0 {
		sys.logger.Printf("stack underflow at 0x%03x", cpu.PC-2)
		return
	}
	cpu.SP--
	cpu.PC = cpu.Stack[cpu.SP]
}

// 1NNN: Jumps to address NNN
func (cpu *CPU) jpAddr(_ *System, opc uint16) {
	cpu.PC = opNNN(opc)
}

// 2NNN: Calls subroutine at NNN
func (cpu *CPU) callAddr(sys *System, opc uint16) {
	if int(cpu.SP) >= len(cpu.Stack) {
		sys.logger.Printf("stack overflow at 0x%03x", cpu.PC-2)
		return
	}
	cpu.Stack[cpu.SP] = cpu.PC
	cpu.SP++
	cpu.PC = opNNN(opc)
}

// 3XKK: Skips the next instruction if VX equals KK
func (cpu *CPU) seVxByte(_ *System, opc uint16) {
	if cpu.V[opX(opc)] == opKK(opc) {
		cpu.skip()
	}
}

// 4XKK: Skips the next instruction if VX doesn't equal KK
func (cpu *CPU) sneVxByte(_ *System, opc uint16) {
	if cpu.V[opX(opc)] != opKK(opc) {
		cpu.skip()
	}
}

// 5XY0: Skips the next instruction if VX equals VY
func (cpu *CPU) seVxVy(_ *System, opc uint16) {
	if cpu.V[opX(opc)] == cpu.V[opY(opc)] {
		cpu.skip()
	}
}

// 6XKK: Sets VX to KK
func (cpu *CPU) ldVxByte(_ *System, opc uint16) {
	cpu.V[opX(opc)] = opKK(opc)
}

// 7XKK: Adds KK to VX, no carry
func (cpu *CPU) addVxByte(_ *System, opc uint16) {
	cpu.V[opX(opc)] += opKK(opc)
}

// 8XY0
func (cpu *CPU) ldVxVy(_ *System, opc uint16) {
	cpu.V[opX(opc)] = cpu.V[opY(opc)]
}

// 8XY1
func (cpu *CPU) orVxVy(_ *System, opc uint16) {
	cpu.V[opX(opc)] |= cpu.V[opY(opc)]
}

// 8XY2
func (cpu *CPU) andVxVy(_ *System, opc uint16) {
	cpu.V[opX(opc)] &= cpu.V[opY(opc)]
}

// 8XY3
func (cpu *CPU) xorVxVy(_ *System, opc uint16) {
	cpu.V[opX(opc)] ^= cpu.V[opY(opc)]
}

// 8XY4: Adds VY to VX. VF is set to 1 on carry
func (cpu *CPU) addVxVy(_ *System, opc uint16) {
	x, y := opX(opc), opY(opc)
	sum := uint16(cpu.V[x]) + uint16(cpu.V[y])
	cpu.V[x] = uint8(sum)
	if sum > 0xFF {
		cpu.setCarry(1)
	} else {
		cpu.setCarry(0)
	}
}

// 8XY5: VX = VX - VY. VF is set to 1 when VX > VY
func (cpu *CPU) subVxVy(_ *System, opc uint16) {
	x, y := opX(opc), opY(opc)
	var flag uint8
	if cpu.V[x] > cpu.V[y] {
		flag = 1
	}
	cpu.V[x] -= cpu.V[y]
	cpu.setCarry(flag)
}

// 8XY6: Shifts VX right by one. VF gets the bit shifted out; VY is ignored
func (cpu *CPU) shrVx(_ *System, opc uint16) {
	x := opX(opc)
	flag := cpu.V[x] & 0x01
	cpu.V[x] >>= 1
	cpu.setCarry(flag)
}

// 8XY7: VX = VY - VX. VF is set to 1 when VY > VX
func (cpu *CPU) subnVxVy(_ *System, opc uint16) {
	x, y := opX(opc), opY(opc)
	var flag uint8
	if cpu.V[y] > cpu.V[x] {
		flag = 1
	}
	cpu.V[x] = cpu.V[y] - cpu.V[x]
	cpu.setCarry(flag)
}

// 8XYE: Shifts VX left by one. VF gets the bit shifted out; VY is ignored
func (cpu *CPU) shlVx(_ *System, opc uint16) {
	x := opX(opc)
	flag := (cpu.V[x] >> 7) & 0x01
	cpu.V[x] <<= 1
	cpu.setCarry(flag)
}

// 9XY0: Skips the next instruction if VX doesn't equal VY
func (cpu *CPU) sneVxVy(_ *System, opc uint16) {
	if cpu.V[opX(opc)] != cpu.V[opY(opc)] {
		cpu.skip()
	}
}

// ANNN: Sets I to the address NNN
func (cpu *CPU) ldIAddr(_ *System, opc uint16) {
	cpu.I = opNNN(opc)
}

// BNNN: Jumps to the address NNN plus V0
func (cpu *CPU) jpV0Addr(_ *System, opc uint16) {
	cpu.PC = opNNN(opc) + uint16(cpu.V[0])
}

// CXKK: Sets VX to a random byte AND KK
func (cpu *CPU) rndVxByte(sys *System, opc uint16) {
	cpu.V[opX(opc)] = uint8(sys.rng.Intn(256)) & opKK(opc)
}

// DXYN: Draws an 8xN sprite from memory at I to (VX, VY).
// VF is set to 1 if any lit pixel is turned off, 0 otherwise.
func (cpu *CPU) drwVxVyNibble(sys *System, opc uint16) {
	vx, vy := cpu.V[opX(opc)], cpu.V[opY(opc)]
	cpu.setCarry(0)
	if hit := sys.gfx.draw(&sys.mem, cpu.I, vx, vy, opN(opc)); hit {
		cpu.setCarry(1)
	}
}

// EX9E: Skips the next instruction if the key in VX is pressed
func (cpu *CPU) skpVx(sys *System, opc uint16) {
	if sys.keys[cpu.V[opX(opc)]&0xF] {
		cpu.skip()
	}
}

// EXA1: Skips the next instruction if the key in VX isn't pressed
func (cpu *CPU) sknpVx(sys *System, opc uint16) {
	if !sys.keys[cpu.V[opX(opc)]&0xF] {
		cpu.skip()
	}
}

// FX07
func (cpu *CPU) ldVxDT(sys *System, opc uint16) {
	cpu.V[opX(opc)] = sys.delayTimer
}

// FX0A: Waits for a key press and stores it in VX. The instruction is
// re-executed until a key is down.
func (cpu *CPU) ldVxK(sys *System, opc uint16) {
	for i, down := range sys.keys {
		if down {
			cpu.V[opX(opc)] = uint8(i)
			return
		}
	}
	cpu.PC -= 2 // try again in next cycle
}

// FX15
func (cpu *CPU) ldDTVx(sys *System, opc uint16) {
	sys.delayTimer = cpu.V[opX(opc)]
}

// FX18
func (cpu *CPU) ldSTVx(sys *System, opc uint16) {
	sys.soundTimer = cpu.V[opX(opc)]
}

// FX1E: Adds VX to I, VF untouched
func (cpu *CPU) addIVx(_ *System, opc uint16) {
	cpu.I += uint16(cpu.V[opX(opc)])
}

// FX29: Sets I to the font glyph for the low nibble of VX
func (cpu *CPU) ldFVx(_ *System, opc uint16) {
	cpu.I = FontAddress + fontGlyphLen*uint16(cpu.V[opX(opc)]&0xF)
}

// FX33: Stores the BCD digits of VX at I, I+1 and I+2
func (cpu *CPU) ldBVx(sys *System, opc uint16) {
	v := cpu.V[opX(opc)]
	sys.mem.write(cpu.I, v/100)
	sys.mem.write(cpu.I+1, (v/10)%10)
	sys.mem.write(cpu.I+2, v%10)
}

// FX55: Stores V0..VX at I. I is left unchanged
func (cpu *CPU) ldIVx(sys *System, opc uint16) {
	x := opX(opc)
	for i := uint8(0); i <= x; i++ {
		sys.mem.write(cpu.I+uint16(i), cpu.V[i])
	}
}

// FX65: Fills V0..VX from I. I is left unchanged
func (cpu *CPU) ldVxI(sys *System, opc uint16) {
	x := opX(opc)
	for i := uint8(0); i <= x; i++ {
		cpu.V[i] = sys.mem.read(cpu.I + uint16(i))
	}
}
