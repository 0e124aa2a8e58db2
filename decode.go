package chip8

// opFunc executes one decoded instruction. PC already points past it.
type opFunc func(cpu *CPU, sys *System, opc uint16)

func opX(opc uint16) uint8 { return uint8(opc>>8) & 0xF }
func opY(opc uint16) uint8 { return uint8(opc>>4) & 0xF }
func opN(opc uint16) uint8 { return uint8(opc) & 0xF }
func opKK(opc uint16) uint8 { return uint8(opc) }
func opNNN(opc uint16) uint16 { return opc & 0x0FFF }

// Primary table, keyed on the top nibble.
var primaryTable = [16]opFunc{
	0x0: dispatch0,
	0x1: (*CPU).jpAddr,
	0x2: (*CPU).callAddr,
	0x3: (*CPU).seVxByte,
	0x4: (*CPU).sneVxByte,
	0x5: (*CPU).seVxVy,
	0x6: (*CPU).ldVxByte,
	0x7: (*CPU).addVxByte,
	0x8: dispatch8,
	0x9: (*CPU).sneVxVy,
	0xA: (*CPU).ldIAddr,
	0xB: (*CPU).jpV0Addr,
	0xC: (*CPU).rndVxByte,
	0xD: (*CPU).drwVxVyNibble,
	0xE: dispatchE,
	0xF: dispatchF,
}

// 00Ex, keyed on the low nibble.
var table0 = [16]opFunc{
	0x0: (*CPU).cls,
	0xE: (*CPU).ret,
}

// 8XYx ALU group, keyed on the low nibble.
var table8 = [16]opFunc{
	0x0: (*CPU).ldVxVy,
	0x1: (*CPU).orVxVy,
	0x2: (*CPU).andVxVy,
	0x3: (*CPU).xorVxVy,
	0x4: (*CPU).addVxVy,
	0x5: (*CPU).subVxVy,
	0x6: (*CPU).shrVx,
	0x7: (*CPU).subnVxVy,
	0xE: (*CPU).shlVx,
}

// EXxx key group, keyed on the low byte.
var tableE = [256]opFunc{
	0x9E: (*CPU).skpVx,
	0xA1: (*CPU).sknpVx,
}

// FXxx timer and I/O group, keyed on the low byte.
var tableF = [256]opFunc{
	0x07: (*CPU).ldVxDT,
	0x0A: (*CPU).ldVxK,
	0x15: (*CPU).ldDTVx,
	0x18: (*CPU).ldSTVx,
	0x1E: (*CPU).addIVx,
	0x29: (*CPU).ldFVx,
	0x33: (*CPU).ldBVx,
	0x55: (*CPU).ldIVx,
	0x65: (*CPU).ldVxI,
}

// decode maps an opcode to its handler. Unknown opcodes map to a no-op
// that only logs.
func decode(opc uint16) opFunc {
	return primaryTable[opc>>12]
}

func orUnknown(op opFunc) opFunc {
	if op == nil {
		return (*CPU).unknownOp
	}
	return op
}

// 0NNN other than 00E0/00EE is the RCA 1802 SYS call, which is ignored.
func dispatch0(cpu *CPU, sys *System, opc uint16) {
	if opc&0x0FF0 != 0x00E0 {
		cpu.unknownOp(sys, opc)
		return
	}
	orUnknown(table0[opN(opc)])(cpu, sys, opc)
}

func dispatch8(cpu *CPU, sys *System, opc uint16) {
	orUnknown(table8[opN(opc)])(cpu, sys, opc)
}

func dispatchE(cpu *CPU, sys *System, opc uint16) {
	orUnknown(tableE[opKK(opc)])(cpu, sys, opc)
}

func dispatchF(cpu *CPU, sys *System, opc uint16) {
	orUnknown(tableF[opKK(opc)])(cpu, sys, opc)
}
