// This file is part of Famicore.
//
// Famicore is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Famicore is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Famicore.  If not, see <https://www.gnu.org/licenses/>.

// Package cpu implements the 2A03 variant of the 6502 found in the NES.
// Decimal mode is absent; the decimal flag can be set and cleared but has no
// effect on arithmetic.
//
// The CPU is stepped one whole instruction at a time. The Step() function
// returns the number of cycles the instruction consumed, including
// page-cross and taken-branch penalties, so that the caller can run the
// other clock domains forward by the correct amount.
package cpu

import (
	"fmt"

	"github.com/hazyden/famicore/hardware/cpu/instructions"
	"github.com/hazyden/famicore/hardware/cpu/registers"
	"github.com/hazyden/famicore/logger"
)

// interrupt vectors
const (
	NMIVector   = 0xfffa
	ResetVector = 0xfffc
	IRQVector   = 0xfffe
)

// stack page
const stackBase = 0x0100

// Bus is the memory system as seen by the CPU.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, data uint8)
}

// CPU implements the 2A03 processor.
type CPU struct {
	PC     uint16
	A      uint8
	X      uint8
	Y      uint8
	SP     uint8
	Status registers.StatusRegister

	// total number of cycles executed since the last Reset()
	Cycles uint64

	mem Bus

	// interrupt lines. both are polled at instruction boundaries with NMI
	// taking priority
	nmi bool
	irq bool

	// cycles the CPU is stalled for, counted down one per Step() call.
	// stalling is the bus's way of charging the CPU for OAM DMA
	stall int

	// undocumented opcodes are logged the first time they are seen
	warned [256]bool
}

// NewCPU is the preferred method of initialisation for the CPU structure.
// The CPU is not usable until Reset() has been called.
func NewCPU(mem Bus) *CPU {
	return &CPU{
		mem:    mem,
		Status: registers.NewStatusRegister(),
	}
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%04x A=%02x X=%02x Y=%02x SP=%02x SR=%s",
		mc.PC, mc.A, mc.X, mc.Y, mc.SP, mc.Status.String())
}

// Reset puts the CPU into the state it is in after the console's reset line
// has been held. The program counter is loaded from the reset vector.
func (mc *CPU) Reset() {
	mc.A = 0
	mc.X = 0
	mc.Y = 0
	mc.SP = 0xfd
	mc.Status.Reset()
	mc.Status.InterruptDisable = true
	mc.PC = mc.read16(ResetVector)
	mc.Cycles = 0
	mc.nmi = false
	mc.irq = false
	mc.stall = 0
}

// SignalNMI raises the non-maskable interrupt line. The interrupt is
// serviced at the next instruction boundary.
func (mc *CPU) SignalNMI() {
	mc.nmi = true
}

// SignalIRQ raises the interrupt request line. The interrupt is serviced at
// the next instruction boundary unless the interrupt disable flag is set.
func (mc *CPU) SignalIRQ() {
	mc.irq = true
}

// Stall suspends the CPU for the specified number of cycles. Each subsequent
// Step() call consumes one stalled cycle.
func (mc *CPU) Stall(cycles int) {
	mc.stall += cycles
}

func (mc *CPU) read16(addr uint16) uint16 {
	lo := mc.mem.Read(addr)
	hi := mc.mem.Read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// the 6502 does not carry into the high byte when reading a 16 bit value
// across a page boundary. JMP ($10FF) reads $10FF and $1000, not $1100.
func (mc *CPU) read16WrapBug(addr uint16) uint16 {
	lo := mc.mem.Read(addr)
	hi := mc.mem.Read((addr & 0xff00) | uint16(uint8(addr)+1))
	return uint16(hi)<<8 | uint16(lo)
}

func (mc *CPU) push(v uint8) {
	mc.mem.Write(stackBase|uint16(mc.SP), v)
	mc.SP--
}

func (mc *CPU) pull() uint8 {
	mc.SP++
	return mc.mem.Read(stackBase | uint16(mc.SP))
}

func (mc *CPU) push16(v uint16) {
	mc.push(uint8(v >> 8))
	mc.push(uint8(v))
}

func (mc *CPU) pull16() uint16 {
	lo := mc.pull()
	hi := mc.pull()
	return uint16(hi)<<8 | uint16(lo)
}

// setZN adjusts the zero and sign flags according to the value.
func (mc *CPU) setZN(v uint8) {
	mc.Status.Zero = v == 0
	mc.Status.Sign = v&0x80 == 0x80
}

func pagesDiffer(a, b uint16) bool {
	return a&0xff00 != b&0xff00
}

// service an interrupt. the status register is pushed with the break bit
// clear, distinguishing hardware interrupts from BRK.
func (mc *CPU) interrupt(vector uint16) {
	mc.push16(mc.PC)
	mc.push(mc.Status.Value() &^ 0x10)
	mc.Status.InterruptDisable = true
	mc.PC = mc.read16(vector)
}

// number of cycles consumed by an interrupt sequence, including BRK.
const interruptCycles = 7

// Step executes the next instruction, or services a pending interrupt, and
// returns the number of cycles consumed. A stalled CPU consumes exactly one
// cycle per Step() call until the stall is exhausted.
func (mc *CPU) Step() (int, error) {
	if mc.stall > 0 {
		mc.stall--
		mc.Cycles++
		return 1, nil
	}

	// interrupt polling happens at instruction boundaries only. NMI wins
	// over IRQ when both are pending
	if mc.nmi {
		mc.nmi = false
		mc.interrupt(NMIVector)
		mc.Cycles += interruptCycles
		return interruptCycles, nil
	}
	if mc.irq {
		mc.irq = false
		if !mc.Status.InterruptDisable {
			mc.interrupt(IRQVector)
			mc.Cycles += interruptCycles
			return interruptCycles, nil
		}
	}

	opcode := mc.mem.Read(mc.PC)
	defn := &instructions.Definitions[opcode]

	if defn.Undocumented && !mc.warned[opcode] {
		mc.warned[opcode] = true
		logger.Logf("CPU", "undocumented opcode %#02x (%s) executed as NOP", opcode, defn.Mnemonic)
	}

	// resolve the effective address before the program counter moves on
	var addr uint16
	var pageCrossed bool

	switch defn.AddressingMode {
	case instructions.Implied:
		// no address
	case instructions.Accumulator:
		// operand is the accumulator itself
	case instructions.Immediate:
		addr = mc.PC + 1
	case instructions.Relative:
		offset := uint16(mc.mem.Read(mc.PC + 1))
		if offset < 0x80 {
			addr = mc.PC + 2 + offset
		} else {
			addr = mc.PC + 2 + offset - 0x100
		}
	case instructions.Absolute:
		addr = mc.read16(mc.PC + 1)
	case instructions.AbsoluteIndexedX:
		base := mc.read16(mc.PC + 1)
		addr = base + uint16(mc.X)
		pageCrossed = pagesDiffer(base, addr)
	case instructions.AbsoluteIndexedY:
		base := mc.read16(mc.PC + 1)
		addr = base + uint16(mc.Y)
		pageCrossed = pagesDiffer(base, addr)
	case instructions.ZeroPage:
		addr = uint16(mc.mem.Read(mc.PC + 1))
	case instructions.ZeroPageIndexedX:
		addr = uint16(mc.mem.Read(mc.PC+1) + mc.X)
	case instructions.ZeroPageIndexedY:
		addr = uint16(mc.mem.Read(mc.PC+1) + mc.Y)
	case instructions.Indirect:
		addr = mc.read16WrapBug(mc.read16(mc.PC + 1))
	case instructions.IndexedIndirect:
		addr = mc.read16WrapBug(uint16(mc.mem.Read(mc.PC+1) + mc.X))
	case instructions.IndirectIndexed:
		base := mc.read16WrapBug(uint16(mc.mem.Read(mc.PC + 1)))
		addr = base + uint16(mc.Y)
		pageCrossed = pagesDiffer(base, addr)
	}

	mc.PC += uint16(defn.Bytes)

	cycles := defn.Cycles
	if pageCrossed && defn.PageSensitive {
		cycles++
	}

	switch defn.Operator {
	case instructions.Adc:
		mc.adc(mc.mem.Read(addr))

	case instructions.And:
		mc.A &= mc.mem.Read(addr)
		mc.setZN(mc.A)

	case instructions.Asl:
		if defn.AddressingMode == instructions.Accumulator {
			mc.Status.Carry = mc.A&0x80 == 0x80
			mc.A <<= 1
			mc.setZN(mc.A)
		} else {
			v := mc.mem.Read(addr)
			mc.Status.Carry = v&0x80 == 0x80
			v <<= 1
			mc.mem.Write(addr, v)
			mc.setZN(v)
		}

	case instructions.Bcc:
		cycles += mc.branch(!mc.Status.Carry, addr)

	case instructions.Bcs:
		cycles += mc.branch(mc.Status.Carry, addr)

	case instructions.Beq:
		cycles += mc.branch(mc.Status.Zero, addr)

	case instructions.Bit:
		v := mc.mem.Read(addr)
		mc.Status.Overflow = v&0x40 == 0x40
		mc.Status.Sign = v&0x80 == 0x80
		mc.Status.Zero = v&mc.A == 0

	case instructions.Bmi:
		cycles += mc.branch(mc.Status.Sign, addr)

	case instructions.Bne:
		cycles += mc.branch(!mc.Status.Zero, addr)

	case instructions.Bpl:
		cycles += mc.branch(!mc.Status.Sign, addr)

	case instructions.Brk:
		mc.push16(mc.PC)
		mc.push(mc.Status.Value() | 0x10)
		mc.Status.InterruptDisable = true
		mc.PC = mc.read16(IRQVector)

	case instructions.Bvc:
		cycles += mc.branch(!mc.Status.Overflow, addr)

	case instructions.Bvs:
		cycles += mc.branch(mc.Status.Overflow, addr)

	case instructions.Clc:
		mc.Status.Carry = false

	case instructions.Cld:
		mc.Status.DecimalMode = false

	case instructions.Cli:
		mc.Status.InterruptDisable = false

	case instructions.Clv:
		mc.Status.Overflow = false

	case instructions.Cmp:
		mc.compare(mc.A, mc.mem.Read(addr))

	case instructions.Cpx:
		mc.compare(mc.X, mc.mem.Read(addr))

	case instructions.Cpy:
		mc.compare(mc.Y, mc.mem.Read(addr))

	case instructions.Dec:
		v := mc.mem.Read(addr) - 1
		mc.mem.Write(addr, v)
		mc.setZN(v)

	case instructions.Dex:
		mc.X--
		mc.setZN(mc.X)

	case instructions.Dey:
		mc.Y--
		mc.setZN(mc.Y)

	case instructions.Eor:
		mc.A ^= mc.mem.Read(addr)
		mc.setZN(mc.A)

	case instructions.Inc:
		v := mc.mem.Read(addr) + 1
		mc.mem.Write(addr, v)
		mc.setZN(v)

	case instructions.Inx:
		mc.X++
		mc.setZN(mc.X)

	case instructions.Iny:
		mc.Y++
		mc.setZN(mc.Y)

	case instructions.Jmp:
		mc.PC = addr

	case instructions.Jsr:
		mc.push16(mc.PC - 1)
		mc.PC = addr

	case instructions.Lda:
		mc.A = mc.mem.Read(addr)
		mc.setZN(mc.A)

	case instructions.Ldx:
		mc.X = mc.mem.Read(addr)
		mc.setZN(mc.X)

	case instructions.Ldy:
		mc.Y = mc.mem.Read(addr)
		mc.setZN(mc.Y)

	case instructions.Lsr:
		if defn.AddressingMode == instructions.Accumulator {
			mc.Status.Carry = mc.A&0x01 == 0x01
			mc.A >>= 1
			mc.setZN(mc.A)
		} else {
			v := mc.mem.Read(addr)
			mc.Status.Carry = v&0x01 == 0x01
			v >>= 1
			mc.mem.Write(addr, v)
			mc.setZN(v)
		}

	case instructions.Nop:
		// including every undocumented opcode

	case instructions.Ora:
		mc.A |= mc.mem.Read(addr)
		mc.setZN(mc.A)

	case instructions.Pha:
		mc.push(mc.A)

	case instructions.Php:
		// the break bit is set in the pushed value but not in the register
		mc.push(mc.Status.Value() | 0x10)

	case instructions.Pla:
		mc.A = mc.pull()
		mc.setZN(mc.A)

	case instructions.Plp:
		mc.Status.FromValue(mc.pull())
		mc.Status.Break = false

	case instructions.Rol:
		carry := uint8(0)
		if mc.Status.Carry {
			carry = 1
		}
		if defn.AddressingMode == instructions.Accumulator {
			mc.Status.Carry = mc.A&0x80 == 0x80
			mc.A = mc.A<<1 | carry
			mc.setZN(mc.A)
		} else {
			v := mc.mem.Read(addr)
			mc.Status.Carry = v&0x80 == 0x80
			v = v<<1 | carry
			mc.mem.Write(addr, v)
			mc.setZN(v)
		}

	case instructions.Ror:
		carry := uint8(0)
		if mc.Status.Carry {
			carry = 0x80
		}
		if defn.AddressingMode == instructions.Accumulator {
			mc.Status.Carry = mc.A&0x01 == 0x01
			mc.A = mc.A>>1 | carry
			mc.setZN(mc.A)
		} else {
			v := mc.mem.Read(addr)
			mc.Status.Carry = v&0x01 == 0x01
			v = v>>1 | carry
			mc.mem.Write(addr, v)
			mc.setZN(v)
		}

	case instructions.Rti:
		mc.Status.FromValue(mc.pull())
		mc.Status.Break = false
		mc.PC = mc.pull16()

	case instructions.Rts:
		mc.PC = mc.pull16() + 1

	case instructions.Sbc:
		mc.sbc(mc.mem.Read(addr))

	case instructions.Sec:
		mc.Status.Carry = true

	case instructions.Sed:
		mc.Status.DecimalMode = true

	case instructions.Sei:
		mc.Status.InterruptDisable = true

	case instructions.Sta:
		mc.mem.Write(addr, mc.A)

	case instructions.Stx:
		mc.mem.Write(addr, mc.X)

	case instructions.Sty:
		mc.mem.Write(addr, mc.Y)

	case instructions.Tax:
		mc.X = mc.A
		mc.setZN(mc.X)

	case instructions.Tay:
		mc.Y = mc.A
		mc.setZN(mc.Y)

	case instructions.Tsx:
		mc.X = mc.SP
		mc.setZN(mc.X)

	case instructions.Txa:
		mc.A = mc.X
		mc.setZN(mc.A)

	case instructions.Txs:
		mc.SP = mc.X

	case instructions.Tya:
		mc.A = mc.Y
		mc.setZN(mc.A)
	}

	mc.Cycles += uint64(cycles)

	return cycles, nil
}

// branch returns the cycle penalty: one for a taken branch, two if the
// branch destination is on a different page to the following instruction.
func (mc *CPU) branch(condition bool, addr uint16) int {
	if !condition {
		return 0
	}
	penalty := 1
	if pagesDiffer(mc.PC, addr) {
		penalty++
	}
	mc.PC = addr
	return penalty
}

func (mc *CPU) adc(v uint8) {
	a := mc.A
	carry := uint8(0)
	if mc.Status.Carry {
		carry = 1
	}

	mc.A = a + v + carry
	mc.setZN(mc.A)
	mc.Status.Carry = int(a)+int(v)+int(carry) > 0xff

	// overflow when the operands share a sign that the result does not
	mc.Status.Overflow = (a^v)&0x80 == 0 && (a^mc.A)&0x80 != 0
}

func (mc *CPU) sbc(v uint8) {
	a := mc.A
	carry := uint8(0)
	if mc.Status.Carry {
		carry = 1
	}

	mc.A = a - v - (1 - carry)
	mc.setZN(mc.A)
	mc.Status.Carry = int(a)-int(v)-int(1-carry) >= 0
	mc.Status.Overflow = (a^v)&0x80 != 0 && (a^mc.A)&0x80 != 0
}

func (mc *CPU) compare(a, b uint8) {
	mc.setZN(a - b)
	mc.Status.Carry = a >= b
}
