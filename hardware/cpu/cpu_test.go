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

package cpu_test

import (
	"testing"

	"github.com/hazyden/famicore/hardware/cpu"
	"github.com/hazyden/famicore/test"
)

// flat 64KB memory, enough to test the CPU in isolation
type mockMem struct {
	internal [0x10000]uint8
}

func newMockMem() *mockMem {
	return &mockMem{}
}

func (mem *mockMem) Read(addr uint16) uint8 {
	return mem.internal[addr]
}

func (mem *mockMem) Write(addr uint16, data uint8) {
	mem.internal[addr] = data
}

// putInstructions writes bytes to consecutive locations, returning the
// address after the last write.
func (mem *mockMem) putInstructions(origin uint16, bytes ...uint8) uint16 {
	for i, b := range bytes {
		mem.Write(origin+uint16(i), b)
	}
	return origin + uint16(len(bytes))
}

func newTestCPU(t *testing.T, mem *mockMem) *cpu.CPU {
	t.Helper()

	// reset vector points at the test program origin
	mem.Write(cpu.ResetVector, 0x00)
	mem.Write(cpu.ResetVector+1, 0x80)

	mc := cpu.NewCPU(mem)
	mc.Reset()
	test.Equate(t, mc.PC, 0x8000)
	test.Equate(t, mc.SP, 0xfd)
	test.Equate(t, mc.Status.InterruptDisable, true)
	return mc
}

func step(t *testing.T, mc *cpu.CPU) int {
	t.Helper()
	cycles, err := mc.Step()
	test.ExpectedSuccess(t, err)
	return cycles
}

func TestLDA(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	// LDA #$7F ; LDA #$00 ; LDA #$80
	mem.putInstructions(0x8000, 0xa9, 0x7f, 0xa9, 0x00, 0xa9, 0x80)

	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.A, 0x7f)
	test.Equate(t, mc.Status.Zero, false)
	test.Equate(t, mc.Status.Sign, false)

	step(t, mc)
	test.Equate(t, mc.A, 0x00)
	test.Equate(t, mc.Status.Zero, true)
	test.Equate(t, mc.Status.Sign, false)

	step(t, mc)
	test.Equate(t, mc.A, 0x80)
	test.Equate(t, mc.Status.Zero, false)
	test.Equate(t, mc.Status.Sign, true)
}

func TestADCFlags(t *testing.T) {
	cases := []struct {
		a, v    uint8
		carryIn bool
		result  uint8
		c, z, v2, n bool
	}{
		{0x01, 0x01, false, 0x02, false, false, false, false},
		{0x01, 0x01, true, 0x03, false, false, false, false},
		{0x7f, 0x01, false, 0x80, false, false, true, true},
		{0xff, 0x01, false, 0x00, true, true, false, false},
		{0x80, 0xff, false, 0x7f, true, false, true, false},
	}

	for _, c := range cases {
		mem := newMockMem()
		mc := newTestCPU(t, mem)

		// LDA #a ; ADC #v
		mem.putInstructions(0x8000, 0xa9, c.a, 0x69, c.v)

		step(t, mc)
		mc.Status.Carry = c.carryIn
		step(t, mc)

		test.Equate(t, mc.A, c.result)
		test.Equate(t, mc.Status.Carry, c.c)
		test.Equate(t, mc.Status.Zero, c.z)
		test.Equate(t, mc.Status.Overflow, c.v2)
		test.Equate(t, mc.Status.Sign, c.n)
	}
}

func TestSBC(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	// SEC ; LDA #$10 ; SBC #$01
	mem.putInstructions(0x8000, 0x38, 0xa9, 0x10, 0xe9, 0x01)

	step(t, mc)
	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.A, 0x0f)
	test.Equate(t, mc.Status.Carry, true)
}

func TestBranchCycles(t *testing.T) {
	// branch not taken: 2 cycles
	mem := newMockMem()
	mc := newTestCPU(t, mem)
	mem.putInstructions(0x8000, 0xa9, 0x00, 0xd0, 0x10) // LDA #0 ; BNE +16
	step(t, mc)
	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.PC, 0x8004)

	// branch taken, same page: 3 cycles
	mem = newMockMem()
	mc = newTestCPU(t, mem)
	mem.putInstructions(0x8000, 0xa9, 0x01, 0xd0, 0x10) // LDA #1 ; BNE +16
	step(t, mc)
	test.Equate(t, step(t, mc), 3)
	test.Equate(t, mc.PC, 0x8014)

	// branch taken, page crossed: 4 cycles
	mem = newMockMem()
	mc = newTestCPU(t, mem)
	mem.putInstructions(0x8000, 0x4c, 0xf0, 0x80) // JMP $80F0
	mem.putInstructions(0x80f0, 0xa9, 0x01, 0xd0, 0x20) // LDA #1 ; BNE +32
	step(t, mc)
	step(t, mc)
	test.Equate(t, step(t, mc), 4)
	test.Equate(t, mc.PC, 0x8114)
}

func TestJSRAndRTS(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	mem.putInstructions(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	mem.putInstructions(0x9000, 0x60)             // RTS

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.PC, 0x9000)
	test.Equate(t, mc.SP, 0xfb)

	test.Equate(t, step(t, mc), 6)
	test.Equate(t, mc.PC, 0x8003)
	test.Equate(t, mc.SP, 0xfd)
}

func TestInterrupts(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	mem.putInstructions(0x8000, 0xea, 0xea) // NOP ; NOP

	// interrupt vectors
	mem.putInstructions(cpu.NMIVector, 0x00, 0x90)
	mem.putInstructions(cpu.IRQVector, 0x00, 0xa0)

	// IRQ is masked after reset
	mc.SignalIRQ()
	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.PC, 0x8001)

	// NMI wins over a pending IRQ
	mc.Status.InterruptDisable = false
	mc.SignalIRQ()
	mc.SignalNMI()
	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC, 0x9000)
	test.Equate(t, mc.Status.InterruptDisable, true)

	// three bytes pushed by the interrupt sequence
	test.Equate(t, mc.SP, 0xfa)
}

func TestNMIUnmaskable(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)
	mem.putInstructions(cpu.NMIVector, 0x00, 0x90)

	test.Equate(t, mc.Status.InterruptDisable, true)
	mc.SignalNMI()
	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC, 0x9000)
}

func TestStackWrap(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	// LDX #$00 ; TXS ; PHA
	mem.putInstructions(0x8000, 0xa2, 0x00, 0x9a, 0x48)

	step(t, mc)
	step(t, mc)
	test.Equate(t, mc.SP, 0x00)

	mc.A = 0x42
	step(t, mc)
	test.Equate(t, mem.Read(0x0100), 0x42)
	test.Equate(t, mc.SP, 0xff)
}

func TestStall(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)
	mem.putInstructions(0x8000, 0xea) // NOP

	mc.Stall(3)
	test.Equate(t, step(t, mc), 1)
	test.Equate(t, step(t, mc), 1)
	test.Equate(t, step(t, mc), 1)
	test.Equate(t, step(t, mc), 2)
	test.Equate(t, mc.PC, 0x8001)
}

func TestIndirectJumpBug(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	// JMP ($10FF) reads the high byte from $1000, not $1100
	mem.putInstructions(0x8000, 0x6c, 0xff, 0x10)
	mem.Write(0x10ff, 0x34)
	mem.Write(0x1000, 0x12)
	mem.Write(0x1100, 0x56)

	step(t, mc)
	test.Equate(t, mc.PC, 0x1234)
}

func TestBRK(t *testing.T) {
	mem := newMockMem()
	mc := newTestCPU(t, mem)

	mem.putInstructions(0x8000, 0x00) // BRK
	mem.putInstructions(cpu.IRQVector, 0x00, 0xa0)

	test.Equate(t, step(t, mc), 7)
	test.Equate(t, mc.PC, 0xa000)

	// return address is the byte after the BRK padding byte
	test.Equate(t, mem.Read(0x01fd), 0x80)
	test.Equate(t, mem.Read(0x01fc), 0x02)

	// break bit is set in the pushed status value
	test.Equate(t, mem.Read(0x01fb)&0x10, 0x10)
}
