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

package cartridge

import (
	"encoding/binary"
	"io"
)

// mmc1 is mapper 1. Internal registers are loaded serially, one bit at a
// time, through writes to the $8000-$FFFF range. The fifth write commits
// the shift register to one of four registers selected by the address of
// that fifth write. A write with bit 7 set resets the shift register and
// locks PRG banking to mode 3.
type mmc1 struct {
	cart *Cartridge

	shiftRegister uint8
	control       uint8
	chrMode       uint8
	prgMode       uint8
	chrBank0      uint8
	chrBank1      uint8
	prgBank       uint8

	prgOffsets [2]int
	chrOffsets [2]int
}

func newMMC1(cart *Cartridge, _ Mirroring) *mmc1 {
	m := &mmc1{cart: cart}
	m.shiftRegister = 0x10

	// power on with the last PRG bank fixed at $C000
	m.writeControl(0x0c)
	return m
}

func (m *mmc1) read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		bank := int(addr) / 0x1000
		offset := int(addr) % 0x1000
		return m.cart.CHR[m.chrOffsets[bank]+offset]
	case addr >= 0x8000:
		a := int(addr - 0x8000)
		bank := a / 0x4000
		offset := a % 0x4000
		return m.cart.PRG[m.prgOffsets[bank]+offset]
	case addr >= 0x6000:
		return m.cart.SRAM[addr-0x6000]
	}
	return 0
}

func (m *mmc1) write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		if m.cart.chrRAM {
			bank := int(addr) / 0x1000
			offset := int(addr) % 0x1000
			m.cart.CHR[m.chrOffsets[bank]+offset] = data
		}
	case addr >= 0x8000:
		m.loadRegister(addr, data)
	case addr >= 0x6000:
		m.cart.SRAM[addr-0x6000] = data
	}
}

func (m *mmc1) loadRegister(addr uint16, data uint8) {
	if data&0x80 == 0x80 {
		m.shiftRegister = 0x10
		m.writeControl(m.control | 0x0c)
		return
	}

	complete := m.shiftRegister&1 == 1
	m.shiftRegister >>= 1
	m.shiftRegister |= (data & 1) << 4
	if complete {
		m.writeRegister(addr, m.shiftRegister)
		m.shiftRegister = 0x10
	}
}

func (m *mmc1) writeRegister(addr uint16, data uint8) {
	switch {
	case addr <= 0x9fff:
		m.writeControl(data)
	case addr <= 0xbfff:
		m.chrBank0 = data
		m.updateOffsets()
	case addr <= 0xdfff:
		m.chrBank1 = data
		m.updateOffsets()
	default:
		m.prgBank = data & 0x0f
		m.updateOffsets()
	}
}

func (m *mmc1) writeControl(data uint8) {
	m.control = data
	m.chrMode = (data >> 4) & 1
	m.prgMode = (data >> 2) & 3
	m.updateOffsets()
}

func (m *mmc1) mirroring() Mirroring {
	switch m.control & 3 {
	case 0:
		return MirrorSingle0
	case 1:
		return MirrorSingle1
	case 2:
		return MirrorVertical
	}
	return MirrorHorizontal
}

func (m *mmc1) prgBankOffset(index int) int {
	index %= len(m.cart.PRG) / 0x4000
	return index * 0x4000
}

func (m *mmc1) chrBankOffset(index int) int {
	index %= len(m.cart.CHR) / 0x1000
	return index * 0x1000
}

func (m *mmc1) updateOffsets() {
	switch m.prgMode {
	case 0, 1:
		// 32KB switching, ignoring the low bit of the bank number
		m.prgOffsets[0] = m.prgBankOffset(int(m.prgBank & 0xfe))
		m.prgOffsets[1] = m.prgBankOffset(int(m.prgBank | 0x01))
	case 2:
		// first bank fixed at $8000
		m.prgOffsets[0] = 0
		m.prgOffsets[1] = m.prgBankOffset(int(m.prgBank))
	case 3:
		// last bank fixed at $C000
		m.prgOffsets[0] = m.prgBankOffset(int(m.prgBank))
		m.prgOffsets[1] = m.prgBankOffset(len(m.cart.PRG)/0x4000 - 1)
	}

	if m.chrMode == 0 {
		// 8KB switching
		m.chrOffsets[0] = m.chrBankOffset(int(m.chrBank0 & 0xfe))
		m.chrOffsets[1] = m.chrBankOffset(int(m.chrBank0 | 0x01))
	} else {
		// two independent 4KB banks
		m.chrOffsets[0] = m.chrBankOffset(int(m.chrBank0))
		m.chrOffsets[1] = m.chrBankOffset(int(m.chrBank1))
	}
}

func (m *mmc1) snapshot(w io.Writer) error {
	regs := []uint8{m.shiftRegister, m.control, m.chrBank0, m.chrBank1, m.prgBank}
	return binary.Write(w, binary.BigEndian, regs)
}

func (m *mmc1) restore(r io.Reader) error {
	regs := make([]uint8, 5)
	if err := binary.Read(r, binary.BigEndian, regs); err != nil {
		return err
	}
	m.shiftRegister = regs[0]
	m.chrBank0 = regs[2]
	m.chrBank1 = regs[3]
	m.prgBank = regs[4]
	m.writeControl(regs[1])
	return nil
}
