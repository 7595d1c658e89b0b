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

	"github.com/hazyden/famicore/logger"
)

// mmc3 is mapper 4. Eight bank registers cover four 8KB PRG windows and
// eight 1KB CHR windows; a bank select register chooses which register the
// next bank data write lands in.
//
// The MMC3 scanline counter and its IRQ are not implemented. Games relying
// on it for raster effects will show a stationary or missing status bar but
// otherwise run. The gap is logged once when a game first touches the IRQ
// registers.
type mmc3 struct {
	cart *Cartridge

	mirror     Mirroring
	fourScreen bool

	register  uint8
	registers [8]uint8
	prgMode   uint8
	chrMode   uint8

	prgOffsets [4]int
	chrOffsets [8]int

	irqWarned bool
}

func newMMC3(cart *Cartridge, mirror Mirroring) *mmc3 {
	m := &mmc3{cart: cart, mirror: mirror}
	m.fourScreen = mirror == MirrorFourScreen
	m.updateOffsets()
	return m
}

func (m *mmc3) read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		bank := int(addr) / 0x0400
		offset := int(addr) % 0x0400
		return m.cart.CHR[m.chrOffsets[bank]+offset]
	case addr >= 0x8000:
		a := int(addr - 0x8000)
		bank := a / 0x2000
		offset := a % 0x2000
		return m.cart.PRG[m.prgOffsets[bank]+offset]
	case addr >= 0x6000:
		return m.cart.SRAM[addr-0x6000]
	}
	return 0
}

func (m *mmc3) write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		if m.cart.chrRAM {
			bank := int(addr) / 0x0400
			offset := int(addr) % 0x0400
			m.cart.CHR[m.chrOffsets[bank]+offset] = data
		}
	case addr >= 0x8000:
		m.writeRegister(addr, data)
	case addr >= 0x6000:
		m.cart.SRAM[addr-0x6000] = data
	}
}

func (m *mmc3) writeRegister(addr uint16, data uint8) {
	even := addr&1 == 0
	switch {
	case addr <= 0x9fff:
		if even {
			m.register = data & 0x07
			m.prgMode = (data >> 6) & 1
			m.chrMode = (data >> 7) & 1
		} else {
			m.registers[m.register] = data
		}
		m.updateOffsets()

	case addr <= 0xbfff:
		if even {
			if data&1 == 1 {
				m.mirror = MirrorHorizontal
			} else {
				m.mirror = MirrorVertical
			}
		}
		// odd addresses control PRG RAM write protection, which is not
		// honoured

	default:
		// $C000-$FFFF is the scanline counter and IRQ control
		if !m.irqWarned {
			m.irqWarned = true
			logger.Logf("cartridge", "MMC3 scanline IRQ not implemented")
		}
	}
}

func (m *mmc3) mirroring() Mirroring {
	if m.fourScreen {
		return MirrorFourScreen
	}
	return m.mirror
}

func (m *mmc3) prgBankOffset(index int) int {
	if index < 0 {
		index += len(m.cart.PRG) / 0x2000
	}
	index %= len(m.cart.PRG) / 0x2000
	return index * 0x2000
}

func (m *mmc3) chrBankOffset(index int) int {
	index %= len(m.cart.CHR) / 0x0400
	return index * 0x0400
}

func (m *mmc3) updateOffsets() {
	r := &m.registers

	if m.prgMode == 0 {
		m.prgOffsets[0] = m.prgBankOffset(int(r[6]))
		m.prgOffsets[1] = m.prgBankOffset(int(r[7]))
		m.prgOffsets[2] = m.prgBankOffset(-2)
		m.prgOffsets[3] = m.prgBankOffset(-1)
	} else {
		m.prgOffsets[0] = m.prgBankOffset(-2)
		m.prgOffsets[1] = m.prgBankOffset(int(r[7]))
		m.prgOffsets[2] = m.prgBankOffset(int(r[6]))
		m.prgOffsets[3] = m.prgBankOffset(-1)
	}

	if m.chrMode == 0 {
		m.chrOffsets[0] = m.chrBankOffset(int(r[0] & 0xfe))
		m.chrOffsets[1] = m.chrBankOffset(int(r[0] | 0x01))
		m.chrOffsets[2] = m.chrBankOffset(int(r[1] & 0xfe))
		m.chrOffsets[3] = m.chrBankOffset(int(r[1] | 0x01))
		m.chrOffsets[4] = m.chrBankOffset(int(r[2]))
		m.chrOffsets[5] = m.chrBankOffset(int(r[3]))
		m.chrOffsets[6] = m.chrBankOffset(int(r[4]))
		m.chrOffsets[7] = m.chrBankOffset(int(r[5]))
	} else {
		m.chrOffsets[0] = m.chrBankOffset(int(r[2]))
		m.chrOffsets[1] = m.chrBankOffset(int(r[3]))
		m.chrOffsets[2] = m.chrBankOffset(int(r[4]))
		m.chrOffsets[3] = m.chrBankOffset(int(r[5]))
		m.chrOffsets[4] = m.chrBankOffset(int(r[0] & 0xfe))
		m.chrOffsets[5] = m.chrBankOffset(int(r[0] | 0x01))
		m.chrOffsets[6] = m.chrBankOffset(int(r[1] & 0xfe))
		m.chrOffsets[7] = m.chrBankOffset(int(r[1] | 0x01))
	}
}

func (m *mmc3) snapshot(w io.Writer) error {
	regs := []uint8{m.register, m.prgMode, m.chrMode, uint8(m.mirror)}
	regs = append(regs, m.registers[:]...)
	return binary.Write(w, binary.BigEndian, regs)
}

func (m *mmc3) restore(r io.Reader) error {
	regs := make([]uint8, 12)
	if err := binary.Read(r, binary.BigEndian, regs); err != nil {
		return err
	}
	m.register = regs[0]
	m.prgMode = regs[1]
	m.chrMode = regs[2]
	m.mirror = Mirroring(regs[3])
	copy(m.registers[:], regs[4:])
	m.updateOffsets()
	return nil
}
