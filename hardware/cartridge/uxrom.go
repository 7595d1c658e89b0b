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

// uxrom is mapper 2. A switchable 16KB PRG bank at $8000 with the last
// bank fixed at $C000. CHR is unbanked, usually RAM.
type uxrom struct {
	cart   *Cartridge
	mirror Mirroring

	prgBank uint8
}

func newUxROM(cart *Cartridge, mirror Mirroring) *uxrom {
	return &uxrom{cart: cart, mirror: mirror}
}

func (m *uxrom) numBanks() int {
	return len(m.cart.PRG) / 0x4000
}

func (m *uxrom) read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return m.cart.CHR[int(addr)%len(m.cart.CHR)]
	case addr >= 0xc000:
		return m.cart.PRG[(m.numBanks()-1)*0x4000+int(addr-0xc000)]
	case addr >= 0x8000:
		return m.cart.PRG[(int(m.prgBank)%m.numBanks())*0x4000+int(addr-0x8000)]
	case addr >= 0x6000:
		return m.cart.SRAM[addr-0x6000]
	}
	return 0
}

func (m *uxrom) write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		if m.cart.chrRAM {
			m.cart.CHR[int(addr)%len(m.cart.CHR)] = data
		}
	case addr >= 0x8000:
		m.prgBank = data
	case addr >= 0x6000:
		m.cart.SRAM[addr-0x6000] = data
	}
}

func (m *uxrom) mirroring() Mirroring {
	return m.mirror
}

func (m *uxrom) snapshot(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, m.prgBank)
}

func (m *uxrom) restore(r io.Reader) error {
	return binary.Read(r, binary.BigEndian, &m.prgBank)
}
