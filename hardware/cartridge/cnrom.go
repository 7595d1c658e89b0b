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

// cnrom is mapper 3. PRG is unbanked; a register switches one of up to
// four 8KB CHR banks.
type cnrom struct {
	cart   *Cartridge
	mirror Mirroring

	chrBank uint8
}

func newCNROM(cart *Cartridge, mirror Mirroring) *cnrom {
	return &cnrom{cart: cart, mirror: mirror}
}

func (m *cnrom) read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		bank := int(m.chrBank) % (len(m.cart.CHR) / 0x2000)
		return m.cart.CHR[bank*0x2000+int(addr)]
	case addr >= 0x8000:
		return m.cart.PRG[int(addr-0x8000)%len(m.cart.PRG)]
	case addr >= 0x6000:
		return m.cart.SRAM[addr-0x6000]
	}
	return 0
}

func (m *cnrom) write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		// CNROM boards carry CHR ROM only
	case addr >= 0x8000:
		m.chrBank = data & 0x03
	case addr >= 0x6000:
		m.cart.SRAM[addr-0x6000] = data
	}
}

func (m *cnrom) mirroring() Mirroring {
	return m.mirror
}

func (m *cnrom) snapshot(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, m.chrBank)
}

func (m *cnrom) restore(r io.Reader) error {
	return binary.Read(r, binary.BigEndian, &m.chrBank)
}
