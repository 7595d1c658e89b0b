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

import "io"

// nrom is mapper 0. No banking hardware at all: 16KB PRG boards appear
// twice in the $8000-$FFFF window.
type nrom struct {
	cart   *Cartridge
	mirror Mirroring
}

func newNROM(cart *Cartridge, mirror Mirroring) *nrom {
	return &nrom{cart: cart, mirror: mirror}
}

func (m *nrom) read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return m.cart.CHR[int(addr)%len(m.cart.CHR)]
	case addr >= 0x8000:
		return m.cart.PRG[int(addr-0x8000)%len(m.cart.PRG)]
	case addr >= 0x6000:
		return m.cart.SRAM[addr-0x6000]
	}
	return 0
}

func (m *nrom) write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		if m.cart.chrRAM {
			m.cart.CHR[int(addr)%len(m.cart.CHR)] = data
		}
	case addr >= 0x8000:
		// ROM. nothing to write to
	case addr >= 0x6000:
		m.cart.SRAM[addr-0x6000] = data
	}
}

func (m *nrom) mirroring() Mirroring {
	return m.mirror
}

func (m *nrom) snapshot(w io.Writer) error {
	return nil
}

func (m *nrom) restore(r io.Reader) error {
	return nil
}
