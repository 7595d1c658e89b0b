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

package ppu

// the canonical composite palette. each entry is a packed RGB value.
//
// http://www.thealmightyguru.com/Games/Hacking/Wiki/index.php/NES_Palette
var palette = [64]uint32{
	0x7c7c7c, 0x0000fc, 0x0000bc, 0x4428bc, 0x940084, 0xa80020, 0xa81000, 0x881400,
	0x503000, 0x007800, 0x006800, 0x005800, 0x004058, 0x000000, 0x000000, 0x000000,
	0xbcbcbc, 0x0078f8, 0x0058f8, 0x6844fc, 0xd800cc, 0xe40058, 0xf83800, 0xe45c10,
	0xac7c00, 0x00b800, 0x00a800, 0x00a844, 0x008888, 0x000000, 0x000000, 0x000000,
	0xf8f8f8, 0x3cbcfc, 0x6888fc, 0x9878f8, 0xf878f8, 0xf85898, 0xf87858, 0xfca044,
	0xf8b800, 0xb8f818, 0x58d854, 0x58f898, 0x00e8d8, 0x787878, 0x000000, 0x000000,
	0xfcfcfc, 0xa4e4fc, 0xb8b8f8, 0xd8b8f8, 0xf8b8f8, 0xf8a4c0, 0xf0d0b0, 0xfce0a8,
	0xf8d878, 0xd8f878, 0xb8f8b8, 0xb8f8d8, 0x00fcfc, 0xf8d8f8, 0x000000, 0x000000,
}

// readPalette and writePalette access the 32 bytes of palette RAM. Entries
// $10, $14, $18 and $1C are mirrors of $00, $04, $08 and $0C.
func (p *PPU) readPalette(addr uint16) uint8 {
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	return p.paletteData[addr]
}

func (p *PPU) writePalette(addr uint16, data uint8) {
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	p.paletteData[addr] = data
}

// colorRGB resolves a palette RAM index to displayed channel values, taking
// the grayscale and emphasis bits of PPUMASK into account.
func (p *PPU) colorRGB(index uint8) (uint8, uint8, uint8) {
	if p.grayscale {
		index &= 0x30
	}

	c := palette[index%64]
	r := uint8(c >> 16)
	g := uint8(c >> 8)
	b := uint8(c)

	// emphasis dims the two channels that are not being emphasised
	if p.emphasis != 0 {
		if p.emphasis&0x01 == 0 {
			r = uint8(uint16(r) * 3 / 4)
		}
		if p.emphasis&0x02 == 0 {
			g = uint8(uint16(g) * 3 / 4)
		}
		if p.emphasis&0x04 == 0 {
			b = uint8(uint16(b) * 3 / 4)
		}
	}

	return r, g, b
}
