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

package ppu_test

import (
	"testing"

	"github.com/hazyden/famicore/hardware/cartridge"
	"github.com/hazyden/famicore/hardware/ppu"
	"github.com/hazyden/famicore/test"
)

// a mapper 0 board with CHR RAM so pattern data can be poked directly.
func testCart(t *testing.T) *cartridge.Cartridge {
	t.Helper()

	rom := []byte{'N', 'E', 'S', 0x1a, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	rom = append(rom, make([]byte, 16384)...)

	cart, err := cartridge.NewCartridge(rom)
	test.ExpectedSuccess(t, err)
	return cart
}

const cyclesPerFrame = 341 * 262

func TestVBlankFlag(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	// run to just inside the vertical blank
	for !(p.Scanline == 241 && p.Cycle == 1) {
		p.Step()
	}

	status := p.ReadRegister(0x2002)
	test.Equate(t, status&0x80, 0x80)

	// reading the status register clears the flag
	status = p.ReadRegister(0x2002)
	test.Equate(t, status&0x80, 0x00)

	// flag returns on the next frame
	for !(p.Scanline == 241 && p.Cycle == 1) {
		p.Step()
	}
	test.Equate(t, p.ReadRegister(0x2002)&0x80, 0x80)
}

func TestNMITiming(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	// enable NMI generation
	p.WriteRegister(0x2000, 0x80)

	nmis := 0
	for i := 0; i < cyclesPerFrame; i++ {
		if p.Step() {
			nmis++

			// the edge is delivered two cycles after the vblank flag rises
			test.Equate(t, p.Scanline, 241)
			test.Equate(t, p.Cycle, 3)
		}
	}
	test.Equate(t, nmis, 1)
}

func TestNMIDisabled(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	for i := 0; i < cyclesPerFrame; i++ {
		test.Equate(t, p.Step(), false)
	}
}

func TestDataPortBufferedReads(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	// write two bytes at $2000
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0xab)
	p.WriteRegister(0x2007, 0xcd)

	// rewind and read back. the first read returns the stale buffer
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.ReadRegister(0x2007)
	test.Equate(t, p.ReadRegister(0x2007), 0xab)
	test.Equate(t, p.ReadRegister(0x2007), 0xcd)
}

func TestDataPortIncrement32(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	// increment of 32 walks down a nametable column
	p.WriteRegister(0x2000, 0x04)
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x11)
	p.WriteRegister(0x2007, 0x22)

	p.WriteRegister(0x2000, 0x00)
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x20)
	p.ReadRegister(0x2007)
	test.Equate(t, p.ReadRegister(0x2007), 0x22)
}

func TestPaletteReadsAreImmediate(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	p.WriteRegister(0x2006, 0x3f)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x21)

	p.WriteRegister(0x2006, 0x3f)
	p.WriteRegister(0x2006, 0x00)
	test.Equate(t, p.ReadRegister(0x2007), 0x21)
}

func TestPaletteMirrors(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	// $3F10 mirrors $3F00
	p.WriteRegister(0x2006, 0x3f)
	p.WriteRegister(0x2006, 0x10)
	p.WriteRegister(0x2007, 0x33)

	p.WriteRegister(0x2006, 0x3f)
	p.WriteRegister(0x2006, 0x00)
	test.Equate(t, p.ReadRegister(0x2007), 0x33)
}

func TestStatusReadResetsWriteToggle(t *testing.T) {
	p := ppu.NewPPU(testCart(t))

	// half an address write, then a status read to reset the toggle
	p.WriteRegister(0x2006, 0x15)
	p.ReadRegister(0x2002)

	// a full address write now works as normal
	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.WriteRegister(0x2007, 0x77)

	p.WriteRegister(0x2006, 0x20)
	p.WriteRegister(0x2006, 0x00)
	p.ReadRegister(0x2007)
	test.Equate(t, p.ReadRegister(0x2007), 0x77)
}

func TestFrameParity(t *testing.T) {
	// with rendering disabled every frame is the full length
	p := ppu.NewPPU(testCart(t))
	for p.Frame < 1 {
		p.Step()
	}
	n := 0
	for p.Frame < 3 {
		p.Step()
		n++
	}
	test.Equate(t, n, 2*cyclesPerFrame)

	// with rendering enabled one cycle is dropped every other frame
	p = ppu.NewPPU(testCart(t))
	p.WriteRegister(0x2001, 0x08)
	for p.Frame < 1 {
		p.Step()
	}
	n = 0
	for p.Frame < 3 {
		p.Step()
		n++
	}
	test.Equate(t, n, 2*cyclesPerFrame-1)
}

func TestSpriteZeroHit(t *testing.T) {
	cart := testCart(t)
	p := ppu.NewPPU(cart)

	// make tile 0 fully opaque in the low bit plane
	for i := 0; i < 8; i++ {
		cart.Write(uint16(i), 0xff)
	}

	// sprite zero overlapping the background in the middle of the screen
	p.WriteRegister(0x2003, 0x00)
	p.WriteRegister(0x2004, 100) // y
	p.WriteRegister(0x2004, 0)   // tile
	p.WriteRegister(0x2004, 0)   // attributes
	p.WriteRegister(0x2004, 100) // x

	// background and sprites on, no left edge clipping
	p.WriteRegister(0x2001, 0x1e)

	for !(p.Scanline == 240 && p.Cycle == 0) {
		p.Step()
	}
	test.Equate(t, p.ReadRegister(0x2002)&0x40, 0x40)

	// the flag clears on the pre-render line
	for !(p.Scanline == 0 && p.Cycle == 0) {
		p.Step()
	}
	test.Equate(t, p.ReadRegister(0x2002)&0x40, 0x00)
}
