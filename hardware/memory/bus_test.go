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

package memory_test

import (
	"testing"

	"github.com/hazyden/famicore/hardware/apu"
	"github.com/hazyden/famicore/hardware/cartridge"
	"github.com/hazyden/famicore/hardware/controllers"
	"github.com/hazyden/famicore/hardware/memory"
	"github.com/hazyden/famicore/hardware/ppu"
	"github.com/hazyden/famicore/test"
)

func testBus(t *testing.T) *memory.Bus {
	t.Helper()

	rom := []byte{'N', 'E', 'S', 0x1a, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	rom = append(rom, make([]byte, 16384+8192)...)

	cart, err := cartridge.NewCartridge(rom)
	test.ExpectedSuccess(t, err)

	return memory.NewBus(cart, ppu.NewPPU(cart), apu.NewAPU(),
		controllers.NewJoypad(), controllers.NewJoypad())
}

func TestRAMMirroring(t *testing.T) {
	bus := testBus(t)

	bus.Write(0x0042, 0xab)
	test.Equate(t, bus.Read(0x0042), 0xab)
	test.Equate(t, bus.Read(0x0842), 0xab)
	test.Equate(t, bus.Read(0x1042), 0xab)
	test.Equate(t, bus.Read(0x1842), 0xab)

	// writes through a mirror land in the same cell
	bus.Write(0x1fff, 0x55)
	test.Equate(t, bus.Read(0x07ff), 0x55)
}

func TestPPURegisterMirroring(t *testing.T) {
	bus := testBus(t)

	// $2005/$2006 share the write toggle so a half write through a mirror
	// of $2006 is completed by a write to another mirror
	bus.Write(0x2006, 0x3f)
	bus.Write(0x3ffe, 0x00)
	bus.Write(0x200f, 0x2a)

	bus.Write(0x2006, 0x3f)
	bus.Write(0x2006, 0x00)
	test.Equate(t, bus.Read(0x2007), 0x2a)
}

func TestDMALatch(t *testing.T) {
	bus := testBus(t)

	test.ExpectedFailure(t, bus.DMAPending())

	bus.Write(0x4014, 0x02)
	test.ExpectedSuccess(t, bus.DMAPending())
	test.Equate(t, bus.DMAPage(), 0x02)

	// reading the page clears the pending flag
	test.ExpectedFailure(t, bus.DMAPending())
}

func TestControllerPorts(t *testing.T) {
	bus := testBus(t)

	// with nothing pressed both ports report eight zero bits
	bus.Write(0x4016, 1)
	bus.Write(0x4016, 0)
	test.Equate(t, bus.Read(0x4016), 0)
	test.Equate(t, bus.Read(0x4017), 0)
}

func TestWriteOnlyRegisters(t *testing.T) {
	bus := testBus(t)

	test.Equate(t, bus.Read(0x4000), 0)
	test.Equate(t, bus.Read(0x4014), 0)
}
