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

// Package memory implements the CPU's view of the address space: 2KB of
// work RAM with its mirrors, the PPU and APU register windows, the
// controller ports, the OAM-DMA trigger and the cartridge space.
package memory

import (
	"io"

	"github.com/hazyden/famicore/hardware/apu"
	"github.com/hazyden/famicore/hardware/cartridge"
	"github.com/hazyden/famicore/hardware/controllers"
	"github.com/hazyden/famicore/hardware/ppu"
)

// RAMSize is the amount of work RAM in the console. The 8KB window at the
// bottom of the address space mirrors it four times.
const RAMSize = 2048

// Bus dispatches CPU reads and writes to the attached components. It
// satisfies the CPU's bus interface.
type Bus struct {
	ram  [RAMSize]uint8
	ppu  *ppu.PPU
	apu  *apu.APU
	cart *cartridge.Cartridge
	pads [2]*controllers.Joypad

	// a write to $4014 latches the source page here. the console services
	// the transfer between CPU instructions
	dmaPage    uint8
	dmaPending bool
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, pad1 *controllers.Joypad, pad2 *controllers.Joypad) *Bus {
	return &Bus{
		ppu:  p,
		apu:  a,
		cart: cart,
		pads: [2]*controllers.Joypad{pad1, pad2},
	}
}

// Read implements the CPU bus interface.
func (bus *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return bus.ram[addr%RAMSize]
	case addr < 0x4000:
		return bus.ppu.ReadRegister(0x2000 + addr%8)
	case addr == 0x4015:
		return bus.apu.ReadStatus()
	case addr == 0x4016:
		return bus.pads[0].Read()
	case addr == 0x4017:
		return bus.pads[1].Read()
	case addr >= 0x4020:
		return bus.cart.Read(addr)
	}

	// the remaining registers are write-only
	return 0
}

// Write implements the CPU bus interface.
func (bus *Bus) Write(addr uint16, data uint8) {
	switch {
	case addr < 0x2000:
		bus.ram[addr%RAMSize] = data
	case addr < 0x4000:
		bus.ppu.WriteRegister(0x2000+addr%8, data)
	case addr == 0x4014:
		bus.dmaPage = data
		bus.dmaPending = true
	case addr == 0x4016:
		bus.pads[0].Strobe(data)
		bus.pads[1].Strobe(data)
	case addr <= 0x4013 || addr == 0x4015 || addr == 0x4017:
		bus.apu.WriteRegister(addr, data)
	case addr >= 0x4020:
		bus.cart.Write(addr, data)
	}
}

// DMAPending indicates whether a write to $4014 is waiting to be serviced.
func (bus *Bus) DMAPending() bool {
	return bus.dmaPending
}

// DMAPage returns the latched source page and clears the pending flag.
func (bus *Bus) DMAPage() uint8 {
	bus.dmaPending = false
	return bus.dmaPage
}

// Snapshot writes the contents of work RAM and the DMA latch.
func (bus *Bus) Snapshot(w io.Writer) error {
	if _, err := w.Write(bus.ram[:]); err != nil {
		return err
	}

	var pending uint8
	if bus.dmaPending {
		pending = 1
	}
	_, err := w.Write([]uint8{bus.dmaPage, pending})
	return err
}

// Restore reads back the state written by Snapshot.
func (bus *Bus) Restore(r io.Reader) error {
	if _, err := io.ReadFull(r, bus.ram[:]); err != nil {
		return err
	}

	var latch [2]uint8
	if _, err := io.ReadFull(r, latch[:]); err != nil {
		return err
	}
	bus.dmaPage = latch[0]
	bus.dmaPending = latch[1] == 1

	return nil
}
