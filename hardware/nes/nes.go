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

// Package nes assembles the hardware components into a console and drives
// them in lockstep: three PPU cycles and one APU cycle for every CPU cycle.
// The stepping loop is single threaded and strictly sequential so that two
// runs of the same ROM with the same input produce identical output.
package nes

import (
	"github.com/hazyden/famicore/curated"
	"github.com/hazyden/famicore/hardware/apu"
	"github.com/hazyden/famicore/hardware/cartridge"
	"github.com/hazyden/famicore/hardware/controllers"
	"github.com/hazyden/famicore/hardware/cpu"
	"github.com/hazyden/famicore/hardware/memory"
	"github.com/hazyden/famicore/hardware/ppu"
)

// error patterns for the nes package.
const (
	NoCartridge = "nes: no cartridge attached"
)

// FramesPerSecond is the NTSC frame rate.
const FramesPerSecond = 60.0988

// CyclesPerFrame is the number of CPU cycles in one NTSC frame. The true
// figure is fractional; the spill-over carries into the next frame because
// RunFrame only ever executes whole instructions.
const CyclesPerFrame = 29780

// NES is the console itself. The hardware fields are exported for the
// benefit of tools that want to inspect the machine between frames.
type NES struct {
	CPU  *cpu.CPU
	PPU  *ppu.PPU
	APU  *apu.APU
	Mem  *memory.Bus
	Cart *cartridge.Cartridge

	pads [2]*controllers.Joypad
}

// NewNES is the preferred method of initialisation for the NES type. The
// returned console has no cartridge and cannot run a frame until
// AttachCartridge has succeeded.
func NewNES() *NES {
	return &NES{
		APU:  apu.NewAPU(),
		pads: [2]*controllers.Joypad{controllers.NewJoypad(), controllers.NewJoypad()},
	}
}

// AttachCartridge parses the ROM bytes and wires the console around the
// resulting cartridge. The console is left in its reset state.
func (n *NES) AttachCartridge(rom []byte) error {
	cart, err := cartridge.NewCartridge(rom)
	if err != nil {
		return curated.Errorf("nes: %v", err)
	}

	n.Cart = cart
	n.PPU = ppu.NewPPU(cart)
	n.Mem = memory.NewBus(cart, n.PPU, n.APU, n.pads[0], n.pads[1])
	n.CPU = cpu.NewCPU(n.Mem)

	// the delta modulation channel fetches sample bytes over the bus
	n.APU.SetMemoryReader(n.Mem.Read)

	n.Reset()

	return nil
}

// Reset emulates the pressing of the console's reset switch.
func (n *NES) Reset() {
	if n.Cart == nil {
		return
	}

	n.CPU.Reset()
	n.PPU.Reset()
	n.APU.Reset()
	n.pads[0].Reset()
	n.pads[1].Reset()
}

// RunFrame runs the console for one frame's worth of CPU cycles. The CPU
// only ever executes whole instructions so a frame may end a few cycles
// over the line; the overshoot is absorbed by the next call.
func (n *NES) RunFrame() error {
	if n.Cart == nil {
		return curated.Errorf(NoCartridge)
	}

	frameCycles := 0
	for frameCycles < CyclesPerFrame {
		if n.Mem.DMAPending() {
			n.serviceDMA()
		}

		if n.APU.IRQ() {
			n.CPU.SignalIRQ()
		}

		cycles, err := n.CPU.Step()
		if err != nil {
			return curated.Errorf("nes: %v", err)
		}
		frameCycles += cycles

		for i := 0; i < cycles*3; i++ {
			if n.PPU.Step() {
				n.CPU.SignalNMI()
			}
		}
		for i := 0; i < cycles; i++ {
			n.APU.Step()
		}
	}

	return nil
}

// serviceDMA copies a 256 byte page into the PPU's OAM. The CPU is halted
// for 513 cycles, or 514 when the transfer begins on an odd cycle.
func (n *NES) serviceDMA() {
	base := uint16(n.Mem.DMAPage()) << 8
	for i := uint16(0); i < 256; i++ {
		n.PPU.WriteOAM(n.Mem.Read(base + i))
	}

	stall := 513
	if n.CPU.Cycles%2 == 1 {
		stall++
	}
	n.CPU.Stall(stall)
}

// Framebuffer returns the most recently completed frame as RGBA bytes. The
// slice is reused between frames; copy it to keep it.
func (n *NES) Framebuffer() []uint8 {
	if n.PPU == nil {
		return nil
	}
	return n.PPU.Framebuffer()
}

// ReadSamples drains the audio samples accumulated since the last call.
func (n *NES) ReadSamples() []float32 {
	return n.APU.ReadSamples()
}

// SetInput replaces the button state for the numbered player (0 or 1). The
// byte is latched by the pad's strobe in the usual way.
func (n *NES) SetInput(player int, buttons uint8) {
	if player < 0 || player >= len(n.pads) {
		return
	}
	n.pads[player].Set(buttons)
}
