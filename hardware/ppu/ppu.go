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

// Package ppu implements the 2C02 picture processor.
//
// The PPU is stepped one cycle at a time, three cycles for every CPU cycle.
// A frame is 262 scanlines of 341 cycles, with the last cycle of the
// pre-render line skipped on odd frames when rendering is enabled. Scroll
// state lives in the v/t/x/w register set; background pixels flow through a
// 64 bit shift register holding two tiles worth of 4 bit palette indices.
//
// Output is a 256x240 framebuffer of RGBA bytes, double buffered and
// swapped when the vertical blank begins.
package ppu

import (
	"github.com/hazyden/famicore/hardware/cartridge"
)

// Screen dimensions.
const (
	HorizPixels = 256
	VertPixels  = 240
)

const (
	cyclesPerScanline = 341
	scanlinesPerFrame = 262
	vblankScanline    = 241
	preRenderScanline = 261
)

// PPU implements the 2C02.
type PPU struct {
	cart *cartridge.Cartridge

	Cycle    int
	Scanline int
	Frame    uint64

	// four nametables worth of VRAM. boards that do not wire the extra 2KB
	// never generate addresses beyond the first half
	vram        [4096]uint8
	paletteData [32]uint8
	oamData     [256]uint8

	front []uint8
	back  []uint8

	// last value written to any register, returned in the low bits of
	// PPUSTATUS reads
	register uint8

	// vblank/NMI state. the NMI line is sampled two cycles after the
	// condition that changes it
	nmiOccurred bool
	nmiOutput   bool
	nmiPrevious bool
	nmiDelay    uint8

	// loopy registers
	v uint16 // current VRAM address (15 bits)
	t uint16 // temporary VRAM address
	x uint8  // fine X scroll (3 bits)
	w uint8  // write toggle
	f uint8  // odd frame flag

	// background fetch pipeline
	nameTableByte      uint8
	attributeTableByte uint8
	lowTileByte        uint8
	highTileByte       uint8
	tileData           uint64

	// sprites selected for the current scanline
	spriteCount      int
	spritePatterns   [8]uint32
	spritePositions  [8]uint8
	spritePriorities [8]uint8
	spriteIndexes    [8]uint8

	// raw register values, kept for serialisation
	ctrl uint8
	mask uint8

	// PPUCTRL
	flagNameTable       uint8
	flagIncrement       uint8
	flagSpriteTable     uint8
	flagBackgroundTable uint8
	flagSpriteSize      uint8
	flagMasterSlave     uint8

	// PPUMASK
	grayscale          bool
	flagShowLeftBack   bool
	flagShowLeftSprite bool
	flagShowBack       bool
	flagShowSprite     bool
	emphasis           uint8

	// PPUSTATUS
	flagSpriteOverflow uint8
	flagSpriteZeroHit  uint8

	// OAMADDR
	oamAddress uint8

	// PPUDATA read buffer
	bufferedData uint8
}

// NewPPU is the preferred method of initialisation for the PPU type. The
// cartridge provides CHR data and nametable mirroring.
func NewPPU(cart *cartridge.Cartridge) *PPU {
	p := &PPU{
		cart:  cart,
		front: make([]uint8, HorizPixels*VertPixels*4),
		back:  make([]uint8, HorizPixels*VertPixels*4),
	}
	p.Reset()
	return p
}

// Reset the PPU to its power-on state.
func (p *PPU) Reset() {
	p.Cycle = 340
	p.Scanline = 240
	p.Frame = 0
	p.writeControl(0)
	p.writeMask(0)
	p.oamAddress = 0
}

// Framebuffer returns the most recently completed frame as RGBA bytes. The
// returned slice is reused; callers wanting to keep a frame must copy it.
func (p *PPU) Framebuffer() []uint8 {
	return p.front
}

// internal PPU address space.
func (p *PPU) readMem(addr uint16) uint8 {
	addr %= 0x4000
	switch {
	case addr < 0x2000:
		return p.cart.Read(addr)
	case addr < 0x3f00:
		return p.vram[p.cart.NametableAddress(addr)]
	default:
		return p.readPalette(addr % 32)
	}
}

func (p *PPU) writeMem(addr uint16, data uint8) {
	addr %= 0x4000
	switch {
	case addr < 0x2000:
		p.cart.Write(addr, data)
	case addr < 0x3f00:
		p.vram[p.cart.NametableAddress(addr)] = data
	default:
		p.writePalette(addr%32, data)
	}
}

// ReadRegister handles CPU reads of the PPU's register file ($2000-$2007
// and their mirrors). The address must already be reduced to the $2000
// page.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0x2002:
		return p.readStatus()
	case 0x2004:
		return p.readOAMData()
	case 0x2007:
		return p.readData()
	}
	return p.register
}

// WriteRegister handles CPU writes to the PPU's register file.
func (p *PPU) WriteRegister(addr uint16, data uint8) {
	p.register = data
	switch addr {
	case 0x2000:
		p.writeControl(data)
	case 0x2001:
		p.writeMask(data)
	case 0x2003:
		p.oamAddress = data
	case 0x2004:
		p.writeOAMData(data)
	case 0x2005:
		p.writeScroll(data)
	case 0x2006:
		p.writeAddress(data)
	case 0x2007:
		p.writeData(data)
	}
}

// WriteOAM stores one byte at the current OAM address, advancing the
// address. Used by the OAM DMA machinery as well as the $2004 register.
func (p *PPU) WriteOAM(data uint8) {
	p.oamData[p.oamAddress] = data
	p.oamAddress++
}

func (p *PPU) writeControl(data uint8) {
	p.ctrl = data
	p.flagNameTable = data & 0x03
	p.flagIncrement = (data >> 2) & 1
	p.flagSpriteTable = (data >> 3) & 1
	p.flagBackgroundTable = (data >> 4) & 1
	p.flagSpriteSize = (data >> 5) & 1
	p.flagMasterSlave = (data >> 6) & 1

	p.nmiOutput = data&0x80 == 0x80
	p.nmiChange()

	// t: ....BA.. ........ <- d: ......BA
	p.t = (p.t & 0xf3ff) | (uint16(data&0x03) << 10)
}

func (p *PPU) writeMask(data uint8) {
	p.mask = data
	p.grayscale = data&0x01 == 0x01
	p.flagShowLeftBack = data&0x02 == 0x02
	p.flagShowLeftSprite = data&0x04 == 0x04
	p.flagShowBack = data&0x08 == 0x08
	p.flagShowSprite = data&0x10 == 0x10
	p.emphasis = (data >> 5) & 0x07
}

func (p *PPU) readStatus() uint8 {
	result := p.register & 0x1f
	result |= p.flagSpriteOverflow << 5
	result |= p.flagSpriteZeroHit << 6
	if p.nmiOccurred {
		result |= 0x80
	}

	// reading the status register clears the vblank flag and the write
	// toggle
	p.nmiOccurred = false
	p.nmiChange()
	p.w = 0

	return result
}

func (p *PPU) readOAMData() uint8 {
	data := p.oamData[p.oamAddress]

	// the three unimplemented bits of the attribute byte read back as zero
	if p.oamAddress&0x03 == 0x02 {
		data &= 0xe3
	}
	return data
}

func (p *PPU) writeOAMData(data uint8) {
	p.WriteOAM(data)
}

func (p *PPU) writeScroll(data uint8) {
	if p.w == 0 {
		// t: ....... ...ABCDE <- d: ABCDE...
		// x:              FGH <- d: .....FGH
		p.t = (p.t & 0xffe0) | (uint16(data) >> 3)
		p.x = data & 0x07
		p.w = 1
	} else {
		// t: .CBA..HG FED..... <- d: HGFEDCBA
		p.t = (p.t & 0x8fff) | (uint16(data&0x07) << 12)
		p.t = (p.t & 0xfc1f) | (uint16(data&0xf8) << 2)
		p.w = 0
	}
}

func (p *PPU) writeAddress(data uint8) {
	if p.w == 0 {
		// t: ..FEDCBA ........ <- d: ..FEDCBA
		p.t = (p.t & 0x80ff) | (uint16(data&0x3f) << 8)
		p.w = 1
	} else {
		// t: ........ ABCDEFGH <- d: ABCDEFGH
		// v                    <- t
		p.t = (p.t & 0xff00) | uint16(data)
		p.v = p.t
		p.w = 0
	}
}

func (p *PPU) readData() uint8 {
	value := p.readMem(p.v)

	// reads below the palette go through a one byte buffer. palette reads
	// are immediate but refill the buffer from the nametable underneath
	if p.v%0x4000 < 0x3f00 {
		buffered := p.bufferedData
		p.bufferedData = value
		value = buffered
	} else {
		p.bufferedData = p.readMem(p.v - 0x1000)
	}

	if p.flagIncrement == 0 {
		p.v++
	} else {
		p.v += 32
	}
	return value
}

func (p *PPU) writeData(data uint8) {
	p.writeMem(p.v, data)
	if p.flagIncrement == 0 {
		p.v++
	} else {
		p.v += 32
	}
}

// scroll register manipulation, straight from the loopy model.

func (p *PPU) incrementX() {
	if p.v&0x001f == 31 {
		p.v &= 0xffe0
		p.v ^= 0x0400 // switch horizontal nametable
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
	} else {
		p.v &= 0x8fff
		y := (p.v & 0x03e0) >> 5
		switch y {
		case 29:
			y = 0
			p.v ^= 0x0800 // switch vertical nametable
		case 31:
			y = 0
		default:
			y++
		}
		p.v = (p.v & 0xfc1f) | (y << 5)
	}
}

func (p *PPU) copyX() {
	// v: ....A.. ...BCDEF <- t: ....A.. ...BCDEF
	p.v = (p.v & 0xfbe0) | (p.t & 0x041f)
}

func (p *PPU) copyY() {
	// v: GHIA.BC DEF..... <- t: GHIA.BC DEF.....
	p.v = (p.v & 0x841f) | (p.t & 0x7be0)
}

// background fetch pipeline.

func (p *PPU) fetchNameTableByte() {
	p.nameTableByte = p.readMem(0x2000 | (p.v & 0x0fff))
}

func (p *PPU) fetchAttributeTableByte() {
	v := p.v
	addr := 0x23c0 | (v & 0x0c00) | ((v >> 4) & 0x38) | ((v >> 2) & 0x07)
	shift := ((v >> 4) & 4) | (v & 2)
	p.attributeTableByte = ((p.readMem(addr) >> shift) & 3) << 2
}

func (p *PPU) fetchLowTileByte() {
	fineY := (p.v >> 12) & 7
	addr := 0x1000*uint16(p.flagBackgroundTable) + uint16(p.nameTableByte)*16 + fineY
	p.lowTileByte = p.readMem(addr)
}

func (p *PPU) fetchHighTileByte() {
	fineY := (p.v >> 12) & 7
	addr := 0x1000*uint16(p.flagBackgroundTable) + uint16(p.nameTableByte)*16 + fineY
	p.highTileByte = p.readMem(addr + 8)
}

func (p *PPU) storeTileData() {
	var data uint32
	for i := 0; i < 8; i++ {
		a := p.attributeTableByte
		p1 := (p.lowTileByte & 0x80) >> 7
		p2 := (p.highTileByte & 0x80) >> 6
		p.lowTileByte <<= 1
		p.highTileByte <<= 1
		data <<= 4
		data |= uint32(a | p1 | p2)
	}
	p.tileData |= uint64(data)
}

func (p *PPU) backgroundPixel() uint8 {
	if !p.flagShowBack {
		return 0
	}
	data := uint32(p.tileData>>32) >> ((7 - p.x) * 4)
	return uint8(data & 0x0f)
}

// spritePixel returns the index into the sprite unit array and the 4 bit
// palette value of the first opaque sprite pixel at the current dot.
func (p *PPU) spritePixel() (int, uint8) {
	if !p.flagShowSprite {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := p.Cycle - 1 - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		color := uint8(p.spritePatterns[i] >> uint8((7-offset)*4) & 0x0f)
		if color%4 == 0 {
			continue
		}
		return i, color
	}
	return 0, 0
}

func (p *PPU) renderPixel() {
	x := p.Cycle - 1
	y := p.Scanline

	background := p.backgroundPixel()
	i, sprite := p.spritePixel()

	// left edge clipping
	if x < 8 && !p.flagShowLeftBack {
		background = 0
	}
	if x < 8 && !p.flagShowLeftSprite {
		sprite = 0
	}

	b := background%4 != 0
	s := sprite%4 != 0

	var color uint8
	switch {
	case !b && !s:
		color = 0
	case !b && s:
		color = sprite | 0x10
	case b && !s:
		color = background
	default:
		// sprite zero hit happens whenever an opaque sprite zero pixel
		// overlaps an opaque background pixel, regardless of priority
		if p.spriteIndexes[i] == 0 && x < 255 {
			p.flagSpriteZeroHit = 1
		}
		if p.spritePriorities[i] == 0 {
			color = sprite | 0x10
		} else {
			color = background
		}
	}

	r, g, bl := p.colorRGB(p.readPalette(uint16(color) % 32))

	o := (y*HorizPixels + x) * 4
	p.back[o] = r
	p.back[o+1] = g
	p.back[o+2] = bl
	p.back[o+3] = 0xff
}

// evaluateSprites selects up to eight sprites for the next scanline.
func (p *PPU) evaluateSprites() {
	h := 8
	if p.flagSpriteSize != 0 {
		h = 16
	}

	count := 0
	for i := 0; i < 64; i++ {
		y := p.oamData[i*4+0]
		a := p.oamData[i*4+2]
		x := p.oamData[i*4+3]
		row := p.Scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		if count < 8 {
			p.spritePatterns[count] = p.fetchSpritePattern(i, row)
			p.spritePositions[count] = x
			p.spritePriorities[count] = (a >> 5) & 1
			p.spriteIndexes[count] = uint8(i)
		}
		count++
	}
	if count > 8 {
		count = 8
		p.flagSpriteOverflow = 1
	}
	p.spriteCount = count
}

// fetchSpritePattern assembles a full row of a sprite into eight 4 bit
// palette values, with horizontal and vertical flips applied.
func (p *PPU) fetchSpritePattern(i, row int) uint32 {
	tile := p.oamData[i*4+1]
	attribute := p.oamData[i*4+2]

	var addr uint16
	if p.flagSpriteSize == 0 {
		if attribute&0x80 == 0x80 {
			row = 7 - row
		}
		addr = 0x1000*uint16(p.flagSpriteTable) + uint16(tile)*16 + uint16(row)
	} else {
		// 8x16 sprites take their pattern table from bit 0 of the tile
		// number
		if attribute&0x80 == 0x80 {
			row = 15 - row
		}
		table := tile & 1
		tile &= 0xfe
		if row > 7 {
			tile++
			row -= 8
		}
		addr = 0x1000*uint16(table) + uint16(tile)*16 + uint16(row)
	}

	lowTileByte := p.readMem(addr)
	highTileByte := p.readMem(addr + 8)
	high := (attribute & 3) << 2

	var data uint32
	for j := 0; j < 8; j++ {
		var p1, p2 uint8
		if attribute&0x40 == 0x40 {
			p1 = lowTileByte & 1
			p2 = (highTileByte & 1) << 1
			lowTileByte >>= 1
			highTileByte >>= 1
		} else {
			p1 = (lowTileByte & 0x80) >> 7
			p2 = (highTileByte & 0x80) >> 6
			lowTileByte <<= 1
			highTileByte <<= 1
		}
		data <<= 4
		data |= uint32(high | p1 | p2)
	}
	return data
}

func (p *PPU) setVerticalBlank() {
	p.front, p.back = p.back, p.front
	p.nmiOccurred = true
	p.nmiChange()
}

func (p *PPU) clearVerticalBlank() {
	p.nmiOccurred = false
	p.nmiChange()
}

// nmiChange watches for a rising edge on the internal NMI condition. The
// CPU sees the edge two PPU cycles later.
func (p *PPU) nmiChange() {
	nmi := p.nmiOutput && p.nmiOccurred
	if nmi && !p.nmiPrevious {
		p.nmiDelay = 2
	}
	p.nmiPrevious = nmi
}

// tick advances the cycle/scanline counters, skipping the last cycle of the
// pre-render line on odd frames when rendering is enabled. It reports
// whether the NMI edge has reached the CPU on this cycle.
func (p *PPU) tick() bool {
	nmi := false
	if p.nmiDelay > 0 {
		p.nmiDelay--
		if p.nmiDelay == 0 && p.nmiOutput && p.nmiOccurred {
			nmi = true
		}
	}

	if p.flagShowBack || p.flagShowSprite {
		if p.f == 1 && p.Scanline == preRenderScanline && p.Cycle == cyclesPerScanline-2 {
			p.Cycle = 0
			p.Scanline = 0
			p.Frame++
			p.f ^= 1
			return nmi
		}
	}

	p.Cycle++
	if p.Cycle > cyclesPerScanline-1 {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline > preRenderScanline {
			p.Scanline = 0
			p.Frame++
			p.f ^= 1
		}
	}

	return nmi
}

// Step runs the PPU for one cycle. The return value is true when an NMI
// should be delivered to the CPU.
func (p *PPU) Step() bool {
	nmi := p.tick()

	renderEnable := p.flagShowBack || p.flagShowSprite

	visibleLine := p.Scanline < VertPixels
	preLine := p.Scanline == preRenderScanline
	renderLine := visibleLine || preLine

	visibleCycle := p.Cycle >= 1 && p.Cycle <= 256
	preFetchCycle := p.Cycle >= 321 && p.Cycle <= 336
	fetchCycle := preFetchCycle || visibleCycle

	if renderEnable {
		if visibleLine && visibleCycle {
			p.renderPixel()
		}

		if renderLine && fetchCycle {
			p.tileData <<= 4
			switch p.Cycle % 8 {
			case 1:
				p.fetchNameTableByte()
			case 3:
				p.fetchAttributeTableByte()
			case 5:
				p.fetchLowTileByte()
			case 7:
				p.fetchHighTileByte()
			case 0:
				p.storeTileData()
			}
		}

		if preLine && p.Cycle >= 280 && p.Cycle <= 304 {
			p.copyY()
		}

		if renderLine {
			if fetchCycle && p.Cycle%8 == 0 {
				p.incrementX()
			}
			if p.Cycle == 256 {
				p.incrementY()
			}
			if p.Cycle == 257 {
				p.copyX()
			}
		}

		if p.Cycle == 257 {
			if visibleLine {
				p.evaluateSprites()
			} else {
				p.spriteCount = 0
			}
		}
	}

	if p.Scanline == vblankScanline && p.Cycle == 1 {
		p.setVerticalBlank()
	}

	if preLine && p.Cycle == 1 {
		p.clearVerticalBlank()
		p.flagSpriteZeroHit = 0
		p.flagSpriteOverflow = 0
	}

	return nmi
}
