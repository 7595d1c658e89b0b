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

// Package cartridge handles the parsing of iNES files and the mapping of
// cartridge addresses to the PRG and CHR data they contain.
//
// The cartridge responds to two address ranges: CPU addresses from $6000 to
// $FFFF and PPU addresses from $0000 to $1FFF. How those addresses map onto
// the ROM data is the business of the mapper the cartridge was built with.
// Mappers 0 (NROM), 1 (MMC1), 2 (UxROM), 3 (CNROM) and 4 (MMC3) are
// supported, covering the majority of the commercial library.
//
// Nametable mirroring also belongs to the cartridge because MMC1 and MMC3
// reroute it at runtime. The PPU asks the cartridge to translate nametable
// addresses into its VRAM with the NametableAddress() function.
package cartridge

import (
	"io"

	"github.com/hazyden/famicore/curated"
	"github.com/hazyden/famicore/logger"
)

// error patterns returned by NewCartridge.
const (
	NotEnoughBytes    = "cartridge: not enough bytes in file"
	InvalidMagic      = "cartridge: not an iNES file"
	UnsupportedMapper = "cartridge: unsupported mapper (%d)"
)

// Mirroring is the nametable mirroring arrangement currently in force.
type Mirroring int

// List of mirroring arrangements. Horizontal and vertical are the two
// solder-pad configurations; the single screen and four screen arrangements
// are imposed by mappers and by the four-screen bit in the iNES header.
const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingle0
	MirrorSingle1
	MirrorFourScreen
)

func (m Mirroring) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingle0:
		return "single screen (lower)"
	case MirrorSingle1:
		return "single screen (upper)"
	case MirrorFourScreen:
		return "four screen"
	}
	return "unknown"
}

// which quarter of PPU VRAM each of the four nametable slots resolves to,
// per mirroring arrangement.
var mirrorLookup = [5][4]uint16{
	MirrorHorizontal: {0, 0, 1, 1},
	MirrorVertical:   {0, 1, 0, 1},
	MirrorSingle0:    {0, 0, 0, 0},
	MirrorSingle1:    {1, 1, 1, 1},
	MirrorFourScreen: {0, 1, 2, 3},
}

// mapper is the banking hardware on the cartridge board. Read and Write
// cover both CPU ($6000-$FFFF) and PPU ($0000-$1FFF) address ranges; the
// two ranges do not overlap so a single pair of functions is enough.
type mapper interface {
	read(addr uint16) uint8
	write(addr uint16, data uint8)
	mirroring() Mirroring

	// serialisation of mapper register state
	snapshot(w io.Writer) error
	restore(r io.Reader) error
}

// Cartridge is an iNES file attached to the console.
type Cartridge struct {
	PRG  []uint8
	CHR  []uint8
	SRAM []uint8

	MapperID int
	Battery  bool

	// true when the board carries CHR RAM rather than CHR ROM
	chrRAM bool

	mapper mapper
}

// size of the iNES header.
const headerSize = 16

// size of the trainer block, present when bit 2 of flags 6 is set. the
// trainer itself is of no use to us and is skipped.
const trainerSize = 512

// NewCartridge parses an iNES file held in memory. The file is validated
// fully before any allocation happens; an error means no cartridge.
func NewCartridge(data []byte) (*Cartridge, error) {
	if len(data) < headerSize {
		return nil, curated.Errorf(NotEnoughBytes)
	}

	// "NES" followed by the MS-DOS end-of-file character
	if data[0] != 'N' || data[1] != 'E' || data[2] != 'S' || data[3] != 0x1a {
		return nil, curated.Errorf(InvalidMagic)
	}

	prgSize := int(data[4]) * 16384
	chrSize := int(data[5]) * 8192
	flags6 := data[6]
	flags7 := data[7]

	mapperID := int(flags6>>4) | int(flags7&0xf0)

	var mirror Mirroring
	if flags6&0x08 == 0x08 {
		mirror = MirrorFourScreen
	} else if flags6&0x01 == 0x01 {
		mirror = MirrorVertical
	} else {
		mirror = MirrorHorizontal
	}

	offset := headerSize
	if flags6&0x04 == 0x04 {
		offset += trainerSize
	}

	if len(data) < offset+prgSize+chrSize {
		return nil, curated.Errorf(NotEnoughBytes)
	}

	cart := &Cartridge{
		MapperID: mapperID,
		Battery:  flags6&0x02 == 0x02,
		SRAM:     make([]uint8, 8192),
	}

	cart.PRG = make([]uint8, prgSize)
	copy(cart.PRG, data[offset:offset+prgSize])
	offset += prgSize

	if chrSize == 0 {
		// a CHR ROM count of zero means the board uses CHR RAM
		cart.CHR = make([]uint8, 8192)
		cart.chrRAM = true
	} else {
		cart.CHR = make([]uint8, chrSize)
		copy(cart.CHR, data[offset:offset+chrSize])
	}

	switch mapperID {
	case 0:
		cart.mapper = newNROM(cart, mirror)
	case 1:
		cart.mapper = newMMC1(cart, mirror)
	case 2:
		cart.mapper = newUxROM(cart, mirror)
	case 3:
		cart.mapper = newCNROM(cart, mirror)
	case 4:
		cart.mapper = newMMC3(cart, mirror)
	default:
		return nil, curated.Errorf(UnsupportedMapper, mapperID)
	}

	logger.Logf("cartridge", "mapper %d, %dKB PRG, %dKB CHR, %s mirroring",
		mapperID, prgSize/1024, len(cart.CHR)/1024, cart.Mirroring())

	return cart, nil
}

// Read from the cartridge. Valid for CPU addresses $6000-$FFFF and PPU
// addresses $0000-$1FFF.
func (cart *Cartridge) Read(addr uint16) uint8 {
	return cart.mapper.read(addr)
}

// Write to the cartridge. Most writes land in mapper registers or CHR/PRG
// RAM; writes to ROM areas are ignored by the individual mappers.
func (cart *Cartridge) Write(addr uint16, data uint8) {
	cart.mapper.write(addr, data)
}

// Mirroring returns the nametable arrangement currently in force. For MMC1
// and MMC3 boards this changes at runtime.
func (cart *Cartridge) Mirroring() Mirroring {
	return cart.mapper.mirroring()
}

// NametableAddress translates a PPU nametable address ($2000-$3EFF) into an
// offset inside the PPU's VRAM, honouring the current mirroring.
func (cart *Cartridge) NametableAddress(addr uint16) uint16 {
	addr = (addr - 0x2000) % 0x1000
	table := addr / 0x0400
	offset := addr % 0x0400
	return mirrorLookup[cart.Mirroring()][table]*0x0400 + offset
}

// Snapshot writes the cartridge's mutable state: SRAM, CHR RAM if the board
// has it, and the mapper registers.
func (cart *Cartridge) Snapshot(w io.Writer) error {
	if _, err := w.Write(cart.SRAM); err != nil {
		return err
	}
	if cart.chrRAM {
		if _, err := w.Write(cart.CHR); err != nil {
			return err
		}
	}
	return cart.mapper.snapshot(w)
}

// Restore reads back the state written by Snapshot.
func (cart *Cartridge) Restore(r io.Reader) error {
	if _, err := io.ReadFull(r, cart.SRAM); err != nil {
		return err
	}
	if cart.chrRAM {
		if _, err := io.ReadFull(r, cart.CHR); err != nil {
			return err
		}
	}
	return cart.mapper.restore(r)
}
