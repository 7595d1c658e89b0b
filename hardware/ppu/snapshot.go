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

import (
	"encoding/binary"
	"io"
)

// serialisable core of the PPU. the background fetch pipeline and the
// sprite units for the in-flight scanline are deliberately absent: a state
// restored mid-frame replays the pipeline from empty shift registers and
// converges within two tile fetches.
type snapshotState struct {
	Cycle    int32
	Scanline int32
	Frame    uint64

	Register uint8

	NMIOccurred uint8
	NMIOutput   uint8
	NMIPrevious uint8
	NMIDelay    uint8

	V uint16
	T uint16
	X uint8
	W uint8
	F uint8

	Ctrl uint8
	Mask uint8

	SpriteOverflow uint8
	SpriteZeroHit  uint8

	OAMAddress   uint8
	BufferedData uint8
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Snapshot writes the PPU's serialisable state: VRAM, palette RAM, OAM and
// the register/counter core.
func (p *PPU) Snapshot(w io.Writer) error {
	if _, err := w.Write(p.vram[:]); err != nil {
		return err
	}
	if _, err := w.Write(p.paletteData[:]); err != nil {
		return err
	}
	if _, err := w.Write(p.oamData[:]); err != nil {
		return err
	}

	st := snapshotState{
		Cycle:          int32(p.Cycle),
		Scanline:       int32(p.Scanline),
		Frame:          p.Frame,
		Register:       p.register,
		NMIOccurred:    boolByte(p.nmiOccurred),
		NMIOutput:      boolByte(p.nmiOutput),
		NMIPrevious:    boolByte(p.nmiPrevious),
		NMIDelay:       p.nmiDelay,
		V:              p.v,
		T:              p.t,
		X:              p.x,
		W:              p.w,
		F:              p.f,
		Ctrl:           p.ctrl,
		Mask:           p.mask,
		SpriteOverflow: p.flagSpriteOverflow,
		SpriteZeroHit:  p.flagSpriteZeroHit,
		OAMAddress:     p.oamAddress,
		BufferedData:   p.bufferedData,
	}
	return binary.Write(w, binary.BigEndian, &st)
}

// Restore reads back the state written by Snapshot.
func (p *PPU) Restore(r io.Reader) error {
	if _, err := io.ReadFull(r, p.vram[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, p.paletteData[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, p.oamData[:]); err != nil {
		return err
	}

	var st snapshotState
	if err := binary.Read(r, binary.BigEndian, &st); err != nil {
		return err
	}

	p.Cycle = int(st.Cycle)
	p.Scanline = int(st.Scanline)
	p.Frame = st.Frame
	p.register = st.Register

	// writeControl() touches t and the NMI edge detector so the raw
	// registers go first and the internal state after
	p.writeControl(st.Ctrl)
	p.writeMask(st.Mask)

	p.nmiOccurred = st.NMIOccurred == 1
	p.nmiOutput = st.NMIOutput == 1
	p.nmiPrevious = st.NMIPrevious == 1
	p.nmiDelay = st.NMIDelay

	p.v = st.V
	p.t = st.T
	p.x = st.X
	p.w = st.W
	p.f = st.F

	p.flagSpriteOverflow = st.SpriteOverflow
	p.flagSpriteZeroHit = st.SpriteZeroHit
	p.oamAddress = st.OAMAddress
	p.bufferedData = st.BufferedData

	// the fetch pipeline is not serialised. start it empty
	p.tileData = 0
	p.spriteCount = 0

	return nil
}
