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

package cpu

import (
	"encoding/binary"
	"io"
)

type snapshotState struct {
	PC     uint16
	A      uint8
	X      uint8
	Y      uint8
	SP     uint8
	Status uint8
	Cycles uint64
	NMI    uint8
	IRQ    uint8
	Stall  int32
}

// Snapshot writes the CPU's registers, interrupt lines and cycle count.
func (mc *CPU) Snapshot(w io.Writer) error {
	st := snapshotState{
		PC:     mc.PC,
		A:      mc.A,
		X:      mc.X,
		Y:      mc.Y,
		SP:     mc.SP,
		Status: mc.Status.Value(),
		Cycles: mc.Cycles,
		Stall:  int32(mc.stall),
	}
	if mc.nmi {
		st.NMI = 1
	}
	if mc.irq {
		st.IRQ = 1
	}
	return binary.Write(w, binary.BigEndian, &st)
}

// Restore reads back the state written by Snapshot.
func (mc *CPU) Restore(r io.Reader) error {
	var st snapshotState
	if err := binary.Read(r, binary.BigEndian, &st); err != nil {
		return err
	}

	mc.PC = st.PC
	mc.A = st.A
	mc.X = st.X
	mc.Y = st.Y
	mc.SP = st.SP
	mc.Status.FromValue(st.Status)
	mc.Cycles = st.Cycles
	mc.nmi = st.NMI == 1
	mc.irq = st.IRQ == 1
	mc.stall = int(st.Stall)

	return nil
}
