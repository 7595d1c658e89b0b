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

package nes

import (
	"testing"

	"github.com/hazyden/famicore/test"
)

func parityROM(t *testing.T) []byte {
	t.Helper()

	prg := make([]byte, 16384)
	prg[0x3ffc] = 0x00
	prg[0x3ffd] = 0x80

	rom := []byte{'N', 'E', 'S', 0x1a, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	rom = append(rom, prg...)
	rom = append(rom, make([]byte, 8192)...)
	return rom
}

// countStall counts the cycles the CPU spends stalled after a DMA transfer.
func countStall(t *testing.T, n *NES) int {
	t.Helper()

	stalled := 0
	for {
		cycles, err := n.CPU.Step()
		test.ExpectedSuccess(t, err)
		if cycles != 1 {
			break
		}
		stalled++
	}
	return stalled
}

func TestDMAStallParity(t *testing.T) {
	n := NewNES()
	test.ExpectedSuccess(t, n.AttachCartridge(parityROM(t)))

	// transfer started on an even cycle costs 513
	n.CPU.Cycles = 1000
	n.Mem.Write(0x4014, 0x02)
	n.serviceDMA()
	test.Equate(t, countStall(t, n), 513)

	// and on an odd cycle, 514
	n.CPU.Cycles = 1001
	n.Mem.Write(0x4014, 0x02)
	n.serviceDMA()
	test.Equate(t, countStall(t, n), 514)
}
