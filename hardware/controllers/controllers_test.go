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

package controllers_test

import (
	"testing"

	"github.com/hazyden/famicore/hardware/controllers"
	"github.com/hazyden/famicore/test"
)

func TestJoypadShiftRegister(t *testing.T) {
	jp := controllers.NewJoypad()
	jp.Set(controllers.ButtonA | controllers.ButtonStart)

	// strobe latches the buttons
	jp.Strobe(1)
	jp.Strobe(0)

	// A, B, Select, Start, Up, Down, Left, Right
	expected := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for _, e := range expected {
		test.Equate(t, jp.Read(), e)
	}

	// after eight reads a standard controller reports 1
	test.Equate(t, jp.Read(), 1)
	test.Equate(t, jp.Read(), 1)
}

func TestJoypadStrobeHigh(t *testing.T) {
	jp := controllers.NewJoypad()
	jp.Strobe(1)

	// while the strobe is high every read reports the A button
	jp.Set(controllers.ButtonA)
	test.Equate(t, jp.Read(), 1)
	test.Equate(t, jp.Read(), 1)

	jp.Set(0)
	test.Equate(t, jp.Read(), 0)
}
