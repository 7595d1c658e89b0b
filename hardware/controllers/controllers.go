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

// Package controllers implements the standard NES joypad. Button state is
// presented to the running program through an eight bit shift register,
// reloaded while the strobe line is high and clocked out one bit per read.
package controllers

// Button bit positions in the joypad byte.
const (
	ButtonA = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Joypad is a single standard controller.
type Joypad struct {
	buttons uint8
	shift   uint8
	strobe  bool
}

// NewJoypad is the preferred method of initialisation for the Joypad type.
func NewJoypad() *Joypad {
	return &Joypad{}
}

// Set the current button state. The value is latched into the shift
// register while the strobe line is high.
func (jp *Joypad) Set(buttons uint8) {
	jp.buttons = buttons
	if jp.strobe {
		jp.shift = jp.buttons
	}
}

// Strobe is the write side of the controller port. While bit 0 is high the
// shift register continually reloads from the current button state.
func (jp *Joypad) Strobe(data uint8) {
	jp.strobe = data&1 == 1
	if jp.strobe {
		jp.shift = jp.buttons
	}
}

// Read clocks one bit out of the shift register. After eight reads a
// standard controller returns 1 on every subsequent read.
func (jp *Joypad) Read() uint8 {
	if jp.strobe {
		// strobe held high: always report the A button
		return jp.buttons & 1
	}

	v := jp.shift & 1
	jp.shift = jp.shift>>1 | 0x80
	return v
}

// Reset returns the joypad to its power-on state. Button state survives a
// reset; the shift register does not.
func (jp *Joypad) Reset() {
	jp.shift = 0
	jp.strobe = false
}
