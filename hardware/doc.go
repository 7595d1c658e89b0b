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

// Package hardware is the parent package for the emulated components of the
// console. The sub-packages model the 2A03 processor and its audio
// synthesiser, the picture processing unit, the memory bus, cartridges and
// their bank-switching hardware, and the joypads. The nes sub-package wires
// everything together and provides the public face of the emulation.
//
// Nothing in this package tree knows how to present video or audio to a
// user. Hosts consume the framebuffer and sample buffer exposed by the nes
// package.
package hardware
