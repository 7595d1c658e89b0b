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

// Package curated is a helper package for the plain Go language error type.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like the Errorf() function in
// the fmt package, and the pattern doubles as the error's identity. The
// pattern should be declared as a const string close to the code that
// returns it, giving calling code something concrete to test against:
//
//	const NotEnoughBytes = "cartridge: not enough bytes in file"
//
//	if curated.Is(err, cartridge.NotEnoughBytes) {
//		...
//	}
//
// The Is() function checks the head of the error only. The Has() function
// checks the whole chain of wrapped curated errors. IsAny() answers whether
// the error is curated at all - ie. whether it was created by Errorf() -
// which in practice distinguishes expected errors from unexpected ones.
//
// The Error() implementation normalises the message chain so that adjacent
// duplicate parts are elided. Parts are separated by the sub-string ': ' as
// suggested on p239 of "The Go Programming Language" (Donovan, Kernighan).
package curated
