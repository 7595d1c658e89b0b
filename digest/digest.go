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

// Package digest produces cryptographic hashes of the console's video and
// audio output. The hash can be used to compare output from subsequent
// emulation executions - if a new hash differs from a previously recorded
// value then something has changed. We use this as the basis for regression
// and determinism tests.
//
// Hashes are chained: the fingerprint of the previous frame (or audio
// buffer) is mixed into the data of the next, so a single hash value stands
// for the entire output history up to that point.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
package digest

// Digest implementations return a cryptographic hash in response to a Hash()
// request. Generation of the hash is achieved via the type's own interface.
type Digest interface {
	Hash() string
	ResetDigest()
}
