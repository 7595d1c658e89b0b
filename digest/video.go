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

package digest

import (
	"crypto/sha1"
	"fmt"
)

// Video generates a SHA-1 value from the framebuffers pushed to it. The
// fingerprint of the previous frame is chained into the head of the next
// frame's data.
type Video struct {
	digest   [sha1.Size]byte
	buffer   []byte
	frameNum int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{}
}

// Hash implements the Digest interface.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Video) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.frameNum = 0
}

// FrameNum returns the number of frames folded into the current hash.
func (dig *Video) FrameNum() int {
	return dig.frameNum
}

// NewFrame folds a completed framebuffer into the hash. The pixels slice is
// not retained.
func (dig *Video) NewFrame(pixels []byte) {
	l := len(dig.digest) + len(pixels)
	if len(dig.buffer) != l {
		dig.buffer = make([]byte, l)
	}

	// chain fingerprints by copying the value of the last fingerprint to the
	// head of the frame data
	copy(dig.buffer, dig.digest[:])
	copy(dig.buffer[len(dig.digest):], pixels)

	dig.digest = sha1.Sum(dig.buffer)
	dig.frameNum++
}
