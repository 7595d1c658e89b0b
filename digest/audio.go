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
	"encoding/binary"
	"fmt"
	"math"
)

// the length of the buffer isn't really important. that said, it needs to be
// at least sha1.Size bytes in length.
const audioBufferLength = 4096 + sha1.Size

// to allow digests on audio streams longer than audioBufferLength, the
// previous digest value is stuffed into the first part of the buffer and
// included when the next digest value is created.
const audioBufferStart = sha1.Size

// Audio generates a SHA-1 value from the audio samples pushed to it. Like
// the Video type, fingerprints are chained.
type Audio struct {
	digest   [sha1.Size]byte
	buffer   []byte
	bufferCt int
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() *Audio {
	return &Audio{
		buffer:   make([]byte, audioBufferLength),
		bufferCt: audioBufferStart,
	}
}

// Hash implements the Digest interface.
func (dig *Audio) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Audio) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.bufferCt = audioBufferStart
}

// SetAudio folds a batch of samples into the hash. Samples are reduced to
// their IEEE 754 bit patterns so the hash is not subject to printing or
// rounding ambiguity.
func (dig *Audio) SetAudio(samples []float32) {
	for _, s := range samples {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], math.Float32bits(s))
		for _, v := range b {
			dig.buffer[dig.bufferCt] = v
			dig.bufferCt++
			if dig.bufferCt >= audioBufferLength {
				dig.flush()
			}
		}
	}
}

// FlushAudio hashes whatever remains in the buffer. Call at the end of the
// stream so that trailing samples are included in the final hash.
func (dig *Audio) FlushAudio() {
	if dig.bufferCt > audioBufferStart {
		dig.flush()
	}
}

func (dig *Audio) flush() {
	dig.digest = sha1.Sum(dig.buffer[:dig.bufferCt])
	copy(dig.buffer, dig.digest[:])
	dig.bufferCt = audioBufferStart
}
