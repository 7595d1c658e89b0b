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
	"bytes"
	"io"

	"github.com/hazyden/famicore/curated"
)

// error patterns for save states.
const (
	InvalidState = "nes: invalid save state: %v"
)

// save state header. the version number must change whenever any of the
// component snapshot layouts change.
var stateMagic = []byte{'F', 'C', 'S', 'S'}

const stateVersion = 1

// SaveState serialises the console. The APU is not serialised; a loaded
// state resumes with silent channels until the running program next writes
// to the audio registers.
func (n *NES) SaveState() ([]byte, error) {
	if n.Cart == nil {
		return nil, curated.Errorf(NoCartridge)
	}

	b := &bytes.Buffer{}
	b.Write(stateMagic)
	b.WriteByte(stateVersion)

	if err := n.snapshot(b); err != nil {
		return nil, curated.Errorf("nes: %v", err)
	}

	return b.Bytes(), nil
}

// LoadState restores a console from the bytes produced by SaveState. A
// state that fails validation leaves the console exactly as it was.
func (n *NES) LoadState(data []byte) error {
	if n.Cart == nil {
		return curated.Errorf(NoCartridge)
	}

	if len(data) < len(stateMagic)+1 {
		return curated.Errorf(InvalidState, "too short")
	}
	if !bytes.Equal(data[:len(stateMagic)], stateMagic) {
		return curated.Errorf(InvalidState, "bad magic")
	}
	if data[len(stateMagic)] != stateVersion {
		return curated.Errorf(InvalidState, "unsupported version")
	}

	// snapshot the live state so a truncated or corrupt buffer never
	// leaves the console half restored
	undo := &bytes.Buffer{}
	if err := n.snapshot(undo); err != nil {
		return curated.Errorf("nes: %v", err)
	}

	r := bytes.NewReader(data[len(stateMagic)+1:])
	if err := n.restore(r); err != nil {
		_ = n.restore(bytes.NewReader(undo.Bytes()))
		return curated.Errorf(InvalidState, err)
	}
	if r.Len() != 0 {
		_ = n.restore(bytes.NewReader(undo.Bytes()))
		return curated.Errorf(InvalidState, "trailing bytes")
	}

	return nil
}

func (n *NES) snapshot(w io.Writer) error {
	if err := n.CPU.Snapshot(w); err != nil {
		return err
	}
	if err := n.Mem.Snapshot(w); err != nil {
		return err
	}
	if err := n.PPU.Snapshot(w); err != nil {
		return err
	}
	return n.Cart.Snapshot(w)
}

func (n *NES) restore(r io.Reader) error {
	if err := n.CPU.Restore(r); err != nil {
		return err
	}
	if err := n.Mem.Restore(r); err != nil {
		return err
	}
	if err := n.PPU.Restore(r); err != nil {
		return err
	}
	return n.Cart.Restore(r)
}
