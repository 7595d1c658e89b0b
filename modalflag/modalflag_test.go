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

package modalflag_test

import (
	"testing"

	"github.com/hazyden/famicore/modalflag"
	"github.com/hazyden/famicore/test"
)

func TestNoModes(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"rom.nes"})

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "")
	test.Equate(t, md.GetArg(0), "rom.nes")
}

func TestSubModeSelection(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"performance", "rom.nes"})
	md.AddSubModes("RUN", "PERFORMANCE")

	r, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.Mode(), "PERFORMANCE")

	// the next layer sees only the arguments after the mode
	md.NewMode()
	r, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, int(r), int(modalflag.ParseContinue))
	test.Equate(t, md.GetArg(0), "rom.nes")
}

func TestDefaultSubMode(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"rom.nes"})
	md.AddSubModes("RUN", "PERFORMANCE")

	_, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, md.Mode(), "RUN")
	test.Equate(t, md.String(), "RUN")

	// the unmatched argument is left for the mode to pick up
	md.NewMode()
	_, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, md.GetArg(0), "rom.nes")
}

func TestModeFlags(t *testing.T) {
	md := modalflag.Modes{}
	md.NewArgs([]string{"run", "-frames", "10", "rom.nes"})
	md.AddSubModes("RUN", "PERFORMANCE")

	_, err := md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, md.Mode(), "RUN")

	md.NewMode()
	frames := md.AddInt("frames", 60, "number of frames to run")
	_, err = md.Parse()
	test.ExpectedSuccess(t, err)
	test.Equate(t, *frames, 10)
	test.Equate(t, md.GetArg(0), "rom.nes")
}
