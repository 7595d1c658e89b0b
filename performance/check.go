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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/hazyden/famicore/curated"
	"github.com/hazyden/famicore/hardware/nes"
	"github.com/hazyden/famicore/statsview"
)

// Check is a very rough and ready calculation of the emulator's performance.
// The console runs headless for the supplied wall-clock duration; frame and
// audio output is generated but discarded.
func Check(output io.Writer, profile bool, launchStatsview bool, rom []byte, runTime string) error {
	duration, err := time.ParseDuration(runTime)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	console := nes.NewNES()
	err = console.AttachCartridge(rom)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}
	console.Reset()

	if launchStatsview {
		statsview.Launch(output)
	}

	numFrames := 0

	// run for specified period of time
	err = cpuProfile(profile, "cpu.profile", func() error {
		// a short leadtime allows the hardware to settle out of its reset
		// sequence before the clock starts
		leadtime := time.Second
		end := time.Now().Add(leadtime)
		for time.Now().Before(end) {
			if err := console.RunFrame(); err != nil {
				return err
			}
			console.ReadSamples()
		}

		end = time.Now().Add(duration)
		for time.Now().Before(end) {
			if err := console.RunFrame(); err != nil {
				return err
			}
			console.ReadSamples()
			numFrames++
		}
		return nil
	})
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	fps, accuracy := CalcFPS(numFrames, duration.Seconds())
	output.Write([]byte(fmt.Sprintf("%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, duration.Seconds(), accuracy)))

	return memProfile(profile, "mem.profile")
}
