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

package apu_test

import (
	"testing"

	"github.com/hazyden/famicore/hardware/apu"
	"github.com/hazyden/famicore/test"
)

func step(ap *apu.APU, cycles int) {
	for i := 0; i < cycles; i++ {
		ap.Step()
	}
}

func TestLengthCounter(t *testing.T) {
	ap := apu.NewAPU()

	// enable pulse 1 and load length index 3, which is the value 2
	ap.WriteRegister(0x4015, 0x01)
	ap.WriteRegister(0x4000, 0x30)
	ap.WriteRegister(0x4003, 0x18)
	test.Equate(t, ap.ReadStatus()&0x01, 0x01)

	// two half-frame clocks in one four-step sequence run it to zero
	step(ap, 29830)
	test.Equate(t, ap.ReadStatus()&0x01, 0x00)
}

func TestLengthCounterHalt(t *testing.T) {
	ap := apu.NewAPU()

	ap.WriteRegister(0x4015, 0x01)
	ap.WriteRegister(0x4000, 0x30)
	ap.WriteRegister(0x4003, 0x18)

	// the halt flag freezes the counter
	ap.WriteRegister(0x4000, 0x20)
	step(ap, 29830)
	test.Equate(t, ap.ReadStatus()&0x01, 0x01)
}

func TestLengthLoadRequiresEnable(t *testing.T) {
	ap := apu.NewAPU()

	// a length write to a disabled channel is ignored
	ap.WriteRegister(0x4003, 0x18)
	test.Equate(t, ap.ReadStatus()&0x01, 0x00)

	// disabling a channel clears its counter immediately
	ap.WriteRegister(0x4015, 0x01)
	ap.WriteRegister(0x4003, 0x18)
	test.Equate(t, ap.ReadStatus()&0x01, 0x01)
	ap.WriteRegister(0x4015, 0x00)
	test.Equate(t, ap.ReadStatus()&0x01, 0x00)
}

func TestFrameIRQ(t *testing.T) {
	ap := apu.NewAPU()

	step(ap, 29829)
	test.ExpectedFailure(t, ap.IRQ())
	step(ap, 1)
	test.ExpectedSuccess(t, ap.IRQ())

	// reading the status register reports and clears the flag
	test.Equate(t, ap.ReadStatus()&0x40, 0x40)
	test.ExpectedFailure(t, ap.IRQ())
}

func TestFrameIRQInhibit(t *testing.T) {
	ap := apu.NewAPU()

	ap.WriteRegister(0x4017, 0x40)
	step(ap, 29830)
	test.ExpectedFailure(t, ap.IRQ())
}

func TestFiveStepMode(t *testing.T) {
	ap := apu.NewAPU()

	// the five-step sequence never raises the frame interrupt
	ap.WriteRegister(0x4017, 0x80)
	step(ap, 40000)
	test.ExpectedFailure(t, ap.IRQ())
}

func TestFiveStepImmediateClock(t *testing.T) {
	ap := apu.NewAPU()

	ap.WriteRegister(0x4015, 0x01)
	ap.WriteRegister(0x4000, 0x30)
	ap.WriteRegister(0x4003, 0x18)

	// selecting five-step mode clocks the length counters at once. two
	// writes run the counter of 2 to zero without any stepping
	ap.WriteRegister(0x4017, 0x80)
	test.Equate(t, ap.ReadStatus()&0x01, 0x01)
	ap.WriteRegister(0x4017, 0x80)
	test.Equate(t, ap.ReadStatus()&0x01, 0x00)
}

func TestSamplePacing(t *testing.T) {
	ap := apu.NewAPU()

	// one second of CPU cycles yields one second of samples
	step(ap, 1789773)
	n := len(ap.ReadSamples())
	test.ExpectedSuccess(t, n >= apu.SampleFreq-1 && n <= apu.SampleFreq+1)

	// the buffer drains on read
	test.Equate(t, len(ap.ReadSamples()), 0)
}

func TestMixerSilence(t *testing.T) {
	ap := apu.NewAPU()

	step(ap, 10000)
	for _, s := range ap.ReadSamples() {
		test.Equate(t, s == 0.0, true)
	}
}

func TestMixerRange(t *testing.T) {
	ap := apu.NewAPU()

	// all channels on at full constant volume
	ap.WriteRegister(0x4015, 0x1f)
	ap.WriteRegister(0x4000, 0x3f)
	ap.WriteRegister(0x4002, 0x80)
	ap.WriteRegister(0x4003, 0x08)
	ap.WriteRegister(0x4004, 0x3f)
	ap.WriteRegister(0x4006, 0x90)
	ap.WriteRegister(0x4007, 0x08)
	ap.WriteRegister(0x4008, 0x7f)
	ap.WriteRegister(0x400a, 0x60)
	ap.WriteRegister(0x400b, 0x08)
	ap.WriteRegister(0x400c, 0x3f)
	ap.WriteRegister(0x400e, 0x04)
	ap.WriteRegister(0x400f, 0x08)
	ap.WriteRegister(0x4011, 0x40)

	step(ap, 100000)

	samples := ap.ReadSamples()
	test.ExpectedSuccess(t, len(samples) > 0)

	audible := false
	for _, s := range samples {
		test.ExpectedSuccess(t, s >= 0.0 && s < 1.0)
		if s > 0.0 {
			audible = true
		}
	}
	test.ExpectedSuccess(t, audible)
}

func TestNoiseSequence(t *testing.T) {
	ap := apu.NewAPU()

	// long-sequence noise at the shortest period with a constant volume
	ap.WriteRegister(0x4015, 0x08)
	ap.WriteRegister(0x400c, 0x3f)
	ap.WriteRegister(0x400e, 0x00)
	ap.WriteRegister(0x400f, 0x08)

	step(ap, 200000)

	// the register's feedback sequence gates the output on and off so the
	// sample stream must contain both silent and audible values
	samples := ap.ReadSamples()
	silent := false
	audible := false
	for _, s := range samples {
		if s == 0.0 {
			silent = true
		} else {
			audible = true
		}
	}
	test.ExpectedSuccess(t, silent)
	test.ExpectedSuccess(t, audible)
}
