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

package apu

// the hardware lookup tables. these are fixed constants of the 2A03 and
// must not be altered.

var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

// envelope is the decay unit shared by the pulse and noise channels.
type envelope struct {
	start    bool
	loop     bool
	constant bool
	volume   uint8
	divider  uint8
	decay    uint8
}

func (env *envelope) clock() {
	if env.start {
		env.start = false
		env.decay = 15
		env.divider = env.volume
		return
	}

	if env.divider == 0 {
		env.divider = env.volume
		if env.decay > 0 {
			env.decay--
		} else if env.loop {
			env.decay = 15
		}
	} else {
		env.divider--
	}
}

func (env *envelope) output() uint8 {
	if env.constant {
		return env.volume
	}
	return env.decay
}

// pulseChannel is one of the two square wave channels. The only difference
// between them is the sweep unit's negate arithmetic.
type pulseChannel struct {
	enabled bool

	duty          uint8
	sequencerPos  uint8
	timer         uint16
	timerCounter  uint16
	lengthCounter uint8
	lengthHalt    bool
	envelope      envelope

	sweepEnabled        bool
	sweepPeriod         uint8
	sweepNegate         bool
	sweepShift          uint8
	sweepReload         bool
	sweepCounter        uint8
	onesComplementSweep bool
}

func (ch *pulseChannel) writeControl(data uint8) {
	ch.duty = (data >> 6) & 0x03
	ch.lengthHalt = data&0x20 != 0
	ch.envelope.loop = ch.lengthHalt
	ch.envelope.constant = data&0x10 != 0
	ch.envelope.volume = data & 0x0f
	ch.envelope.start = true
}

func (ch *pulseChannel) writeSweep(data uint8) {
	ch.sweepEnabled = data&0x80 != 0
	ch.sweepPeriod = (data >> 4) & 0x07
	ch.sweepNegate = data&0x08 != 0
	ch.sweepShift = data & 0x07
	ch.sweepReload = true
}

func (ch *pulseChannel) writeTimerLow(data uint8) {
	ch.timer = (ch.timer & 0xff00) | uint16(data)
}

func (ch *pulseChannel) writeTimerHigh(data uint8) {
	ch.timer = (ch.timer & 0x00ff) | (uint16(data&0x07) << 8)
	if ch.enabled {
		ch.lengthCounter = lengthTable[data>>3]
	}
	ch.envelope.start = true
	ch.sequencerPos = 0
}

func (ch *pulseChannel) setEnabled(enabled bool) {
	ch.enabled = enabled
	if !enabled {
		ch.lengthCounter = 0
	}
}

func (ch *pulseChannel) stepTimer() {
	if ch.timerCounter == 0 {
		ch.timerCounter = ch.timer
		ch.sequencerPos = (ch.sequencerPos + 1) & 0x07
	} else {
		ch.timerCounter--
	}
}

func (ch *pulseChannel) clockLength() {
	if !ch.lengthHalt && ch.lengthCounter > 0 {
		ch.lengthCounter--
	}
}

func (ch *pulseChannel) clockSweep() {
	if ch.sweepCounter == 0 && ch.sweepEnabled && ch.sweepShift > 0 {
		change := ch.timer >> ch.sweepShift
		if ch.sweepNegate {
			ch.timer -= change
			if ch.onesComplementSweep {
				ch.timer--
			}
		} else {
			ch.timer += change
		}
	}

	if ch.sweepCounter == 0 || ch.sweepReload {
		ch.sweepCounter = ch.sweepPeriod
		ch.sweepReload = false
	} else {
		ch.sweepCounter--
	}
}

func (ch *pulseChannel) output() uint8 {
	if ch.lengthCounter == 0 || ch.timer < 8 || ch.timer > 0x7ff {
		return 0
	}
	if dutyTable[ch.duty][ch.sequencerPos] == 0 {
		return 0
	}
	return ch.envelope.output()
}

// triangleChannel plays a fixed 32-step ramp. It has a linear counter in
// place of an envelope and no sweep unit.
type triangleChannel struct {
	enabled bool

	timer         uint16
	timerCounter  uint16
	lengthCounter uint8
	controlFlag   bool

	linearCounter       uint8
	linearCounterLoad   uint8
	linearCounterReload bool

	sequencerPos uint8
}

func (ch *triangleChannel) writeControl(data uint8) {
	ch.controlFlag = data&0x80 != 0
	ch.linearCounterLoad = data & 0x7f
}

func (ch *triangleChannel) writeTimerLow(data uint8) {
	ch.timer = (ch.timer & 0xff00) | uint16(data)
}

func (ch *triangleChannel) writeTimerHigh(data uint8) {
	ch.timer = (ch.timer & 0x00ff) | (uint16(data&0x07) << 8)
	if ch.enabled {
		ch.lengthCounter = lengthTable[data>>3]
	}
	ch.linearCounterReload = true
}

func (ch *triangleChannel) setEnabled(enabled bool) {
	ch.enabled = enabled
	if !enabled {
		ch.lengthCounter = 0
	}
}

func (ch *triangleChannel) stepTimer() {
	if ch.timerCounter == 0 {
		ch.timerCounter = ch.timer
		if ch.lengthCounter > 0 && ch.linearCounter > 0 {
			ch.sequencerPos = (ch.sequencerPos + 1) & 0x1f
		}
	} else {
		ch.timerCounter--
	}
}

func (ch *triangleChannel) clockLinearCounter() {
	if ch.linearCounterReload {
		ch.linearCounter = ch.linearCounterLoad
	} else if ch.linearCounter > 0 {
		ch.linearCounter--
	}
	if !ch.controlFlag {
		ch.linearCounterReload = false
	}
}

func (ch *triangleChannel) clockLength() {
	if !ch.controlFlag && ch.lengthCounter > 0 {
		ch.lengthCounter--
	}
}

func (ch *triangleChannel) output() uint8 {
	if ch.lengthCounter == 0 || ch.linearCounter == 0 {
		return 0
	}

	// ultrasonic periods are silenced rather than rendered as a pop
	if ch.timer < 2 {
		return 0
	}

	return triangleTable[ch.sequencerPos]
}

// noiseChannel clocks a 15-bit linear feedback shift register. The mode
// flag selects the second feedback tap: bit 1 for the long 32767-step
// sequence, bit 6 for the short 93-step sequence.
type noiseChannel struct {
	enabled bool

	mode          bool
	periodIndex   uint8
	timerCounter  uint16
	lengthCounter uint8
	lengthHalt    bool
	envelope      envelope

	shiftRegister uint16
}

func (ch *noiseChannel) writeControl(data uint8) {
	ch.lengthHalt = data&0x20 != 0
	ch.envelope.loop = ch.lengthHalt
	ch.envelope.constant = data&0x10 != 0
	ch.envelope.volume = data & 0x0f
	ch.envelope.start = true
}

func (ch *noiseChannel) writePeriod(data uint8) {
	ch.mode = data&0x80 != 0
	ch.periodIndex = data & 0x0f
}

func (ch *noiseChannel) writeLength(data uint8) {
	if ch.enabled {
		ch.lengthCounter = lengthTable[data>>3]
	}
	ch.envelope.start = true
}

func (ch *noiseChannel) setEnabled(enabled bool) {
	ch.enabled = enabled
	if !enabled {
		ch.lengthCounter = 0
	}
}

func (ch *noiseChannel) stepTimer() {
	if ch.timerCounter == 0 {
		ch.timerCounter = noisePeriodTable[ch.periodIndex]

		feedback := ch.shiftRegister & 0x01
		if ch.mode {
			feedback ^= (ch.shiftRegister >> 6) & 0x01
		} else {
			feedback ^= (ch.shiftRegister >> 1) & 0x01
		}
		ch.shiftRegister = (ch.shiftRegister >> 1) | (feedback << 14)
	} else {
		ch.timerCounter--
	}
}

func (ch *noiseChannel) clockLength() {
	if !ch.lengthHalt && ch.lengthCounter > 0 {
		ch.lengthCounter--
	}
}

func (ch *noiseChannel) output() uint8 {
	if ch.lengthCounter == 0 || ch.shiftRegister&0x01 != 0 {
		return 0
	}
	return ch.envelope.output()
}

// dmcChannel plays delta encoded samples fetched from CPU memory through
// the memory callback. Fetches happen at the channel's own rate without
// stalling the CPU.
type dmcChannel struct {
	enabled bool

	irqEnable bool
	irqFlag   bool
	loop      bool
	rateIndex uint8

	sampleAddress uint16
	sampleLength  uint16

	currentAddress uint16
	bytesRemaining uint16

	timerCounter uint16
	shiftBuffer  uint8
	bitsLeft     uint8
	bufferEmpty  bool
	level        uint8

	memory func(uint16) uint8
}

func (ch *dmcChannel) writeControl(data uint8) {
	ch.irqEnable = data&0x80 != 0
	ch.loop = data&0x40 != 0
	ch.rateIndex = data & 0x0f
	if !ch.irqEnable {
		ch.irqFlag = false
	}
}

func (ch *dmcChannel) writeDirectLoad(data uint8) {
	ch.level = data & 0x7f
}

func (ch *dmcChannel) writeSampleAddress(data uint8) {
	ch.sampleAddress = 0xc000 + uint16(data)<<6
}

func (ch *dmcChannel) writeSampleLength(data uint8) {
	ch.sampleLength = uint16(data)<<4 + 1
}

func (ch *dmcChannel) setEnabled(enabled bool) {
	ch.enabled = enabled
	if !enabled {
		ch.bytesRemaining = 0
	} else if ch.bytesRemaining == 0 {
		ch.currentAddress = ch.sampleAddress
		ch.bytesRemaining = ch.sampleLength
		ch.bufferEmpty = true
		ch.bitsLeft = 0
	}
	ch.irqFlag = false
}

func (ch *dmcChannel) stepTimer() {
	if ch.timerCounter > 0 {
		ch.timerCounter--
		return
	}
	ch.timerCounter = dmcRateTable[ch.rateIndex]

	ch.clockOutput()

	if ch.bitsLeft == 0 {
		ch.fillBuffer()
	}
}

func (ch *dmcChannel) clockOutput() {
	if ch.bufferEmpty || ch.bitsLeft == 0 {
		return
	}

	if ch.shiftBuffer&0x01 != 0 {
		if ch.level <= 125 {
			ch.level += 2
		}
	} else if ch.level >= 2 {
		ch.level -= 2
	}

	ch.shiftBuffer >>= 1
	ch.bitsLeft--
}

func (ch *dmcChannel) fillBuffer() {
	if ch.bytesRemaining == 0 {
		ch.bufferEmpty = true
		return
	}

	if ch.memory != nil {
		ch.shiftBuffer = ch.memory(ch.currentAddress)
	} else {
		ch.shiftBuffer = 0
	}
	ch.bitsLeft = 8
	ch.bufferEmpty = false

	// the address wraps from the top of memory back to the sample area
	if ch.currentAddress == 0xffff {
		ch.currentAddress = 0x8000
	} else {
		ch.currentAddress++
	}
	ch.bytesRemaining--

	if ch.bytesRemaining == 0 {
		if ch.loop {
			ch.currentAddress = ch.sampleAddress
			ch.bytesRemaining = ch.sampleLength
		} else if ch.irqEnable {
			ch.irqFlag = true
		}
	}
}

func (ch *dmcChannel) output() uint8 {
	return ch.level
}
