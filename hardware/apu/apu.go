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

// Package apu implements the 2A03's audio synthesiser: two pulse channels,
// a triangle channel, a noise channel and the delta modulation channel, all
// driven by a shared frame sequencer. Mixed samples accumulate in an
// internal buffer at SampleFreq and are drained with ReadSamples.
package apu

// SampleFreq is the rate at which mixed samples are emitted.
const SampleFreq = 44100

// NTSC CPU clock. the sample pacing accumulator converts from this domain
// to SampleFreq.
const cpuClock = 1789773.0

// frame sequencer step boundaries, counted in CPU cycles. the sequencer
// actually runs from the APU half-clock but counting whole CPU cycles
// against doubled thresholds amounts to the same thing.
const (
	seqQuarter1 = 7457
	seqHalf1    = 14913
	seqQuarter2 = 22371
	seqHalf2    = 29829
	seqIRQ      = 29830
	seqHalf2Ext = 37281
)

// APU implements the audio portion of the 2A03.
type APU struct {
	pulse1   pulseChannel
	pulse2   pulseChannel
	triangle triangleChannel
	noise    noiseChannel
	dmc      dmcChannel

	cycles uint64

	// frame sequencer
	frameCounter int
	fiveStepMode bool
	irqInhibit   bool
	frameIRQ     bool

	// sample pacing
	sampleAccumulator float64
	samples           []float32
}

// NewAPU is the preferred method of initialisation for the APU type.
func NewAPU() *APU {
	ap := &APU{
		samples: make([]float32, 0, 4096),
	}
	ap.Reset()
	return ap
}

// Reset returns the APU to its power-on state.
func (ap *APU) Reset() {
	ap.pulse1 = pulseChannel{onesComplementSweep: true}
	ap.pulse2 = pulseChannel{}
	ap.triangle = triangleChannel{}
	ap.noise = noiseChannel{shiftRegister: 1}
	ap.dmc = dmcChannel{memory: ap.dmc.memory}

	ap.cycles = 0
	ap.frameCounter = 0
	ap.fiveStepMode = false
	ap.irqInhibit = false
	ap.frameIRQ = false

	ap.sampleAccumulator = 0
	ap.samples = ap.samples[:0]
}

// SetMemoryReader attaches the function the delta modulation channel uses to
// fetch sample bytes. Without one the channel decodes silence.
func (ap *APU) SetMemoryReader(read func(uint16) uint8) {
	ap.dmc.memory = read
}

// Step advances the APU by one CPU cycle.
func (ap *APU) Step() {
	ap.cycles++

	ap.stepFrameCounter()

	// the triangle timer runs from the CPU clock. every other channel's
	// timer runs at half that rate
	ap.triangle.stepTimer()
	if ap.cycles%2 == 0 {
		ap.pulse1.stepTimer()
		ap.pulse2.stepTimer()
		ap.noise.stepTimer()
		ap.dmc.stepTimer()
	}

	ap.sampleAccumulator += SampleFreq / cpuClock
	if ap.sampleAccumulator >= 1.0 {
		ap.sampleAccumulator -= 1.0
		ap.samples = append(ap.samples, ap.mix())
	}
}

func (ap *APU) stepFrameCounter() {
	ap.frameCounter++

	if ap.fiveStepMode {
		switch ap.frameCounter {
		case seqQuarter1, seqQuarter2:
			ap.clockQuarterFrame()
		case seqHalf1:
			ap.clockQuarterFrame()
			ap.clockHalfFrame()
		case seqHalf2Ext:
			ap.clockQuarterFrame()
			ap.clockHalfFrame()
			ap.frameCounter = 0
		}
		return
	}

	switch ap.frameCounter {
	case seqQuarter1, seqQuarter2:
		ap.clockQuarterFrame()
	case seqHalf1:
		ap.clockQuarterFrame()
		ap.clockHalfFrame()
	case seqHalf2:
		ap.clockQuarterFrame()
		ap.clockHalfFrame()
	case seqIRQ:
		if !ap.irqInhibit {
			ap.frameIRQ = true
		}
		ap.frameCounter = 0
	}
}

// quarter frame ticks clock envelopes and the triangle's linear counter.
func (ap *APU) clockQuarterFrame() {
	ap.pulse1.envelope.clock()
	ap.pulse2.envelope.clock()
	ap.noise.envelope.clock()
	ap.triangle.clockLinearCounter()
}

// half frame ticks additionally clock length counters and the sweep units.
func (ap *APU) clockHalfFrame() {
	ap.pulse1.clockLength()
	ap.pulse1.clockSweep()
	ap.pulse2.clockLength()
	ap.pulse2.clockSweep()
	ap.triangle.clockLength()
	ap.noise.clockLength()
}

// WriteRegister services a CPU write to $4000-$4013, $4015 or $4017.
func (ap *APU) WriteRegister(address uint16, data uint8) {
	switch address {
	case 0x4000:
		ap.pulse1.writeControl(data)
	case 0x4001:
		ap.pulse1.writeSweep(data)
	case 0x4002:
		ap.pulse1.writeTimerLow(data)
	case 0x4003:
		ap.pulse1.writeTimerHigh(data)

	case 0x4004:
		ap.pulse2.writeControl(data)
	case 0x4005:
		ap.pulse2.writeSweep(data)
	case 0x4006:
		ap.pulse2.writeTimerLow(data)
	case 0x4007:
		ap.pulse2.writeTimerHigh(data)

	case 0x4008:
		ap.triangle.writeControl(data)
	case 0x400a:
		ap.triangle.writeTimerLow(data)
	case 0x400b:
		ap.triangle.writeTimerHigh(data)

	case 0x400c:
		ap.noise.writeControl(data)
	case 0x400e:
		ap.noise.writePeriod(data)
	case 0x400f:
		ap.noise.writeLength(data)

	case 0x4010:
		ap.dmc.writeControl(data)
	case 0x4011:
		ap.dmc.writeDirectLoad(data)
	case 0x4012:
		ap.dmc.writeSampleAddress(data)
	case 0x4013:
		ap.dmc.writeSampleLength(data)

	case 0x4015:
		ap.writeStatus(data)
	case 0x4017:
		ap.writeFrameCounter(data)
	}
}

// ReadStatus services a CPU read of $4015. The read clears the frame
// interrupt flag.
func (ap *APU) ReadStatus() uint8 {
	var status uint8

	if ap.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if ap.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if ap.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if ap.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if ap.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if ap.frameIRQ {
		status |= 0x40
	}
	if ap.dmc.irqFlag {
		status |= 0x80
	}

	ap.frameIRQ = false

	return status
}

func (ap *APU) writeStatus(data uint8) {
	ap.pulse1.setEnabled(data&0x01 != 0)
	ap.pulse2.setEnabled(data&0x02 != 0)
	ap.triangle.setEnabled(data&0x04 != 0)
	ap.noise.setEnabled(data&0x08 != 0)
	ap.dmc.setEnabled(data&0x10 != 0)
}

func (ap *APU) writeFrameCounter(data uint8) {
	ap.fiveStepMode = data&0x80 != 0
	ap.irqInhibit = data&0x40 != 0

	if ap.irqInhibit {
		ap.frameIRQ = false
	}

	ap.frameCounter = 0

	// selecting the five-step sequence clocks all units immediately
	if ap.fiveStepMode {
		ap.clockQuarterFrame()
		ap.clockHalfFrame()
	}
}

// IRQ indicates whether the frame counter or the delta modulation channel
// has an interrupt pending.
func (ap *APU) IRQ() bool {
	return ap.frameIRQ || ap.dmc.irqFlag
}

// ReadSamples drains the accumulated sample buffer.
func (ap *APU) ReadSamples() []float32 {
	s := make([]float32, len(ap.samples))
	copy(s, ap.samples)
	ap.samples = ap.samples[:0]
	return s
}

// mix combines the five channel outputs using the two non-linear DAC
// approximations. The result is in the range [0.0, 1.0).
func (ap *APU) mix() float32 {
	p1 := float64(ap.pulse1.output())
	p2 := float64(ap.pulse2.output())
	t := float64(ap.triangle.output())
	n := float64(ap.noise.output())
	d := float64(ap.dmc.output())

	var pulseOut float64
	if p1+p2 != 0 {
		pulseOut = 95.88 / (8128.0/(p1+p2) + 100.0)
	}

	var tndOut float64
	tnd := t/8227.0 + n/12241.0 + d/22638.0
	if tnd != 0 {
		tndOut = 159.79 / (1.0/tnd + 100.0)
	}

	return float32(pulseOut + tndOut)
}
