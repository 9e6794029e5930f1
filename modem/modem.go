/*
NAME
  modem.go

DESCRIPTION
  modem.go defines the fixed modem parameters shared by the modulator and
  demodulator: sample rate, tone frequencies, bit duration, and amplitude.
  These are constants of the wire format -- both ends of a link must use
  the same values, so none of them are configurable at runtime.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package modem implements the continuous-phase binary FSK modem: Modulate
// converts a bit sequence to 16-bit PCM samples, Demodulate recovers a bit
// sequence from a PCM sample buffer.
package modem

import "math"

// Fixed modem parameters; must match verbatim on both ends of a link.
const (
	SampleRate    = 44100  // Hz.
	F0            = 17000  // Hz, tone for bit 0.
	F1            = 18500  // Hz, tone for bit 1.
	BitDuration   = 0.080  // Seconds per bit.
	SamplesPerBit = 3528   // SampleRate * BitDuration.
	Amplitude     = 0.5    // Fraction of full scale.
	guardDuration = 0.050  // Seconds of silence either side of a packet.
)

// GuardSamples is the number of zero samples of silence placed before and
// after a synthesized packet to aid the receiver's framing.
const GuardSamples = int(guardDuration * SampleRate)

// fullScale is the largest magnitude representable by a 16-bit signed PCM
// sample, used to scale the floating point oscillator output.
const fullScale = 32767

// twoPi is cached to avoid repeated multiplication in the oscillator's inner
// loop.
const twoPi = 2 * math.Pi
