/*
NAME
  modulator.go

DESCRIPTION
  modulator.go implements the continuous-phase binary FSK synthesizer: bits
  in, 16-bit PCM samples out. The "continuous phase" in CPFSK means the
  oscillator's phase accumulator is never reset between bits -- only between
  packets -- which is what keeps the transmitted spectrum free of the
  splatter a phase discontinuity would cause at every bit boundary.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package modem

import "math"

// oscillator is a continuous-phase tone generator. Its zero value starts at
// phase 0 and is ready to use; a fresh oscillator must be used per packet,
// never shared across packets run concurrently.
type oscillator struct {
	phase float64 // Radians, kept in [0, 2*pi).
}

// emitBit appends one bit's worth of samples for freq Hz to dst and returns
// the extended slice. The phase accumulator carries forward across calls.
func (o *oscillator) emitBit(dst []int16, freq float64) []int16 {
	step := twoPi * freq / SampleRate
	for n := 1; n <= SamplesPerBit; n++ {
		v := math.Sin(o.phase + step*float64(n))
		dst = append(dst, int16(math.Round(Amplitude*fullScale*v)))
	}
	o.phase = math.Mod(o.phase+step*SamplesPerBit, twoPi)
	return dst
}

// Modulate synthesizes bits as continuous-phase BFSK, returning 16-bit PCM
// samples at SampleRate with GuardSamples of silence prepended and appended.
// The oscillator's phase is reset at the start of Modulate and is not
// retained between calls, matching the "one packet, one oscillator
// lifetime" rule: the core never shares oscillator state across packets.
func Modulate(bits []byte) []int16 {
	samples := make([]int16, GuardSamples, GuardSamples*2+len(bits)*SamplesPerBit)

	var osc oscillator
	for _, bit := range bits {
		freq := float64(F0)
		if bit != 0 {
			freq = float64(F1)
		}
		samples = osc.emitBit(samples, freq)
	}

	samples = append(samples, make([]int16, GuardSamples)...)
	return samples
}
