/*
NAME
  demodulator.go

DESCRIPTION
  demodulator.go implements bit recovery from a PCM sample buffer: each
  non-overlapping window of SamplesPerBit samples is Hann-windowed, FFT'd,
  and the energy at the bin nearest F0 is compared against the energy at the
  bin nearest F1. No bit-timing recovery loop runs here -- the transmitter's
  fixed timing and the leading/trailing silence guards are relied upon, and
  frame sync compensates for small misalignment by scanning bit-by-bit.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package modem

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// bin0 and bin1 are the FFT bin indices nearest F0 and F1 for a window of
// SamplesPerBit samples at SampleRate. go-dsp has no reusable FFT plan for
// a fixed size, so unlike a systems-language rewrite with an explicit plan
// object, every window pays the full FFT cost; caching would only help
// across windows within one Demodulate call, and go-dsp's API gives no
// hook for that beyond what's implicit in repeated same-size calls.
var bin0, bin1 = nearestBin(F0), nearestBin(F1)

// hannWindow is the Hann window coefficients for one bit's worth of
// samples, computed once since every window is the same fixed size.
var hannWindow = window.Hann(SamplesPerBit)

// nearestBin returns the FFT bin index closest to freq Hz for a
// SamplesPerBit-sample window sampled at SampleRate.
func nearestBin(freq float64) int {
	binWidth := float64(SampleRate) / float64(SamplesPerBit)
	return int(freq/binWidth + 0.5)
}

// Demodulate converts a buffer of 16-bit PCM samples into a bit sequence.
// The buffer is partitioned into non-overlapping windows of exactly
// SamplesPerBit samples starting at sample 0; a trailing partial window is
// discarded. Ties (E1 == E0) resolve to bit 0.
func Demodulate(samples []int16) []byte {
	n := len(samples) / SamplesPerBit
	bits := make([]byte, n)
	windowed := make([]float64, SamplesPerBit)

	for w := 0; w < n; w++ {
		chunk := samples[w*SamplesPerBit : (w+1)*SamplesPerBit]
		for i, s := range chunk {
			windowed[i] = (float64(s) / fullScale) * hannWindow[i]
		}

		spectrum := fft.FFTReal(windowed)
		e0 := cmplx.Abs(spectrum[bin0])
		e1 := cmplx.Abs(spectrum[bin1])

		if e1 > e0 {
			bits[w] = 1
		}
	}
	return bits
}
