/*
NAME
  filter.go

DESCRIPTION
  filter.go provides an optional bandpass pre-filter that suppresses energy
  outside the tone band before demodulation, for use on audio captured over
  an open-air speaker/microphone link where broadband room noise would
  otherwise compete with the FFT bins Demodulate inspects.

  The filter is a windowed-sinc FIR bandpass built from a highpass and a
  lowpass branch convolved together, applied via an FFT-based fast
  convolution, trimmed to the single mono 16-bit case this module ever
  filters.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package modem

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/pkg/errors"
)

const (
	bandMargin = 1000 // Hz either side of F0/F1 kept by the bandpass filter.
	filterTaps = 127
)

var band = [2]float64{F0 - bandMargin, F1 + bandMargin}

// FilterBand attenuates everything outside [F0-bandMargin, F1+bandMargin] in
// samples, captured or read at sampleRate. It is never applied by
// Demodulate itself; callers with a noisy acoustic channel run it first.
// The returned slice is the same length as samples; the filter's group
// delay is compensated for internally.
func FilterBand(samples []int16, sampleRate int) ([]int16, error) {
	coeffs, err := bandPassCoeffs(band[0], band[1], float64(sampleRate), filterTaps)
	if err != nil {
		return nil, errors.Wrap(err, "could not build bandpass filter")
	}

	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s) / (math.MaxInt16 + 1)
	}

	y, err := fastConvolve(x, coeffs)
	if err != nil {
		return nil, errors.Wrap(err, "could not apply bandpass filter")
	}

	// fastConvolve's output runs groupDelay samples ahead of the aligned
	// result; trim it off both ends so the filtered signal lines up with
	// the input and comes back out at the input's own length.
	groupDelay := (len(coeffs) - 1) / 2
	filtered := make([]int16, len(samples))
	for i := range filtered {
		v := y[groupDelay+i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		filtered[i] = int16(v * math.MaxInt16)
	}
	return filtered, nil
}

// bandPassCoeffs builds FIR coefficients for a bandpass filter spanning
// [lo, hi] at sampleRate, by convolving a highpass branch at lo with a
// lowpass branch at hi.
func bandPassCoeffs(lo, hi, sampleRate float64, taps int) ([]float64, error) {
	if lo <= 0 || hi >= sampleRate/2 || lo >= hi {
		return nil, errors.New("cutoff frequencies out of bounds")
	}
	hp, err := sincCoeffs(lo, sampleRate, taps, true)
	if err != nil {
		return nil, errors.Wrap(err, "could not build highpass branch")
	}
	lp, err := sincCoeffs(hi, sampleRate, taps, false)
	if err != nil {
		return nil, errors.Wrap(err, "could not build lowpass branch")
	}
	return fastConvolve(hp, lp)
}

// sincCoeffs builds a windowed-sinc lowpass (highPass false) or highpass
// (highPass true) FIR filter with cutoff fc at sampleRate.
func sincCoeffs(fc, sampleRate float64, taps int, highPass bool) ([]float64, error) {
	if fc <= 0 || fc >= sampleRate/2 {
		return nil, errors.New("cutoff frequency out of bounds")
	}

	fd := fc / sampleRate
	factor1, factor2 := 1.0, 2*fd
	if highPass {
		factor1, factor2 = -1.0, 1-2*fd
	}

	size := taps + 1
	coeffs := make([]float64, size)
	b := 2 * math.Pi * fd
	win := window.FlatTop(size)
	for n := 0; n < taps/2; n++ {
		c := float64(n) - float64(taps)/2
		y := math.Sin(c*b) / (math.Pi * c)
		coeffs[n] = factor1 * y * win[n]
		coeffs[size-1-n] = coeffs[n]
	}
	coeffs[taps/2] = factor2 * win[taps/2]
	return coeffs, nil
}

// fastConvolve computes the linear convolution of x and h via FFT, in
// O(n log n) time.
func fastConvolve(x, h []float64) ([]float64, error) {
	if len(x) == 0 || len(h) == 0 {
		return nil, errors.New("convolution requires non-empty input")
	}

	convLen := len(x) + len(h) - 1
	padLen := int(math.Pow(2, math.Ceil(math.Log2(float64(convLen)))))

	xp := make([]float64, padLen)
	copy(xp, x)
	hp := make([]float64, padLen)
	copy(hp, h)

	xf, hf := fft.FFTReal(xp), fft.FFTReal(hp)
	yf := make([]complex128, padLen)
	for i := range xf {
		yf[i] = xf[i] * hf[i]
	}

	iy := fft.IFFT(yf)
	y := make([]float64, convLen)
	for i := range y {
		y[i] = real(iy[i])
	}
	return y, nil
}
