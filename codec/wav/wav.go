/*
NAME
  wav.go

DESCRIPTION
  wav.go reads and writes mono 16-bit PCM WAV files carrying modem samples,
  wrapping github.com/go-audio/wav rather than hand-rolling RIFF headers.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wav reads and writes the fixed mono 16-bit WAV format this module
// exchanges samples in.
package wav

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

const (
	channels  = 1
	bitDepth  = 16
	pcmFormat = 1
)

// ErrUnsupportedChannels is returned by Read when the file carries neither
// one nor two channels, and so cannot be folded down to mono.
var ErrUnsupportedChannels = errors.New("wav: file has neither one nor two channels")

// ErrRateNotDivisible is returned by Read when the file's sample rate
// cannot be evenly downsampled to targetRate.
var ErrRateNotDivisible = errors.New("wav: sample rate not evenly divisible by target rate")

// Write encodes samples as a mono 16-bit PCM WAV file at sampleRate, written
// to w.
func Write(w io.WriteSeeker, samples []int16, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, pcmFormat)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "could not write WAV samples")
	}
	return errors.Wrap(enc.Close(), "could not finalize WAV file")
}

// Read decodes a PCM WAV file from r, folding stereo down to mono and
// downsampling to targetRate if the file doesn't already match, and returns
// its samples. ErrUnsupportedChannels is returned for anything other than
// one or two channels; ErrRateNotDivisible if the file's rate cannot be
// evenly downsampled to targetRate.
func Read(r io.Reader, targetRate int) ([]int16, error) {
	dec := wav.NewDecoder(r)
	ib, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "could not decode WAV file")
	}

	samples := make([]int16, len(ib.Data))
	for i, v := range ib.Data {
		samples[i] = int16(v)
	}

	switch ib.Format.NumChannels {
	case 1:
	case 2:
		samples = foldStereo(samples)
	default:
		return nil, errors.Wrapf(ErrUnsupportedChannels, "file has %d channels", ib.Format.NumChannels)
	}

	if ib.Format.SampleRate != targetRate {
		if ib.Format.SampleRate%targetRate != 0 {
			return nil, errors.Wrapf(ErrRateNotDivisible, "file rate %d, target %d", ib.Format.SampleRate, targetRate)
		}
		samples = downsample(samples, ib.Format.SampleRate/targetRate)
	}
	return samples, nil
}
