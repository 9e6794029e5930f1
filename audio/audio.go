/*
NAME
  audio.go

AUTHOR
  Alan Noble <alan@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package audio provides single-shot capture and playback of mono 16-bit
// PCM audio through an ALSA device, at whatever sample rate the modem
// package asks for. Unlike a continuous streaming input, a modem session
// records or plays exactly one fixed-length buffer per call and then closes
// the device.
package audio

import (
	"encoding/binary"
	"fmt"
	"time"

	yalsa "github.com/yobert/alsa"

	"github.com/ausocean/utils/logging"
)

const (
	bytesPerSample = 2 // 16-bit signed little-endian.
	wantPeriod     = 0.05
)

// Device wraps a single ALSA PCM device negotiated for mono 16-bit capture
// or playback at a fixed sample rate.
type Device struct {
	l     logging.Logger
	title string // ALSA device title, or empty for the first matching device.
	dev   *yalsa.Device
	rate  int
}

// New returns a Device that logs to l. title selects a specific ALSA card by
// name; an empty title selects the first device that can perform the
// requested operation.
func New(l logging.Logger, title string) *Device {
	return &Device{l: l, title: title}
}

// openFor finds and prepares an ALSA device of the given kind ("record" or
// "playback") at sampleRate, mono, 16-bit.
func (d *Device) openFor(record bool, sampleRate int) error {
	d.l.Debug("opening sound card")
	cards, err := yalsa.OpenCards()
	if err != nil {
		return fmt.Errorf("could not open sound cards: %w", err)
	}
	defer yalsa.CloseCards(cards)

	d.l.Debug("finding audio device")
	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type != yalsa.PCM {
				continue
			}
			if record && !dev.Record {
				continue
			}
			if !record && !dev.Play {
				continue
			}
			if dev.Title == d.title || d.title == "" {
				d.dev = dev
				break
			}
		}
		if d.dev != nil {
			break
		}
	}
	if d.dev == nil {
		return fmt.Errorf("no matching ALSA device found")
	}

	d.l.Debug("opening ALSA device", "title", d.dev.Title)
	if err := d.dev.Open(); err != nil {
		return fmt.Errorf("could not open device: %w", err)
	}

	channels, err := d.dev.NegotiateChannels(1)
	if err != nil {
		d.dev.Close()
		d.dev = nil
		return fmt.Errorf("device cannot negotiate mono: %w", err)
	}
	d.l.Debug("alsa device channels set", "channels", channels)

	rate, err := d.dev.NegotiateRate(sampleRate)
	if err != nil {
		d.dev.Close()
		d.dev = nil
		return fmt.Errorf("device cannot negotiate rate %d: %w", sampleRate, err)
	}
	d.l.Debug("alsa device sample rate set", "rate", rate)
	d.rate = rate

	format, err := d.dev.NegotiateFormat(yalsa.S16_LE)
	if err != nil || format != yalsa.S16_LE {
		d.dev.Close()
		d.dev = nil
		return fmt.Errorf("device cannot negotiate 16-bit samples: %w", err)
	}

	bytesPerSecond := rate * channels * bytesPerSample
	periodSize := nearestPowerOfTwo(int(float64(bytesPerSecond) * wantPeriod))
	periodSize, err = d.dev.NegotiatePeriodSize(periodSize)
	if err != nil {
		d.dev.Close()
		d.dev = nil
		return fmt.Errorf("could not negotiate period size: %w", err)
	}
	d.l.Debug("alsa device period size set", "periodsize", periodSize)

	if _, err := d.dev.NegotiateBufferSize(periodSize * 4); err != nil {
		d.dev.Close()
		d.dev = nil
		return fmt.Errorf("could not negotiate buffer size: %w", err)
	}

	if err := d.dev.Prepare(); err != nil {
		d.dev.Close()
		d.dev = nil
		return fmt.Errorf("could not prepare device: %w", err)
	}
	return nil
}

// Record opens a capture device and blocks for duration, returning the
// samples captured at the device's negotiated rate. sampleRate is the rate
// to request; the rate actually used is returned alongside the samples.
func (d *Device) Record(sampleRate int, duration time.Duration) ([]int16, int, error) {
	if err := d.openFor(true, sampleRate); err != nil {
		return nil, 0, err
	}
	defer d.Close()

	buf := d.dev.NewBufferDuration(duration)
	if err := d.dev.Read(buf.Data); err != nil {
		return nil, 0, fmt.Errorf("could not read from device: %w", err)
	}
	return bytesToSamples(buf.Data), d.rate, nil
}

// Play opens a playback device at sampleRate and writes samples to it,
// blocking until playback finishes.
func (d *Device) Play(samples []int16, sampleRate int) error {
	if err := d.openFor(false, sampleRate); err != nil {
		return err
	}
	defer d.Close()

	if err := d.dev.Write(samplesToBytes(samples)); err != nil {
		return fmt.Errorf("could not write to device: %w", err)
	}
	return nil
}

// Close releases the underlying ALSA device, if open.
func (d *Device) Close() error {
	if d.dev == nil {
		return nil
	}
	d.l.Debug("closing device", "title", d.title)
	d.dev.Close()
	d.dev = nil
	return nil
}

// bytesToSamples reinterprets raw little-endian 16-bit PCM bytes as signed
// samples, dropping a trailing odd byte if present.
func bytesToSamples(b []byte) []int16 {
	n := len(b) / bytesPerSample
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*bytesPerSample:]))
	}
	return samples
}

// samplesToBytes encodes samples as raw little-endian 16-bit PCM bytes.
func samplesToBytes(samples []int16) []byte {
	b := make([]byte, len(samples)*bytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(b[i*bytesPerSample:], uint16(s))
	}
	return b
}

// nearestPowerOfTwo finds and returns the nearest power of two to the given
// integer. If the lower and higher power of two are the same distance, it
// returns the higher power. For non-positive values, 1 is returned; for 1,
// 2 is returned.
// Source: https://stackoverflow.com/a/45859570
func nearestPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	if n == 1 {
		return 2
	}
	v := n
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	x := v >> 1
	if (v - n) > (n - x) {
		return x
	}
	return v
}
