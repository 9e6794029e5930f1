/*
NAME
  config.go

DESCRIPTION
  config.go provides Config, the set of parameters a modem session is run
  with. Fields left at their zero value default to the modem package's
  fixed wire parameters; Validate reports a sub-Nyquist sample rate and a
  missing or non-positive record duration, while a zero sample rate and a
  nil logger are defaulted without an error.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for an acoustilink
// session: unit addressing, authentication/encryption secrets, and the
// audio parameters capture and playback run at.
package config

import (
	"os"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/mistband/acoustilink/modem"
)

// Defaults applied by Validate when a field is left at its zero value.
const (
	DefaultSampleRate  = modem.SampleRate
	DefaultRecDuration = 5 * time.Second
)

// Config holds the parameters of one send or receive operation.
type Config struct {
	// UnitID identifies the sender on the wire; only its low 4 bits are
	// significant.
	UnitID uint8

	// Secret is the shared value AUTH packets prove knowledge of, and
	// against which received AUTH tokens are checked.
	Secret string

	// Password seals and opens ENCRYPTED packets. Empty means ENCRYPTED
	// packets can be built but not opened.
	Password string

	// SampleRate is the PCM sample rate audio is captured, played and
	// encoded at. Zero defaults to modem.SampleRate; any other value not
	// equal to modem.SampleRate requires the modem's tone frequencies
	// still fall below the Nyquist rate, which Validate checks.
	SampleRate int

	// RecDuration bounds how long Record listens for a reply.
	RecDuration time.Duration

	// DeviceTitle selects a specific ALSA device by name; empty selects
	// the first device capable of the requested operation.
	DeviceTitle string

	// Logger receives diagnostic output. A nil Logger is replaced by a
	// logging.New(logging.Info, os.Stderr, false) instance by Validate.
	Logger logging.Logger
}

// Validate defaults zero-valued fields and reports any field whose supplied
// value could not be honored.
func (c *Config) Validate() error {
	var errs MultiError

	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	} else if c.SampleRate < 2*modem.F1 {
		errs = append(errs, errInvalidSampleRate)
		c.SampleRate = DefaultSampleRate
	}

	if c.RecDuration <= 0 {
		errs = append(errs, errInvalidRecDuration)
		c.RecDuration = DefaultRecDuration
	}

	if c.Logger == nil {
		c.Logger = logging.New(int8(logging.Info), os.Stderr, false)
	}

	if len(errs) != 0 {
		return errs
	}
	return nil
}
