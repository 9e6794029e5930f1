/*
NAME
  errors.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"errors"
	"fmt"
)

var (
	errInvalidSampleRate  = errors.New("sample rate below Nyquist rate for the modem's tones, defaulting")
	errInvalidRecDuration = errors.New("invalid or no record duration defined, defaulting")
)

// MultiError collects the defaulting errors Validate finds, so that one
// Validate call can report every bad field instead of only the first.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("config: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}
