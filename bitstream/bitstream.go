/*
NAME
  bitstream.go

DESCRIPTION
  bitstream.go contains functions for converting between bytes and MSB-first
  bit sequences, the representation every other package in this module uses
  for wire-level data.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitstream provides conversion between byte slices and MSB-first
// bit sequences.
package bitstream

import "github.com/pkg/errors"

// ErrMalformedBits is returned by BitsToBytes when the number of bits is not
// a multiple of 8, and therefore cannot represent a whole number of bytes.
var ErrMalformedBits = errors.New("bitstream: bit count is not a multiple of 8")

// BytesToBits returns the bits of bs, most-significant bit first within each
// byte.
func BytesToBits(bs []byte) []byte {
	bits := make([]byte, 0, len(bs)*8)
	for _, b := range bs {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

// BitsToBytes packs bits, MSB first within each byte, back into bytes. It is
// the exact inverse of BytesToBits. ErrMalformedBits is returned if
// len(bits) is not a multiple of 8.
func BitsToBytes(bits []byte) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, errors.Wrapf(ErrMalformedBits, "got %d bits", len(bits))
	}
	bs := make([]byte, len(bits)/8)
	for i := range bs {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | (bits[i*8+j] & 1)
		}
		bs[i] = b
	}
	return bs, nil
}
