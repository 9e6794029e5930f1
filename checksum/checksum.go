/*
NAME
  checksum.go

DESCRIPTION
  checksum.go provides the weak 8-bit additive checksum used to detect
  accidental corruption of a packet body. It is not a MAC; integrity of
  ENCRYPTED packet bodies is the job of the AES-GCM tag, not this checksum.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package checksum provides the 8-bit additive checksum used across all
// three packet variants.
package checksum

// Sum returns (sum of bs) mod 256.
func Sum(bs []byte) byte {
	var sum byte
	for _, b := range bs {
		sum += b // byte arithmetic wraps mod 256.
	}
	return sum
}
