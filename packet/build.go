/*
NAME
  build.go

DESCRIPTION
  build.go assembles the three packet variants into bit sequences and hands
  them to the modulator to produce PCM samples.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package packet

import (
	"github.com/pkg/errors"

	"github.com/mistband/acoustilink/bitstream"
	"github.com/mistband/acoustilink/checksum"
	"github.com/mistband/acoustilink/cryptoutil"
	"github.com/mistband/acoustilink/modem"
)

// ErrPayloadTooLarge is returned when a body would not fit in the 8-bit
// length field.
var ErrPayloadTooLarge = errors.New("packet: body exceeds 255 bytes")

// BuildData assembles a DATA packet carrying payload for unitID (only the
// low 4 bits of unitID are significant) and returns its PCM samples.
func BuildData(payload []byte, unitID uint8) ([]int16, error) {
	if len(payload) > maxBodyLen {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "payload is %d bytes", len(payload))
	}

	bits := make([]byte, 0, 64+len(payload)*8)
	bits = append(bits, preamble...)
	bits = append(bits, startDataAuth...)
	bits = append(bits, nibbleToBits(unitID)...)
	bits = append(bits, byteToBits(byte(len(payload)))...)
	bits = append(bits, bitstream.BytesToBits(payload)...)
	bits = append(bits, byteToBits(checksum.Sum(payload))...)
	bits = append(bits, endFlag...)

	return modem.Modulate(bits), nil
}

// BuildAuth assembles an AUTH packet proving knowledge of secret for
// unitID and returns its PCM samples.
func BuildAuth(secret string, unitID uint8) ([]int16, error) {
	token := cryptoutil.AuthToken(secret)

	bits := make([]byte, 0, 64+tokenBits)
	bits = append(bits, preamble...)
	bits = append(bits, startDataAuth...)
	bits = append(bits, nibbleToBits(unitID)...)
	bits = append(bits, bitstream.BytesToBits(token)...)
	bits = append(bits, byteToBits(checksum.Sum(token))...)
	bits = append(bits, endFlag...)

	return modem.Modulate(bits), nil
}

// BuildEncrypted assembles an ENCRYPTED packet carrying payload, sealed
// under password, for unitID and returns its PCM samples. Fails with
// ErrPayloadTooLarge if the resulting cipher-blob exceeds 255 bytes.
func BuildEncrypted(payload []byte, password string, unitID uint8) ([]int16, error) {
	blob, err := cryptoutil.Encrypt(password, payload)
	if err != nil {
		return nil, errors.Wrap(err, "could not encrypt payload")
	}
	if len(blob) > maxBodyLen {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "cipher-blob is %d bytes", len(blob))
	}

	bits := make([]byte, 0, 64+len(blob)*8)
	bits = append(bits, preamble...)
	bits = append(bits, startEncrypted...)
	bits = append(bits, nibbleToBits(unitID)...)
	bits = append(bits, byteToBits(byte(len(blob)))...)
	bits = append(bits, bitstream.BytesToBits(blob)...)
	bits = append(bits, byteToBits(checksum.Sum(blob))...)
	bits = append(bits, endFlag...)

	return modem.Modulate(bits), nil
}

// byteToBits is a single-byte convenience wrapper around
// bitstream.BytesToBits, used for the length, checksum, and similar
// byte-wide fields.
func byteToBits(b byte) []byte {
	return bitstream.BytesToBits([]byte{b})
}
