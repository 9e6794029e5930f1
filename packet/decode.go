/*
NAME
  decode.go

DESCRIPTION
  decode.go implements frame synchronization and packet parsing: Decode runs
  the demodulator over a PCM buffer, then scans the resulting bit stream
  bit-by-bit for start flags, parsing and validating a packet at each match
  and discarding it on any validation failure without stopping the scan.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package packet

import (
	"bytes"

	"github.com/ausocean/utils/logging"

	"github.com/mistband/acoustilink/bitstream"
	"github.com/mistband/acoustilink/checksum"
	"github.com/mistband/acoustilink/cryptoutil"
	"github.com/mistband/acoustilink/modem"
)

// Mode selects whether a DATA/AUTH-flagged frame should be parsed as DATA
// or AUTH; the wire itself carries no indication, so the caller must say
// which it expects.
type Mode int

// Supported decode modes.
const (
	ModeData Mode = iota
	ModeAuth
)

// Kind tags the variant of a DecodeResult.
type Kind int

// Result kinds.
const (
	Invalid Kind = iota
	DataOk
	AuthOk
	EncryptedOk
	EncryptedLocked
	EncryptedFailed
)

// DecodeOptions parameterises Decode.
type DecodeOptions struct {
	// ExpectedMode disambiguates a DATA/AUTH-flagged frame; the wire does
	// not carry this distinction itself.
	ExpectedMode Mode

	// Password, if non-empty, is used to attempt decryption of ENCRYPTED
	// frames. If empty, ENCRYPTED frames decode to EncryptedLocked.
	Password string

	// ExpectedSecret is compared against the token carried by AUTH frames.
	ExpectedSecret string
}

// DecodeResult is one decoded or rejected packet found in a buffer.
type DecodeResult struct {
	Kind    Kind
	UnitID  uint8
	Payload []byte // DATA payload or decrypted ENCRYPTED payload.
	Granted bool   // AUTH only: whether the token matched ExpectedSecret.
}

// Decode demodulates samples and returns every valid packet found, in the
// order their start flags appear. A buffer with no valid packet yields a
// nil slice.
func Decode(samples []int16, opts DecodeOptions) []DecodeResult {
	return DecodeWithLogger(samples, opts, nil)
}

// DecodeWithLogger behaves as Decode but logs discarded frames and sync
// progress at debug level to l. l may be nil, in which case logging is a
// no-op, matching Decode's behavior.
func DecodeWithLogger(samples []int16, opts DecodeOptions, l logging.Logger) []DecodeResult {
	bits := modem.Demodulate(samples)

	var results []DecodeResult
	for i := 0; i+8 <= len(bits); i++ {
		switch {
		case bytes.Equal(bits[i:i+8], startDataAuth):
			if r, ok := parseDataAuth(bits, i+8, opts); ok {
				if l != nil {
					l.Debug("packet: decoded DATA/AUTH frame", "bit", i, "kind", r.Kind)
				}
				results = append(results, r)
			} else if l != nil {
				l.Debug("packet: discarded DATA/AUTH frame candidate", "bit", i)
			}
		case bytes.Equal(bits[i:i+8], startEncrypted):
			if r, ok := parseEncrypted(bits, i+8, opts); ok {
				if l != nil {
					l.Debug("packet: decoded ENCRYPTED frame", "bit", i, "kind", r.Kind)
				}
				results = append(results, r)
			} else if l != nil {
				l.Debug("packet: discarded ENCRYPTED frame candidate", "bit", i)
			}
		}
	}
	return results
}

// parseDataAuth parses a DATA or AUTH body (chosen by opts.ExpectedMode)
// starting at bit index i, which is the bit immediately after the start
// flag. It returns ok=false if the candidate frame is truncated or fails
// checksum/end-flag validation, in which case the caller discards it and
// keeps scanning.
func parseDataAuth(bits []byte, i int, opts DecodeOptions) (DecodeResult, bool) {
	if i+unitIDBits > len(bits) {
		return DecodeResult{}, false
	}
	unitID := bitsToNibble(bits[i : i+unitIDBits])
	i += unitIDBits

	if opts.ExpectedMode == ModeAuth {
		need := i + tokenBits + checksumBits + endFlagBits
		if need > len(bits) {
			return DecodeResult{}, false
		}
		token, _ := bitstream.BitsToBytes(bits[i : i+tokenBits])
		i += tokenBits
		sum := bitsToByte(bits[i : i+checksumBits])
		i += checksumBits
		end := bits[i : i+endFlagBits]

		if sum != checksum.Sum(token) || !bytes.Equal(end, endFlag) {
			return DecodeResult{}, false
		}
		return DecodeResult{
			Kind:    AuthOk,
			UnitID:  unitID,
			Granted: cryptoutil.AuthVerify(token, opts.ExpectedSecret),
		}, true
	}

	if i+lengthBits > len(bits) {
		return DecodeResult{}, false
	}
	length := int(bitsToByte(bits[i : i+lengthBits]))
	i += lengthBits

	need := i + length*8 + checksumBits + endFlagBits
	if need > len(bits) {
		return DecodeResult{}, false
	}
	payload, _ := bitstream.BitsToBytes(bits[i : i+length*8])
	i += length * 8
	sum := bitsToByte(bits[i : i+checksumBits])
	i += checksumBits
	end := bits[i : i+endFlagBits]

	if sum != checksum.Sum(payload) || !bytes.Equal(end, endFlag) {
		return DecodeResult{}, false
	}
	return DecodeResult{Kind: DataOk, UnitID: unitID, Payload: payload}, true
}

// parseEncrypted parses an ENCRYPTED body starting at bit index i, the bit
// immediately after the start flag.
func parseEncrypted(bits []byte, i int, opts DecodeOptions) (DecodeResult, bool) {
	if i+unitIDBits+lengthBits > len(bits) {
		return DecodeResult{}, false
	}
	unitID := bitsToNibble(bits[i : i+unitIDBits])
	i += unitIDBits
	length := int(bitsToByte(bits[i : i+lengthBits]))
	i += lengthBits

	if length < minEncryptedBlobLen || length > maxBodyLen {
		return DecodeResult{}, false
	}

	need := i + length*8 + checksumBits + endFlagBits
	if need > len(bits) {
		return DecodeResult{}, false
	}
	blob, _ := bitstream.BitsToBytes(bits[i : i+length*8])
	i += length * 8
	sum := bitsToByte(bits[i : i+checksumBits])
	i += checksumBits
	end := bits[i : i+endFlagBits]

	if sum != checksum.Sum(blob) || !bytes.Equal(end, endFlag) {
		return DecodeResult{}, false
	}

	result := DecodeResult{UnitID: unitID}
	switch {
	case opts.Password == "":
		result.Kind = EncryptedLocked
	default:
		pt, err := cryptoutil.Decrypt(opts.Password, blob)
		if err != nil {
			result.Kind = EncryptedFailed
		} else {
			result.Kind = EncryptedOk
			result.Payload = pt
		}
	}
	return result, true
}
