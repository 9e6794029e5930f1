package packet

import (
	"bytes"
	"slices"
	"testing"

	"github.com/mistband/acoustilink/bitstream"
	"github.com/mistband/acoustilink/checksum"
	"github.com/mistband/acoustilink/modem"
)

func TestBuildDecodeDataRoundTrip(t *testing.T) {
	payload := []byte("hello")
	samples, err := BuildData(payload, 5)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}

	got := Decode(samples, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(got), got)
	}
	r := got[0]
	if r.Kind != DataOk {
		t.Fatalf("got kind %v, want DataOk", r.Kind)
	}
	if r.UnitID != 5 {
		t.Errorf("got unit ID %d, want 5", r.UnitID)
	}
	if !bytes.Equal(r.Payload, payload) {
		t.Errorf("got payload %q, want %q", r.Payload, payload)
	}
}

func TestBuildDecodeAuthGranted(t *testing.T) {
	samples, err := BuildAuth("swordfish", 3)
	if err != nil {
		t.Fatalf("BuildAuth: %v", err)
	}

	got := Decode(samples, DecodeOptions{ExpectedMode: ModeAuth, ExpectedSecret: "swordfish"})
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Kind != AuthOk || !got[0].Granted {
		t.Errorf("got %+v, want AuthOk granted", got[0])
	}
}

func TestBuildDecodeAuthDenied(t *testing.T) {
	samples, err := BuildAuth("swordfish", 3)
	if err != nil {
		t.Fatalf("BuildAuth: %v", err)
	}

	got := Decode(samples, DecodeOptions{ExpectedMode: ModeAuth, ExpectedSecret: "wrong"})
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	if got[0].Kind != AuthOk || got[0].Granted {
		t.Errorf("got %+v, want AuthOk not granted", got[0])
	}
}

func TestBuildDecodeEncryptedRoundTrip(t *testing.T) {
	payload := []byte("top secret payload")
	samples, err := BuildEncrypted(payload, "hunter2", 9)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}

	got := Decode(samples, DecodeOptions{Password: "hunter2"})
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
	r := got[0]
	if r.Kind != EncryptedOk {
		t.Fatalf("got kind %v, want EncryptedOk", r.Kind)
	}
	if !bytes.Equal(r.Payload, payload) {
		t.Errorf("got payload %q, want %q", r.Payload, payload)
	}
}

func TestDecodeEncryptedLockedWithoutPassword(t *testing.T) {
	samples, err := BuildEncrypted([]byte("secret"), "hunter2", 1)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}

	got := Decode(samples, DecodeOptions{})
	if len(got) != 1 || got[0].Kind != EncryptedLocked {
		t.Fatalf("got %+v, want a single EncryptedLocked result", got)
	}
}

func TestDecodeEncryptedWrongPassword(t *testing.T) {
	samples, err := BuildEncrypted([]byte("secret"), "hunter2", 1)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}

	got := Decode(samples, DecodeOptions{Password: "wrong"})
	if len(got) != 1 || got[0].Kind != EncryptedFailed {
		t.Fatalf("got %+v, want a single EncryptedFailed result", got)
	}
}

// TestDecodeEmptyPayload checks the L=0 boundary case.
func TestDecodeEmptyPayload(t *testing.T) {
	samples, err := BuildData(nil, 0)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}
	got := Decode(samples, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 1 || got[0].Kind != DataOk || len(got[0].Payload) != 0 {
		t.Fatalf("got %+v, want a single empty DataOk result", got)
	}
}

// TestDecodeMaxPayload checks the L=255 boundary case.
func TestDecodeMaxPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xA5}, maxBodyLen)
	samples, err := BuildData(payload, 0)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}
	got := Decode(samples, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 1 || got[0].Kind != DataOk || !bytes.Equal(got[0].Payload, payload) {
		t.Fatalf("got %d results, first kind %v", len(got), got[0].Kind)
	}
}

// TestDecodeMinEncryptedBlob checks the L=44 empty-plaintext boundary case.
func TestDecodeMinEncryptedBlob(t *testing.T) {
	samples, err := BuildEncrypted(nil, "pw", 2)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}
	got := Decode(samples, DecodeOptions{Password: "pw"})
	if len(got) != 1 || got[0].Kind != EncryptedOk || len(got[0].Payload) != 0 {
		t.Fatalf("got %+v, want a single empty EncryptedOk result", got)
	}
}

// TestDecodeAllZeroSecret checks that an AUTH packet built for the all-zero
// secret round-trips like any other, since AuthToken has no special case for
// it.
func TestDecodeAllZeroSecret(t *testing.T) {
	samples, err := BuildAuth("\x00\x00\x00\x00", 0)
	if err != nil {
		t.Fatalf("BuildAuth: %v", err)
	}
	got := Decode(samples, DecodeOptions{ExpectedMode: ModeAuth, ExpectedSecret: "\x00\x00\x00\x00"})
	if len(got) != 1 || got[0].Kind != AuthOk || !got[0].Granted {
		t.Fatalf("got %+v, want AuthOk granted", got)
	}
}

// TestDecodeCorruptedChecksum checks that a DATA frame with its checksum bit
// flipped is silently discarded rather than surfaced as a malformed result.
func TestDecodeCorruptedChecksum(t *testing.T) {
	samples, err := BuildData([]byte("x"), 0)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}
	bits := modem.Demodulate(samples)
	flipChecksumBit(bits)
	corrupted := modem.Modulate(bits)

	got := Decode(corrupted, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 0 {
		t.Errorf("got %+v, want no results for a corrupted checksum", got)
	}
}

// TestSilencePaddingInvariance checks property 8: prepending or appending
// silence to a buffer does not change the set of decoded packets.
func TestSilencePaddingInvariance(t *testing.T) {
	samples, err := BuildData([]byte("padded"), 7)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}
	want := Decode(samples, DecodeOptions{ExpectedMode: ModeData})
	if len(want) != 1 {
		t.Fatalf("baseline decode got %d results, want 1", len(want))
	}

	padded := make([]int16, 0, len(samples)+6000)
	padded = append(padded, make([]int16, 3000)...)
	padded = append(padded, samples...)
	padded = append(padded, make([]int16, 3000)...)

	got := Decode(padded, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 1 || got[0].Kind != want[0].Kind || got[0].UnitID != want[0].UnitID || !bytes.Equal(got[0].Payload, want[0].Payload) {
		t.Errorf("got %+v after padding, want %+v", got, want[0])
	}
}

// TestStartFlagInsidePreambleNoMisSync constructs a buffer whose preamble
// region happens to contain the startDataAuth bit pattern and checks that
// the scanner does not mis-synchronize on it: the candidate frame at that
// early match fails validation and is discarded, and only the frame behind
// the real start flag that follows it is returned.
func TestStartFlagInsidePreambleNoMisSync(t *testing.T) {
	payload := []byte("ok")
	bits := make([]byte, 0)
	// A preamble-shaped run whose tail embeds the DATA/AUTH start flag, the
	// same way the real preamble precedes every frame.
	bits = append(bits, 1, 0, 1, 0, 1, 0, 1, 1, 0, 0, 1, 1, 0, 0)
	bits = append(bits, preamble...)
	bits = append(bits, startDataAuth...)
	bits = append(bits, nibbleToBits(4)...)
	bits = append(bits, byteToBits(byte(len(payload)))...)
	bits = append(bits, bitstream.BytesToBits(payload)...)
	bits = append(bits, byteToBits(checksum.Sum(payload))...)
	bits = append(bits, endFlag...)

	samples := modem.Modulate(bits)
	got := Decode(samples, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 1 || got[0].Kind != DataOk || !bytes.Equal(got[0].Payload, payload) {
		t.Fatalf("got %+v, want a single DataOk result for %q", got, payload)
	}
}

func TestDecodeTruncatedFrameYieldsNoResult(t *testing.T) {
	samples, err := BuildData([]byte("truncate me"), 0)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}
	short := samples[:len(samples)-modem.SamplesPerBit*4]

	got := Decode(short, DecodeOptions{ExpectedMode: ModeData})
	if len(got) != 0 {
		t.Errorf("got %+v, want no results for a truncated frame", got)
	}
}

func TestBuildDataPayloadTooLarge(t *testing.T) {
	_, err := BuildData(bytes.Repeat([]byte{0}, maxBodyLen+1), 0)
	if err == nil {
		t.Fatal("got nil error for an over-large payload")
	}
}

// TestDecodeReturnsAllPacketsInOneBuffer checks that Decode reports every
// packet it finds in a buffer, in the order they occur, rather than only
// the first. ExpectedMode applies to the whole call, so the two DATA-mode
// frames share a mode and an ENCRYPTED frame (self-disambiguating via its
// own start flag) is mixed in alongside them.
func TestDecodeReturnsAllPacketsInOneBuffer(t *testing.T) {
	first, err := BuildData([]byte("first"), 1)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}
	second, err := BuildEncrypted([]byte("second"), "pw", 2)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}
	third, err := BuildData([]byte("third"), 3)
	if err != nil {
		t.Fatalf("BuildData: %v", err)
	}

	buf := append(append(append([]int16{}, first...), second...), third...)
	got := Decode(buf, DecodeOptions{ExpectedMode: ModeData, Password: "pw"})
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(got), got)
	}
	if got[0].Kind != DataOk || got[0].UnitID != 1 || !bytes.Equal(got[0].Payload, []byte("first")) {
		t.Errorf("got first result %+v, want DataOk unit 1 payload %q", got[0], "first")
	}
	if got[1].Kind != EncryptedOk || got[1].UnitID != 2 || !bytes.Equal(got[1].Payload, []byte("second")) {
		t.Errorf("got second result %+v, want EncryptedOk unit 2 payload %q", got[1], "second")
	}
	if got[2].Kind != DataOk || got[2].UnitID != 3 || !bytes.Equal(got[2].Payload, []byte("third")) {
		t.Errorf("got third result %+v, want DataOk unit 3 payload %q", got[2], "third")
	}
}

func TestBuildEncryptedFreshBlobEachCall(t *testing.T) {
	a, err := BuildEncrypted([]byte("same plaintext"), "pw", 0)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}
	b, err := BuildEncrypted([]byte("same plaintext"), "pw", 0)
	if err != nil {
		t.Fatalf("BuildEncrypted: %v", err)
	}
	if slices.Equal(a, b) {
		t.Error("two encryptions of the same plaintext produced identical samples")
	}
}

// flipChecksumBit corrupts the checksum field of a DATA-frame bit stream in
// place by locating the start flag and flipping the first bit of the
// checksum that follows unit ID, length and payload.
func flipChecksumBit(bits []byte) {
	for i := 0; i+8 <= len(bits); i++ {
		if bytes.Equal(bits[i:i+8], startDataAuth) {
			j := i + 8 + unitIDBits
			length := int(bitsToByte(bits[j : j+lengthBits]))
			j += lengthBits + length*8
			bits[j] ^= 1
			return
		}
	}
}
