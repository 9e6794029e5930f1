package wav

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/go-cmp/cmp"
)

// memWriteSeeker is a minimal in-memory io.WriteSeeker, the same pattern
// exp/flac used to buffer an encoder's output without touching disk.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = int(offset)
	case io.SeekCurrent:
		m.pos += int(offset)
	case io.SeekEnd:
		m.pos = len(m.buf) + int(offset)
	}
	return int64(m.pos), nil
}

func TestWriteReadRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 100, -100}

	ws := &memWriteSeeker{}
	if err := Write(ws, samples, 44100); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(bytes.NewReader(ws.buf), 44100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(samples, got); diff != "" {
		t.Errorf("round-tripped samples differ (-want +got):\n%s", diff)
	}
}

func TestWriteEmpty(t *testing.T) {
	ws := &memWriteSeeker{}
	if err := Write(ws, nil, 44100); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(bytes.NewReader(ws.buf), 44100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d samples, want 0", len(got))
	}
}

func TestReadStereoFoldsToMono(t *testing.T) {
	left := []int16{100, 200, 300}
	right := []int16{-100, -200, -300}

	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, 44100, 16, 2, 1)
	data := make([]int, 0, len(left)*2)
	for i := range left {
		data = append(data, int(left[i]), int(right[i]))
	}
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           data,
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := Read(bytes.NewReader(ws.buf), 44100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(left, got); diff != "" {
		t.Errorf("folded-to-mono samples differ (-want +got):\n%s", diff)
	}
}

func TestReadRateNotDivisible(t *testing.T) {
	ws := &memWriteSeeker{}
	if err := Write(ws, []int16{1, 2, 3}, 44100); err != nil {
		t.Fatalf("Write: %v", err)
	}

	_, err := Read(bytes.NewReader(ws.buf), 48000)
	if err == nil {
		t.Fatal("got nil error for a non-divisible target rate")
	}
}

func TestReadDownsamples(t *testing.T) {
	ws := &memWriteSeeker{}
	if err := Write(ws, []int16{0, 10, 20, 30, 40, 50}, 88200); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(bytes.NewReader(ws.buf), 44100)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []int16{5, 25, 45}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("downsampled samples differ (-want +got):\n%s", diff)
	}
}

func TestReadUnsupportedChannelCount(t *testing.T) {
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, 44100, 16, 4, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 4, SampleRate: 44100},
		Data:           make([]int, 8),
		SourceBitDepth: 16,
	}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := Read(bytes.NewReader(ws.buf), 44100)
	if err == nil {
		t.Fatal("got nil error for a 4-channel file")
	}
}
