package audio

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/cockroachdb/errors"
)

// The only sample format a Sound accepts.
const (
	FormatPCM     uint16 = 1
	SampleRate    uint32 = 44100
	BitsPerSample uint16 = 16
	Channels      uint16 = 2

	// WaveHeaderSize is the byte size of the canonical header ParseWAV reads.
	WaveHeaderSize = 44
)

// WaveHeader is the canonical 44-byte RIFF/WAVE header: a RIFF chunk holding one fmt chunk
// immediately followed by the data chunk header.
type WaveHeader struct {
	ChunkID        [4]byte
	ChunkSize      uint32
	Format         [4]byte
	SubChunkID     [4]byte
	SubChunkSize   uint32
	AudioFormat    uint16
	NumChannels    uint16
	SampleRate     uint32
	BytesPerSecond uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	DataChunkID    [4]byte
	DataSize       uint32
}

// NewWaveHeader returns a valid header for dataSize bytes of 44.1 kHz 16-bit stereo PCM.
//
// Parameters:
//   - dataSize: the byte length of the sample data
//
// Returns:
//   - WaveHeader: the header
func NewWaveHeader(dataSize uint32) WaveHeader {
	blockAlign := BitsPerSample / 8 * Channels
	return WaveHeader{
		ChunkID:        [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:      WaveHeaderSize - 8 + dataSize,
		Format:         [4]byte{'W', 'A', 'V', 'E'},
		SubChunkID:     [4]byte{'f', 'm', 't', ' '},
		SubChunkSize:   16,
		AudioFormat:    FormatPCM,
		NumChannels:    Channels,
		SampleRate:     SampleRate,
		BytesPerSecond: SampleRate * uint32(blockAlign),
		BlockAlign:     blockAlign,
		BitsPerSample:  BitsPerSample,
		DataChunkID:    [4]byte{'d', 'a', 't', 'a'},
		DataSize:       dataSize,
	}
}

// Marshal returns the little-endian encoding of h.
//
// Returns:
//   - []byte: WaveHeaderSize bytes
func (h WaveHeader) Marshal() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, h)
	return buf.Bytes()
}

// validate checks every field a Sound depends on, in file order.
func (h WaveHeader) validate() error {
	switch {
	case h.ChunkID != [4]byte{'R', 'I', 'F', 'F'}:
		return common.Malformed("wave: chunk id %q is not RIFF", h.ChunkID[:])
	case h.Format != [4]byte{'W', 'A', 'V', 'E'}:
		return common.Malformed("wave: format %q is not WAVE", h.Format[:])
	case h.SubChunkID != [4]byte{'f', 'm', 't', ' '}:
		return common.Malformed("wave: sub chunk id %q is not fmt", h.SubChunkID[:])
	case h.AudioFormat != FormatPCM:
		return common.Malformed("wave: audio format %d is not PCM", h.AudioFormat)
	case h.NumChannels != Channels:
		return common.Malformed("wave: %d channels, want %d", h.NumChannels, Channels)
	case h.SampleRate != SampleRate:
		return common.Malformed("wave: sample rate %d, want %d", h.SampleRate, SampleRate)
	case h.BitsPerSample != BitsPerSample:
		return common.Malformed("wave: %d bits per sample, want %d", h.BitsPerSample, BitsPerSample)
	case h.DataChunkID != [4]byte{'d', 'a', 't', 'a'}:
		return common.Malformed("wave: data chunk id %q is not data", h.DataChunkID[:])
	}
	return nil
}

// ParseWAV reads a canonical WAVE header and the complete data chunk it announces. Anything
// other than 44.1 kHz 16-bit stereo PCM is rejected rather than converted.
//
// Parameters:
//   - r: the file contents
//
// Returns:
//   - WaveHeader: the parsed header
//   - []byte: DataSize bytes of interleaved samples
//   - error: an ErrMalformedData error naming the first field that does not match
func ParseWAV(r io.Reader) (WaveHeader, []byte, error) {
	var h WaveHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return WaveHeader{}, nil, errors.Mark(errors.Wrap(err, "wave: read header"), common.ErrMalformedData)
	}
	if err := h.validate(); err != nil {
		return WaveHeader{}, nil, err
	}

	// The buffer grows with what is actually read, so a lying DataSize cannot force a large
	// allocation.
	var buf bytes.Buffer
	n, err := buf.ReadFrom(io.LimitReader(r, int64(h.DataSize)))
	if err != nil {
		return WaveHeader{}, nil, errors.Mark(errors.Wrapf(err, "wave: read %d data bytes", h.DataSize), common.ErrMalformedData)
	}
	if n != int64(h.DataSize) {
		return WaveHeader{}, nil, common.Malformed("wave: data chunk is %d bytes, header announces %d", n, h.DataSize)
	}
	return h, buf.Bytes(), nil
}

// LoadWAV opens path and parses it with ParseWAV.
//
// Parameters:
//   - path: the .wav file
//
// Returns:
//   - WaveHeader: the parsed header
//   - []byte: the sample data
//   - error: ErrNotFound when the file cannot be opened, ErrMalformedData when it cannot be parsed
func LoadWAV(path string) (WaveHeader, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return WaveHeader{}, nil, common.NotFound(err, path)
	}
	defer f.Close()

	h, data, err := ParseWAV(f)
	if err != nil {
		return WaveHeader{}, nil, errors.Wrapf(err, "load sound %s", path)
	}
	return h, data, nil
}
