// Package compress reads and writes ZStandard-compressed filter payloads.
package compress

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// magic is the ZStandard frame header.
var magic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// IsCompressed reports whether data starts with a ZStandard frame header.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Compressor compresses payloads with ZStandard.
// Create once and reuse; Compress is safe for concurrent use.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor creates a compressor at the default speed level.
// Caller must call Close when done.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("compress: create zstd encoder: %w", err)
	}
	return &Compressor{encoder: encoder}, nil
}

// Compress returns data as a single ZStandard frame.
func (c *Compressor) Compress(data []byte) []byte {
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2+len(magic)))
}

// Close releases encoder resources.
func (c *Compressor) Close() error {
	if c.encoder != nil {
		return c.encoder.Close()
	}
	return nil
}

// Decompressor decompresses ZStandard payloads.
// Decompress is safe for concurrent use.
type Decompressor struct {
	decoder *zstd.Decoder
}

// NewDecompressor creates a decompressor. maxSize bounds the decoded size;
// zero keeps the library default.
func NewDecompressor(maxSize uint64) (*Decompressor, error) {
	var opts []zstd.DOption
	if maxSize > 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(maxSize))
	}
	decoder, err := zstd.NewReader(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("compress: create zstd decoder: %w", err)
	}
	return &Decompressor{decoder: decoder}, nil
}

// Decompress decodes every frame in compressed.
func (d *Decompressor) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return []byte{}, nil
	}
	out, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compress: decompress: %w", err)
	}
	return out, nil
}

// Close releases decoder resources.
func (d *Decompressor) Close() {
	if d.decoder != nil {
		d.decoder.Close()
	}
}

// Unwrap returns data decompressed when it carries a ZStandard header and
// unchanged otherwise.
func (d *Decompressor) Unwrap(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}
	return d.Decompress(data)
}
