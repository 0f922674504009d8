// Package compression provides optional payload compression for the wire
// codec. Compression is off by default; when enabled the whole encoded
// envelope is compressed before it is written to the socket.
package compression

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/snappy"
)

// Compressor compresses and decompresses encoded envelopes.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

// New returns the compressor for the given name: "gzip", "snappy", or ""
// for no compression (nil).
func New(name string) (Compressor, error) {
	switch name {
	case "":
		return nil, nil
	case "gzip":
		return &Gzip{}, nil
	case "snappy":
		return &Snappy{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

// Gzip implements Compressor with stdlib gzip.
type Gzip struct{}

// Compress gzips data.
func (Gzip) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress inflates gzipped data, checking the magic header first.
func (Gzip) Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1F || data[1] != 0x8B {
		return nil, fmt.Errorf("invalid gzip header")
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Snappy implements Compressor with klauspost's snappy block format.
type Snappy struct{}

// Compress snappy-encodes data.
func (Snappy) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress snappy-decodes data.
func (Snappy) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}
	decoded, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode: %w", err)
	}
	return decoded, nil
}
