package datastructure

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// CompressTo writes the zstd compressed data to w.
func CompressTo(w io.Writer, data []byte) error {
	encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	_, err = io.Copy(encoder, bytes.NewReader(data))
	if err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

// DecompressFrom reads a whole zstd stream from r.
func DecompressFrom(r io.Reader) ([]byte, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer d.Close()

	out := new(bytes.Buffer)
	if _, err := io.Copy(out, d); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
