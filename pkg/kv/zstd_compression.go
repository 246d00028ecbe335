package kv

import (
	"github.com/DataDog/zstd"
)

func compress(bb []byte) ([]byte, error) {
	bbCompressed, err := zstd.Compress(nil, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	bb, err := zstd.Decompress(nil, bbCompressed)
	if err != nil {
		return []byte{}, err
	}

	return bb, nil
}
