package cart

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// readROMFile reads a ROM from disk, transparently unwrapping zip, gzip and
// 7z archives. Archives are expected to carry the ROM as their first entry.
func readROMFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var decoder io.ReadCloser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(r.File) == 0 {
			return nil, errors.New("empty zip archive")
		}
		decoder, err = r.File[0].Open()
		if err != nil {
			return nil, err
		}
	case ".gz":
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		decoder = gz
	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, err
		}
		if len(r.File) == 0 {
			return nil, errors.New("empty 7z archive")
		}
		decoder, err = r.File[0].Open()
		if err != nil {
			return nil, err
		}
	default:
		return data, nil
	}
	defer decoder.Close()

	return io.ReadAll(decoder)
}
